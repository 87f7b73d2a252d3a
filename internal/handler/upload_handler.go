package handler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkpost/internal/service"
	_ "golang.org/x/image/webp"
)

const maxUploadBytes = 10 << 20

// UploadAuth 返回浏览器直传 CDN 所需的临时签名
func (a *API) UploadAuth(c *gin.Context) {
	credentials, err := a.signer.Sign()
	if err != nil {
		if errors.Is(err, service.ErrUploadSigningDisabled) {
			respondError(c, http.StatusServiceUnavailable, "upload signing is not configured")
			return
		}
		a.logError(c, "failed to sign upload", err)
		respondError(c, http.StatusInternalServerError, "failed to sign upload")
		return
	}
	c.JSON(http.StatusOK, credentials)
}

// UploadFile 处理图片上传请求，供未接入 CDN 的部署使用
func (a *API) UploadFile(c *gin.Context) {
	if a.uploads == nil {
		respondError(c, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if file.Size > maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "file could not be read")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "file could not be read")
		return
	}
	if len(data) > maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	// 通过解码图片头判断真实格式，而不是信任客户端的 Content-Type
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		respondError(c, http.StatusBadRequest, "only jpeg, png, gif and webp images are allowed")
		return
	}

	key := fmt.Sprintf("%s/%s.%s", time.Now().UTC().Format("200601"), uuid.NewString(), format)
	url, err := a.uploads.Save(c.Request.Context(), key, "image/"+format, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		a.logError(c, "failed to store upload", err, "key", key)
		respondError(c, http.StatusInternalServerError, "failed to store file")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    url,
		"width":  cfg.Width,
		"height": cfg.Height,
	})
}
