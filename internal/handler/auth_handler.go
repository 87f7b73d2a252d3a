package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/inkpost/internal/auth"
	"github.com/inkpost/internal/db"
	"gorm.io/gorm"
)

const (
	identityContextKey = "__identity"
	sessionTokenCookie = "__session"

	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	sessionImageURLKey = "image_url"
)

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AttachIdentity resolves the caller from an identity-provider token or, failing that,
// from the local login session. It never rejects a request.
func (a *API) AttachIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := a.identityFromToken(c); ok {
			c.Set(identityContextKey, identity)
		} else if identity, ok := identityFromSession(c); ok {
			c.Set(identityContextKey, identity)
		}
		c.Next()
	}
}

// RequireIdentity aborts with 401 when AttachIdentity found nobody.
func (a *API) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			respondError(c, http.StatusUnauthorized, "sign in required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *API) identityFromToken(c *gin.Context) (auth.Identity, bool) {
	if a.verifier == nil {
		return auth.Identity{}, false
	}

	token := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token == "" {
		if cookie, err := c.Cookie(sessionTokenCookie); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return auth.Identity{}, false
	}

	identity, err := a.verifier.Verify(token)
	if err != nil {
		a.logger.DebugContext(c.Request.Context(), "ignoring identity token", "error", err)
		return auth.Identity{}, false
	}
	return identity, true
}

func identityFromSession(c *gin.Context) (auth.Identity, bool) {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return auth.Identity{}, false
	}

	session := sessions.Default(c)
	username, _ := session.Get(sessionUsernameKey).(string)
	if username == "" {
		return auth.Identity{}, false
	}
	imageURL, _ := session.Get(sessionImageURLKey).(string)

	return auth.Identity{Username: username, ImageURL: imageURL, Source: auth.SourceSession}, true
}

func identityFrom(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}

// CurrentUser returns the signed-in identity.
func (a *API) CurrentUser(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondMessage(c, http.StatusBadRequest, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": identity})
}

// Login 处理本地账号登录，成功后写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	var user db.User
	if err := a.db.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(payload.Username)).
		First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.logError(c, "failed to load user", err)
		}
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if !user.CheckPassword(payload.Password) {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	session.Set(sessionImageURLKey, user.ImageURL)
	if err := session.Save(); err != nil {
		a.logError(c, "failed to save session", err)
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": auth.Identity{
		Username: user.Username,
		ImageURL: user.ImageURL,
		Source:   auth.SourceSession,
	}})
}

// Logout 清除本地会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.logError(c, "failed to clear session", err)
	}
	c.Status(http.StatusNoContent)
}
