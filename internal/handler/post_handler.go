package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/inkpost/internal/db"
	"github.com/inkpost/internal/service"
)

// maxPostBodyBytes caps the JSON body of a create request.
const maxPostBodyBytes = 1 << 20

var errInvalidList = errors.New("expected a string or an array of strings")

// stringList decodes either "a,b,c" or ["a","b","c"].
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = stringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errInvalidList
	}
	*l = many
	return nil
}

type postAuthorPayload struct {
	Username string `json:"username" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required"`
}

type createPostPayload struct {
	PostTitle   string             `json:"postTitle"`
	Audience    string             `json:"audience"`
	Content     string             `json:"content"`
	Tags        stringList         `json:"tags"`
	Readability string             `json:"readability"`
	Tone        string             `json:"tone"`
	FilePath    stringList         `json:"filePath"`
	Files       []string           `json:"files"`
	User        *postAuthorPayload `json:"user" binding:"required"`
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPostBodyBytes)

	var payload createPostPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		var validationErrs validator.ValidationErrors
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, "Request body is too large")
		case errors.Is(err, io.EOF):
			respondError(c, http.StatusBadRequest, "Values received are empty")
		case errors.As(err, &validationErrs):
			respondError(c, http.StatusBadRequest, "user.username and user.imageUrl are required")
		default:
			respondError(c, http.StatusBadRequest, "Invalid request body")
		}
		return
	}

	username := strings.TrimSpace(payload.User.Username)
	imageURL := strings.TrimSpace(payload.User.ImageURL)
	if username == "" || imageURL == "" {
		respondError(c, http.StatusBadRequest, "user.username and user.imageUrl are required")
		return
	}

	if identity, ok := identityFrom(c); ok && !identity.Matches(username) {
		respondError(c, http.StatusForbidden, "user does not match the signed-in account")
		return
	}

	audience, err := service.NormalizeChoice("audience", payload.Audience, service.Audiences)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	tone, err := service.NormalizeChoice("tone", payload.Tone, service.Tones)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	readability, err := service.NormalizeChoice("readability", payload.Readability, service.Readabilities)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	files := make([]string, 0, len(payload.FilePath)+len(payload.Files))
	files = append(files, payload.FilePath...)
	files = append(files, payload.Files...)

	post, err := a.posts.Create(c.Request.Context(), service.PostInput{
		PostTitle:       payload.PostTitle,
		Audience:        audience,
		Content:         payload.Content,
		Tags:            service.NormalizeTags(payload.Tags...),
		Readability:     readability,
		Tone:            tone,
		Files:           files,
		Author:          username,
		AuthorAvatarURL: imageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrAuthorRequired) {
			respondError(c, http.StatusBadRequest, "user.username and user.imageUrl are required")
			return
		}
		a.logError(c, "failed to save post", err, "author", username)
		respondError(c, http.StatusInternalServerError, "Failed to save post")
		return
	}

	a.metrics.PostCreated()
	a.logger.InfoContext(c.Request.Context(), "post created", "id", post.ID, "author", post.Author, "tags", len(post.Tags))
	c.JSON(http.StatusCreated, post)
}

// GetPost 获取单篇文章
func (a *API) GetPost(c *gin.Context) {
	post, ok := a.loadPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetPostHTML returns the post body rendered to sanitized HTML.
func (a *API) GetPostHTML(c *gin.Context) {
	post, ok := a.loadPost(c)
	if !ok {
		return
	}

	rendered, err := a.renderer.Render(post.Content)
	if err != nil {
		a.logError(c, "failed to render post", err, "id", post.ID)
		respondMessage(c, http.StatusInternalServerError, "Rendering post failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": post.ID, "html": rendered})
}

func (a *API) loadPost(c *gin.Context) (*db.Post, bool) {
	post, err := a.posts.Get(c.Request.Context(), c.Param("postID"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondMessage(c, http.StatusBadRequest, "Could not get post. Post ID is invalid")
			return nil, false
		}
		a.logError(c, "failed to fetch post", err)
		respondMessage(c, http.StatusBadRequest, "Fetching posts from DB failed")
		return nil, false
	}
	return post, true
}

// GetPosts 获取文章列表，可按 field/value 精确筛选
func (a *API) GetPosts(c *gin.Context) {
	filter, err := service.ParseFilter(c.Query("field"), c.Query("value"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "field must be one of audience, tone, readability, author, tag and value must be set")
		return
	}

	posts, err := a.posts.List(c.Request.Context(), filter)
	if err != nil {
		a.logError(c, "failed to list posts", err, "field", filter.Field)
		respondMessage(c, http.StatusBadRequest, "Fetching posts from DB failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetUserPosts lists every post written by the username in the path.
func (a *API) GetUserPosts(c *gin.Context) {
	posts, err := a.posts.ListByAuthor(c.Request.Context(), c.Param("username"))
	if err != nil {
		a.logError(c, "failed to list user posts", err, "username", c.Param("username"))
		respondMessage(c, http.StatusBadRequest, "User posts not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"userPosts": posts})
}
