package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/middleware"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
)

// MediaHandler handles file uploads and serving of stored media.
type MediaHandler struct {
	mediaService *service.MediaService
	userService  *service.UserService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService, userService *service.UserService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		userService:  userService,
	}
}

// Upload godoc
// POST /api/v1/dashboard/media
// Stores a staff-uploaded file (question images and similar) and returns
// the stored name for embedding.
func (h *MediaHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	name, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		failUpload(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"path": name})
}

// UploadAvatar godoc
// POST /api/v1/profile/avatar
// Stores the caller's avatar image and records it on the profile.
func (h *MediaHandler) UploadAvatar(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	name, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		failUpload(c, err)
		return
	}

	if err := h.userService.UpdateAvatar(c.Request.Context(), user.ID, name); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"avatar_path": name})
}

// Serve godoc
// GET /api/v1/media/:name
// Streams a stored file. The name is reduced to its basename, so path
// traversal cannot escape the upload directory.
func (h *MediaHandler) Serve(c *gin.Context) {
	path, contentType, err := h.mediaService.Open(c.Param("name"))
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Type", contentType)
	c.File(path)
}
