package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maarifahub/maarifa-backend/internal/middleware"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
)

// SubscriptionHandler handles paid course subscription requests and their
// admin review flow.
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
	mediaService        *service.MediaService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService, mediaService *service.MediaService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		mediaService:        mediaService,
	}
}

// Request godoc
// POST /api/v1/subscriptions
// Multipart form: course_id + receipt image. Creates a pending request.
func (h *SubscriptionHandler) Request(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.PostForm("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	receiptPath, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		failUpload(c, err)
		return
	}

	request, err := h.subscriptionService.Request(c.Request.Context(), user.ID, courseID, receiptPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"request": request})
}

// ListPending godoc
// GET /api/v1/dashboard/subscriptions/pending
func (h *SubscriptionHandler) ListPending(c *gin.Context) {
	requests, err := h.subscriptionService.ListPending(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}

// Approve godoc
// POST /api/v1/dashboard/subscriptions/:requestId/approve
// Grants course access and notifies the student. Only pending requests can
// be approved; anything else is a conflict.
func (h *SubscriptionHandler) Approve(c *gin.Context) {
	h.decide(c, h.subscriptionService.Approve)
}

// Reject godoc
// POST /api/v1/dashboard/subscriptions/:requestId/reject
func (h *SubscriptionHandler) Reject(c *gin.Context) {
	h.decide(c, h.subscriptionService.Reject)
}

func (h *SubscriptionHandler) decide(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error)) {
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	request, err := fn(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": request})
}

func failUpload(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
