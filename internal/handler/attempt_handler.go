package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maarifahub/maarifa-backend/internal/middleware"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
	"github.com/maarifahub/maarifa-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AttemptHandler handles exam attempt lifecycle endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "attempt_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/exams/:examId/attempts
// Opens (or resumes) the caller's attempt and returns the shuffled paper.
func (h *AttemptHandler) Start(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, err := uuid.Parse(c.Param("examId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Exams that do not require a student name are commonly started with
	// no body at all.
	var req model.StartAttemptRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	paper, err := h.attemptService.Start(c.Request.Context(), examID, user.ID, req.StudentName)
	if err != nil {
		h.failStart(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": paper})
}

func (h *AttemptHandler) failStart(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrStudentNameRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrNameRequired)
	case errors.Is(err, service.ErrNoAccess):
		response.Fail(c, http.StatusForbidden, response.ErrNoAccess)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrAlreadySolved):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySolved)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Submit godoc
// POST /api/v1/attempts/:attemptId/submit
// Closes the attempt with the final answer map and returns the score.
// Resubmitting a completed attempt returns the stored result unchanged.
func (h *AttemptHandler) Submit(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), attemptID, user.ID, req.Answers)
	if err != nil {
		h.failSubmit(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// SubmitBeacon godoc
// POST /api/v1/attempts/:attemptId/beacon
// Best-effort submit path for navigator.sendBeacon on page close. The body
// is parsed leniently; a malformed or empty body submits whatever answers
// the server already knows (none) rather than failing the beacon.
func (h *AttemptHandler) SubmitBeacon(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Status(http.StatusNoContent)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	var req model.SubmitAttemptRequest
	if body, rerr := io.ReadAll(c.Request.Body); rerr == nil && len(body) > 0 {
		// Beacon payloads arrive as text/plain; ignore parse failures.
		_ = json.Unmarshal(body, &req)
	}

	// The sender has already left the page, so no outcome is reportable.
	// Log failures and reply empty regardless.
	if _, err := h.attemptService.Submit(c.Request.Context(), attemptID, user.ID, req.Answers); err != nil {
		h.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Beacon submit failed")
	}

	c.Status(http.StatusNoContent)
}

func (h *AttemptHandler) failSubmit(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotAttemptOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrSubmitDeadline):
		response.Fail(c, http.StatusConflict, response.ErrSubmitLate)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Result godoc
// GET /api/v1/attempts/:attemptId/result
// Returns the stored result of the caller's completed attempt.
func (h *AttemptHandler) Result(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.Result(c.Request.Context(), attemptID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotAttemptOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListResults godoc
// GET /api/v1/dashboard/exams/:examId/attempts
// Lists every attempt on an exam for the staff dashboard.
func (h *AttemptHandler) ListResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("examId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, perPage := pageParams(c)
	attempts, total, err := h.attemptService.ListResults(c.Request.Context(), examID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// pageParams reads page/per_page query params with sane bounds.
func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "25"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}
	return page, perPage
}
