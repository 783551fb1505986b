package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/middleware"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
	"github.com/maarifahub/maarifa-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	cfg         *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cfg:         cfg,
	}
}

// TelegramLogin godoc
// POST /api/v1/auth/telegram
// Upserts the student account for a Telegram identity and issues a session
// token. A fresh login supersedes every earlier token for the account.
func (h *AuthHandler) TelegramLogin(c *gin.Context) {
	var req model.TelegramLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.EnsureStudent(c.Request.Context(), req.TelegramID, req.Name)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateToken(c.Request.Context(), user.ID, user.Role)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.setSessionCookie(c, token)
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userPayload(user),
	})
}

// StaffLogin godoc
// POST /api/v1/auth/staff/login
// Validates username + password for teacher/admin/owner accounts.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req model.StaffLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.AuthenticateStaff(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateToken(c.Request.Context(), user.ID, user.Role)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.setSessionCookie(c, token)
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userPayload(user),
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Invalidates the caller's current session token.
func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": userPayload(user)})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.cfg.JWTExpiry.Seconds())
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)
}

func userPayload(user *model.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"name":        user.Name,
		"username":    user.Username,
		"role":        user.Role,
		"avatar_path": user.AvatarPath,
	}
}
