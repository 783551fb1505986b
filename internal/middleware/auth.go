package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
)

const (
	// ContextKeyUser is the Gin context key for the resolved user.
	ContextKeyUser = "auth_user"
	// ContextKeyClaims is the Gin context key for JWT claims (token paths only).
	ContextKeyClaims = "claims"

	// SessionCookie is the cookie name carrying the session JWT for the
	// server-rendered web client.
	SessionCookie = "session"

	// HeaderUserID is the legacy Mini-App identity header, always paired
	// with HeaderDeviceID.
	HeaderUserID = "X-User-ID"
	// HeaderDeviceID carries the client's device fingerprint.
	HeaderDeviceID = "X-Device-ID"
)

// UserSource loads and device-binds identities.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	BindDevice(ctx context.Context, userID int64, deviceHash string) error
}

// RequireAuth resolves the caller's identity from, in order: a bearer token,
// the session cookie, or the legacy numeric user-id header. Token identities
// are additionally checked against the stored current JTI, so a newer login
// invalidates every older token for the same account.
func RequireAuth(authService *service.AuthService, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr != "" {
			claims, err := authService.ValidateToken(tokenStr)
			if err != nil {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
				return
			}
			if err := authService.ValidateSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
				if errors.Is(err, service.ErrSessionSuperseded) {
					response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionSuperseded)
					return
				}
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			user, err := users.GetByID(c.Request.Context(), claims.UserID)
			if err != nil {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
				return
			}
			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyUser, user)
			c.Next()
			return
		}

		// Legacy Mini-App path: numeric identity header. The device gate
		// downstream is what makes this path trustworthy.
		idHeader := c.GetHeader(HeaderUserID)
		if idHeader == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		userID, err := strconv.ParseInt(idHeader, 10, 64)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if c.GetHeader(HeaderDeviceID) == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// GetUser retrieves the resolved user from the Gin context.
func GetUser(c *gin.Context) *model.User {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := val.(*model.User)
	if !ok {
		return nil
	}
	return user
}

// GetClaims retrieves the JWT claims from the Gin context, if the request
// was token-authenticated.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
