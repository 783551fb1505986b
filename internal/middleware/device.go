package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/repository"
	"github.com/maarifahub/maarifa-backend/internal/response"
)

// RequireDevice enforces the one-device rule for student accounts. The first
// request carrying a fingerprint binds it; every later request must present
// the same value. Staff accounts log in with credentials and skip the gate.
func RequireDevice(users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if user.Role.IsStaff() {
			c.Next()
			return
		}

		deviceHash := c.GetHeader(HeaderDeviceID)
		if deviceHash == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if user.DeviceHash == nil {
			err := users.BindDevice(c.Request.Context(), user.ID, deviceHash)
			if err == nil {
				bound := deviceHash
				user.DeviceHash = &bound
				c.Next()
				return
			}
			if !errors.Is(err, repository.ErrDeviceAlreadyBound) {
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			// Lost a bind race; reload to learn the winning fingerprint.
			fresh, ferr := users.GetByID(c.Request.Context(), user.ID)
			if ferr != nil {
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			user = fresh
			c.Set(ContextKeyUser, user)
		}

		if user.DeviceHash == nil || *user.DeviceHash != deviceHash {
			response.AbortFail(c, http.StatusForbidden, response.ErrDeviceMismatch)
			return
		}
		c.Next()
	}
}
