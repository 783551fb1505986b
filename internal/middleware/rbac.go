package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/response"
)

// RequireStaff rejects requests from non-staff accounts.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !user.Role.IsStaff() {
			response.AbortFail(c, http.StatusForbidden, response.ErrStaffOnly)
			return
		}
		c.Next()
	}
}

// RequireOwner restricts a route to the owner account.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if user.Role != model.RoleOwner {
			response.AbortFail(c, http.StatusForbidden, response.ErrOwnerOnly)
			return
		}
		c.Next()
	}
}
