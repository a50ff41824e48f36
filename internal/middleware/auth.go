package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/alflem/onboarding-api/internal/constants"
	"github.com/alflem/onboarding-api/internal/database"
	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/models"
)

// AuthContext is the per-request caller identity, derived once from the
// session and attached to the gin context. Handlers never touch the
// session directly.
type AuthContext struct {
	UserID         uint64
	Role           models.UserRole
	OrganizationID uint64
}

// IsAdmin reports whether the caller holds ADMIN or SUPER_ADMIN.
func (a AuthContext) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// RequireAuth resolves the session into an AuthContext and rejects
// unauthenticated requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.SessionKeyUserID)
		if raw == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, ok := toUint64(raw)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAuth, AuthContext{
			UserID:         user.ID,
			Role:           user.Role,
			OrganizationID: user.OrganizationID,
		})
		c.Next()
	}
}

// GetAuth retrieves the caller identity from the gin context.
func GetAuth(c *gin.Context) (AuthContext, bool) {
	raw, exists := c.Get(constants.ContextKeyAuth)
	if !exists {
		return AuthContext{}, false
	}
	auth, ok := raw.(AuthContext)
	return auth, ok
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}
