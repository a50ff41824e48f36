package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alflem/onboarding-api/internal/constants"
	"github.com/alflem/onboarding-api/internal/database"
	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/models"
)

// RequireTemplateAccess loads the checklist named by :id and verifies the
// caller's organization owns it. SUPER_ADMIN bypasses the organization
// check entirely.
func RequireTemplateAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid template ID")
			c.Abort()
			return
		}

		auth, ok := GetAuth(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var checklist models.Checklist
		if err := database.GetDB().Preload("Organization").First(&checklist, templateID).Error; err != nil {
			apierrors.NotFound(c, "Template not found")
			c.Abort()
			return
		}

		if auth.Role != models.RoleSuperAdmin && checklist.OrganizationID != auth.OrganizationID {
			apierrors.Forbidden(c, "Template belongs to another organization")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTemplate, checklist)
		c.Next()
	}
}

// GetTemplate retrieves the checklist loaded by RequireTemplateAccess.
func GetTemplate(c *gin.Context) (models.Checklist, bool) {
	raw, exists := c.Get(constants.ContextKeyTemplate)
	if !exists {
		return models.Checklist{}, false
	}
	checklist, ok := raw.(models.Checklist)
	return checklist, ok
}
