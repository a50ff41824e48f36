package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alflem/onboarding-api/internal/constants"
	"github.com/alflem/onboarding-api/internal/database"
	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/models"
)

// RequireCategoryAccess loads the category named by :id and verifies
// ownership transitively through its checklist.
func RequireCategoryAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid category ID")
			c.Abort()
			return
		}

		auth, ok := GetAuth(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var category models.Category
		if err := database.GetDB().Preload("Checklist").First(&category, categoryID).Error; err != nil {
			apierrors.NotFound(c, "Category not found")
			c.Abort()
			return
		}

		if auth.Role != models.RoleSuperAdmin && category.Checklist.OrganizationID != auth.OrganizationID {
			apierrors.Forbidden(c, "Category belongs to another organization")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyCategory, category)
		c.Next()
	}
}

// GetCategory retrieves the category loaded by RequireCategoryAccess.
func GetCategory(c *gin.Context) (models.Category, bool) {
	raw, exists := c.Get(constants.ContextKeyCategory)
	if !exists {
		return models.Category{}, false
	}
	category, ok := raw.(models.Category)
	return category, ok
}

// RequireTaskAccess loads the task named by :id and verifies ownership
// transitively: task -> category -> checklist -> organization.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		auth, ok := GetAuth(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().Preload("Category.Checklist").First(&task, taskID).Error; err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		if auth.Role != models.RoleSuperAdmin && task.Category.Checklist.OrganizationID != auth.OrganizationID {
			apierrors.Forbidden(c, "Task belongs to another organization")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess.
func GetTask(c *gin.Context) (models.Task, bool) {
	raw, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := raw.(models.Task)
	return task, ok
}
