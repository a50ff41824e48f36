package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/database"
	"github.com/alflem/onboarding-api/internal/dto"
	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/middleware"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
	"github.com/alflem/onboarding-api/internal/services"
)

// CategoryHandler serves category CRUD and the bulk reorder.
type CategoryHandler struct {
	checklistService *services.ChecklistService
	checklistRepo    repository.ChecklistRepository
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(checklistService *services.ChecklistService, checklistRepo repository.ChecklistRepository) *CategoryHandler {
	return &CategoryHandler{
		checklistService: checklistService,
		checklistRepo:    checklistRepo,
	}
}

// CreateCategory appends a category to the caller's organization
// template at max(order)+1.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	type CreateCategoryRequest struct {
		Name            string `json:"name" binding:"required,max=255"`
		IsBuddyCategory bool   `json:"is_buddy_category"`
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	checklist, err := h.checklistRepo.FindByOrganization(auth.OrganizationID)
	if err != nil {
		apierrors.NotFound(c, "Organization has no template")
		return
	}

	order, err := h.checklistRepo.NextCategoryOrder(checklist.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to create category")
		return
	}

	category := models.Category{
		ChecklistID:     checklist.ID,
		Name:            req.Name,
		Order:           order,
		IsBuddyCategory: req.IsBuddyCategory,
	}
	if err := database.GetDB().Create(&category).Error; err != nil {
		apierrors.InternalError(c, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(category))
}

// GetCategory returns one category with its tasks in order. Access was
// checked by RequireCategoryAccess.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, exists := middleware.GetCategory(c)
	if !exists {
		apierrors.InternalError(c, "Category not loaded")
		return
	}

	if err := database.GetDB().
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		First(&category, category.ID).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch category")
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(category))
}

// UpdateCategory renames a category or flips its buddy flag.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	category, exists := middleware.GetCategory(c)
	if !exists {
		apierrors.InternalError(c, "Category not loaded")
		return
	}

	type UpdateCategoryRequest struct {
		Name            *string `json:"name" binding:"omitempty,max=255"`
		IsBuddyCategory *bool   `json:"is_buddy_category"`
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IsBuddyCategory != nil {
		updates["is_buddy_category"] = *req.IsBuddyCategory
	}
	if len(updates) == 0 {
		apierrors.BadRequest(c, "No fields to update")
		return
	}

	if err := database.GetDB().Model(&category).Updates(updates).Error; err != nil {
		apierrors.InternalError(c, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(category))
}

// DeleteCategory removes a category, cascades to its tasks and their
// progress rows, and compacts the remaining sibling orders.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	category, exists := middleware.GetCategory(c)
	if !exists {
		apierrors.InternalError(c, "Category not loaded")
		return
	}

	if err := h.checklistRepo.DeleteCategory(category.ID); err != nil {
		apierrors.InternalError(c, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// ReorderCategories applies a batch of {id, order} pairs in one
// transaction. Every listed category must belong to the caller's
// organization; unlisted siblings keep their order.
func (h *CategoryHandler) ReorderCategories(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	type ReorderRequest struct {
		Items []repository.OrderUpdate `json:"items" binding:"required,dive"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.checklistService.ReorderCategories(scopeOf(auth), req.Items); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Categories reordered successfully"})
}
