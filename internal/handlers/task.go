package handlers

import (
	"errors"
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

// TaskHandler serves task CRUD, the bulk reorder and the cross-category
// move.
type TaskHandler struct {
	checklistService *services.ChecklistService
	checklistRepo    repository.ChecklistRepository
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(checklistService *services.ChecklistService, checklistRepo repository.ChecklistRepository) *TaskHandler {
	return &TaskHandler{
		checklistService: checklistService,
		checklistRepo:    checklistRepo,
	}
}

// CreateTask appends a task to a category at max(order)+1. The category
// must belong to the caller's organization.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	type CreateTaskRequest struct {
		CategoryID  uint64 `json:"category_id" binding:"required"`
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		Link        string `json:"link" binding:"omitempty,max=1024"`
		IsBuddyTask bool   `json:"is_buddy_task"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var category models.Category
	if err := database.GetDB().Preload("Checklist").First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Category not found")
			return
		}
		apierrors.InternalError(c, "Failed to load category")
		return
	}
	if auth.Role != models.RoleSuperAdmin && category.Checklist.OrganizationID != auth.OrganizationID {
		apierrors.Forbidden(c, "Category belongs to another organization")
		return
	}

	order, err := h.checklistRepo.NextTaskOrder(category.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to create task")
		return
	}

	task := models.Task{
		CategoryID:  category.ID,
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		Order:       order,
		IsBuddyTask: req.IsBuddyTask,
	}
	if err := database.GetDB().Create(&task).Error; err != nil {
		apierrors.InternalError(c, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(task))
}

// GetTask returns one task. Access was checked by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not loaded")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// UpdateTask edits a task's content fields. Order and category move
// through the reorder and move endpoints instead.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description"`
		Link        *string `json:"link" binding:"omitempty,max=1024"`
		IsBuddyTask *bool   `json:"is_buddy_task"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.IsBuddyTask != nil {
		updates["is_buddy_task"] = *req.IsBuddyTask
	}
	if len(updates) == 0 {
		apierrors.BadRequest(c, "No fields to update")
		return
	}

	if err := database.GetDB().Model(&task).Updates(updates).Error; err != nil {
		apierrors.InternalError(c, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// DeleteTask removes a task, cascades to its progress rows and compacts
// the remaining sibling orders.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	if err := h.checklistRepo.DeleteTask(task.ID); err != nil {
		apierrors.InternalError(c, "Failed to delete task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// ReorderTasks applies a batch of {id, order} pairs in one transaction.
// Every listed task must belong to the caller's organization; unlisted
// siblings keep their order.
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	type ReorderRequest struct {
		Items []repository.OrderUpdate `json:"items" binding:"required,dive"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.checklistService.ReorderTasks(scopeOf(auth), req.Items); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tasks reordered successfully"})
}

// MoveTask re-homes a task into another category at the requested
// position and compacts both sibling lists in one transaction.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	type MoveTaskRequest struct {
		CategoryID uint64 `json:"category_id" binding:"required"`
		Order      int    `json:"order"`
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Order < 0 {
		apierrors.BadRequest(c, "Order must not be negative")
		return
	}

	if err := h.checklistService.MoveTask(scopeOf(auth), task.ID, req.CategoryID, req.Order); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task moved successfully"})
}
