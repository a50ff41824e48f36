package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/middleware"
	"github.com/alflem/onboarding-api/internal/services"
)

// ChecklistHandler serves the per-person checklist views: the caller's
// own onboarding list and the buddy-task lists a buddy sees for their
// mentees.
type ChecklistHandler struct {
	buddyService *services.BuddyService
}

// NewChecklistHandler creates a new ChecklistHandler.
func NewChecklistHandler(buddyService *services.BuddyService) *ChecklistHandler {
	return &ChecklistHandler{buddyService: buddyService}
}

// MyChecklist returns the caller's own tasks with completion state.
// Buddy tasks never appear here.
func (h *ChecklistHandler) MyChecklist(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	view, err := h.buddyService.MyChecklist(auth.UserID, auth.OrganizationID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch checklist")
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetMyProgress toggles completion on one of the caller's own tasks.
func (h *ChecklistHandler) SetMyProgress(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	type ProgressRequest struct {
		TaskID    uint64 `json:"task_id" binding:"required"`
		Completed *bool  `json:"completed" binding:"required"`
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.buddyService.SetMyProgress(auth.UserID, req.TaskID, *req.Completed); err != nil {
		respondBuddyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Progress updated"})
}

// PersonChecklist returns the buddy-task list for one of the caller's
// mentees. ?type=preparation switches the id to a preparation.
func (h *ChecklistHandler) PersonChecklist(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	personID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid person ID")
		return
	}
	isPreparation := c.Query("type") == "preparation"

	view, err := h.buddyService.PersonChecklist(auth.UserID, auth.OrganizationID, personID, isPreparation)
	if err != nil {
		respondBuddyError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetPersonProgress toggles a buddy task for one of the caller's
// mentees. ?type=preparation switches the id to a preparation.
func (h *ChecklistHandler) SetPersonProgress(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	personID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid person ID")
		return
	}
	isPreparation := c.Query("type") == "preparation"

	type ProgressRequest struct {
		TaskID    uint64 `json:"task_id" binding:"required"`
		Completed *bool  `json:"completed" binding:"required"`
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.buddyService.SetPersonProgress(auth.UserID, auth.OrganizationID, personID, isPreparation, req.TaskID, *req.Completed); err != nil {
		respondBuddyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Progress updated"})
}
