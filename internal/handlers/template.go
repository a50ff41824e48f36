package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alflem/onboarding-api/internal/dto"
	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/middleware"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/services"
)

// TemplateHandler serves the checklist template surface: nested reads,
// provisioning, reset and the import/export snapshots.
type TemplateHandler struct {
	checklistService *services.ChecklistService
	authService      *services.AuthService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(checklistService *services.ChecklistService, authService *services.AuthService) *TemplateHandler {
	return &TemplateHandler{
		checklistService: checklistService,
		authService:      authService,
	}
}

// ListTemplates returns the templates visible to the caller. Admins see
// their own organization's template, super admins see all of them.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	checklists, err := h.checklistService.List(scopeOf(auth))
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch templates")
		return
	}

	templates := make([]dto.TemplateDTO, len(checklists))
	for i, checklist := range checklists {
		templates[i] = dto.ToTemplateDTO(checklist)
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// CreateTemplate provisions a template for the caller's organization,
// seeded with the default categories and tasks.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	checklist, err := h.checklistService.Create(auth.OrganizationID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateExists) {
			apierrors.Conflict(c, "Organization already has a template")
			return
		}
		apierrors.InternalError(c, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTemplateDTO(*checklist))
}

// GetTemplate returns one template with its categories and tasks in
// order. Access was checked by RequireTemplateAccess.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	checklist, exists := middleware.GetTemplate(c)
	if !exists {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	// Reload nested so categories and tasks come back ordered
	full, err := h.checklistService.Get(checklist.ID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTemplateDTO(*full))
}

// DeleteTemplate removes a template with everything under it.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	checklist, exists := middleware.GetTemplate(c)
	if !exists {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	if err := h.checklistService.Delete(checklist.ID); err != nil {
		apierrors.InternalError(c, "Failed to delete template")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

// ResetTemplate wipes the template and reseeds the default categories
// and tasks in one transaction.
func (h *TemplateHandler) ResetTemplate(c *gin.Context) {
	checklist, exists := middleware.GetTemplate(c)
	if !exists {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	if err := h.checklistService.Reset(checklist.ID); err != nil {
		apierrors.InternalError(c, "Failed to reset template")
		return
	}

	full, err := h.checklistService.Get(checklist.ID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTemplateDTO(*full))
}

// ResetBuddyTemplate replaces only the buddy tasks with the default
// buddy set, leaving regular tasks untouched.
func (h *TemplateHandler) ResetBuddyTemplate(c *gin.Context) {
	checklist, exists := middleware.GetTemplate(c)
	if !exists {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	if err := h.checklistService.ResetBuddy(checklist.ID); err != nil {
		apierrors.InternalError(c, "Failed to reset buddy tasks")
		return
	}

	full, err := h.checklistService.Get(checklist.ID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTemplateDTO(*full))
}

// ExportTemplate serves a downloadable snapshot of the template,
// filtered by ?type=all|regular|buddy.
func (h *TemplateHandler) ExportTemplate(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)
	checklist, exists := middleware.GetTemplate(c)
	if !exists {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	exportType := c.DefaultQuery("type", dto.ExportTypeAll)

	exportedBy := ""
	if user, err := h.authService.GetUser(auth.UserID); err == nil {
		exportedBy = user.Email
	}

	doc, err := h.checklistService.Export(checklist.ID, exportType, exportedBy)
	if err != nil {
		if errors.Is(err, services.ErrInvalidExportType) {
			apierrors.BadRequest(c, "Invalid export type")
			return
		}
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ImportTemplate merges an uploaded snapshot into the caller's
// organization template per the snapshot's recorded export type.
func (h *TemplateHandler) ImportTemplate(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	var doc dto.ExportDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		apierrors.BadRequest(c, "Invalid snapshot body")
		return
	}

	if err := h.checklistService.Import(auth.OrganizationID, doc); err != nil {
		if errors.Is(err, services.ErrInvalidExportType) {
			apierrors.BadRequest(c, "Snapshot has an invalid export type")
			return
		}
		apierrors.InternalError(c, "Failed to import snapshot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Snapshot imported successfully"})
}

func scopeOf(auth middleware.AuthContext) services.Scope {
	return services.Scope{
		OrganizationID: auth.OrganizationID,
		SuperAdmin:     auth.Role == models.RoleSuperAdmin,
	}
}

func respondTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		apierrors.NotFound(c, "Template not found")
	case errors.Is(err, services.ErrRowsNotOwned):
		apierrors.Forbidden(c, "Rows belong to another organization")
	case errors.Is(err, services.ErrNoUpdates):
		apierrors.BadRequest(c, "No rows to update")
	case errors.Is(err, services.ErrCrossChecklist):
		apierrors.BadRequest(c, "Task and category belong to different templates")
	default:
		apierrors.InternalError(c, "")
	}
}
