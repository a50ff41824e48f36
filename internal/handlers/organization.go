package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
	"github.com/alflem/onboarding-api/internal/seed"
)

// OrganizationHandler serves the super-admin organization surface.
type OrganizationHandler struct {
	orgRepo repository.OrganizationRepository
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgRepo repository.OrganizationRepository) *OrganizationHandler {
	return &OrganizationHandler{orgRepo: orgRepo}
}

// ListOrganizations returns all organizations.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.orgRepo.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch organizations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// CreateOrganization provisions an organization together with its
// checklist and the default template.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	type CreateOrganizationRequest struct {
		Name         string `json:"name" binding:"required,max=255"`
		BuddyEnabled *bool  `json:"buddy_enabled"`
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if _, err := h.orgRepo.FindByName(req.Name); err == nil {
		apierrors.Conflict(c, "Organization name is already taken")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.InternalError(c, "Failed to create organization")
		return
	}

	org := models.Organization{Name: req.Name, BuddyEnabled: true}
	if req.BuddyEnabled != nil {
		org.BuddyEnabled = *req.BuddyEnabled
	}
	if err := h.orgRepo.Create(&org, seed.DefaultTemplate()); err != nil {
		apierrors.InternalError(c, "Failed to create organization")
		return
	}

	c.JSON(http.StatusCreated, org)
}

// GetOrganization returns one organization.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, ok := h.loadOrganization(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, org)
}

// UpdateOrganization renames an organization or toggles its buddy
// support.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	org, ok := h.loadOrganization(c)
	if !ok {
		return
	}

	type UpdateOrganizationRequest struct {
		Name         *string `json:"name" binding:"omitempty,max=255"`
		BuddyEnabled *bool   `json:"buddy_enabled"`
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Name != nil && *req.Name != org.Name {
		if _, err := h.orgRepo.FindByName(*req.Name); err == nil {
			apierrors.Conflict(c, "Organization name is already taken")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.InternalError(c, "Failed to update organization")
			return
		}
		org.Name = *req.Name
	}
	if req.BuddyEnabled != nil {
		org.BuddyEnabled = *req.BuddyEnabled
	}

	if err := h.orgRepo.Update(org); err != nil {
		apierrors.InternalError(c, "Failed to update organization")
		return
	}
	c.JSON(http.StatusOK, org)
}

// DeleteOrganization removes an organization with its template, users,
// preparations and progress rows in one transaction.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	org, ok := h.loadOrganization(c)
	if !ok {
		return
	}

	if err := h.orgRepo.Delete(org.ID); err != nil {
		apierrors.InternalError(c, "Failed to delete organization")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})
}

func (h *OrganizationHandler) loadOrganization(c *gin.Context) (*models.Organization, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return nil, false
	}

	org, err := h.orgRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Organization not found")
			return nil, false
		}
		apierrors.InternalError(c, "Failed to load organization")
		return nil, false
	}
	return org, true
}
