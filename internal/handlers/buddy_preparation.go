package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alflem/onboarding-api/internal/dto"
	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/middleware"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/services"
)

// BuddyPreparationHandler serves the admin surface for pre-hire buddy
// placeholders plus a buddy's own mentee overview.
type BuddyPreparationHandler struct {
	buddyService *services.BuddyService
}

// NewBuddyPreparationHandler creates a new BuddyPreparationHandler.
func NewBuddyPreparationHandler(buddyService *services.BuddyService) *BuddyPreparationHandler {
	return &BuddyPreparationHandler{buddyService: buddyService}
}

// ListPreparations returns the caller's organization preparations.
func (h *BuddyPreparationHandler) ListPreparations(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	preps, err := h.buddyService.ListPreparations(auth.OrganizationID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch buddy preparations")
		return
	}

	out := make([]dto.BuddyPreparationDTO, len(preps))
	for i, prep := range preps {
		out[i] = dto.ToBuddyPreparationDTO(prep)
	}
	c.JSON(http.StatusOK, gin.H{"preparations": out})
}

// CreatePreparation creates a placeholder for a not-yet-hired employee
// together with progress rows for the current buddy tasks.
func (h *BuddyPreparationHandler) CreatePreparation(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	var input services.PreparationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	prep, err := h.buddyService.CreatePreparation(auth.OrganizationID, input)
	if err != nil {
		respondBuddyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToBuddyPreparationDTO(*prep))
}

// UpdatePreparation edits a preparation's name, email or buddy.
func (h *BuddyPreparationHandler) UpdatePreparation(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	prepID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid preparation ID")
		return
	}

	var input services.PreparationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	prep, err := h.buddyService.UpdatePreparation(auth.OrganizationID, prepID, auth.Role == models.RoleSuperAdmin, input)
	if err != nil {
		respondBuddyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBuddyPreparationDTO(*prep))
}

// DeletePreparation deactivates a preparation, keeping its progress
// history.
func (h *BuddyPreparationHandler) DeletePreparation(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	prepID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid preparation ID")
		return
	}

	if err := h.buddyService.DeactivatePreparation(auth.OrganizationID, prepID, auth.Role == models.RoleSuperAdmin); err != nil {
		respondBuddyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Buddy preparation deactivated"})
}

// ListPeople returns the caller's mentees in three groups: real
// employees, active preparations and completed preparations.
func (h *BuddyPreparationHandler) ListPeople(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	people, err := h.buddyService.People(auth.UserID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch buddy people")
		return
	}
	c.JSON(http.StatusOK, people)
}
