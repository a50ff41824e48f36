package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/dto"
	apierrors "github.com/alflem/onboarding-api/internal/errors"
	"github.com/alflem/onboarding-api/internal/middleware"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
	"github.com/alflem/onboarding-api/internal/services"
	"github.com/alflem/onboarding-api/internal/utils"
)

// EmployeeHandler serves the admin roster: listing, removal and buddy
// assignment.
type EmployeeHandler struct {
	userRepo     repository.UserRepository
	buddyService *services.BuddyService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(userRepo repository.UserRepository, buddyService *services.BuddyService) *EmployeeHandler {
	return &EmployeeHandler{
		userRepo:     userRepo,
		buddyService: buddyService,
	}
}

// ListEmployees returns the caller's organization roster with pagination.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)
	params := utils.GetPaginationParams(c)

	users, total, err := h.userRepo.ListByOrganization(auth.OrganizationID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch employees")
		return
	}

	employees := make([]dto.EmployeeDTO, len(users))
	for i, user := range users {
		employees[i] = dto.ToEmployeeDTO(user)
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": employees,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetEmployee returns one employee of the caller's organization.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	employee, ok := h.loadEmployee(c, auth)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeDTO(*employee))
}

// DeleteEmployee removes an employee together with their progress rows,
// clearing any buddy references pointing at them.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	employee, ok := h.loadEmployee(c, auth)
	if !ok {
		return
	}
	if employee.ID == auth.UserID {
		apierrors.BadRequest(c, "Cannot delete your own account")
		return
	}

	if err := h.userRepo.Delete(employee.ID); err != nil {
		apierrors.InternalError(c, "Failed to delete employee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}

// AssignBuddy sets or clears an employee's buddy. A null buddy_id
// unassigns.
func (h *EmployeeHandler) AssignBuddy(c *gin.Context) {
	auth, _ := middleware.GetAuth(c)

	employeeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee ID")
		return
	}

	type AssignBuddyRequest struct {
		BuddyID *uint64 `json:"buddy_id"`
	}

	var req AssignBuddyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	employee, err := h.buddyService.AssignBuddy(auth.OrganizationID, employeeID, auth.Role == models.RoleSuperAdmin, req.BuddyID)
	if err != nil {
		respondBuddyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeDTO(*employee))
}

func (h *EmployeeHandler) loadEmployee(c *gin.Context, auth middleware.AuthContext) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee ID")
		return nil, false
	}

	employee, err := h.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Employee not found")
			return nil, false
		}
		apierrors.InternalError(c, "Failed to load employee")
		return nil, false
	}
	if auth.Role != models.RoleSuperAdmin && employee.OrganizationID != auth.OrganizationID {
		apierrors.Forbidden(c, "Employee belongs to another organization")
		return nil, false
	}
	return employee, true
}

func respondBuddyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPersonNotFound):
		apierrors.NotFound(c, "Person not found")
	case errors.Is(err, services.ErrPreparationNotFound):
		apierrors.NotFound(c, "Buddy preparation not found")
	case errors.Is(err, services.ErrBuddyNotFound):
		apierrors.NotFound(c, "Buddy not found")
	case errors.Is(err, services.ErrRowsNotOwned):
		apierrors.Forbidden(c, "Rows belong to another organization")
	case errors.Is(err, services.ErrBuddyOtherOrganization):
		apierrors.Forbidden(c, "Buddy belongs to another organization")
	case errors.Is(err, services.ErrBuddyDisabled):
		apierrors.Forbidden(c, "Buddy support is disabled for this organization")
	case errors.Is(err, services.ErrNotPersonsBuddy):
		apierrors.Forbidden(c, "You are not this person's buddy")
	case errors.Is(err, services.ErrNotBuddyTask):
		apierrors.BadRequest(c, "Task is not a buddy task")
	case errors.Is(err, services.ErrProgressNotTracked):
		apierrors.NotFound(c, "No progress is tracked for this task")
	default:
		apierrors.InternalError(c, "")
	}
}
