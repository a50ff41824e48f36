package dto

import (
	"time"

	"github.com/alflem/onboarding-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Role           models.UserRole `json:"role"`
	OrganizationID uint64          `json:"organization_id"`
	BuddyID        *uint64         `json:"buddy_id,omitempty"`
}

// EmployeeDTO is a roster entry with the resolved buddy
type EmployeeDTO struct {
	UserDTO
	Buddy     *UserDTO  `json:"buddy,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		BuddyID:        user.BuddyID,
	}
}

// ToEmployeeDTO converts a User model with preloaded buddy to EmployeeDTO
func ToEmployeeDTO(user models.User) EmployeeDTO {
	dto := EmployeeDTO{
		UserDTO:   ToUserDTO(user),
		CreatedAt: user.CreatedAt,
	}
	if user.Buddy != nil {
		buddy := ToUserDTO(*user.Buddy)
		dto.Buddy = &buddy
	}
	return dto
}
