package dto

import (
	"time"

	"github.com/alflem/onboarding-api/internal/models"
)

// ChecklistItemDTO is one task of a person's checklist view together with
// their completion state.
type ChecklistItemDTO struct {
	TaskDTO
	CategoryName string     `json:"category_name"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// PersonChecklistDTO is the checklist view served for one person, either
// a real user or a buddy preparation.
type PersonChecklistDTO struct {
	PersonID      uint64             `json:"person_id"`
	IsPreparation bool               `json:"is_preparation"`
	Items         []ChecklistItemDTO `json:"items"`
}

// BuddyPreparationDTO represents a preparation in API responses
type BuddyPreparationDTO struct {
	ID             uint64    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email,omitempty"`
	BuddyID        uint64    `json:"buddy_id"`
	OrganizationID uint64    `json:"organization_id"`
	IsActive       bool      `json:"is_active"`
	LinkedUserID   *uint64   `json:"linked_user_id,omitempty"`
	LinkedUser     *UserDTO  `json:"linked_user,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// BuddyPeopleDTO is a buddy's mentee overview: real employees, active
// preparations still waiting for an account, and preparations already
// linked to one.
type BuddyPeopleDTO struct {
	Employees             []UserDTO             `json:"employees"`
	ActivePreparations    []BuddyPreparationDTO `json:"active_preparations"`
	CompletedPreparations []BuddyPreparationDTO `json:"completed_preparations"`
}

// ToBuddyPreparationDTO converts a BuddyPreparation model to its DTO
func ToBuddyPreparationDTO(prep models.BuddyPreparation) BuddyPreparationDTO {
	dto := BuddyPreparationDTO{
		ID:             prep.ID,
		FirstName:      prep.FirstName,
		LastName:       prep.LastName,
		Email:          prep.Email,
		BuddyID:        prep.BuddyID,
		OrganizationID: prep.OrganizationID,
		IsActive:       prep.IsActive,
		LinkedUserID:   prep.LinkedUserID,
		CreatedAt:      prep.CreatedAt,
	}
	if prep.LinkedUser != nil {
		linked := ToUserDTO(*prep.LinkedUser)
		dto.LinkedUser = &linked
	}
	return dto
}
