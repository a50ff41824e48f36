package repository

import (
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/seed"
	"github.com/alflem/onboarding-api/internal/utils"
)

// OrderUpdate names one row and the order value it must receive. Rows not
// listed in a reorder keep their previous order.
type OrderUpdate struct {
	ID    uint64 `json:"id" binding:"required"`
	Order int    `json:"order"`
}

// ImportTask and ImportCategory carry the rows of an uploaded checklist
// snapshot into the persistence layer.
type ImportTask struct {
	Title       string
	Description string
	Link        string
	Order       int
	IsBuddyTask bool
}

type ImportCategory struct {
	Name            string
	Order           int
	IsBuddyCategory bool
	Tasks           []ImportTask
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindPreAssignedRole looks up an elevated role reserved for an email
	FindPreAssignedRole(email string) (*models.PreAssignedRole, error)

	// CreateWithOnboarding creates the user inside a single transaction
	// together with everything signup provisions: the organization,
	// checklist and default template when the organization is new, the
	// user's progress rows for the current task set, and the link to a
	// matching active buddy preparation.
	CreateWithOnboarding(user *models.User, org *models.Organization, orgIsNew bool) error

	// ListByOrganization lists users of one organization with pagination
	ListByOrganization(organizationID uint64, params utils.PaginationParams) ([]models.User, int64, error)

	// Delete removes a user together with progress rows and buddy
	// references pointing at them
	Delete(id uint64) error

	// SetBuddy assigns or clears (nil) a user's buddy
	SetBuddy(userID uint64, buddyID *uint64) error
}

// ChecklistRepository defines the interface for checklist template data
// access, including the multi-row reorder, move, reset and import
// sequences. Every multi-row write runs in one transaction.
type ChecklistRepository interface {
	// FindByID loads a checklist with categories and tasks in order
	FindByID(id uint64) (*models.Checklist, error)

	// FindByOrganization loads an organization's checklist (nested, ordered)
	FindByOrganization(organizationID uint64) (*models.Checklist, error)

	// List returns all checklists with their organizations
	List() ([]models.Checklist, error)

	// CreateForOrganization provisions a checklist seeded from defs
	CreateForOrganization(organizationID uint64, defs []seed.CategoryDef) (*models.Checklist, error)

	// Delete removes a checklist and every category, task and progress row under it
	Delete(id uint64) error

	// ChecklistIDForCategories resolves the single checklist the given
	// categories belong to; errors when they span checklists
	ChecklistIDForCategories(ids []uint64) (uint64, error)

	// ChecklistIDForTasks resolves the single checklist the given tasks
	// belong to (transitively through their categories)
	ChecklistIDForTasks(ids []uint64) (uint64, error)

	// ReorderCategories persists exactly the listed order values
	ReorderCategories(updates []OrderUpdate) error

	// ReorderTasks persists exactly the listed order values
	ReorderTasks(updates []OrderUpdate) error

	// MoveTask re-homes a task to categoryID at position and compacts the
	// source and destination lists to dense zero-based sequences
	MoveTask(taskID, categoryID uint64, position int) error

	// Reset wipes all categories and tasks and recreates defs
	Reset(checklistID uint64, defs []seed.CategoryDef) error

	// ResetBuddy replaces only the buddy subset, reusing name-matching
	// categories and leaving regular tasks untouched
	ResetBuddy(checklistID uint64, defs []seed.CategoryDef) error

	// Import merges an uploaded snapshot per the recorded export type
	// ("regular", "buddy" or "all")
	Import(checklistID uint64, exportType string, categories []ImportCategory) error

	// NextCategoryOrder returns the append position for a new category
	NextCategoryOrder(checklistID uint64) (int, error)

	// NextTaskOrder returns the append position for a new task
	NextTaskOrder(categoryID uint64) (int, error)

	// DeleteCategory cascades to tasks and progress rows and compacts the
	// remaining sibling categories
	DeleteCategory(id uint64) error

	// DeleteTask cascades to progress rows and compacts the remaining
	// sibling tasks
	DeleteTask(id uint64) error
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create provisions an organization with its checklist seeded from defs
	Create(org *models.Organization, defs []seed.CategoryDef) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindByName finds an organization by name
	FindByName(name string) (*models.Organization, error)

	// List returns all organizations
	List() ([]models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// Delete removes an organization and all related data
	Delete(id uint64) error
}

// BuddyRepository defines the interface for buddy preparations, mentee
// listings and progress tracking for both real users and preparations.
type BuddyRepository interface {
	// CreatePreparation creates the placeholder plus progress rows for the
	// organization's current buddy tasks, in one transaction
	CreatePreparation(prep *models.BuddyPreparation) error

	// FindPreparation finds a preparation by ID
	FindPreparation(id uint64) (*models.BuddyPreparation, error)

	// ListPreparations lists an organization's preparations
	ListPreparations(organizationID uint64) ([]models.BuddyPreparation, error)

	// ListPreparationsByBuddy lists the preparations assigned to a buddy
	ListPreparationsByBuddy(buddyID uint64) ([]models.BuddyPreparation, error)

	// UpdatePreparation updates a preparation
	UpdatePreparation(prep *models.BuddyPreparation) error

	// DeactivatePreparation soft-deletes by flipping is_active off
	DeactivatePreparation(id uint64) error

	// ListMentees lists the real users mentored by a buddy
	ListMentees(buddyID uint64) ([]models.User, error)

	// TasksForOrganization returns the organization's tasks filtered by
	// the buddy flag, ordered by category order then task order
	TasksForOrganization(organizationID uint64, buddyTasks bool) ([]models.Task, error)

	// FindTask finds a task with its category preloaded
	FindTask(id uint64) (*models.Task, error)

	// ProgressForUser returns a user's progress rows with tasks preloaded
	ProgressForUser(userID uint64) ([]models.TaskProgress, error)

	// ProgressForPreparation returns a preparation's progress rows
	ProgressForPreparation(preparationID uint64) ([]models.BuddyPreparationTaskProgress, error)

	// SetUserProgress updates an existing progress row; gorm.ErrRecordNotFound
	// when the user never got a row for the task
	SetUserProgress(userID, taskID uint64, completed bool) error

	// SetPreparationProgress updates an existing preparation progress row
	SetPreparationProgress(preparationID, taskID uint64, completed bool) error
}
