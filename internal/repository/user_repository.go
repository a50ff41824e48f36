package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/seed"
	"github.com/alflem/onboarding-api/internal/utils"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateOrganization is returned when provisioning the organization fails inside the signup transaction.
	ErrCreateOrganization = errors.New("user repository: create organization failed")
	// ErrCreateUser is returned when creating the user row fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProgress is returned when bulk-creating progress rows fails inside the signup transaction.
	ErrCreateProgress = errors.New("user repository: create task progress failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindPreAssignedRole looks up a role reserved for an email
func (r *GormUserRepository) FindPreAssignedRole(email string) (*models.PreAssignedRole, error) {
	var pre models.PreAssignedRole
	if err := r.db.Where("email = ?", email).First(&pre).Error; err != nil {
		return nil, err
	}
	return &pre, nil
}

// CreateWithOnboarding runs the whole signup provisioning atomically.
func (r *GormUserRepository) CreateWithOnboarding(user *models.User, org *models.Organization, orgIsNew bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if orgIsNew {
			if err := tx.Create(org).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
			}
			checklist := &models.Checklist{OrganizationID: org.ID}
			if err := tx.Create(checklist).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
			}
			if err := seedTemplate(tx, checklist.ID, seed.DefaultTemplate()); err != nil {
				return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
			}
		}

		user.OrganizationID = org.ID

		// An active preparation with a matching email transfers its buddy
		// onto the new account; the preparation itself stays active until
		// an admin removes it.
		var prep models.BuddyPreparation
		prepErr := tx.Where(
			"organization_id = ? AND email = ? AND is_active = ? AND linked_user_id IS NULL",
			org.ID, user.Email, true,
		).First(&prep).Error
		if prepErr == nil {
			user.BuddyID = &prep.BuddyID
		} else if !errors.Is(prepErr, gorm.ErrRecordNotFound) {
			return prepErr
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		if prepErr == nil {
			if err := tx.Model(&models.BuddyPreparation{}).
				Where("id = ?", prep.ID).
				Update("linked_user_id", user.ID).Error; err != nil {
				return err
			}
		}

		// Progress rows cover the task set as it exists right now. Tasks
		// added later get no row for this user.
		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).
			Joins("JOIN categories ON categories.id = tasks.category_id AND categories.deleted_at IS NULL").
			Joins("JOIN checklists ON checklists.id = categories.checklist_id AND checklists.deleted_at IS NULL").
			Where("checklists.organization_id = ?", org.ID).
			Pluck("tasks.id", &taskIDs).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProgress, err)
		}

		if len(taskIDs) > 0 {
			progress := make([]models.TaskProgress, len(taskIDs))
			for i, taskID := range taskIDs {
				progress[i] = models.TaskProgress{UserID: user.ID, TaskID: taskID}
			}
			if err := tx.Create(&progress).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateProgress, err)
			}
		}

		return nil
	})
}

// ListByOrganization lists users of one organization with pagination
func (r *GormUserRepository) ListByOrganization(organizationID uint64, params utils.PaginationParams) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{}).Where("organization_id = ?", organizationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Preload("Buddy").
		Order("name ASC").
		Offset(params.Offset).Limit(params.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Delete removes a user, their progress rows, and references to them.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.TaskProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("buddy_id = ?", id).
			Update("buddy_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.BuddyPreparation{}).Where("linked_user_id = ?", id).
			Update("linked_user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// SetBuddy assigns or clears a user's buddy
func (r *GormUserRepository) SetBuddy(userID uint64, buddyID *uint64) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("buddy_id", buddyID).Error
}

// seedTemplate creates the categories and tasks of a template definition,
// orders following slice position. Shared with the checklist repository.
func seedTemplate(tx *gorm.DB, checklistID uint64, defs []seed.CategoryDef) error {
	for i, def := range defs {
		category := models.Category{
			ChecklistID:     checklistID,
			Name:            def.Name,
			Order:           i,
			IsBuddyCategory: def.IsBuddyCategory,
		}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		for j, taskDef := range def.Tasks {
			task := models.Task{
				CategoryID:  category.ID,
				Title:       taskDef.Title,
				Description: taskDef.Description,
				Link:        taskDef.Link,
				Order:       j,
				IsBuddyTask: taskDef.IsBuddyTask,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
