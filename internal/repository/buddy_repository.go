package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/models"
)

// GormBuddyRepository is a GORM implementation of BuddyRepository
type GormBuddyRepository struct {
	db *gorm.DB
}

// NewBuddyRepository creates a new BuddyRepository
func NewBuddyRepository(db *gorm.DB) BuddyRepository {
	return &GormBuddyRepository{db: db}
}

// CreatePreparation creates the placeholder plus progress rows for the
// organization's current buddy tasks.
func (r *GormBuddyRepository) CreatePreparation(prep *models.BuddyPreparation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prep).Error; err != nil {
			return err
		}

		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).
			Joins("JOIN categories ON categories.id = tasks.category_id AND categories.deleted_at IS NULL").
			Joins("JOIN checklists ON checklists.id = categories.checklist_id AND checklists.deleted_at IS NULL").
			Where("checklists.organization_id = ? AND tasks.is_buddy_task = ?", prep.OrganizationID, true).
			Pluck("tasks.id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			progress := make([]models.BuddyPreparationTaskProgress, len(taskIDs))
			for i, taskID := range taskIDs {
				progress[i] = models.BuddyPreparationTaskProgress{PreparationID: prep.ID, TaskID: taskID}
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindPreparation finds a preparation by ID
func (r *GormBuddyRepository) FindPreparation(id uint64) (*models.BuddyPreparation, error) {
	var prep models.BuddyPreparation
	if err := r.db.Preload("Buddy").Preload("LinkedUser").First(&prep, id).Error; err != nil {
		return nil, err
	}
	return &prep, nil
}

// ListPreparations lists an organization's preparations
func (r *GormBuddyRepository) ListPreparations(organizationID uint64) ([]models.BuddyPreparation, error) {
	var preps []models.BuddyPreparation
	if err := r.db.Preload("Buddy").Preload("LinkedUser").
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&preps).Error; err != nil {
		return nil, err
	}
	return preps, nil
}

// ListPreparationsByBuddy lists the preparations assigned to a buddy
func (r *GormBuddyRepository) ListPreparationsByBuddy(buddyID uint64) ([]models.BuddyPreparation, error) {
	var preps []models.BuddyPreparation
	if err := r.db.Preload("LinkedUser").
		Where("buddy_id = ?", buddyID).
		Order("created_at DESC").
		Find(&preps).Error; err != nil {
		return nil, err
	}
	return preps, nil
}

// UpdatePreparation updates a preparation
func (r *GormBuddyRepository) UpdatePreparation(prep *models.BuddyPreparation) error {
	return r.db.Save(prep).Error
}

// DeactivatePreparation soft-deletes by flipping is_active off
func (r *GormBuddyRepository) DeactivatePreparation(id uint64) error {
	return r.db.Model(&models.BuddyPreparation{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// ListMentees lists the real users mentored by a buddy
func (r *GormBuddyRepository) ListMentees(buddyID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("buddy_id = ?", buddyID).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// TasksForOrganization returns the organization's tasks filtered by the
// buddy flag, ordered by category order then task order.
func (r *GormBuddyRepository) TasksForOrganization(organizationID uint64, buddyTasks bool) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Preload("Category").
		Joins("JOIN categories ON categories.id = tasks.category_id AND categories.deleted_at IS NULL").
		Joins("JOIN checklists ON checklists.id = categories.checklist_id AND checklists.deleted_at IS NULL").
		Where("checklists.organization_id = ? AND tasks.is_buddy_task = ?", organizationID, buddyTasks).
		Order("categories.sort_order ASC, tasks.sort_order ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindTask finds a task with its category preloaded
func (r *GormBuddyRepository) FindTask(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Preload("Category").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ProgressForUser returns a user's progress rows
func (r *GormBuddyRepository) ProgressForUser(userID uint64) ([]models.TaskProgress, error) {
	var progress []models.TaskProgress
	if err := r.db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// ProgressForPreparation returns a preparation's progress rows
func (r *GormBuddyRepository) ProgressForPreparation(preparationID uint64) ([]models.BuddyPreparationTaskProgress, error) {
	var progress []models.BuddyPreparationTaskProgress
	if err := r.db.Where("preparation_id = ?", preparationID).Find(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// SetUserProgress updates an existing progress row. A user who never got
// a row for the task (added after provisioning) gets ErrRecordNotFound,
// not a fresh row.
func (r *GormBuddyRepository) SetUserProgress(userID, taskID uint64, completed bool) error {
	var row models.TaskProgress
	if err := r.db.Where("user_id = ? AND task_id = ?", userID, taskID).First(&row).Error; err != nil {
		return err
	}
	return r.db.Model(&row).Updates(map[string]interface{}{
		"completed":    completed,
		"completed_at": completedAt(completed),
	}).Error
}

// SetPreparationProgress updates an existing preparation progress row
func (r *GormBuddyRepository) SetPreparationProgress(preparationID, taskID uint64, completed bool) error {
	var row models.BuddyPreparationTaskProgress
	if err := r.db.Where("preparation_id = ? AND task_id = ?", preparationID, taskID).First(&row).Error; err != nil {
		return err
	}
	return r.db.Model(&row).Updates(map[string]interface{}{
		"completed":    completed,
		"completed_at": completedAt(completed),
	}).Error
}

func completedAt(completed bool) *time.Time {
	if !completed {
		return nil
	}
	now := time.Now()
	return &now
}
