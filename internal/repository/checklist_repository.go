package repository

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/seed"
)

// GormChecklistRepository is a GORM implementation of ChecklistRepository
type GormChecklistRepository struct {
	db *gorm.DB
}

// ErrMixedSiblings is returned when a bulk operation names rows from more
// than one sibling set.
var ErrMixedSiblings = errors.New("checklist repository: rows span multiple checklists")

// NewChecklistRepository creates a new ChecklistRepository
func NewChecklistRepository(db *gorm.DB) ChecklistRepository {
	return &GormChecklistRepository{db: db}
}

func orderedNested(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Categories.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		})
}

// FindByID loads a checklist with categories and tasks in order
func (r *GormChecklistRepository) FindByID(id uint64) (*models.Checklist, error) {
	var checklist models.Checklist
	if err := orderedNested(r.db).Preload("Organization").First(&checklist, id).Error; err != nil {
		return nil, err
	}
	return &checklist, nil
}

// FindByOrganization loads an organization's checklist
func (r *GormChecklistRepository) FindByOrganization(organizationID uint64) (*models.Checklist, error) {
	var checklist models.Checklist
	if err := orderedNested(r.db).Preload("Organization").
		Where("organization_id = ?", organizationID).
		First(&checklist).Error; err != nil {
		return nil, err
	}
	return &checklist, nil
}

// List returns all checklists with their organizations
func (r *GormChecklistRepository) List() ([]models.Checklist, error) {
	var checklists []models.Checklist
	if err := r.db.Preload("Organization").Find(&checklists).Error; err != nil {
		return nil, err
	}
	return checklists, nil
}

// CreateForOrganization provisions a checklist seeded from defs
func (r *GormChecklistRepository) CreateForOrganization(organizationID uint64, defs []seed.CategoryDef) (*models.Checklist, error) {
	checklist := &models.Checklist{OrganizationID: organizationID}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(checklist).Error; err != nil {
			return err
		}
		return seedTemplate(tx, checklist.ID, defs)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(checklist.ID)
}

// Delete removes a checklist and everything under it
func (r *GormChecklistRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := wipeChecklist(tx, id, "all"); err != nil {
			return err
		}
		return tx.Delete(&models.Checklist{}, id).Error
	})
}

// ChecklistIDForCategories resolves the single checklist the categories belong to
func (r *GormChecklistRepository) ChecklistIDForCategories(ids []uint64) (uint64, error) {
	var checklistIDs []uint64
	if err := r.db.Model(&models.Category{}).
		Where("id IN ?", ids).
		Distinct().
		Pluck("checklist_id", &checklistIDs).Error; err != nil {
		return 0, err
	}
	if len(checklistIDs) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	if len(checklistIDs) > 1 {
		return 0, ErrMixedSiblings
	}
	return checklistIDs[0], nil
}

// ChecklistIDForTasks resolves the single checklist the tasks belong to
func (r *GormChecklistRepository) ChecklistIDForTasks(ids []uint64) (uint64, error) {
	var checklistIDs []uint64
	if err := r.db.Model(&models.Task{}).
		Joins("JOIN categories ON categories.id = tasks.category_id AND categories.deleted_at IS NULL").
		Where("tasks.id IN ?", ids).
		Distinct().
		Pluck("categories.checklist_id", &checklistIDs).Error; err != nil {
		return 0, err
	}
	if len(checklistIDs) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	if len(checklistIDs) > 1 {
		return 0, ErrMixedSiblings
	}
	return checklistIDs[0], nil
}

// ReorderCategories persists exactly the listed order values. Rows not
// listed keep their previous order; the whole batch is one transaction.
func (r *GormChecklistRepository) ReorderCategories(updates []OrderUpdate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&models.Category{}).
				Where("id = ?", u.ID).
				Update("sort_order", u.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderTasks persists exactly the listed order values
func (r *GormChecklistRepository) ReorderTasks(updates []OrderUpdate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&models.Task{}).
				Where("id = ?", u.ID).
				Update("sort_order", u.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveTask re-homes a task and resequences the source and destination
// lists to dense zero-based order, all in one transaction.
func (r *GormChecklistRepository) MoveTask(taskID, categoryID uint64, position int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return err
		}
		sourceCategoryID := task.CategoryID

		var destTasks []models.Task
		if err := tx.Where("category_id = ? AND id <> ?", categoryID, taskID).
			Order("sort_order ASC").
			Find(&destTasks).Error; err != nil {
			return err
		}

		if position < 0 {
			position = 0
		}
		if position > len(destTasks) {
			position = len(destTasks)
		}

		if err := tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			Updates(map[string]interface{}{"category_id": categoryID, "sort_order": position}).Error; err != nil {
			return err
		}

		// Destination: everything after the insertion point shifts down.
		for i, t := range destTasks {
			order := i
			if i >= position {
				order = i + 1
			}
			if t.Order == order {
				continue
			}
			if err := tx.Model(&models.Task{}).
				Where("id = ?", t.ID).
				Update("sort_order", order).Error; err != nil {
				return err
			}
		}

		// Source list closes the gap the task left behind.
		if sourceCategoryID != categoryID {
			if err := resequenceTasks(tx, sourceCategoryID); err != nil {
				return err
			}
		}

		return nil
	})
}

// Reset wipes the whole template and recreates defs
func (r *GormChecklistRepository) Reset(checklistID uint64, defs []seed.CategoryDef) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := wipeChecklist(tx, checklistID, "all"); err != nil {
			return err
		}
		return seedTemplate(tx, checklistID, defs)
	})
}

// ResetBuddy replaces only the buddy subset. Regular tasks keep their id,
// title and order; categories whose name matches a default are reused and
// new categories are appended after the current maximum order.
func (r *GormChecklistRepository) ResetBuddy(checklistID uint64, defs []seed.CategoryDef) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := wipeChecklist(tx, checklistID, "buddy"); err != nil {
			return err
		}
		return mergeTemplate(tx, checklistID, toImportCategories(defs), false)
	})
}

// Import merges an uploaded snapshot per the recorded export type.
func (r *GormChecklistRepository) Import(checklistID uint64, exportType string, categories []ImportCategory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := wipeChecklist(tx, checklistID, exportType); err != nil {
			return err
		}
		return mergeTemplate(tx, checklistID, categories, exportType == "all")
	})
}

// NextCategoryOrder returns the append position for a new category
func (r *GormChecklistRepository) NextCategoryOrder(checklistID uint64) (int, error) {
	return nextOrder(r.db.Model(&models.Category{}).Where("checklist_id = ?", checklistID))
}

// NextTaskOrder returns the append position for a new task
func (r *GormChecklistRepository) NextTaskOrder(categoryID uint64) (int, error) {
	return nextOrder(r.db.Model(&models.Task{}).Where("category_id = ?", categoryID))
}

// DeleteCategory cascades to tasks and progress rows and compacts the
// remaining sibling categories.
func (r *GormChecklistRepository) DeleteCategory(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}

		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).
			Where("category_id = ?", id).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if err := deleteTasksWithProgress(tx, taskIDs); err != nil {
			return err
		}

		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return err
		}

		return resequenceCategories(tx, category.ChecklistID)
	})
}

// DeleteTask cascades to progress rows and compacts the remaining sibling
// tasks.
func (r *GormChecklistRepository) DeleteTask(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		if err := deleteTasksWithProgress(tx, []uint64{id}); err != nil {
			return err
		}
		return resequenceTasks(tx, task.CategoryID)
	})
}

// wipeChecklist deletes the tasks and categories selected by scope
// ("all", "regular" or "buddy") together with their progress rows.
// Partial scopes only remove categories left without any task.
func wipeChecklist(tx *gorm.DB, checklistID uint64, scope string) error {
	taskQuery := tx.Model(&models.Task{}).
		Joins("JOIN categories ON categories.id = tasks.category_id AND categories.deleted_at IS NULL").
		Where("categories.checklist_id = ?", checklistID)
	switch scope {
	case "regular":
		taskQuery = taskQuery.Where("tasks.is_buddy_task = ?", false)
	case "buddy":
		taskQuery = taskQuery.Where("tasks.is_buddy_task = ?", true)
	}

	var taskIDs []uint64
	if err := taskQuery.Pluck("tasks.id", &taskIDs).Error; err != nil {
		return err
	}
	if err := deleteTasksWithProgress(tx, taskIDs); err != nil {
		return err
	}

	// Partial scopes keep any category that still has tasks; one left
	// empty held only tasks of the wiped kind.
	categoryQuery := tx.Model(&models.Category{}).Where("checklist_id = ?", checklistID)
	if scope != "all" {
		categoryQuery = categoryQuery.
			Where("NOT EXISTS (SELECT 1 FROM tasks WHERE tasks.category_id = categories.id AND tasks.deleted_at IS NULL)")
	}

	var categoryIDs []uint64
	if err := categoryQuery.Pluck("id", &categoryIDs).Error; err != nil {
		return err
	}
	if len(categoryIDs) > 0 {
		if err := tx.Delete(&models.Category{}, categoryIDs).Error; err != nil {
			return err
		}
	}
	return nil
}

// mergeTemplate inserts categories into a checklist. With fresh=true the
// recorded orders are kept verbatim (the checklist was just wiped); in a
// merge, name-matching categories are reused and new ones appended after
// the current maximum order.
func mergeTemplate(tx *gorm.DB, checklistID uint64, categories []ImportCategory, fresh bool) error {
	maxOrder, err := nextOrder(tx.Model(&models.Category{}).Where("checklist_id = ?", checklistID))
	if err != nil {
		return err
	}

	for _, cat := range categories {
		var target models.Category
		found := false
		if !fresh {
			err := tx.Where("checklist_id = ? AND name = ?", checklistID, cat.Name).
				First(&target).Error
			switch {
			case err == nil:
				found = true
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if !found {
			order := cat.Order
			if !fresh {
				order = maxOrder
				maxOrder++
			}
			target = models.Category{
				ChecklistID:     checklistID,
				Name:            cat.Name,
				Order:           order,
				IsBuddyCategory: cat.IsBuddyCategory,
			}
			if err := tx.Create(&target).Error; err != nil {
				return err
			}
		}

		taskOrder := 0
		if found {
			taskOrder, err = nextOrder(tx.Model(&models.Task{}).Where("category_id = ?", target.ID))
			if err != nil {
				return err
			}
		}
		for _, t := range cat.Tasks {
			order := taskOrder
			if fresh {
				order = t.Order
			} else {
				taskOrder++
			}
			task := models.Task{
				CategoryID:  target.ID,
				Title:       t.Title,
				Description: t.Description,
				Link:        t.Link,
				Order:       order,
				IsBuddyTask: t.IsBuddyTask,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func deleteTasksWithProgress(tx *gorm.DB, taskIDs []uint64) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskProgress{}).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.BuddyPreparationTaskProgress{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Task{}, taskIDs).Error
}

func resequenceTasks(tx *gorm.DB, categoryID uint64) error {
	var tasks []models.Task
	if err := tx.Where("category_id = ?", categoryID).
		Order("sort_order ASC").
		Find(&tasks).Error; err != nil {
		return err
	}
	for i, t := range tasks {
		if t.Order == i {
			continue
		}
		if err := tx.Model(&models.Task{}).
			Where("id = ?", t.ID).
			Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func resequenceCategories(tx *gorm.DB, checklistID uint64) error {
	var categories []models.Category
	if err := tx.Where("checklist_id = ?", checklistID).
		Order("sort_order ASC").
		Find(&categories).Error; err != nil {
		return err
	}
	for i, cat := range categories {
		if cat.Order == i {
			continue
		}
		if err := tx.Model(&models.Category{}).
			Where("id = ?", cat.ID).
			Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func nextOrder(query *gorm.DB) (int, error) {
	var max sql.NullInt64
	if err := query.Select("MAX(sort_order)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func toImportCategories(defs []seed.CategoryDef) []ImportCategory {
	categories := make([]ImportCategory, len(defs))
	for i, def := range defs {
		tasks := make([]ImportTask, len(def.Tasks))
		for j, t := range def.Tasks {
			tasks[j] = ImportTask{
				Title:       t.Title,
				Description: t.Description,
				Link:        t.Link,
				Order:       j,
				IsBuddyTask: t.IsBuddyTask,
			}
		}
		categories[i] = ImportCategory{
			Name:            def.Name,
			Order:           i,
			IsBuddyCategory: def.IsBuddyCategory,
			Tasks:           tasks,
		}
	}
	return categories
}
