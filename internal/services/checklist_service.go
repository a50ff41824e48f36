package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/dto"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
	"github.com/alflem/onboarding-api/internal/seed"
)

var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrTemplateExists    = errors.New("organization already has a checklist")
	ErrRowsNotOwned      = errors.New("rows belong to another organization")
	ErrNoUpdates         = errors.New("no rows to update")
	ErrCrossChecklist    = errors.New("task and destination category belong to different checklists")
	ErrInvalidExportType = errors.New("invalid export type")
)

// ChecklistService owns the template-level operations: reorder, move,
// reset and import/export.
type ChecklistService struct {
	checklistRepo repository.ChecklistRepository
}

// NewChecklistService creates a new ChecklistService.
func NewChecklistService(checklistRepo repository.ChecklistRepository) *ChecklistService {
	return &ChecklistService{checklistRepo: checklistRepo}
}

// Scope is the caller's authorization scope for checklist operations.
// SUPER_ADMIN operates without the organization restriction.
type Scope struct {
	OrganizationID uint64
	SuperAdmin     bool
}

// Get loads a template with its ordered categories and tasks.
func (s *ChecklistService) Get(id uint64) (*models.Checklist, error) {
	checklist, err := s.checklistRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return checklist, nil
}

// List returns the templates visible to the caller: all of them for
// SUPER_ADMIN, the own organization's otherwise.
func (s *ChecklistService) List(scope Scope) ([]models.Checklist, error) {
	if scope.SuperAdmin {
		return s.checklistRepo.List()
	}
	checklist, err := s.checklistRepo.FindByOrganization(scope.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Checklist{}, nil
		}
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return []models.Checklist{*checklist}, nil
}

// Create provisions a checklist with the default template for an
// organization that does not have one yet.
func (s *ChecklistService) Create(organizationID uint64) (*models.Checklist, error) {
	if _, err := s.checklistRepo.FindByOrganization(organizationID); err == nil {
		return nil, ErrTemplateExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing checklist: %w", err)
	}
	return s.checklistRepo.CreateForOrganization(organizationID, seed.DefaultTemplate())
}

// Delete removes a template and everything under it.
func (s *ChecklistService) Delete(id uint64) error {
	return s.checklistRepo.Delete(id)
}

// ReorderCategories persists the listed order values after verifying all
// rows sit in one checklist the caller may touch.
func (s *ChecklistService) ReorderCategories(scope Scope, updates []repository.OrderUpdate) error {
	if len(updates) == 0 {
		return ErrNoUpdates
	}
	checklistID, err := s.checklistRepo.ChecklistIDForCategories(collectIDs(updates))
	if err != nil {
		return s.mapOwnershipError(err)
	}
	if err := s.authorizeChecklist(scope, checklistID); err != nil {
		return err
	}
	return s.checklistRepo.ReorderCategories(updates)
}

// ReorderTasks persists the listed order values after verifying all rows
// sit in one checklist the caller may touch.
func (s *ChecklistService) ReorderTasks(scope Scope, updates []repository.OrderUpdate) error {
	if len(updates) == 0 {
		return ErrNoUpdates
	}
	checklistID, err := s.checklistRepo.ChecklistIDForTasks(collectIDs(updates))
	if err != nil {
		return s.mapOwnershipError(err)
	}
	if err := s.authorizeChecklist(scope, checklistID); err != nil {
		return err
	}
	return s.checklistRepo.ReorderTasks(updates)
}

// MoveTask relocates a task into another category at the given position
// and resequences both lists.
func (s *ChecklistService) MoveTask(scope Scope, taskID, categoryID uint64, position int) error {
	taskChecklistID, err := s.checklistRepo.ChecklistIDForTasks([]uint64{taskID})
	if err != nil {
		return s.mapOwnershipError(err)
	}
	categoryChecklistID, err := s.checklistRepo.ChecklistIDForCategories([]uint64{categoryID})
	if err != nil {
		return s.mapOwnershipError(err)
	}
	if err := s.authorizeChecklist(scope, taskChecklistID); err != nil {
		return err
	}
	if taskChecklistID != categoryChecklistID {
		return ErrCrossChecklist
	}
	return s.checklistRepo.MoveTask(taskID, categoryID, position)
}

// Reset restores the full default template, wiping everything first.
func (s *ChecklistService) Reset(id uint64) error {
	return s.checklistRepo.Reset(id, seed.DefaultTemplate())
}

// ResetBuddy restores only the default buddy subset, leaving regular
// tasks untouched.
func (s *ChecklistService) ResetBuddy(id uint64) error {
	return s.checklistRepo.ResetBuddy(id, seed.DefaultBuddyTemplate())
}

// Export snapshots a template filtered to the requested type.
func (s *ChecklistService) Export(id uint64, exportType, exportedBy string) (*dto.ExportDocument, error) {
	if !dto.ValidExportType(exportType) {
		return nil, ErrInvalidExportType
	}
	checklist, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	doc := dto.ToExportDocument(*checklist, exportType, exportedBy)
	return &doc, nil
}

// Import merges an uploaded snapshot into the organization's checklist,
// creating the checklist when the organization has none yet. Merge
// semantics follow the export type recorded in the document.
func (s *ChecklistService) Import(organizationID uint64, doc dto.ExportDocument) error {
	if !dto.ValidExportType(doc.ExportType) {
		return ErrInvalidExportType
	}

	checklist, err := s.checklistRepo.FindByOrganization(organizationID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load checklist: %w", err)
		}
		checklist, err = s.checklistRepo.CreateForOrganization(organizationID, nil)
		if err != nil {
			return fmt.Errorf("failed to create checklist: %w", err)
		}
	}

	categories := make([]repository.ImportCategory, len(doc.Categories))
	for i, cat := range doc.Categories {
		tasks := make([]repository.ImportTask, len(cat.Tasks))
		for j, t := range cat.Tasks {
			tasks[j] = repository.ImportTask{
				Title:       t.Title,
				Description: t.Description,
				Link:        t.Link,
				Order:       t.Order,
				IsBuddyTask: t.IsBuddyTask,
			}
		}
		categories[i] = repository.ImportCategory{
			Name:            cat.Name,
			Order:           cat.Order,
			IsBuddyCategory: cat.IsBuddyCategory,
			Tasks:           tasks,
		}
	}

	return s.checklistRepo.Import(checklist.ID, doc.ExportType, categories)
}

func (s *ChecklistService) authorizeChecklist(scope Scope, checklistID uint64) error {
	if scope.SuperAdmin {
		return nil
	}
	checklist, err := s.checklistRepo.FindByID(checklistID)
	if err != nil {
		return fmt.Errorf("failed to load checklist: %w", err)
	}
	if checklist.OrganizationID != scope.OrganizationID {
		return ErrRowsNotOwned
	}
	return nil
}

func (s *ChecklistService) mapOwnershipError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrTemplateNotFound
	case errors.Is(err, repository.ErrMixedSiblings):
		return ErrRowsNotOwned
	default:
		return fmt.Errorf("failed to resolve rows: %w", err)
	}
}

func collectIDs(updates []repository.OrderUpdate) []uint64 {
	ids := make([]uint64, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	return ids
}
