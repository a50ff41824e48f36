package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/dto"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
)

var (
	ErrPreparationNotFound    = errors.New("buddy preparation not found")
	ErrPersonNotFound         = errors.New("person not found")
	ErrBuddyNotFound          = errors.New("buddy not found")
	ErrBuddyOtherOrganization = errors.New("buddy belongs to another organization")
	ErrBuddyDisabled          = errors.New("buddy support is disabled for this organization")
	ErrNotPersonsBuddy        = errors.New("caller is not this person's buddy")
	ErrProgressNotTracked     = errors.New("no progress is tracked for this task")
	ErrNotBuddyTask           = errors.New("task is not a buddy task")
)

// BuddyService owns buddy preparations, buddy assignments and the
// checklist views served to employees and their buddies.
type BuddyService struct {
	buddyRepo repository.BuddyRepository
	userRepo  repository.UserRepository
	orgRepo   repository.OrganizationRepository
}

// NewBuddyService creates a new BuddyService
func NewBuddyService(buddyRepo repository.BuddyRepository, userRepo repository.UserRepository, orgRepo repository.OrganizationRepository) *BuddyService {
	return &BuddyService{buddyRepo: buddyRepo, userRepo: userRepo, orgRepo: orgRepo}
}

// PreparationInput carries the fields an admin supplies for a preparation
type PreparationInput struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	BuddyID   uint64 `json:"buddy_id" binding:"required"`
}

// CreatePreparation creates a placeholder for a not-yet-hired employee.
// The assigned buddy must be a user in the same organization, and the
// organization must have buddy support enabled.
func (s *BuddyService) CreatePreparation(organizationID uint64, input PreparationInput) (*models.BuddyPreparation, error) {
	if err := s.requireBuddyEnabled(organizationID); err != nil {
		return nil, err
	}
	if err := s.requireBuddyInOrganization(input.BuddyID, organizationID); err != nil {
		return nil, err
	}

	prep := &models.BuddyPreparation{
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		BuddyID:        input.BuddyID,
		OrganizationID: organizationID,
		IsActive:       true,
	}
	if err := s.buddyRepo.CreatePreparation(prep); err != nil {
		return nil, err
	}
	return s.buddyRepo.FindPreparation(prep.ID)
}

// ListPreparations lists an organization's preparations
func (s *BuddyService) ListPreparations(organizationID uint64) ([]models.BuddyPreparation, error) {
	return s.buddyRepo.ListPreparations(organizationID)
}

// GetPreparation loads a preparation scoped to the caller's organization
func (s *BuddyService) GetPreparation(organizationID, prepID uint64, superAdmin bool) (*models.BuddyPreparation, error) {
	prep, err := s.buddyRepo.FindPreparation(prepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreparationNotFound
		}
		return nil, err
	}
	if !superAdmin && prep.OrganizationID != organizationID {
		return nil, ErrRowsNotOwned
	}
	return prep, nil
}

// UpdatePreparation updates a preparation's name, email or buddy
func (s *BuddyService) UpdatePreparation(organizationID, prepID uint64, superAdmin bool, input PreparationInput) (*models.BuddyPreparation, error) {
	prep, err := s.GetPreparation(organizationID, prepID, superAdmin)
	if err != nil {
		return nil, err
	}
	if input.BuddyID != prep.BuddyID {
		if err := s.requireBuddyInOrganization(input.BuddyID, prep.OrganizationID); err != nil {
			return nil, err
		}
	}

	prep.FirstName = strings.TrimSpace(input.FirstName)
	prep.LastName = strings.TrimSpace(input.LastName)
	prep.Email = strings.ToLower(strings.TrimSpace(input.Email))
	prep.BuddyID = input.BuddyID
	if err := s.buddyRepo.UpdatePreparation(prep); err != nil {
		return nil, err
	}
	return s.buddyRepo.FindPreparation(prep.ID)
}

// DeactivatePreparation marks a preparation completed without deleting
// its progress history
func (s *BuddyService) DeactivatePreparation(organizationID, prepID uint64, superAdmin bool) error {
	if _, err := s.GetPreparation(organizationID, prepID, superAdmin); err != nil {
		return err
	}
	return s.buddyRepo.DeactivatePreparation(prepID)
}

// AssignBuddy sets or clears an employee's buddy. Both users must belong
// to the caller's organization.
func (s *BuddyService) AssignBuddy(organizationID, employeeID uint64, superAdmin bool, buddyID *uint64) (*models.User, error) {
	employee, err := s.userRepo.FindByID(employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	if !superAdmin && employee.OrganizationID != organizationID {
		return nil, ErrRowsNotOwned
	}

	if buddyID != nil {
		if err := s.requireBuddyEnabled(employee.OrganizationID); err != nil {
			return nil, err
		}
		if err := s.requireBuddyInOrganization(*buddyID, employee.OrganizationID); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.SetBuddy(employeeID, buddyID); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(employeeID)
}

// People assembles a buddy's mentee overview: real users mentoring with
// the caller, plus preparations split into active and completed.
func (s *BuddyService) People(buddyID uint64) (*dto.BuddyPeopleDTO, error) {
	mentees, err := s.buddyRepo.ListMentees(buddyID)
	if err != nil {
		return nil, err
	}
	preps, err := s.buddyRepo.ListPreparationsByBuddy(buddyID)
	if err != nil {
		return nil, err
	}

	people := &dto.BuddyPeopleDTO{
		Employees:             make([]dto.UserDTO, 0, len(mentees)),
		ActivePreparations:    []dto.BuddyPreparationDTO{},
		CompletedPreparations: []dto.BuddyPreparationDTO{},
	}
	for _, mentee := range mentees {
		people.Employees = append(people.Employees, dto.ToUserDTO(mentee))
	}
	for _, prep := range preps {
		switch {
		case prep.LinkedUserID != nil:
			// A linked preparation's person has signed up for real.
			people.CompletedPreparations = append(people.CompletedPreparations, dto.ToBuddyPreparationDTO(prep))
		case prep.IsActive:
			people.ActivePreparations = append(people.ActivePreparations, dto.ToBuddyPreparationDTO(prep))
		}
	}
	return people, nil
}

// MyChecklist returns the caller's own onboarding view: the
// organization's regular tasks joined with the caller's progress. Tasks
// added after the caller was provisioned carry no progress row and are
// left out.
func (s *BuddyService) MyChecklist(userID, organizationID uint64) (*dto.PersonChecklistDTO, error) {
	tasks, err := s.buddyRepo.TasksForOrganization(organizationID, false)
	if err != nil {
		return nil, err
	}
	progress, err := s.buddyRepo.ProgressForUser(userID)
	if err != nil {
		return nil, err
	}

	byTask := make(map[uint64]models.TaskProgress, len(progress))
	for _, row := range progress {
		byTask[row.TaskID] = row
	}

	view := &dto.PersonChecklistDTO{PersonID: userID, Items: []dto.ChecklistItemDTO{}}
	for _, task := range tasks {
		row, ok := byTask[task.ID]
		if !ok {
			continue
		}
		view.Items = append(view.Items, checklistItem(task, row.Completed, row.CompletedAt))
	}
	return view, nil
}

// PersonChecklist returns the buddy-task view for one mentee, either a
// real user or a preparation. Only the person's assigned buddy may see
// it, and only while the organization has buddy support enabled.
func (s *BuddyService) PersonChecklist(callerID, organizationID, personID uint64, isPreparation bool) (*dto.PersonChecklistDTO, error) {
	if err := s.requireBuddyEnabled(organizationID); err != nil {
		return nil, err
	}

	tasks, err := s.buddyRepo.TasksForOrganization(organizationID, true)
	if err != nil {
		return nil, err
	}

	view := &dto.PersonChecklistDTO{PersonID: personID, IsPreparation: isPreparation, Items: []dto.ChecklistItemDTO{}}
	if isPreparation {
		if _, err := s.authorizePreparation(callerID, organizationID, personID); err != nil {
			return nil, err
		}
		progress, err := s.buddyRepo.ProgressForPreparation(personID)
		if err != nil {
			return nil, err
		}
		byTask := make(map[uint64]models.BuddyPreparationTaskProgress, len(progress))
		for _, row := range progress {
			byTask[row.TaskID] = row
		}
		for _, task := range tasks {
			if row, ok := byTask[task.ID]; ok {
				view.Items = append(view.Items, checklistItem(task, row.Completed, row.CompletedAt))
			}
		}
		return view, nil
	}

	if _, err := s.authorizeMentee(callerID, organizationID, personID); err != nil {
		return nil, err
	}
	progress, err := s.buddyRepo.ProgressForUser(personID)
	if err != nil {
		return nil, err
	}
	byTask := make(map[uint64]models.TaskProgress, len(progress))
	for _, row := range progress {
		byTask[row.TaskID] = row
	}
	for _, task := range tasks {
		if row, ok := byTask[task.ID]; ok {
			view.Items = append(view.Items, checklistItem(task, row.Completed, row.CompletedAt))
		}
	}
	return view, nil
}

// SetMyProgress toggles one of the caller's own regular tasks
func (s *BuddyService) SetMyProgress(userID, taskID uint64, completed bool) error {
	task, err := s.buddyRepo.FindTask(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgressNotTracked
		}
		return err
	}
	if task.IsBuddyTask {
		return ErrProgressNotTracked
	}
	if err := s.buddyRepo.SetUserProgress(userID, taskID, completed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgressNotTracked
		}
		return err
	}
	return nil
}

// SetPersonProgress toggles a buddy task for one of the caller's
// mentees. The task must carry the buddy flag; regular tasks stay under
// the mentee's own control.
func (s *BuddyService) SetPersonProgress(callerID, organizationID, personID uint64, isPreparation bool, taskID uint64, completed bool) error {
	if err := s.requireBuddyEnabled(organizationID); err != nil {
		return err
	}

	task, err := s.buddyRepo.FindTask(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgressNotTracked
		}
		return err
	}
	if !task.IsBuddyTask {
		return ErrNotBuddyTask
	}

	if isPreparation {
		if _, err := s.authorizePreparation(callerID, organizationID, personID); err != nil {
			return err
		}
		if err := s.buddyRepo.SetPreparationProgress(personID, taskID, completed); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProgressNotTracked
			}
			return err
		}
		return nil
	}

	if _, err := s.authorizeMentee(callerID, organizationID, personID); err != nil {
		return err
	}
	if err := s.buddyRepo.SetUserProgress(personID, taskID, completed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgressNotTracked
		}
		return err
	}
	return nil
}

func (s *BuddyService) authorizeMentee(callerID, organizationID, menteeID uint64) (*models.User, error) {
	mentee, err := s.userRepo.FindByID(menteeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	if mentee.OrganizationID != organizationID || mentee.BuddyID == nil || *mentee.BuddyID != callerID {
		return nil, ErrNotPersonsBuddy
	}
	return mentee, nil
}

func (s *BuddyService) authorizePreparation(callerID, organizationID, prepID uint64) (*models.BuddyPreparation, error) {
	prep, err := s.buddyRepo.FindPreparation(prepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	if prep.OrganizationID != organizationID || prep.BuddyID != callerID {
		return nil, ErrNotPersonsBuddy
	}
	return prep, nil
}

func (s *BuddyService) requireBuddyEnabled(organizationID uint64) error {
	org, err := s.orgRepo.FindByID(organizationID)
	if err != nil {
		return err
	}
	if !org.BuddyEnabled {
		return ErrBuddyDisabled
	}
	return nil
}

func (s *BuddyService) requireBuddyInOrganization(buddyID, organizationID uint64) error {
	buddy, err := s.userRepo.FindByID(buddyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBuddyNotFound
		}
		return err
	}
	if buddy.OrganizationID != organizationID {
		return ErrBuddyOtherOrganization
	}
	return nil
}

func checklistItem(task models.Task, completed bool, completedAt *time.Time) dto.ChecklistItemDTO {
	return dto.ChecklistItemDTO{
		TaskDTO:      dto.ToTaskDTO(task),
		CategoryName: task.Category.Name,
		Completed:    completed,
		CompletedAt:  completedAt,
	}
}
