package repository

import (
	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/seed"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create provisions an organization with its checklist seeded from defs
func (r *GormOrganizationRepository) Create(org *models.Organization, defs []seed.CategoryDef) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		checklist := models.Checklist{OrganizationID: org.ID}
		if err := tx.Create(&checklist).Error; err != nil {
			return err
		}
		return seedTemplate(tx, checklist.ID, defs)
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByName finds an organization by name
func (r *GormOrganizationRepository) FindByName(name string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("name = ?", name).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// List returns all organizations
func (r *GormOrganizationRepository) List() ([]models.Organization, error) {
	var orgs []models.Organization
	if err := r.db.Order("name ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// Delete removes an organization and all related data in one transaction
func (r *GormOrganizationRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var checklist models.Checklist
		err := tx.Where("organization_id = ?", id).First(&checklist).Error
		if err == nil {
			if err := wipeChecklist(tx, checklist.ID, "all"); err != nil {
				return err
			}
			if err := tx.Delete(&checklist).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		var userIDs []uint64
		if err := tx.Model(&models.User{}).Where("organization_id = ?", id).
			Pluck("id", &userIDs).Error; err != nil {
			return err
		}
		if len(userIDs) > 0 {
			if err := tx.Where("user_id IN ?", userIDs).Delete(&models.TaskProgress{}).Error; err != nil {
				return err
			}
		}

		var prepIDs []uint64
		if err := tx.Model(&models.BuddyPreparation{}).Where("organization_id = ?", id).
			Pluck("id", &prepIDs).Error; err != nil {
			return err
		}
		if len(prepIDs) > 0 {
			if err := tx.Where("preparation_id IN ?", prepIDs).
				Delete(&models.BuddyPreparationTaskProgress{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.BuddyPreparation{}, prepIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("organization_id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Organization{}, id).Error
	})
}
