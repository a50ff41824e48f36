package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups tasks inside a checklist. Order is dense and
// zero-based among the siblings of one checklist.
type Category struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	ChecklistID     uint64         `gorm:"index;not null" json:"checklist_id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Order           int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsBuddyCategory bool           `gorm:"not null;default:false" json:"is_buddy_category"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Checklist Checklist `gorm:"foreignKey:ChecklistID" json:"checklist,omitempty"`
	Tasks     []Task    `gorm:"foreignKey:CategoryID" json:"tasks,omitempty"`
}
