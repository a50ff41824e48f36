package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is a single onboarding step. IsBuddyTask marks steps the assigned
// buddy completes instead of the onboarding employee. Order is dense and
// zero-based within the parent category.
type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	CategoryID  uint64         `gorm:"index;not null" json:"category_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Link        string         `gorm:"type:varchar(1024)" json:"link,omitempty"`
	Order       int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsBuddyTask bool           `gorm:"not null;default:false" json:"is_buddy_task"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Category Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Progress []TaskProgress `gorm:"foreignKey:TaskID" json:"-"`
}
