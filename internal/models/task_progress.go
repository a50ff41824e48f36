package models

import "time"

// TaskProgress tracks one user's completion of one task. Rows are created
// in bulk when the user account is provisioned; tasks added to the
// checklist afterwards get no row for existing users.
type TaskProgress struct {
	UserID      uint64     `gorm:"primarykey" json:"user_id"`
	TaskID      uint64     `gorm:"primarykey" json:"task_id"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
