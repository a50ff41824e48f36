package models

import "time"

// PreAssignedRole maps an email address to a role before any user row
// exists. Consulted once during signup so admins can be provisioned with
// elevated rights on first login.
type PreAssignedRole struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
