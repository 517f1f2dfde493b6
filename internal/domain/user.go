package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleDeacon  = "deacon"
	RoleServant = "servant"
	RoleAdmin   = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleDeacon, RoleServant, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `gorm:"not null;default:'deacon';index" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) CanReview() bool {
	return u != nil && (u.Role == RoleServant || u.Role == RoleAdmin)
}
