package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// HasElevatedAccess reports whether a role may manage orders it does not own.
func HasElevatedAccess(r Role) bool {
	return r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Role     Role      `gorm:"not null;column:role" json:"role"`
	IsActive bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Principal is the authenticated identity carried through request context.
type Principal struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}
