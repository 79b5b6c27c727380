package models

import (
	"time"
)

// Roles a User can hold. Only admins may edit pizzas and toppings.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User owns OAuth clients; its Role ends up in the issued access tokens
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `json:"name"`
	Role      string    `gorm:"default:'admin'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsKnownRole reports whether role is one the token endpoint may issue
func IsKnownRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// EffectiveRole is the role written into tokens. Users created without one
// get the least privileged role.
func (u User) EffectiveRole() string {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}
