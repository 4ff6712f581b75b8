package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account known to the session provider. Sellers, buyers and
// administrators share the table and differ by Role.
type User struct {
	BaseModel
	Name            string     `json:"name"`
	Email           string     `gorm:"uniqueIndex" json:"email"`
	Username        *string    `gorm:"uniqueIndex" json:"username"`
	Phone           *string    `gorm:"uniqueIndex" json:"phone"`
	PasswordHash    string     `json:"-"`
	Role            string     `gorm:"default:user;index" json:"role"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	Points          int        `gorm:"default:0" json:"points"`
	PointsExpiresAt *time.Time `json:"points_expires_at"`
}

// IsAdmin reports whether the user may use the back office.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
