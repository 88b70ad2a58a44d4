package model

import (
	"time"
)

type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RoleAdmin           UserRole = "admin"
	RoleDeliveryPartner UserRole = "delivery_partner"
)

// Valid reports whether r is one of the three account roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleDeliveryPartner:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;index" json:"role"` // fixed at registration
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
