package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User is a customer or admin account. New customers start inactive and
// cannot order until an admin approves them.
type User struct {
	UserID         string    `json:"user_id" gorm:"primaryKey" bson:"user_id"`
	FullName       string    `json:"full_name" gorm:"not null" bson:"full_name"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	PasswordHash   string    `json:"-" gorm:"not null" bson:"password_hash"`
	PhoneNumber    string    `json:"phone_number" bson:"phone_number"`
	Address        string    `json:"address" bson:"address"`
	Latitude       *float64  `json:"latitude" bson:"latitude"`
	Longitude      *float64  `json:"longitude" bson:"longitude"`
	ProfilePicture *string   `json:"profile_picture" bson:"profile_picture"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:false" bson:"is_active"`
	Role           UserRole  `json:"role" gorm:"not null;default:'customer'" bson:"role"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
	LastLogin      time.Time `json:"last_login" bson:"last_login"`
}

// Summary is the subset returned alongside a token on register/login.
func (u *User) Summary() UserSummary {
	return UserSummary{
		UserID:         u.UserID,
		FullName:       u.FullName,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		IsActive:       u.IsActive,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
	}
}

type UserSummary struct {
	UserID         string   `json:"user_id"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	PhoneNumber    string   `json:"phone_number,omitempty"`
	Address        string   `json:"address,omitempty"`
	IsActive       bool     `json:"is_active"`
	Role           UserRole `json:"role"`
	ProfilePicture *string  `json:"profile_picture,omitempty"`
}
