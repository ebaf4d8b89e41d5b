package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// User represents the user entity
type User struct {
	gorm.Model
	Name            string `gorm:"not null" json:"name"`
	Email           string `gorm:"uniqueIndex;not null" json:"email"`
	Password        string `json:"-"` // Password is hashed and not returned in responses
	IsEmailVerified bool   `gorm:"default:false" json:"isEmailVerified"`
	// ProfilePic is optional and stores a profile picture URL.
	ProfilePic string `json:"profilePic,omitempty"`

	Playlists []*Playlist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"playlists,omitempty"`
	Songs     []*Song     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"songs,omitempty"`
}

/** -------------------- DTOs -------------------- */
// Request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the request for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Response
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ProfilePic string    `json:"profilePic,omitempty"`
}

// LoginResponse represents the response for a successful login
// swagger:model
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Update user request
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty" binding:"omitempty,min=3,max=50"`
	Email      *string `json:"email,omitempty" binding:"omitempty,email"`
	Password   *string `json:"password,omitempty" binding:"omitempty,min=6"`
	ProfilePic *string `json:"profilePic,omitempty"`
}
