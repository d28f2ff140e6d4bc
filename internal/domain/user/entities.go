package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists and is verified")
)

// User is keyed by phone number, the platform's identity key.
type User struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"-"`
	Phone        string    `gorm:"size:20;uniqueIndex:ux_users_phone" json:"phone"`
	FirstName    string    `gorm:"size:64" json:"first_name"`
	MiddleName   string    `gorm:"size:64" json:"middle_name,omitempty"`
	LastName     string    `gorm:"size:64" json:"last_name"`
	DateOfBirth  string    `gorm:"size:16" json:"dob"`
	PasswordHash string    `gorm:"type:text" json:"-"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (User) TableName() string { return "users" }

// DisplayName is the masked marketplace rendering: "Ram K."
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName[:1] + "."
}

// Session is a server-side login session keyed by token.
type Session struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Token     string    `gorm:"size:512;uniqueIndex:ux_sessions_token" json:"token"`
	Phone     string    `gorm:"size:20;index" json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Session) TableName() string { return "sessions" }
