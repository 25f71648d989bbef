package models

import "time"

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Status       UserStatus
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Skill is something a user can offer in an exchange. Sessions reference
// skills by id, and session creation verifies each skill belongs to the
// party declared as its owner.
type Skill struct {
	ID          string
	UserID      string
	Name        string
	Category    string
	Description string
	CreatedAt   time.Time
}
