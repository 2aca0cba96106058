package entity

import (
	"time"
)

// User is the aggregate root for the user directory.
// Passwords are stored as bcrypt hashes in Password field.
// A user exists independently of any live connection.
type User struct {
	ID        string
	Email     string
	Password  string
	FullName  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
