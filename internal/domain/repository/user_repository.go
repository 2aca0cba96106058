package repository

import (
	"errors"

	"convohub/internal/domain/entity"
)

// ErrNotFound is returned when the requested record does not exist. Callers
// use it to tell a missing record apart from a store failure.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user directory database operations.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(u *entity.User) error
	// ListOthers returns every user except the one identified by excludeID,
	// newest first. Used for the contact sidebar.
	ListOthers(excludeID string) ([]*entity.User, error)
}
