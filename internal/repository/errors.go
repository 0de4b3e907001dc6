package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects an insert
	ErrDuplicate = errors.New("duplicate key")
	// ErrCodeMismatch is returned when a one-time code is absent, different or expired
	ErrCodeMismatch = errors.New("one-time code mismatch")
)

// translate maps gorm errors onto the repository sentinels, keeping other errors as they are
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
