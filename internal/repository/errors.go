package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference is returned when a write points at a row that does not exist
	ErrReference = errors.New("referenced record does not exist")
)

// translate maps storage constraint errors to repository errors.
// Requires gorm.Config.TranslateError.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReference
	default:
		return err
	}
}
