package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicateName is returned when a unique name is already used.
var ErrDuplicateName = errors.New("name already exists")

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}
