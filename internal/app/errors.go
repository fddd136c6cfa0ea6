package app

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrNameTaken          = errors.New("name already taken")
	ErrDatabaseNotFound   = errors.New("no database")
	ErrCollectionNotFound = errors.New("no collection")
	ErrFileNotFound       = errors.New("no file")
)

// parseID maps malformed ids onto the not-found error of the resource.
func parseID(raw string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
