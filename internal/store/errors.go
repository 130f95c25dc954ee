package store

import (
	"errors"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
)

// Classify tags storage conditions with their apperr equivalents:
// ErrNotFound as apperr.ErrNotFound and ErrDuplicate as apperr.ErrConflict.
// ErrConflict is left alone because its meaning depends on the operation.
func Classify(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.Tag(err, apperr.ErrNotFound)
	case errors.Is(err, ErrDuplicate):
		return apperr.Tag(err, apperr.ErrConflict)
	default:
		return err
	}
}
