// Package apperr defines the error taxonomy shared by the marketplace services.
// Services wrap these sentinels with context; the HTTP layer classifies them with errors.Is.
package apperr

import "errors"

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrDeadlinePassed   = errors.New("bidding has ended")
	ErrBidTooLow        = errors.New("bid must be higher than current highest bid")
	ErrInvalidPrice     = errors.New("invalid sale price")
	ErrAlreadySold      = errors.New("already sold")
	ErrAlreadyFavorited = errors.New("auction already in favorites")
)

// Validation describes a single rejected field.
type Validation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects field problems for one request. It matches ErrValidation.
type ValidationError struct {
	Fields []Validation
}

// Add records a rejected field.
func (v *ValidationError) Add(field, reason string) {
	v.Fields = append(v.Fields, Validation{Field: field, Reason: reason})
}

// Err returns nil when no field was rejected.
func (v *ValidationError) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	msg := ErrValidation.Error() + ":"
	for i, f := range v.Fields {
		if i > 0 {
			msg += ";"
		}
		msg += " " + f.Field + " " + f.Reason
	}
	return msg
}

func (v *ValidationError) Is(target error) bool { return target == ErrValidation }

type tagged struct {
	kind error
	err  error
}

func (t *tagged) Error() string   { return t.err.Error() }
func (t *tagged) Unwrap() []error { return []error{t.kind, t.err} }

// Tag classifies err as kind while keeping its message and chain.
func Tag(err, kind error) error {
	if err == nil {
		return nil
	}
	return &tagged{kind: kind, err: err}
}
