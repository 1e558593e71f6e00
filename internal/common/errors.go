// Package common defines the sentinel errors and typed error values shared by
// services, repositories and handlers. Every operation of the catalog returns
// one of these kinds, never a raw store error; callers match them with
// errors.Is / errors.As.
package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrParentNotFound = errors.New("souvenir not found")
	ErrAlreadyExists  = errors.New("already exists")

	// Dual-store lifecycle errors.
	ErrBlobWriteFailed  = errors.New("blob write failed")
	ErrBlobDeleteFailed = errors.New("blob delete failed")
	ErrRowCommitFailed  = errors.New("row commit failed")
	ErrRowDeleteFailed  = errors.New("row delete failed")
	ErrPartialCascade   = errors.New("partial cascade failure")

	// Auth errors. AccountNotFound and InvalidCredentials render the same
	// message at the HTTP boundary but stay distinguishable internally.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid token")

	// Validation errors (empty required field, malformed email).
	ErrValidation = errors.New("validation error")

	ErrInternal = errors.New("internal error")
)

// AlreadyExistsError reports which unique field was violated and by what
// value, whether the local check or the database unique index caught it.
type AlreadyExistsError struct {
	Field string
	Value string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// CascadeFailure names one image that could not be removed during a
// souvenir cascade, and why.
type CascadeFailure struct {
	ImageID int64
	Err     error
}

// CascadeError is returned when a souvenir cascade could not remove every
// owned image. The souvenir row is kept, so the cascade is safe to retry.
type CascadeError struct {
	Failed []CascadeFailure
}

func (e *CascadeError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = strconv.FormatInt(f.ImageID, 10)
	}
	return fmt.Sprintf("cascade incomplete, failed image ids: %s", strings.Join(ids, ", "))
}

func (e *CascadeError) Unwrap() error { return ErrPartialCascade }

// CompensationError reports a primary failure whose compensating action also
// failed. The typical case is a failed image row commit followed by a failed
// blob rollback, which leaves an orphaned blob for offline reconciliation.
type CompensationError struct {
	Primary      error
	Compensation error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%v; compensation failed: %v", e.Primary, e.Compensation)
}

func (e *CompensationError) Unwrap() error { return e.Primary }
