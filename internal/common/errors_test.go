package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAlreadyExistsErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("creating user: %w", &AlreadyExistsError{Field: "email", Value: "a@b.cc"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("errors.Is failed: %v", err)
	}
	var aeErr *AlreadyExistsError
	if !errors.As(err, &aeErr) || aeErr.Field != "email" {
		t.Fatalf("errors.As failed: %v", err)
	}
}

func TestCascadeErrorReportsImageIDs(t *testing.T) {
	err := &CascadeError{Failed: []CascadeFailure{
		{ImageID: 3, Err: fmt.Errorf("%w: permission denied", ErrBlobDeleteFailed)},
		{ImageID: 7, Err: fmt.Errorf("%w: permission denied", ErrBlobDeleteFailed)},
	}}
	if !errors.Is(err, ErrPartialCascade) {
		t.Fatalf("errors.Is(ErrPartialCascade) failed")
	}
	msg := err.Error()
	if !strings.Contains(msg, "3") || !strings.Contains(msg, "7") {
		t.Fatalf("message does not name the failed images: %s", msg)
	}
}

func TestCompensationErrorUnwrapsToPrimary(t *testing.T) {
	primary := fmt.Errorf("%w: connection reset", ErrRowCommitFailed)
	err := &CompensationError{
		Primary:      primary,
		Compensation: fmt.Errorf("%w: permission denied", ErrBlobDeleteFailed),
	}
	if !errors.Is(err, ErrRowCommitFailed) {
		t.Fatalf("compensation error does not unwrap to its primary cause")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("message hides the compensation failure: %s", err.Error())
	}
}
