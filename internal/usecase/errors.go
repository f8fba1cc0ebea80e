package usecase

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrRequestInFlight = errors.New("request already in flight")
	ErrNoActiveForm    = errors.New("no form is open")
	ErrInvalidBudget   = errors.New("invalid budget")
	// ErrSuperseded is returned by a request whose result came back after the visitor moved on.
	ErrSuperseded = errors.New("conversation moved on before the request finished")
)

// ValidationError lists the required form fields that were left blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// RejectedError is a submission the backend answered with a non-success status.
type RejectedError struct {
	Status  string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected submission: status=%q message=%q", e.Status, e.Message)
}

// IsUserError reports whether err was already explained to the user and needs no logging above debug.
func IsUserError(err error) bool {
	var ve *ValidationError
	var re *RejectedError
	return errors.As(err, &ve) || errors.As(err, &re) ||
		errors.Is(err, ErrInvalidBudget) || errors.Is(err, ErrRequestInFlight) || errors.Is(err, ErrNoActiveForm) ||
		errors.Is(err, ErrSuperseded)
}
