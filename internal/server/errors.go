// Package server provides the HTTP API for brand briefs and generation runs.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/briefs"
	"github.com/jonathan/brandbot/internal/orchestrator"
)

// ErrBriefNotFound indicates the brief does not exist or belongs to someone else.
type ErrBriefNotFound struct {
	BriefID uuid.UUID
}

func (e *ErrBriefNotFound) Error() string {
	return fmt.Sprintf("brief not found: %s", e.BriefID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates an optional backend is not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not available on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrBriefNotFound
		validation  *ErrValidation
		fieldErrs   validator.ValidationErrors
		rejection   *orchestrator.RejectionError
		transition  *orchestrator.TransitionError
		unavailable *ErrUnavailable
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, briefs.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &rejection):
		return http.StatusTooManyRequests
	case errors.Is(err, orchestrator.ErrRunInProgress), errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
