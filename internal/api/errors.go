// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/filter"
	"github.com/corpfin/dashboard/internal/ml"
	"github.com/corpfin/dashboard/internal/storage"
	"github.com/corpfin/dashboard/internal/training"
	"github.com/corpfin/dashboard/internal/web"
	"github.com/labstack/echo/v4"
)

// Error codes.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeDataLoad           = "DATA_LOAD_ERROR"
	CodeInsufficientData   = "INSUFFICIENT_DATA"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func withCause(err *APIError, cause error) *APIError {
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	return withCause(&APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
	}, cause)
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    CodeConflict,
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	return withCause(&APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: message,
	}, cause)
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeServiceUnavailable,
		Message: message,
	}
}

// NewDataLoadError is returned when the dataset cannot be read.
func NewDataLoadError(cause error) *APIError {
	return withCause(&APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeDataLoad,
		Message: web.LoadErrorMessage,
	}, cause)
}

// mapError converts package sentinel errors into API errors. Unknown errors
// become internal errors with message as the summary.
func mapError(err error, message string) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, filter.ErrInvalidFilter):
		return NewBadRequestError("invalid filter", err)
	case errors.Is(err, charts.ErrUnknownChart):
		return withCause(&APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "chart not found"}, err)
	case errors.Is(err, storage.ErrNotFound):
		return withCause(&APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "dataset not found"}, err)
	case errors.Is(err, training.ErrJobNotFound):
		return withCause(&APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "training job not found"}, err)
	case errors.Is(err, dataset.ErrMissingColumn):
		return NewBadRequestError("dataset is missing a required column", err)
	case errors.Is(err, ml.ErrInsufficientData):
		return withCause(&APIError{Status: http.StatusUnprocessableEntity, Code: CodeInsufficientData, Message: "not enough data to train the model"}, err)
	}
	return NewInternalError(message, err)
}

// ErrorHandler returns an Echo error handler writing APIError JSON.
// Usage: e.HTTPErrorHandler = api.ErrorHandler(showDetails)
func ErrorHandler(showDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "UNKNOWN_ERROR",
				Message: "An unexpected error occurred",
			}
			if showDetails {
				apiErr.Details = err.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			c.NoContent(apiErr.Status)
			return
		}
		c.JSON(apiErr.Status, apiErr)
	}
}

// statusOf is the HTTP status an error handler will send for err.
func statusOf(err error) int {
	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status
	case errors.As(err, &httpErr):
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
