package services

import (
	"errors"
	"net/http"

	"github.com/latum0/exonyb-sub001/repository"
)

// ServiceError is a caller-visible business outcome carrying the HTTP status
// the controller should answer with.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func badRequest(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

func internal(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}

// mapRepoError translates repository sentinels into caller-visible outcomes.
// Insufficient stock is a business conflict, not a validation failure.
func mapRepoError(err error, notFoundMsg string) *ServiceError {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(notFoundMsg)
	case errors.Is(err, repository.ErrInsufficientStock):
		return &ServiceError{StatusCode: http.StatusConflict, Message: "Insufficient stock"}
	default:
		return internal("Unexpected storage error")
	}
}

// asServiceError unwraps a transaction error back into the ServiceError
// raised inside it, or wraps unexpected failures as 500.
func asServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return internal("Operation failed")
}
