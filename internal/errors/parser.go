package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

type ErrorInfo struct {
	Code    string
	Message string
	Status  int
}

// ParseError turns a storage error into a client-safe code and message.
// context names the operation, e.g. "create pizza" or "register user".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Internal server error", Status: http.StatusInternalServerError}
	}

	errStr := err.Error()
	errLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context), Status: http.StatusNotFound}
	}

	// postgres 23505, sqlite "UNIQUE constraint failed"
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{Code: ResourceConflict, Message: "Referenced data does not exist or is still in use", Status: http.StatusConflict}
	}

	if strings.Contains(errLower, "not null constraint") || strings.Contains(errLower, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing", Status: http.StatusBadRequest}
	}

	if strings.Contains(errLower, "check constraint") {
		if strings.Contains(errLower, "rating") {
			return ErrorInfo{Code: RatingInvalidValue, Message: "Rating must be between 1 and 5", Status: http.StatusBadRequest}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input", Status: http.StatusBadRequest}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalExternalAPI, Message: "Upstream service unavailable. Please try again later", Status: http.StatusServiceUnavailable}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context), Status: http.StatusInternalServerError}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "username"):
		return ErrorInfo{Code: AuthUsernameExists, Message: "A user with that username already exists", Status: http.StatusConflict}
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "A user with that email already exists", Status: http.StatusConflict}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists", Status: http.StatusConflict}
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "pizza"):
		return "Pizza not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "cart"):
		return "Cart not found"
	}
	return "Not found"
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create resource. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update resource. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete resource. Please try again later"
	}
	return "Something went wrong. Please try again later"
}

// ParseAndRespond writes the parsed error with its mapped status.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
