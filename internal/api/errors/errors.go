// Package errors defines the errors services hand back to API handlers.
// Each error carries the HTTP status and the message shown to the client.
package errors

import (
	"fmt"
	"net/http"
)

// APIError is a client-facing error with an HTTP status code.
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newErr(code int, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

// NewErrValidation reports malformed or missing input.
func NewErrValidation(message string) *APIError {
	return newErr(http.StatusBadRequest, message, nil)
}

func NewErrMissingFields() *APIError {
	return NewErrValidation("All fields are required")
}

func NewErrMissingCredentials() *APIError {
	return NewErrValidation("Email and password are required")
}

func NewErrEmailDomain() *APIError {
	return NewErrValidation("Email must include gmail.com domain")
}

func NewErrPasswordTooShort(minLength int) *APIError {
	return NewErrValidation(fmt.Sprintf("Password must be at least %d characters long", minLength))
}

// NewErrUserExists is the signup conflict. It is a 400 for client compatibility.
func NewErrUserExists() *APIError {
	return newErr(http.StatusBadRequest, "User already exists", nil)
}

func NewErrAccountNotFound() *APIError {
	return newErr(http.StatusNotFound, "No account found with this email", nil)
}

func NewErrInvalidCredentials() *APIError {
	return newErr(http.StatusUnauthorized, "Invalid credentials", nil)
}

func NewErrUserNotFound() *APIError {
	return newErr(http.StatusNotFound, "User not found", nil)
}

func NewErrMissingAuthorizationToken() *APIError {
	return newErr(http.StatusUnauthorized, "Access denied. No token provided.", nil)
}

func NewErrInvalidAuthorizationToken(err error) *APIError {
	return newErr(http.StatusUnauthorized, "Invalid token.", err)
}

func NewErrExpiredAuthorizationToken(err error) *APIError {
	return newErr(http.StatusUnauthorized, "Token expired. Please login again.", err)
}

func NewErrAuthenticationFailed(err error) *APIError {
	return newErr(http.StatusInternalServerError, "Authentication failed.", err)
}

func NewErrTaskTitleRequired() *APIError {
	return NewErrValidation("Task title is required")
}

func NewErrInvalidStatus(status string) *APIError {
	return NewErrValidation(fmt.Sprintf("Invalid status: %q", status))
}

func NewErrInvalidPriority(priority string) *APIError {
	return NewErrValidation(fmt.Sprintf("Invalid priority: %q", priority))
}

// TaskAction names the mutation a task lookup was made for.
type TaskAction string

const (
	TaskActionUpdate TaskAction = "update"
	TaskActionDelete TaskAction = "delete"
)

// NewErrTaskNotFound is returned both for missing tasks and for tasks owned by someone else.
func NewErrTaskNotFound(action TaskAction) *APIError {
	return newErr(http.StatusNotFound,
		fmt.Sprintf("Task not found or you don't have permission to %s it", action), nil)
}

func NewErrRouteNotFound() *APIError {
	return newErr(http.StatusNotFound, "Route not found", nil)
}

// NewErrInternalServerError hides err behind message.
func NewErrInternalServerError(message string, err error) *APIError {
	if message == "" {
		message = "Internal Server Error"
	}
	return newErr(http.StatusInternalServerError, message, err)
}
