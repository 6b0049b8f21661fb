package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/sitetrack/internal/backend"
	"github.com/rpggio/sitetrack/internal/domain/activity"
	"github.com/rpggio/sitetrack/internal/domain/portal"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/domain/session"
	"github.com/rpggio/sitetrack/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain and backend errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, portal.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Check the project id or job number"}
	case errors.Is(err, project.ErrScopeNotFound):
		return &APIError{Code: "SCOPE_NOT_FOUND", Message: "scope not found", RecoveryHint: "Reload the project to get current scope ids"}
	case errors.Is(err, project.ErrForbidden):
		return &APIError{Code: "FORBIDDEN", Message: "role may not manage scopes", RecoveryHint: "Use a ROOT_SUPERADMIN, ADMIN or PROJECT_MANAGER account"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput), errors.Is(err, session.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required fields; quantities must be non-negative"}
	case errors.Is(err, portal.ErrCredentialRequired), errors.Is(err, session.ErrNoCredential):
		return &APIError{Code: "CREDENTIAL_REQUIRED", Message: "HQ portal password required", RecoveryHint: "Call hq_login first"}
	case errors.Is(err, portal.ErrInvalidCredential):
		return &APIError{Code: "INVALID_CREDENTIAL", Message: "HQ portal password rejected", RecoveryHint: "Call hq_login with the current password"}
	case errors.Is(err, portal.ErrSuperseded):
		return &APIError{Code: "SUPERSEDED", Message: "a newer portal load replaced this one", RecoveryHint: "Use the result of the latest request"}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "session not found", RecoveryHint: "Call hq_login to start a session"}
	}

	var backendErr *backend.APIError
	if errors.As(err, &backendErr) && errors.Is(err, repository.ErrInvalidInput) {
		return &APIError{
			Code:         "VALIDATION_FAILED",
			Message:      backendErr.UserMessage(),
			Details:      backendErr.Fields,
			RecoveryHint: "Correct the listed fields and retry",
		}
	}

	switch {
	case errors.Is(err, repository.ErrUnauthorized):
		return &APIError{Code: "BACKEND_UNAUTHORIZED", Message: "backend rejected the service credentials", RecoveryHint: "Check the configured backend token; this is not retried"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "resource not found"}
	case errors.Is(err, repository.ErrUnavailable):
		return &APIError{Code: "BACKEND_UNAVAILABLE", Message: "backend unavailable", RecoveryHint: "Retry later"}
	default:
		return nil
	}
}
