package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrScopeNotFound indicates the scope doesn't exist.
	ErrScopeNotFound = errors.New("scope not found")
	// ErrInvalidInput indicates invalid scope input.
	ErrInvalidInput = errors.New("invalid scope input")
	// ErrForbidden indicates the caller's role may not manage scopes.
	ErrForbidden = errors.New("role may not manage scopes")
)
