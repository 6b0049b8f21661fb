package portal

import "errors"

var (
	// ErrCredentialRequired indicates no HQ portal password was supplied.
	ErrCredentialRequired = errors.New("portal credential required")
	// ErrInvalidCredential indicates the backend rejected the portal password.
	ErrInvalidCredential = errors.New("portal credential rejected")
	// ErrSuperseded indicates a newer load for the same credential replaced this one.
	ErrSuperseded = errors.New("portal load superseded by a newer request")
	// ErrProjectNotFound indicates the project is not part of the portal set.
	ErrProjectNotFound = errors.New("portal project not found")
)
