package leads

import "errors"

var (
	// ErrMissingContact is returned when neither an email nor a name is
	// present at lead creation; the session stays unconverted.
	ErrMissingContact = errors.New("either email or name is required")

	// ErrMissingBusinessID is returned when the tenant scope is absent.
	ErrMissingBusinessID = errors.New("business id is required")

	// ErrLeadNotFound is returned when a lead is not found within the
	// caller's tenant scope.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrSessionNotTerminal is returned when lead creation is attempted
	// before the session completed or escalated.
	ErrSessionNotTerminal = errors.New("session has not completed intake")
)
