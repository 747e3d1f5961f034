package health

import "errors"

var (
	// ErrCheckFailed is returned by Response.Err when any readiness check,
	// including "mail" and "mail_queue", reports unhealthy.
	ErrCheckFailed = errors.New("health: readiness check failed")

	// ErrCheckTimeout marks a check that ran past the shared deadline, such
	// as a transport Verify against an SMTP server that never answers.
	ErrCheckTimeout = errors.New("health: check deadline exceeded")
)
