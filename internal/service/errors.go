// Package service implements the application logic between HTTP handlers
// and the store, including the agent-backed chat cycle.
package service

import "errors"

// ErrAgentFailure marks a chat turn where the model's first round-trip
// failed before any tool ran. Handlers map it to a 500 with a dedicated
// error code.
var ErrAgentFailure = errors.New("agent failure")

// ValidationError reports a request that failed input validation. Handlers
// map it to a 400 with the message verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}
