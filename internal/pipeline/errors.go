package pipeline

import (
	"errors"
	"fmt"

	"github.com/holaplex/chainmirror/internal/feed"
)

// MessageError wraps any failure crossing back into the router with the
// correlation id computed before dispatch, so every reported failure can
// be attributed to a specific account, program, or slot regardless of
// which internal stage failed.
type MessageError struct {
	// ID is the correlation id of the triggering message.
	ID feed.MessageID

	// Err is the handler failure, unchanged in kind.
	Err error
}

// Error implements the error interface.
func (e *MessageError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Err)
}

// Unwrap returns the wrapped handler failure.
func (e *MessageError) Unwrap() error {
	return e.Err
}

// AsMessageError extracts a MessageError from an error chain.
func AsMessageError(err error) (*MessageError, bool) {
	var me *MessageError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
