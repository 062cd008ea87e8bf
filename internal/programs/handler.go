package programs

import (
	"context"
	"errors"
	"fmt"

	"github.com/holaplex/chainmirror/internal/config"
	"github.com/holaplex/chainmirror/internal/feed"
)

// Handler is the capability a program family exposes to the router:
// decode and apply account updates and instructions for one owner
// identity.
type Handler interface {
	// Program is the owner identity this handler serves.
	Program() feed.Pubkey

	// Category is the ignore category for startup-replay suppression,
	// or config.CategoryNone for families that are never suppressed.
	Category() config.Category

	// HandleAccount decodes and applies one account update.
	// Unrecognized payload shapes return nil.
	HandleAccount(ctx context.Context, upd feed.AccountUpdate) error

	// HandleInstruction decodes and applies one instruction.
	// Unknown discriminators return nil.
	HandleInstruction(ctx context.Context, ins feed.InstructionNotify) error
}

// DecodeError reports a payload whose length or discriminator matched a
// known shape but whose field parse failed - a corrupt or newer-format
// payload. It is always tagged with the originating account address.
type DecodeError struct {
	// Address is the account the payload came from.
	Address feed.Pubkey
	// Shape names the record shape the payload was classified as.
	Shape string
	// Err is the underlying parse failure.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s account %s: %v", e.Shape, e.Address, e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
