// Package metadata tracks the token metadata program family.
//
// Unlike the token family, metadata payloads are variable-length borsh
// records, so the leading key byte is the discriminator instead of the
// payload length. Only the MetadataV1 record is tracked; its URI is
// handed off as an off-chain document fetch job.
package metadata

import (
	"context"
	"log/slog"

	"github.com/holaplex/chainmirror/internal/config"
	"github.com/holaplex/chainmirror/internal/dispatch"
	"github.com/holaplex/chainmirror/internal/feed"
	"github.com/holaplex/chainmirror/internal/programs"
)

// ProgramID is the token metadata program.
var ProgramID = feed.MustPubkey("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// keyMetadataV1 is the record key for metadata accounts.
const keyMetadataV1 = 4

// Handler is the metadata family capability.
type Handler struct {
	disp *dispatch.Dispatcher
	log  *slog.Logger
}

// New creates the metadata handler.
func New(d *dispatch.Dispatcher, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{disp: d, log: log}
}

// Program implements programs.Handler.
func (h *Handler) Program() feed.Pubkey { return ProgramID }

// Category implements programs.Handler.
func (h *Handler) Category() config.Category { return config.CategoryMetadata }

// HandleAccount routes on the leading key byte. Untracked keys are
// recognized-absence; a matching key with a failed parse is a hard
// decode error.
func (h *Handler) HandleAccount(ctx context.Context, upd feed.AccountUpdate) error {
	if len(upd.Data) == 0 || upd.Data[0] != keyMetadataV1 {
		return nil
	}

	meta, err := DecodeMetadata(upd.Data)
	if err != nil {
		return &programs.DecodeError{Address: upd.Key, Shape: "metadata-v1", Err: err}
	}

	if meta.URI == "" {
		h.log.Debug("metadata without uri, skipping fetch",
			"account", upd.Key.String(), "mint", meta.Mint.String())
		return nil
	}

	return h.disp.Write(ctx, dispatch.MetadataJSONJob{
		MetaAddress:          upd.Key,
		URI:                  meta.URI,
		FirstVerifiedCreator: meta.FirstVerifiedCreator(),
	})
}

// HandleInstruction implements programs.Handler. No metadata
// instructions are tracked.
func (h *Handler) HandleInstruction(ctx context.Context, ins feed.InstructionNotify) error {
	return nil
}
