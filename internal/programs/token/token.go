// Package token mirrors the SPL token program family.
//
// Token accounts and mints carry no embedded type tag; the exact payload
// length is the only disambiguation signal (165 bytes for a token
// account, 82 for a mint). Non-fungible ownership is tracked through the
// per-token-account fact; mint records and fungible balances are handed
// off as async jobs.
package token

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/holaplex/chainmirror/internal/config"
	"github.com/holaplex/chainmirror/internal/dispatch"
	"github.com/holaplex/chainmirror/internal/feed"
	"github.com/holaplex/chainmirror/internal/programs"
	"github.com/holaplex/chainmirror/internal/store"
)

// ProgramID is the SPL token program.
var ProgramID = feed.MustPubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// Exact payload lengths for the tracked shapes.
const (
	TokenAccountLen = 165
	MintLen         = 82
)

// Shape tags.
const (
	shapeTokenAccount = "token-account"
	shapeMint         = "mint"
)

var accountShapes = programs.MustShapeTable(
	programs.Shape{Tag: shapeTokenAccount, Len: TokenAccountLen},
	programs.Shape{Tag: shapeMint, Len: MintLen},
)

// Instruction discriminators (leading opaque byte).
const burnInstruction = 8

// Handler is the token family capability.
type Handler struct {
	store *store.Store
	disp  *dispatch.Dispatcher
	log   *slog.Logger
}

// New creates the token handler.
func New(s *store.Store, d *dispatch.Dispatcher, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: s, disp: d, log: log}
}

// Program implements programs.Handler.
func (h *Handler) Program() feed.Pubkey { return ProgramID }

// Category implements programs.Handler.
func (h *Handler) Category() config.Category { return config.CategoryTokens }

// HandleAccount classifies the payload by exact length and applies the
// decoded record. Unknown lengths are untracked shapes owned by the same
// program and succeed as no-ops.
func (h *Handler) HandleAccount(ctx context.Context, upd feed.AccountUpdate) error {
	tag, ok := accountShapes.Lookup(len(upd.Data))
	if !ok {
		h.log.Debug("untracked token account shape",
			"account", upd.Key.String(), "len", len(upd.Data))
		return nil
	}

	switch tag {
	case shapeTokenAccount:
		return h.applyTokenAccount(ctx, upd)
	case shapeMint:
		return h.applyMint(ctx, upd)
	default:
		return nil
	}
}

// applyTokenAccount reconciles a decoded token account.
//
// A balance above one is a fungible holding: it is dispatched as an
// async job and writes no ownership row. Otherwise the account is the
// token-account side of an NFT and its (mint, owner) fact goes through
// the slot-guarded upsert.
func (h *Handler) applyTokenAccount(ctx context.Context, upd feed.AccountUpdate) error {
	account, err := DecodeTokenAccount(upd.Data)
	if err != nil {
		return &programs.DecodeError{Address: upd.Key, Shape: shapeTokenAccount, Err: err}
	}

	if account.Amount > 1 {
		return h.disp.Write(ctx, dispatch.FungibleTokenJob{
			Owner:        account.Owner,
			TokenAccount: upd.Key,
			Mint:         account.Mint,
			Amount:       account.Amount,
		})
	}

	return h.store.ApplyOwnership(ctx, store.OwnershipFact{
		Mint:         account.Mint,
		Owner:        account.Owner,
		TokenAccount: upd.Key,
		Slot:         upd.Slot,
	})
}

// applyMint hands initialized fungible mints to the dispatcher.
// A supply of one looks like an NFT: its ownership is tracked through
// the token-account fact exclusively, so the mint record is skipped,
// as are uninitialized accounts.
func (h *Handler) applyMint(ctx context.Context, upd feed.AccountUpdate) error {
	mint, err := DecodeMint(upd.Data)
	if err != nil {
		return &programs.DecodeError{Address: upd.Key, Shape: shapeMint, Err: err}
	}

	if !mint.IsInitialized || mint.Supply == 1 {
		return nil
	}

	return h.disp.Write(ctx, dispatch.FungibleMintJob{
		MintAuthority: mint.MintAuthority,
		Mint:          upd.Key,
		Decimals:      mint.Decimals,
		Supply:        mint.Supply,
	})
}

// HandleInstruction routes on the leading opaque discriminator byte.
// Only burns are tracked; unknown discriminators succeed as no-ops.
func (h *Handler) HandleInstruction(ctx context.Context, ins feed.InstructionNotify) error {
	if len(ins.Data) == 0 {
		return fmt.Errorf("invalid spl token instruction: empty data")
	}

	switch ins.Data[0] {
	case burnInstruction:
		return h.applyBurn(ctx, ins)
	default:
		return nil
	}
}

// applyBurn marks the burned mint on its mirrored row.
// Burn account order: [token account, mint, authority].
func (h *Handler) applyBurn(ctx context.Context, ins feed.InstructionNotify) error {
	if len(ins.Accounts) < 2 {
		return fmt.Errorf("burn instruction carries %d accounts, want at least 2", len(ins.Accounts))
	}
	return h.store.MarkBurned(ctx, ins.Accounts[1], ins.Slot)
}
