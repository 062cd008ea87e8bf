// Package syrup tracks the syrup lending program family.
//
// Payloads are anchor accounts: an 8-byte discriminator followed by
// borsh fields. Shapes are still classified by exact payload length -
// the discriminator is retained opaquely rather than trusted, because
// the tracked shape set predates stable discriminator values.
//
// No shape in this family currently mutates mirror state; decoded
// records are logged and dropped. The decode path exists so corrupt or
// newer-format payloads surface as errors instead of silently passing.
package syrup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/holaplex/chainmirror/internal/config"
	"github.com/holaplex/chainmirror/internal/feed"
	"github.com/holaplex/chainmirror/internal/programs"
)

// ProgramID is the syrup lending program.
var ProgramID = feed.MustPubkey("5D9yi4BKrxF8h65NkVE1raCCWFKUs5ngub2ECxhvfaZe")

// Exact payload lengths for the tracked shapes.
const (
	GlobalsLen           = 1226
	LenderLen            = 240
	LoanLen              = 376
	OpenTermLoanLen      = 432
	PoolLen              = 397
	WithdrawalRequestLen = 216
)

// Shape tags.
const (
	shapeGlobals           = "globals"
	shapeLender            = "lender"
	shapeLoan              = "loan"
	shapeOpenTermLoan      = "open-term-loan"
	shapePool              = "pool"
	shapeWithdrawalRequest = "withdrawal-request"
)

var accountShapes = programs.MustShapeTable(
	programs.Shape{Tag: shapeGlobals, Len: GlobalsLen},
	programs.Shape{Tag: shapeLender, Len: LenderLen},
	programs.Shape{Tag: shapeLoan, Len: LoanLen},
	programs.Shape{Tag: shapeOpenTermLoan, Len: OpenTermLoanLen},
	programs.Shape{Tag: shapePool, Len: PoolLen},
	programs.Shape{Tag: shapeWithdrawalRequest, Len: WithdrawalRequestLen},
)

// Instruction discriminators (leading opaque byte).
const withdrawalRequestInitialize = 21

// Handler is the syrup family capability.
type Handler struct {
	log *slog.Logger
}

// New creates the syrup handler.
func New(log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log}
}

// Program implements programs.Handler.
func (h *Handler) Program() feed.Pubkey { return ProgramID }

// Category implements programs.Handler.
func (h *Handler) Category() config.Category { return config.CategoryNone }

// HandleAccount classifies by exact length, decodes, and logs the
// record. Unknown lengths succeed as no-ops.
func (h *Handler) HandleAccount(ctx context.Context, upd feed.AccountUpdate) error {
	tag, ok := accountShapes.Lookup(len(upd.Data))
	if !ok {
		h.log.Debug("untracked syrup account shape",
			"account", upd.Key.String(), "len", len(upd.Data))
		return nil
	}

	record, err := DecodeAccount(tag, upd.Data)
	if err != nil {
		return &programs.DecodeError{Address: upd.Key, Shape: tag, Err: err}
	}

	h.log.Debug("processing syrup account",
		"shape", tag, "account", upd.Key.String(), "slot", upd.Slot,
		"record", record.LogValue())
	return nil
}

// HandleInstruction routes on the leading opaque discriminator byte.
//
// The withdrawal-request initialize instruction is decoded but applies
// no mutation: the on-chain side effects (locker account creation and
// share transfer) are not derivable from the notification alone, so the
// handler only records the participants.
func (h *Handler) HandleInstruction(ctx context.Context, ins feed.InstructionNotify) error {
	if len(ins.Data) == 0 {
		return fmt.Errorf("invalid syrup instruction: empty data")
	}

	discriminator := ins.Data[0]
	h.log.Debug("syrup instruction", "discriminator", discriminator)

	switch discriminator {
	case withdrawalRequestInitialize:
		return h.observeWithdrawalRequest(ins)
	default:
		return nil
	}
}

// observeWithdrawalRequest logs the withdrawal participants.
// Account order: [lender, lender owner, pool, globals, shares mint,
// lender share account, withdrawal request, locker, ...programs].
func (h *Handler) observeWithdrawalRequest(ins feed.InstructionNotify) error {
	if len(ins.Accounts) < 7 {
		return fmt.Errorf("withdrawal request instruction carries %d accounts, want at least 7", len(ins.Accounts))
	}

	h.log.Debug("withdrawal request initialized",
		"lender", ins.Accounts[0].String(),
		"lender_owner", ins.Accounts[1].String(),
		"pool", ins.Accounts[2].String(),
		"withdrawal_request", ins.Accounts[6].String(),
		"slot", ins.Slot)
	return nil
}
