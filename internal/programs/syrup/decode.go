package syrup

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/holaplex/chainmirror/internal/feed"
)

// discriminatorLen is the anchor account discriminator prefix.
const discriminatorLen = 8

// Record is a decoded syrup account. Implementations also expose their
// fields as structured log attributes.
type Record interface {
	slog.LogValuer
	shape() string
}

// Globals is the program-wide configuration account.
type Globals struct {
	Discriminator   [discriminatorLen]byte
	Paused          bool
	Governor        feed.Pubkey
	PendingGovernor feed.Pubkey
}

// Lender is a per-depositor position account.
type Lender struct {
	Discriminator   [discriminatorLen]byte
	Owner           feed.Pubkey
	Pool            feed.Pubkey
	DepositedShares uint64
}

// Loan is a fixed-term loan account.
type Loan struct {
	Discriminator [discriminatorLen]byte
	Borrower      feed.Pubkey
	Pool          feed.Pubkey
	Principal     uint64
}

// OpenTermLoan is an open-term loan account.
type OpenTermLoan struct {
	Discriminator [discriminatorLen]byte
	Borrower      feed.Pubkey
	Pool          feed.Pubkey
	Principal     uint64
}

// Pool is a lending pool account.
type Pool struct {
	Discriminator     [discriminatorLen]byte
	Globals           feed.Pubkey
	Delegate          feed.Pubkey
	SharesOutstanding uint64
}

// WithdrawalRequest is a pending withdrawal account.
type WithdrawalRequest struct {
	Discriminator [discriminatorLen]byte
	Lender        feed.Pubkey
	Pool          feed.Pubkey
	Shares        uint64
}

func (Globals) shape() string           { return shapeGlobals }
func (Lender) shape() string            { return shapeLender }
func (Loan) shape() string              { return shapeLoan }
func (OpenTermLoan) shape() string      { return shapeOpenTermLoan }
func (Pool) shape() string              { return shapePool }
func (WithdrawalRequest) shape() string { return shapeWithdrawalRequest }

// LogValue implements slog.LogValuer.
func (g Globals) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("paused", g.Paused),
		slog.String("governor", g.Governor.String()),
	)
}

// LogValue implements slog.LogValuer.
func (l Lender) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("owner", l.Owner.String()),
		slog.String("pool", l.Pool.String()),
		slog.Uint64("deposited_shares", l.DepositedShares),
	)
}

// LogValue implements slog.LogValuer.
func (l Loan) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("borrower", l.Borrower.String()),
		slog.String("pool", l.Pool.String()),
		slog.Uint64("principal", l.Principal),
	)
}

// LogValue implements slog.LogValuer.
func (l OpenTermLoan) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("borrower", l.Borrower.String()),
		slog.String("pool", l.Pool.String()),
		slog.Uint64("principal", l.Principal),
	)
}

// LogValue implements slog.LogValuer.
func (p Pool) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("globals", p.Globals.String()),
		slog.String("delegate", p.Delegate.String()),
		slog.Uint64("shares_outstanding", p.SharesOutstanding),
	)
}

// LogValue implements slog.LogValuer.
func (w WithdrawalRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("lender", w.Lender.String()),
		slog.String("pool", w.Pool.String()),
		slog.Uint64("shares", w.Shares),
	)
}

// DecodeAccount parses the header of a length-classified syrup account.
// The length has already matched tag's shape; field failures here mean a
// corrupt or newer-format payload.
func DecodeAccount(tag string, data []byte) (Record, error) {
	var disc [discriminatorLen]byte
	copy(disc[:], data[:discriminatorLen])
	body := data[discriminatorLen:]

	switch tag {
	case shapeGlobals:
		return decodeGlobals(disc, body)
	case shapeLender:
		owner, pool, amount := decodeHeader(body)
		return Lender{Discriminator: disc, Owner: owner, Pool: pool, DepositedShares: amount}, nil
	case shapeLoan:
		borrower, pool, principal := decodeHeader(body)
		return Loan{Discriminator: disc, Borrower: borrower, Pool: pool, Principal: principal}, nil
	case shapeOpenTermLoan:
		borrower, pool, principal := decodeHeader(body)
		return OpenTermLoan{Discriminator: disc, Borrower: borrower, Pool: pool, Principal: principal}, nil
	case shapePool:
		globals, delegate, shares := decodeHeader(body)
		return Pool{Discriminator: disc, Globals: globals, Delegate: delegate, SharesOutstanding: shares}, nil
	case shapeWithdrawalRequest:
		lender, pool, shares := decodeHeader(body)
		return WithdrawalRequest{Discriminator: disc, Lender: lender, Pool: pool, Shares: shares}, nil
	default:
		return nil, fmt.Errorf("unknown syrup shape tag %q", tag)
	}
}

// decodeGlobals parses the globals header: paused flag then the governor
// key pair.
func decodeGlobals(disc [discriminatorLen]byte, body []byte) (Record, error) {
	var g Globals
	g.Discriminator = disc

	switch body[0] {
	case 0:
		g.Paused = false
	case 1:
		g.Paused = true
	default:
		return nil, fmt.Errorf("invalid paused byte %d", body[0])
	}

	copy(g.Governor[:], body[1:33])
	copy(g.PendingGovernor[:], body[33:65])
	return g, nil
}

// decodeHeader parses the common two-key-one-amount header the
// remaining tracked shapes share.
func decodeHeader(body []byte) (first, second feed.Pubkey, amount uint64) {
	copy(first[:], body[0:32])
	copy(second[:], body[32:64])
	amount = binary.LittleEndian.Uint64(body[64:72])
	return first, second, amount
}
