package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/holaplex/chainmirror/internal/feed"
)

// OwnershipFact is a decoded ownership observation for one mint at one
// slot.
type OwnershipFact struct {
	Mint         feed.Pubkey
	Owner        feed.Pubkey
	TokenAccount feed.Pubkey
	Slot         uint64
}

// OwnershipRecord is the persisted row for a mint.
type OwnershipRecord struct {
	Mint         feed.Pubkey
	Owner        feed.Pubkey
	TokenAccount feed.Pubkey
	Slot         uint64

	// BurnedSlot is the slot a burn was observed at, nil if never burned.
	BurnedSlot *uint64
}

// ApplyOwnership reconciles a fact into token_owners under
// last-writer-wins keyed by slot.
//
// The whole decision is one conditional upsert executed by SQLite:
// insert when no row exists; on conflict update only when the incoming
// slot exceeds the stored slot. There is deliberately no separate read,
// so two facts for the same mint applied concurrently always converge on
// the one with the higher slot regardless of interleaving (CP-1).
//
// A stale or duplicate fact (incoming slot <= stored slot) is a no-op.
func (s *Store) ApplyOwnership(ctx context.Context, fact OwnershipFact) error {
	slot, err := slotToInt64(fact.Slot)
	if err != nil {
		return fmt.Errorf("apply ownership: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO token_owners
		(mint_address, owner_address, token_account_address, slot)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(mint_address) DO UPDATE SET
			owner_address         = excluded.owner_address,
			token_account_address = excluded.token_account_address,
			slot                  = excluded.slot
		WHERE excluded.slot > token_owners.slot
	`,
		fact.Mint.String(),
		fact.Owner.String(),
		fact.TokenAccount.String(),
		slot,
	)
	if err != nil {
		return fmt.Errorf("apply ownership for mint %s: %w", fact.Mint, err)
	}

	return nil
}

// GetOwnership returns the row for a mint, or nil if none exists.
func (s *Store) GetOwnership(ctx context.Context, mint feed.Pubkey) (*OwnershipRecord, error) {
	var (
		mintAddr, ownerAddr, tokenAddr string
		slot                           int64
		burnedSlot                     sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT mint_address, owner_address, token_account_address, slot, burned_slot
		FROM token_owners
		WHERE mint_address = ?
	`, mint.String()).Scan(&mintAddr, &ownerAddr, &tokenAddr, &slot, &burnedSlot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ownership for mint %s: %w", mint, err)
	}

	rec := &OwnershipRecord{Slot: uint64(slot)}
	if rec.Mint, err = feed.PubkeyFromBase58(mintAddr); err != nil {
		return nil, fmt.Errorf("get ownership for mint %s: %w", mint, err)
	}
	if rec.Owner, err = feed.PubkeyFromBase58(ownerAddr); err != nil {
		return nil, fmt.Errorf("get ownership for mint %s: %w", mint, err)
	}
	if rec.TokenAccount, err = feed.PubkeyFromBase58(tokenAddr); err != nil {
		return nil, fmt.Errorf("get ownership for mint %s: %w", mint, err)
	}
	if burnedSlot.Valid {
		b := uint64(burnedSlot.Int64)
		rec.BurnedSlot = &b
	}

	return rec, nil
}

// MarkBurned records a burn observation on the mint's row. Later burn
// slots win; earlier ones are no-ops (CP-2 applies to burned_slot too).
// A burn for an untracked mint is a no-op and not an error.
func (s *Store) MarkBurned(ctx context.Context, mint feed.Pubkey, slot uint64) error {
	burned, err := slotToInt64(slot)
	if err != nil {
		return fmt.Errorf("mark burned: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE token_owners
		SET burned_slot = ?
		WHERE mint_address = ?
		  AND (burned_slot IS NULL OR burned_slot < ?)
	`, burned, mint.String(), burned)
	if err != nil {
		return fmt.Errorf("mark burned for mint %s: %w", mint, err)
	}

	return nil
}

// CountOwnershipRows returns the number of rows in token_owners.
func (s *Store) CountOwnershipRows(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM token_owners").Scan(&count); err != nil {
		return 0, fmt.Errorf("count ownership rows: %w", err)
	}
	return count, nil
}

// slotToInt64 converts a feed slot to the stored integer form.
// Slots beyond math.MaxInt64 cannot be represented by SQLite INTEGER.
func slotToInt64(slot uint64) (int64, error) {
	if slot > math.MaxInt64 {
		return 0, fmt.Errorf("slot %d overflows stored representation", slot)
	}
	return int64(slot), nil
}
