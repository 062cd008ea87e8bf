// Package store provides SQLite-backed storage for the on-chain mirror.
//
// Two tables:
//   - token_owners: the current ownership row per mint, reconciled under
//     last-writer-wins keyed by slot
//   - outbox: durable async job envelopes, drained by an external relay
//
// # Critical Patterns
//
// CP-1: Atomic Conditional Upsert
//   - The ownership write is a single INSERT ... ON CONFLICT(mint_address)
//     DO UPDATE ... WHERE excluded.slot > token_owners.slot statement
//   - There is no separate read, so concurrent writers for the same mint
//     cannot interleave a stale value past a newer one
//
// CP-2: Slot Monotonicity
//   - token_owners.slot never decreases across writes to a row
//   - Stale and duplicate deliveries are no-ops, not errors
//
// CP-3: Transactional Outbox
//   - Async jobs are rows in the same database; a job enqueue shares the
//     durability of the state write it accompanies
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
