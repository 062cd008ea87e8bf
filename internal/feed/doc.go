// Package feed defines the inbound message model for the chain mirror
// pipeline.
//
// The upstream change feed delivers three message kinds:
//   - AccountUpdate: the full data of an on-chain account after a write
//   - InstructionNotify: a program instruction observed in a confirmed block
//   - SlotStatusUpdate: informational slot progress
//
// Delivery is at-least-once with no cross-entity ordering guarantee;
// consumers must tolerate duplicates, reordering, and startup replay
// (AccountUpdate.IsStartup). Every message carries enough information to
// compute a MessageID, the correlation id attached to any failure it causes.
package feed
