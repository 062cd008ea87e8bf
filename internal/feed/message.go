package feed

import "fmt"

// Message is the tagged union of feed deliveries. Implementations are
// AccountUpdate, InstructionNotify, and SlotStatusUpdate; a message is
// owned solely by the pipeline invocation that receives it.
type Message interface {
	// MessageID returns the correlation id for this message. It is
	// computed before any handler runs so that every downstream failure
	// can be attributed to a specific account, program, or slot.
	MessageID() MessageID

	isMessage()
}

// AccountUpdate carries the full post-write state of an account.
type AccountUpdate struct {
	// Key is the account's address.
	Key Pubkey
	// Owner is the program that defines the interpretation of Data.
	Owner Pubkey
	// Data is the raw account payload.
	Data []byte
	// Slot is the ledger sequence number the write was observed at.
	Slot uint64
	// IsStartup marks replay-on-connect traffic emitted while the
	// upstream plugin snapshots existing accounts.
	IsStartup bool
}

// InstructionNotify carries a single confirmed program instruction.
type InstructionNotify struct {
	Program Pubkey
	Data    []byte
	// Accounts preserves the instruction's account ordering.
	Accounts []Pubkey
	Slot     uint64
}

// SlotStatusUpdate is informational slot progress. It never reaches a
// decoder.
type SlotStatusUpdate struct {
	Slot uint64
}

func (AccountUpdate) isMessage()     {}
func (InstructionNotify) isMessage() {}
func (SlotStatusUpdate) isMessage()  {}

// MessageID implements Message.
func (u AccountUpdate) MessageID() MessageID {
	return MessageID{Kind: KindAccountUpdate, Key: u.Key, Slot: u.Slot}
}

// MessageID implements Message.
func (i InstructionNotify) MessageID() MessageID {
	return MessageID{Kind: KindInstruction, Key: i.Program, Slot: i.Slot}
}

// MessageID implements Message.
func (s SlotStatusUpdate) MessageID() MessageID {
	return MessageID{Kind: KindSlotStatus, Slot: s.Slot}
}

// MessageKind distinguishes correlation id flavors.
type MessageKind int

const (
	// KindAccountUpdate identifies a message by account key.
	KindAccountUpdate MessageKind = iota + 1
	// KindInstruction identifies a message by program id.
	KindInstruction
	// KindSlotStatus identifies a message by slot number.
	KindSlotStatus
)

// MessageID is the correlation id attached to every reported failure.
// For account updates Key is the account address; for instructions it is
// the program id; for slot status only Slot is meaningful.
type MessageID struct {
	Kind MessageKind
	Key  Pubkey
	Slot uint64
}

// String renders the id for log and error output.
func (id MessageID) String() string {
	switch id.Kind {
	case KindAccountUpdate:
		return fmt.Sprintf("account update for %s", id.Key)
	case KindInstruction:
		return fmt.Sprintf("instruction from program %s", id.Key)
	case KindSlotStatus:
		return fmt.Sprintf("status update for slot %d", id.Slot)
	default:
		return fmt.Sprintf("unknown message kind %d", int(id.Kind))
	}
}
