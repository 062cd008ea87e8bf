package feed

import (
	"encoding/json"
	"fmt"
)

// Envelope type tags for the JSON wire form used by replay sources.
const (
	typeAccountUpdate     = "account_update"
	typeInstructionNotify = "instruction_notify"
	typeSlotStatusUpdate  = "slot_status_update"
)

type envelope struct {
	Type      string   `json:"type"`
	Key       *Pubkey  `json:"key,omitempty"`
	Owner     *Pubkey  `json:"owner,omitempty"`
	Program   *Pubkey  `json:"program,omitempty"`
	Data      []byte   `json:"data,omitempty"`
	Accounts  []Pubkey `json:"accounts,omitempty"`
	Slot      uint64   `json:"slot"`
	IsStartup bool     `json:"is_startup,omitempty"`
}

// MarshalMessage renders a message in the tagged JSON envelope form.
// Account data is base64 per encoding/json []byte convention; addresses
// are base58 text.
func MarshalMessage(msg Message) ([]byte, error) {
	var env envelope
	switch m := msg.(type) {
	case AccountUpdate:
		env = envelope{
			Type:      typeAccountUpdate,
			Key:       &m.Key,
			Owner:     &m.Owner,
			Data:      m.Data,
			Slot:      m.Slot,
			IsStartup: m.IsStartup,
		}
	case InstructionNotify:
		env = envelope{
			Type:     typeInstructionNotify,
			Program:  &m.Program,
			Data:     m.Data,
			Accounts: m.Accounts,
			Slot:     m.Slot,
		}
	case SlotStatusUpdate:
		env = envelope{Type: typeSlotStatusUpdate, Slot: m.Slot}
	default:
		return nil, fmt.Errorf("marshal message: unsupported type %T", msg)
	}
	return json.Marshal(env)
}

// UnmarshalMessage parses the tagged JSON envelope form.
func UnmarshalMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}

	switch env.Type {
	case typeAccountUpdate:
		if env.Key == nil || env.Owner == nil {
			return nil, fmt.Errorf("unmarshal message: account_update requires key and owner")
		}
		return AccountUpdate{
			Key:       *env.Key,
			Owner:     *env.Owner,
			Data:      env.Data,
			Slot:      env.Slot,
			IsStartup: env.IsStartup,
		}, nil
	case typeInstructionNotify:
		if env.Program == nil {
			return nil, fmt.Errorf("unmarshal message: instruction_notify requires program")
		}
		return InstructionNotify{
			Program:  *env.Program,
			Data:     env.Data,
			Accounts: env.Accounts,
			Slot:     env.Slot,
		}, nil
	case typeSlotStatusUpdate:
		return SlotStatusUpdate{Slot: env.Slot}, nil
	default:
		return nil, fmt.Errorf("unmarshal message: unknown type %q", env.Type)
	}
}
