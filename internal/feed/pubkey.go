package feed

import (
	"bytes"
	"fmt"
)

// PubkeyLen is the byte length of an on-chain address.
const PubkeyLen = 32

// Pubkey is a 32-byte on-chain address. The zero value is the all-zeros
// system address.
type Pubkey [PubkeyLen]byte

// PubkeyFromBase58 parses the canonical base58 text form of an address.
func PubkeyFromBase58(s string) (Pubkey, error) {
	var p Pubkey
	raw, err := base58Decode(s)
	if err != nil {
		return p, fmt.Errorf("parse pubkey %q: %w", s, err)
	}
	if len(raw) != PubkeyLen {
		return p, fmt.Errorf("parse pubkey %q: decoded to %d bytes, want %d", s, len(raw), PubkeyLen)
	}
	copy(p[:], raw)
	return p, nil
}

// MustPubkey parses a base58 address and panics on failure.
// Intended for package-level program id constants.
func MustPubkey(s string) Pubkey {
	p, err := PubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PubkeyFromBytes copies a 32-byte slice into a Pubkey.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var p Pubkey
	if len(b) != PubkeyLen {
		return p, fmt.Errorf("pubkey from bytes: got %d bytes, want %d", len(b), PubkeyLen)
	}
	copy(p[:], b)
	return p, nil
}

// IsZero reports whether the address is all zeros.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// String returns the base58 text form.
func (p Pubkey) String() string {
	return base58Encode(p[:])
}

// MarshalText implements encoding.TextMarshaler using the base58 form.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := PubkeyFromBase58(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(base58Alphabet); i++ {
		idx[base58Alphabet[i]] = int8(i)
	}
	return idx
}()

// base58Encode encodes raw bytes in the Bitcoin base58 alphabet.
// Leading zero bytes encode as leading '1' characters.
func base58Encode(input []byte) string {
	zeros := 0
	for zeros < len(input) && input[zeros] == 0 {
		zeros++
	}

	// Base conversion over a big-endian byte accumulator.
	digits := make([]byte, 0, len(input)*2)
	for _, b := range input[zeros:] {
		carry := int(b)
		for i := 0; i < len(digits); i++ {
			carry += int(digits[i]) << 8
			digits[i] = byte(carry % 58)
			carry /= 58
		}
		for carry > 0 {
			digits = append(digits, byte(carry%58))
			carry /= 58
		}
	}

	var out bytes.Buffer
	out.Grow(zeros + len(digits))
	for i := 0; i < zeros; i++ {
		out.WriteByte('1')
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out.WriteByte(base58Alphabet[digits[i]])
	}
	return out.String()
}

// base58Decode decodes a Bitcoin-alphabet base58 string.
func base58Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty base58 string")
	}

	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}

	raw := make([]byte, 0, len(s))
	for i := zeros; i < len(s); i++ {
		digit := base58Index[s[i]]
		if digit < 0 {
			return nil, fmt.Errorf("invalid base58 character %q", s[i])
		}
		carry := int(digit)
		for j := 0; j < len(raw); j++ {
			carry += int(raw[j]) * 58
			raw[j] = byte(carry & 0xff)
			carry >>= 8
		}
		for carry > 0 {
			raw = append(raw, byte(carry&0xff))
			carry >>= 8
		}
	}

	out := make([]byte, zeros+len(raw))
	for i := 0; i < len(raw); i++ {
		out[zeros+len(raw)-1-i] = raw[i]
	}
	return out, nil
}
