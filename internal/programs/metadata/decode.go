package metadata

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/holaplex/chainmirror/internal/feed"
)

// Metadata is the decoded MetadataV1 record.
type Metadata struct {
	UpdateAuthority      feed.Pubkey
	Mint                 feed.Pubkey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// Creator is one entry of the optional creator list.
type Creator struct {
	Address  feed.Pubkey
	Verified bool
	Share    uint8
}

// FirstVerifiedCreator returns the first verified creator's address,
// or nil when none is verified.
func (m *Metadata) FirstVerifiedCreator() *feed.Pubkey {
	for _, c := range m.Creators {
		if c.Verified {
			addr := c.Address
			return &addr
		}
	}
	return nil
}

// DecodeMetadata parses a MetadataV1 payload. The caller has already
// matched the leading key byte; any failure past that point is a hard
// decode error.
//
// Strings are borsh (u32 little-endian length prefix), NUL-padded on
// chain to their reserved widths; padding is trimmed and the result
// NFC-normalized.
func DecodeMetadata(data []byte) (*Metadata, error) {
	r := reader{data: data}

	key, err := r.u8()
	if err != nil {
		return nil, err
	}
	if key != keyMetadataV1 {
		return nil, fmt.Errorf("unexpected metadata key %d", key)
	}

	var meta Metadata
	if meta.UpdateAuthority, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("update_authority: %w", err)
	}
	if meta.Mint, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if meta.Name, err = r.borshString(); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if meta.Symbol, err = r.borshString(); err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	if meta.URI, err = r.borshString(); err != nil {
		return nil, fmt.Errorf("uri: %w", err)
	}
	if meta.SellerFeeBasisPoints, err = r.u16(); err != nil {
		return nil, fmt.Errorf("seller_fee_basis_points: %w", err)
	}
	if meta.Creators, err = r.creators(); err != nil {
		return nil, fmt.Errorf("creators: %w", err)
	}

	return &meta, nil
}

// reader is a bounds-checked cursor over a borsh payload.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("payload truncated at byte %d (want %d more)", r.pos, n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) pubkey() (feed.Pubkey, error) {
	var p feed.Pubkey
	b, err := r.take(feed.PubkeyLen)
	if err != nil {
		return p, err
	}
	copy(p[:], b)
	return p, nil
}

// borshString reads a length-prefixed string, trims on-chain NUL
// padding, and normalizes to NFC.
func (r *reader) borshString() (string, error) {
	length, err := r.u32()
	if err != nil {
		return "", err
	}
	if int(length) > len(r.data)-r.pos {
		return "", fmt.Errorf("string length %d overruns payload", length)
	}
	b, err := r.take(int(length))
	if err != nil {
		return "", err
	}
	return norm.NFC.String(strings.TrimRight(string(b), "\x00")), nil
}

// creators reads the Option<Vec<Creator>> field.
func (r *reader) creators() ([]Creator, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("invalid option tag %d", tag)
	}

	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	// Each creator is 34 bytes; bound up front so a corrupt count fails
	// cleanly instead of allocating.
	if int(count) > (len(r.data)-r.pos)/34 {
		return nil, fmt.Errorf("creator count %d overruns payload", count)
	}

	creators := make([]Creator, 0, count)
	for i := uint32(0); i < count; i++ {
		var c Creator
		if c.Address, err = r.pubkey(); err != nil {
			return nil, err
		}
		verified, err := r.u8()
		if err != nil {
			return nil, err
		}
		switch verified {
		case 0:
			c.Verified = false
		case 1:
			c.Verified = true
		default:
			return nil, fmt.Errorf("invalid verified byte %d in creator %d", verified, i)
		}
		if c.Share, err = r.u8(); err != nil {
			return nil, err
		}
		creators = append(creators, c)
	}
	return creators, nil
}
