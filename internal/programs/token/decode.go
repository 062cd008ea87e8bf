package token

import (
	"encoding/binary"
	"fmt"

	"github.com/holaplex/chainmirror/internal/feed"
)

// TokenAccount is the decoded 165-byte token account record.
type TokenAccount struct {
	Mint            feed.Pubkey
	Owner           feed.Pubkey
	Amount          uint64
	Delegate        *feed.Pubkey
	State           uint8
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *feed.Pubkey
}

// Mint is the decoded 82-byte mint record.
type Mint struct {
	MintAuthority   *feed.Pubkey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *feed.Pubkey
}

// Token account states.
const (
	AccountStateUninitialized = 0
	AccountStateInitialized   = 1
	AccountStateFrozen        = 2
)

// DecodeTokenAccount parses the fixed-offset token account layout.
// The length has already been matched; any field failure here means a
// corrupt or newer-format payload and is a hard error.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) != TokenAccountLen {
		return nil, fmt.Errorf("token account payload is %d bytes, want %d", len(data), TokenAccountLen)
	}

	var account TokenAccount
	copy(account.Mint[:], data[0:32])
	copy(account.Owner[:], data[32:64])
	account.Amount = binary.LittleEndian.Uint64(data[64:72])

	delegate, err := decodeOptionKey(data[72:108], "delegate")
	if err != nil {
		return nil, err
	}
	account.Delegate = delegate

	account.State = data[108]
	if account.State > AccountStateFrozen {
		return nil, fmt.Errorf("invalid account state %d", account.State)
	}

	isNative, err := decodeOptionU64(data[109:121], "is_native")
	if err != nil {
		return nil, err
	}
	account.IsNative = isNative

	account.DelegatedAmount = binary.LittleEndian.Uint64(data[121:129])

	closeAuthority, err := decodeOptionKey(data[129:165], "close_authority")
	if err != nil {
		return nil, err
	}
	account.CloseAuthority = closeAuthority

	return &account, nil
}

// DecodeMint parses the fixed-offset mint layout.
func DecodeMint(data []byte) (*Mint, error) {
	if len(data) != MintLen {
		return nil, fmt.Errorf("mint payload is %d bytes, want %d", len(data), MintLen)
	}

	var mint Mint

	authority, err := decodeOptionKey(data[0:36], "mint_authority")
	if err != nil {
		return nil, err
	}
	mint.MintAuthority = authority

	mint.Supply = binary.LittleEndian.Uint64(data[36:44])
	mint.Decimals = data[44]

	switch data[45] {
	case 0:
		mint.IsInitialized = false
	case 1:
		mint.IsInitialized = true
	default:
		return nil, fmt.Errorf("invalid is_initialized byte %d", data[45])
	}

	freeze, err := decodeOptionKey(data[46:82], "freeze_authority")
	if err != nil {
		return nil, err
	}
	mint.FreezeAuthority = freeze

	return &mint, nil
}

// decodeOptionKey parses a COption<Pubkey>: a 4-byte little-endian tag
// (0 or 1) followed by 32 key bytes.
func decodeOptionKey(data []byte, field string) (*feed.Pubkey, error) {
	tag := binary.LittleEndian.Uint32(data[0:4])
	switch tag {
	case 0:
		return nil, nil
	case 1:
		var key feed.Pubkey
		copy(key[:], data[4:36])
		return &key, nil
	default:
		return nil, fmt.Errorf("invalid %s option tag %d", field, tag)
	}
}

// decodeOptionU64 parses a COption<u64>: a 4-byte tag followed by an
// 8-byte little-endian value.
func decodeOptionU64(data []byte, field string) (*uint64, error) {
	tag := binary.LittleEndian.Uint32(data[0:4])
	switch tag {
	case 0:
		return nil, nil
	case 1:
		v := binary.LittleEndian.Uint64(data[4:12])
		return &v, nil
	default:
		return nil, fmt.Errorf("invalid %s option tag %d", field, tag)
	}
}
