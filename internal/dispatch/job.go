// Package dispatch hands async work to the durable outbound channel.
//
// Jobs are pure data envelopes; all decoding happened upstream. Once
// written they are fire-and-forget from this core's perspective: an
// external relay drains the outbox and delivers at least once to the
// downstream worker. The offer notification path is best-effort and never
// unwinds state already committed for the triggering message.
package dispatch

import "github.com/holaplex/chainmirror/internal/feed"

// AsyncJob is the tagged union of outbound work envelopes.
type AsyncJob interface {
	// Kind is the stable wire name of the job shape.
	Kind() string
}

// Job kind wire names.
const (
	KindMetadataJSON  = "metadata-json"
	KindStoreConfig   = "store-config"
	KindFungibleToken = "fungible-token"
	KindFungibleMint  = "fungible-mint"
)

// MetadataJSONJob requests an off-chain metadata document fetch.
type MetadataJSONJob struct {
	MetaAddress feed.Pubkey `json:"meta_address"`
	URI         string      `json:"uri"`
	// FirstVerifiedCreator is set when the creator list carries a
	// verified entry; the fetch worker uses it for attribution.
	FirstVerifiedCreator *feed.Pubkey `json:"first_verified_creator,omitempty"`
}

// Kind implements AsyncJob.
func (MetadataJSONJob) Kind() string { return KindMetadataJSON }

// StoreConfigJob requests an off-chain store configuration fetch.
type StoreConfigJob struct {
	ConfigAddress feed.Pubkey `json:"config_address"`
	URI           string      `json:"uri"`
}

// Kind implements AsyncJob.
func (StoreConfigJob) Kind() string { return KindStoreConfig }

// FungibleTokenJob reports a token-account balance above one. Fungible
// holdings are not mirrored as ownership rows; they are handed off for
// downstream balance indexing.
type FungibleTokenJob struct {
	Owner        feed.Pubkey `json:"owner"`
	TokenAccount feed.Pubkey `json:"token_account"`
	Mint         feed.Pubkey `json:"mint"`
	Amount       uint64      `json:"amount"`
}

// Kind implements AsyncJob.
func (FungibleTokenJob) Kind() string { return KindFungibleToken }

// FungibleMintJob reports an initialized mint whose supply marks it
// fungible.
type FungibleMintJob struct {
	MintAuthority *feed.Pubkey `json:"mint_authority,omitempty"`
	Mint          feed.Pubkey  `json:"mint"`
	Decimals      uint8        `json:"decimals"`
	Supply        uint64       `json:"supply"`
}

// Kind implements AsyncJob.
func (FungibleMintJob) Kind() string { return KindFungibleMint }
