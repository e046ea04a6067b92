package account

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/crypto"
)

const DiscriminatorSize = 8

type Discriminator [DiscriminatorSize]byte

// CompressedAccountData is the typed payload of a compressed account.
// DataHash is computed over the raw payload, not over Data.
type CompressedAccountData struct {
	Discriminator Discriminator `json:"discriminator"`
	Data          []byte        `json:"data"`
	DataHash      crypto.Hash   `json:"data_hash"`
}

// CompressedAccount is the account record handed to the tree insertion
// subsystem.
type CompressedAccount struct {
	Owner    solana.PublicKey       `json:"owner"`
	Lamports uint64                 `json:"lamports"`
	Address  *address.Address       `json:"address,omitempty"`
	Data     *CompressedAccountData `json:"data,omitempty"`
}

// NewAddressParams asks for Seed's derived address to be inserted into the
// tree/queue pair, proven against the root at RootIndex.
type NewAddressParams struct {
	Seed              address.Seed     `json:"seed"`
	AddressMerkleTree solana.PublicKey `json:"address_merkle_tree_pubkey"`
	AddressQueue      solana.PublicKey `json:"address_queue_pubkey"`
	RootIndex         uint16           `json:"address_merkle_tree_root_index"`
}

// MerkleContext returns the tree/queue pair the params target.
func (p NewAddressParams) MerkleContext() address.MerkleContext {
	return address.MerkleContext{Tree: p.AddressMerkleTree, Queue: p.AddressQueue}
}

// DiscriminatorFromName is the Anchor account discriminator,
// sha256("account:<name>")[:8].
func DiscriminatorFromName(name string) Discriminator {
	return sighash(bin.SIGHASH_ACCOUNT_NAMESPACE, name)
}

// InstructionDiscriminator is the Anchor instruction discriminator,
// sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) Discriminator {
	return sighash(bin.SIGHASH_GLOBAL_NAMESPACE, name)
}

func sighash(namespace, name string) Discriminator {
	var d Discriminator
	copy(d[:], bin.Sighash(namespace, name))
	return d
}
