// Package address derives compressed account addresses and resolves the
// merkle context they are registered under.
package address

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/compmemo/internal/crypto"
)

const (
	SeedSize    = 32
	AddressSize = 32
)

var ErrAccountIndexOutOfRange = errors.New("packed account index out of range")

type (
	Seed    [SeedSize]byte
	Address [AddressSize]byte
)

// MerkleContext names the address merkle tree and the queue that buffers
// insertions into it.
type MerkleContext struct {
	Tree  solana.PublicKey `json:"address_merkle_tree_pubkey"`
	Queue solana.PublicKey `json:"address_queue_pubkey"`
}

// PackedMerkleContext refers to the tree and queue by their position in the
// account list of a request.
type PackedMerkleContext struct {
	TreeIndex  uint8 `json:"address_merkle_tree_pubkey_index"`
	QueueIndex uint8 `json:"address_queue_pubkey_index"`
}

// UnpackMerkleContext resolves packed indices against the keys of a request.
func UnpackMerkleContext(packed PackedMerkleContext, keys []solana.PublicKey) (MerkleContext, error) {
	if int(packed.TreeIndex) >= len(keys) {
		return MerkleContext{}, fmt.Errorf("%w: tree index %d, %d accounts", ErrAccountIndexOutOfRange, packed.TreeIndex, len(keys))
	}
	if int(packed.QueueIndex) >= len(keys) {
		return MerkleContext{}, fmt.Errorf("%w: queue index %d, %d accounts", ErrAccountIndexOutOfRange, packed.QueueIndex, len(keys))
	}
	return MerkleContext{
		Tree:  keys[packed.TreeIndex],
		Queue: keys[packed.QueueIndex],
	}, nil
}

// Derive computes the address claimed by seed in the given tree. The result
// is a bn254 field element and depends only on the tree key and the seed.
func Derive(seed Seed, ctx MerkleContext) Address {
	input := make([]byte, 0, len(ctx.Tree)+SeedSize)
	input = append(input, ctx.Tree[:]...)
	input = append(input, seed[:]...)

	h, _, err := crypto.HashToFieldSize(input)
	if err != nil {
		// unreachable: a digest with a cleared top byte is always in the field
		panic(err)
	}
	return Address(h)
}

// DeriveSeed binds seeds to a program so that two programs using the same
// seeds claim different addresses.
func DeriveSeed(programID solana.PublicKey, seeds ...[]byte) Seed {
	parts := make([][]byte, 0, len(seeds)+1)
	parts = append(parts, programID[:])
	parts = append(parts, seeds...)
	return Seed(crypto.HashvToFieldSize(parts...))
}

func (a Address) String() string {
	return crypto.Hash(a).String()
}

func (a Address) MarshalText() ([]byte, error) {
	return crypto.Hash(a).MarshalText()
}

func (a *Address) UnmarshalText(text []byte) error {
	return (*crypto.Hash)(a).UnmarshalText(text)
}

func (s Seed) String() string {
	return crypto.Hash(s).String()
}

func (s Seed) MarshalText() ([]byte, error) {
	return crypto.Hash(s).MarshalText()
}

func (s *Seed) UnmarshalText(text []byte) error {
	return (*crypto.Hash)(s).UnmarshalText(text)
}
