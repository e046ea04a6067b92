package memo

import (
	"errors"
	"fmt"

	"github.com/eigerco/compmemo/internal/account"
	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/crypto"
	"github.com/eigerco/compmemo/pkg/log"
	"github.com/eigerco/compmemo/pkg/serialization/codec"
)

// CreateRequest is the decoded input of the create instruction. The merkle
// context is already resolved to full keys.
type CreateRequest struct {
	Discriminator account.Discriminator
	AddressSeed   address.Seed
	MerkleContext address.MerkleContext
	RootIndex     uint16
	Memo          []byte
}

// Output is produced by a successful create. Both records go to the tree
// insertion subsystem together.
type Output struct {
	Account          account.CompressedAccount `json:"compressed_account"`
	NewAddressParams account.NewAddressParams  `json:"new_address_params"`
}

// Builder turns memos into compressed accounts.
type Builder struct {
	hasher crypto.Hasher
	codec  codec.Codec
}

// NewBuilder returns a Builder hashing with h and serializing with Borsh.
// A nil hasher selects Poseidon.
func NewBuilder(h crypto.Hasher) *Builder {
	if h == nil {
		h = crypto.Poseidon{}
	}
	return &Builder{hasher: h, codec: codec.NewBorshCodec()}
}

// WithCodec replaces the codec used for the account data.
func (b *Builder) WithCodec(c codec.Codec) *Builder {
	b.codec = c
	return b
}

// CreateCompressedAccountWithMemo checks that every account signed, validates
// and hashes the memo, derives the address and assembles the account together
// with the params registering its address. On failure no records are returned.
func (b *Builder) CreateCompressedAccountWithMemo(inv Invocation, req CreateRequest) (*Output, error) {
	if err := CheckSigners(inv, StrictAllSigners); err != nil {
		return nil, err
	}

	if _, err := ValidateMemo(req.Memo); err != nil {
		return nil, err
	}

	data, dataHash, err := b.serializeAndHash(req.Memo)
	if err != nil {
		return nil, err
	}

	addr := address.Derive(req.AddressSeed, req.MerkleContext)

	out := &Output{
		Account: account.CompressedAccount{
			Owner:    inv.ProgramID(),
			Lamports: 0,
			Address:  &addr,
			Data: &account.CompressedAccountData{
				Discriminator: req.Discriminator,
				Data:          data,
				DataHash:      dataHash,
			},
		},
		NewAddressParams: account.NewAddressParams{
			Seed:              req.AddressSeed,
			AddressMerkleTree: req.MerkleContext.Tree,
			AddressQueue:      req.MerkleContext.Queue,
			RootIndex:         req.RootIndex,
		},
	}

	log.Program.Debug().
		Stringer("address", addr).
		Stringer("data_hash", dataHash).
		Int("memo_len", len(req.Memo)).
		Msg("compressed account built")

	return out, nil
}

// serializeAndHash runs both steps even when one fails; a serialization
// failure is reported ahead of a hashing failure.
func (b *Builder) serializeAndHash(memo []byte) ([]byte, crypto.Hash, error) {
	data, serErr := SerializeMemo(b.codec, memo)
	dataHash, hashErr := HashMemo(b.hasher, memo)
	if serErr != nil {
		return nil, crypto.Hash{}, serErr
	}
	if hashErr != nil {
		return nil, crypto.Hash{}, hashErr
	}
	return data, dataHash, nil
}

// ProcessMemo is the audit-only path: one signer suffices and the memo is only
// logged.
func (b *Builder) ProcessMemo(inv Invocation, memo []byte) error {
	if err := CheckSigners(inv, WeakAnySigner); err != nil {
		return err
	}

	text, err := ValidateMemo(memo)
	if err != nil {
		var encErr *EncodingError
		if errors.As(err, &encErr) {
			inv.Log(fmt.Sprintf("Invalid UTF-8, from byte %d", encErr.ValidUpTo))
		}
		return err
	}

	inv.Log(fmt.Sprintf("Memo (len %d): %q", len(text), text))
	return nil
}
