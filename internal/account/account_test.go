package account

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/go-quicktest/qt"

	"github.com/eigerco/compmemo/internal/address"
)

func TestDiscriminatorFromName(t *testing.T) {
	sum := sha256.Sum256([]byte("account:MemoAccount"))
	d := DiscriminatorFromName("MemoAccount")
	qt.Assert(t, qt.DeepEquals(d[:], sum[:DiscriminatorSize]))
}

func TestInstructionDiscriminator(t *testing.T) {
	name := "create_compressed_account_with_memo"
	sum := sha256.Sum256([]byte("global:" + name))
	d := InstructionDiscriminator(name)
	qt.Assert(t, qt.DeepEquals(d[:], sum[:DiscriminatorSize]))

	// Differs from the name prefix a text memo could start with
	qt.Assert(t, qt.Not(qt.DeepEquals(d[:], []byte(name)[:DiscriminatorSize])))
	qt.Assert(t, qt.Not(qt.Equals(d, InstructionDiscriminator("packed_"+name))))
}

func TestNewAddressParamsMerkleContext(t *testing.T) {
	tree := solana.MustPublicKeyFromBase58("Cj53TGGvopGVvdnB6vT5TK4LsoU4x7XY1w1ZLbpc9gfe")
	p := NewAddressParams{AddressMerkleTree: tree, AddressQueue: solana.SystemProgramID}

	qt.Assert(t, qt.Equals(p.MerkleContext(), address.MerkleContext{Tree: tree, Queue: solana.SystemProgramID}))
}

func TestCompressedAccountJSON(t *testing.T) {
	addr := address.Address{1, 2, 3}
	acc := CompressedAccount{
		Owner:   solana.SystemProgramID,
		Address: &addr,
		Data: &CompressedAccountData{
			Discriminator: Discriminator{1, 1, 1, 1, 1, 1, 1, 1},
			Data:          []byte{7, 0, 0, 0},
		},
	}

	b, err := json.Marshal(acc)
	qt.Assert(t, qt.IsNil(err))

	var back CompressedAccount
	qt.Assert(t, qt.IsNil(json.Unmarshal(b, &back)))
	qt.Assert(t, qt.DeepEquals(back, acc))

	// An account without address or data omits both fields
	b, err = json.Marshal(CompressedAccount{Owner: solana.SystemProgramID})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(b), `{"owner":"11111111111111111111111111111111","lamports":0}`))
}
