package testutils

import (
	"crypto/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/crypto"
	"github.com/eigerco/compmemo/internal/memo"
)

func RandomHash(t *testing.T) crypto.Hash {
	var hash crypto.Hash
	_, err := rand.Read(hash[:])
	require.NoError(t, err)
	return hash
}

func RandomSeed(t *testing.T) address.Seed {
	return address.Seed(RandomHash(t))
}

func RandomPublicKey(t *testing.T) solana.PublicKey {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return priv.PublicKey()
}

// Account is an AccountRef with a fixed signer flag.
type Account struct {
	PubKey solana.PublicKey
	Signed bool
}

func (a Account) Key() solana.PublicKey { return a.PubKey }

func (a Account) SignerKey() (solana.PublicKey, bool) {
	if !a.Signed {
		return solana.PublicKey{}, false
	}
	return a.PubKey, true
}

// Invocation is an in-memory memo.Invocation that records program logs.
type Invocation struct {
	Program solana.PublicKey
	Refs    []memo.AccountRef
	Logs    []string
}

// NewInvocation builds an invocation with one random account per flag.
func NewInvocation(t *testing.T, program solana.PublicKey, signed ...bool) *Invocation {
	inv := &Invocation{Program: program}
	for _, s := range signed {
		inv.Refs = append(inv.Refs, Account{PubKey: RandomPublicKey(t), Signed: s})
	}
	return inv
}

func (i *Invocation) ProgramID() solana.PublicKey { return i.Program }

func (i *Invocation) Accounts() []memo.AccountRef { return i.Refs }

func (i *Invocation) Log(msg string) { i.Logs = append(i.Logs, msg) }
