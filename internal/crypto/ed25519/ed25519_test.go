package ed25519

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/go-quicktest/qt"
)

func TestSignVerify(t *testing.T) {
	priv, err := solana.NewRandomPrivateKey()
	qt.Assert(t, qt.IsNil(err))

	msg := []byte("create_compressed_account_with_memo")
	sig := Sign(priv, msg)

	qt.Assert(t, qt.IsTrue(Verify(priv.PublicKey(), msg, sig)))
	qt.Assert(t, qt.IsFalse(Verify(priv.PublicKey(), []byte("other"), sig)))

	other, err := solana.NewRandomPrivateKey()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(Verify(other.PublicKey(), msg, sig)))
}
