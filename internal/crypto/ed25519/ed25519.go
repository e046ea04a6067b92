// Package ed25519 signs and verifies request signatures with ZIP-215
// compliant verification.
package ed25519

import (
	"crypto/ed25519"

	"github.com/gagliardetto/solana-go"
	"github.com/hdevalence/ed25519consensus"
)

// Sign signs message with a solana keypair.
func Sign(privateKey solana.PrivateKey, message []byte) solana.Signature {
	var sig solana.Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(privateKey), message))
	return sig
}

// Verify uses the hdevalence/ed25519consensus library for
// ZIP-215 compliant verification.
func Verify(publicKey solana.PublicKey, message []byte, sig solana.Signature) bool {
	return ed25519consensus.Verify(ed25519.PublicKey(publicKey[:]), message, sig[:])
}
