package crypto

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

type Hash [HashSize]byte

// Hasher produces a 32 byte digest that is a valid bn254 field element.
type Hasher interface {
	Hash(data []byte) (Hash, error)
}

// NewHasher returns the hasher registered under name.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", "poseidon":
		return Poseidon{}, nil
	case "keccak":
		return Keccak{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(strings.TrimPrefix(string(text), "0x"))
	if err != nil || len(b) != HashSize {
		return fmt.Errorf("%w: %q", ErrInvalidHashHex, text)
	}
	copy(h[:], b)
	return nil
}

// KeccakData hashes the input data using Keccak-256
func KeccakData(parts ...[]byte) Hash {
	hash := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		hash.Write(p)
	}

	var result Hash
	hash.Sum(result[:0])
	return result
}

// HashvToFieldSize hashes the concatenation of parts with Keccak-256 and
// clears the most significant byte so the result is a bn254 field element.
func HashvToFieldSize(parts ...[]byte) Hash {
	h := KeccakData(parts...)
	h[0] = 0
	return h
}

// HashToFieldSize hashes data together with a bump seed, counting down from
// 255, until the truncated digest lies in the bn254 scalar field.
func HashToFieldSize(data []byte) (Hash, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := KeccakData(data, []byte{byte(bump)})
		h[0] = 0
		if InField(h[:]) {
			return h, uint8(bump), nil
		}
	}
	return Hash{}, 0, ErrNoFieldSizeBump
}

// InField reports whether the big-endian value in b is below the bn254 scalar
// modulus.
func InField(b []byte) bool {
	return new(big.Int).SetBytes(b).Cmp(fr.Modulus()) < 0
}

// Keccak is a Hasher that truncates Keccak-256 into the bn254 field.
type Keccak struct{}

func (Keccak) Hash(data []byte) (Hash, error) {
	return HashvToFieldSize(data), nil
}
