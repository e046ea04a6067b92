package memo

import (
	"fmt"
	"unicode/utf8"

	"github.com/eigerco/compmemo/internal/crypto"
	"github.com/eigerco/compmemo/pkg/serialization/codec"
)

// EncodingError reports where a payload stops being valid UTF-8.
type EncodingError struct {
	ValidUpTo int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid utf-8 from byte %d", e.ValidUpTo)
}

// ValidateMemo returns input as text. Length is not checked.
func ValidateMemo(input []byte) (string, error) {
	if n := validUpTo(input); n != len(input) {
		return "", wrap(ErrInvalidEncoding, &EncodingError{ValidUpTo: n})
	}
	return string(input), nil
}

func validUpTo(b []byte) int {
	i := 0
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return i
}

// SerializeMemo returns the canonical encoding stored in the account data.
func SerializeMemo(c codec.Codec, input []byte) ([]byte, error) {
	data, err := c.Marshal(input)
	if err != nil {
		return nil, wrap(ErrSerializationFailed, err)
	}
	return data, nil
}

// HashMemo hashes the raw payload bytes.
func HashMemo(h crypto.Hasher, input []byte) (crypto.Hash, error) {
	hash, err := h.Hash(input)
	if err != nil {
		return crypto.Hash{}, wrap(ErrHashingFailed, err)
	}
	return hash, nil
}
