package crypto

import "errors"

var (
	ErrTooManyChunks   = errors.New("payload needs more field elements than poseidon accepts")
	ErrElementTooLong  = errors.New("field element is longer than 32 bytes")
	ErrNotInField      = errors.New("value is not below the bn254 scalar modulus")
	ErrNoInputs        = errors.New("no inputs to hash")
	ErrUnknownHasher   = errors.New("unknown hasher")
	ErrInvalidHashHex  = errors.New("invalid hash hex")
	ErrNoFieldSizeBump = errors.New("no bump seed yields a field-sized hash")
)
