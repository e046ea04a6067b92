package crypto

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// Poseidon is the circom-compatible Poseidon hash over bn254.
//
// Hash packs its input into big-endian field elements of PoseidonChunkSize
// bytes each. A payload of up to 31 bytes is a single element, so its digest
// equals Hashv(payload). Longer payloads get the payload length appended as a
// last element, otherwise leading zero bytes of the final chunk would be lost.
// Empty payloads are rejected.
type Poseidon struct{}

func (p Poseidon) Hash(data []byte) (Hash, error) {
	if len(data) == 0 {
		return Hash{}, fmt.Errorf("%w: empty payload", ErrNoInputs)
	}
	if len(data) <= PoseidonChunkSize {
		return p.Hashv(data)
	}

	chunks := (len(data) + PoseidonChunkSize - 1) / PoseidonChunkSize
	if chunks+1 > PoseidonMaxInputs {
		return Hash{}, fmt.Errorf("%w: %d bytes need %d elements, max %d",
			ErrTooManyChunks, len(data), chunks+1, PoseidonMaxInputs)
	}

	elements := make([][]byte, 0, chunks+1)
	for start := 0; start < len(data); start += PoseidonChunkSize {
		end := min(start+PoseidonChunkSize, len(data))
		elements = append(elements, data[start:end])
	}
	elements = append(elements, binary.BigEndian.AppendUint64(nil, uint64(len(data))))
	return p.Hashv(elements...)
}

// Hashv hashes each element as one big-endian field element.
func (Poseidon) Hashv(elements ...[]byte) (Hash, error) {
	if len(elements) == 0 {
		return Hash{}, ErrNoInputs
	}
	if len(elements) > PoseidonMaxInputs {
		return Hash{}, fmt.Errorf("%w: %d elements, max %d", ErrTooManyChunks, len(elements), PoseidonMaxInputs)
	}

	inputs := make([]*big.Int, len(elements))
	for i, e := range elements {
		if len(e) > HashSize {
			return Hash{}, fmt.Errorf("%w: element %d has %d bytes", ErrElementTooLong, i, len(e))
		}
		if !InField(e) {
			return Hash{}, fmt.Errorf("%w: element %d", ErrNotInField, i)
		}
		inputs[i] = new(big.Int).SetBytes(e)
	}

	out, err := poseidon.Hash(inputs)
	if err != nil {
		return Hash{}, fmt.Errorf("poseidon: %w", err)
	}

	var h Hash
	out.FillBytes(h[:])
	return h, nil
}
