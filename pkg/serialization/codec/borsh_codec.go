package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
)

var (
	ErrLengthOverflow = errors.New("borsh: byte vector length exceeds max value of uint32")
	ErrTrailingBytes  = errors.New("borsh: trailing bytes after value")
)

// BorshCodec implements the Codec interface for Borsh encoding and decoding.
// Byte vectors and strings are written as a little-endian u32 length followed
// by the raw bytes; everything else goes through gagliardetto/binary.
type BorshCodec struct{}

func NewBorshCodec() *BorshCodec {
	return &BorshCodec{}
}

func (b *BorshCodec) Marshal(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return marshalVec(val)
	case string:
		return marshalVec([]byte(val))
	default:
		return bin.MarshalBorsh(v)
	}
}

func (b *BorshCodec) Unmarshal(data []byte, v interface{}) error {
	switch out := v.(type) {
	case *[]byte:
		vec, err := unmarshalVec(data)
		if err != nil {
			return err
		}
		*out = vec
		return nil
	case *string:
		vec, err := unmarshalVec(data)
		if err != nil {
			return err
		}
		*out = string(vec)
		return nil
	default:
		return bin.UnmarshalBorsh(v, data)
	}
}

func marshalVec(data []byte) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, ErrLengthOverflow
	}

	buf := bytes.NewBuffer(make([]byte, 0, 4+len(data)))
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint32(uint32(len(data)), binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("borsh: write length: %w", err)
	}
	if err := enc.WriteBytes(data, false); err != nil {
		return nil, fmt.Errorf("borsh: write bytes: %w", err)
	}
	return buf.Bytes(), nil
}

func unmarshalVec(data []byte) ([]byte, error) {
	dec := bin.NewBorshDecoder(data)
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("borsh: read length: %w", err)
	}
	vec, err := dec.ReadNBytes(int(n))
	if err != nil {
		return nil, fmt.Errorf("borsh: read %d bytes: %w", n, err)
	}
	if dec.Remaining() != 0 {
		return nil, ErrTrailingBytes
	}
	return vec, nil
}
