// Package instruction decodes raw instruction buffers and routes them to the
// memo builder.
//
// Create layout:
//
//	discriminator[8] | address_seed[32] | tree[32] | queue[32] | root_index u16 LE | memo
//
// Packed create layout, with tree and queue given as indices into the
// accounts that follow the first signer_count accounts:
//
//	discriminator[8] | address_seed[32] | signer_count u8 | tree_index u8 | queue_index u8 | root_index u16 LE | memo
//
// discriminator is sha256("global:<instruction name>")[:8]. Any other buffer is
// a plain memo.
package instruction

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/eigerco/compmemo/internal/account"
	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/memo"
)

const (
	CreateName       = "create_compressed_account_with_memo"
	PackedCreateName = "packed_create_compressed_account_with_memo"
)

var (
	CreateDiscriminator       = account.InstructionDiscriminator(CreateName)
	PackedCreateDiscriminator = account.InstructionDiscriminator(PackedCreateName)
)

type Kind uint8

const (
	KindMemo Kind = iota
	KindCreate
	KindPackedCreate
)

func (k Kind) String() string {
	switch k {
	case KindMemo:
		return "memo"
	case KindCreate:
		return "create"
	case KindPackedCreate:
		return "packed_create"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

type Instruction interface {
	Kind() Kind
}

// Memo is logged and nothing else.
type Memo struct {
	Text []byte
}

// Create carries a fully resolved create request.
type Create struct {
	memo.CreateRequest
}

// PackedCreate names the merkle context by account index.
type PackedCreate struct {
	Discriminator account.Discriminator
	AddressSeed   address.Seed
	SignerCount   uint8
	Context       address.PackedMerkleContext
	RootIndex     uint16
	Memo          []byte
}

func (Memo) Kind() Kind         { return KindMemo }
func (Create) Kind() Kind       { return KindCreate }
func (PackedCreate) Kind() Kind { return KindPackedCreate }

// Decode parses an instruction buffer.
func Decode(data []byte) (Instruction, error) {
	if len(data) < account.DiscriminatorSize {
		return Memo{Text: data}, nil
	}

	disc := account.Discriminator(data[:account.DiscriminatorSize])
	switch disc {
	case CreateDiscriminator:
		return decodeCreate(disc, bin.NewBinDecoder(data[account.DiscriminatorSize:]))
	case PackedCreateDiscriminator:
		return decodePackedCreate(disc, bin.NewBinDecoder(data[account.DiscriminatorSize:]))
	default:
		return Memo{Text: data}, nil
	}
}

func decodeCreate(disc account.Discriminator, dec *bin.Decoder) (Instruction, error) {
	ins := Create{CreateRequest: memo.CreateRequest{Discriminator: disc}}

	if err := readFixed(dec, ins.AddressSeed[:], "address seed"); err != nil {
		return nil, err
	}
	if err := readFixed(dec, ins.MerkleContext.Tree[:], "address merkle tree"); err != nil {
		return nil, err
	}
	if err := readFixed(dec, ins.MerkleContext.Queue[:], "address queue"); err != nil {
		return nil, err
	}
	rootIndex, err := dec.ReadUint16(binary.LittleEndian)
	if err != nil {
		return nil, invalidInput("root index", err)
	}
	ins.RootIndex = rootIndex

	ins.Memo, err = dec.ReadNBytes(dec.Remaining())
	if err != nil {
		return nil, invalidInput("memo", err)
	}
	return ins, nil
}

func decodePackedCreate(disc account.Discriminator, dec *bin.Decoder) (Instruction, error) {
	ins := PackedCreate{Discriminator: disc}

	if err := readFixed(dec, ins.AddressSeed[:], "address seed"); err != nil {
		return nil, err
	}

	var err error
	if ins.SignerCount, err = dec.ReadUint8(); err != nil {
		return nil, invalidInput("signer count", err)
	}
	if ins.Context.TreeIndex, err = dec.ReadUint8(); err != nil {
		return nil, invalidInput("tree index", err)
	}
	if ins.Context.QueueIndex, err = dec.ReadUint8(); err != nil {
		return nil, invalidInput("queue index", err)
	}
	if ins.RootIndex, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return nil, invalidInput("root index", err)
	}

	ins.Memo, err = dec.ReadNBytes(dec.Remaining())
	if err != nil {
		return nil, invalidInput("memo", err)
	}
	return ins, nil
}

func readFixed(dec *bin.Decoder, dst []byte, field string) error {
	b, err := dec.ReadNBytes(len(dst))
	if err != nil {
		return invalidInput(field, err)
	}
	copy(dst, b)
	return nil
}

func invalidInput(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", memo.ErrInvalidInputData, field, err)
}

// EncodeCreate builds the wire form of a create instruction.
func EncodeCreate(req memo.CreateRequest) []byte {
	out := make([]byte, 0, account.DiscriminatorSize+address.SeedSize+2*address.AddressSize+2+len(req.Memo))
	out = append(out, CreateDiscriminator[:]...)
	out = append(out, req.AddressSeed[:]...)
	out = append(out, req.MerkleContext.Tree[:]...)
	out = append(out, req.MerkleContext.Queue[:]...)
	out = binary.LittleEndian.AppendUint16(out, req.RootIndex)
	return append(out, req.Memo...)
}

// EncodePackedCreate builds the wire form of a packed create instruction.
func EncodePackedCreate(ins PackedCreate) []byte {
	out := make([]byte, 0, account.DiscriminatorSize+address.SeedSize+5+len(ins.Memo))
	out = append(out, PackedCreateDiscriminator[:]...)
	out = append(out, ins.AddressSeed[:]...)
	out = append(out, ins.SignerCount, ins.Context.TreeIndex, ins.Context.QueueIndex)
	out = binary.LittleEndian.AppendUint16(out, ins.RootIndex)
	return append(out, ins.Memo...)
}
