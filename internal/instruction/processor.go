package instruction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/memo"
	"github.com/eigerco/compmemo/pkg/log"
)

// Process decodes data and runs it. Create instructions return the records
// to insert; the memo path returns a nil output.
func Process(b *memo.Builder, inv memo.Invocation, data []byte) (*memo.Output, error) {
	ins, err := Decode(data)
	if err != nil {
		return nil, err
	}

	log.Program.Debug().
		Stringer("program", inv.ProgramID()).
		Stringer("instruction", ins.Kind()).
		Int("accounts", len(inv.Accounts())).
		Msg("processing instruction")

	switch ins := ins.(type) {
	case Memo:
		return nil, b.ProcessMemo(inv, ins.Text)
	case Create:
		return b.CreateCompressedAccountWithMemo(inv, ins.CreateRequest)
	case PackedCreate:
		return processPacked(b, inv, ins)
	default:
		return nil, fmt.Errorf("%w: unhandled instruction %s", memo.ErrInvalidInputData, ins.Kind())
	}
}

func processPacked(b *memo.Builder, inv memo.Invocation, ins PackedCreate) (*memo.Output, error) {
	// Accounts past signer_count are exempt from the signer gate, so at
	// least one account has to be subject to it.
	if ins.SignerCount == 0 {
		return nil, fmt.Errorf("%w: packed create names no signer accounts", memo.ErrMissingSigner)
	}

	accounts := inv.Accounts()
	if int(ins.SignerCount) > len(accounts) {
		return nil, fmt.Errorf("%w: signer count %d exceeds %d accounts", memo.ErrInvalidInputData, ins.SignerCount, len(accounts))
	}

	remaining := accounts[ins.SignerCount:]
	keys := make([]solana.PublicKey, len(remaining))
	for i, acc := range remaining {
		keys[i] = acc.Key()
	}

	ctx, err := address.UnpackMerkleContext(ins.Context, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memo.ErrInvalidInputData, err)
	}

	return b.CreateCompressedAccountWithMemo(signerView{Invocation: inv, accounts: accounts[:ins.SignerCount]}, memo.CreateRequest{
		Discriminator: ins.Discriminator,
		AddressSeed:   ins.AddressSeed,
		MerkleContext: ctx,
		RootIndex:     ins.RootIndex,
		Memo:          ins.Memo,
	})
}

// signerView narrows an invocation to the accounts subject to signer checks.
type signerView struct {
	memo.Invocation
	accounts []memo.AccountRef
}

func (v signerView) Accounts() []memo.AccountRef {
	return v.accounts
}
