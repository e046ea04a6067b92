// Package host runs memo program instructions in-process the way a chain
// runtime would: it verifies signatures, exposes the accounts to the program,
// collects program logs, and hands built records to the insertion outbox.
package host

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/compmemo/internal/instruction"
	"github.com/eigerco/compmemo/internal/memo"
	"github.com/eigerco/compmemo/internal/store"
	"github.com/eigerco/compmemo/pkg/log"
)

// GenericFailure is reported for program errors outside the memo taxonomy.
const GenericFailure uint32 = 1

// Result is the outcome of one invocation.
type Result struct {
	Logs   []string
	Output *memo.Output
	Err    error
}

// FailureCode is zero on success.
func (r *Result) FailureCode() uint32 {
	if r.Err == nil {
		return 0
	}
	if code, ok := memo.CodeOf(r.Err); ok {
		return uint32(code)
	}
	return GenericFailure
}

// Runtime invokes the memo program. The outbox is optional.
type Runtime struct {
	builder *memo.Builder
	outbox  *store.Outbox
}

func NewRuntime(builder *memo.Builder, outbox *store.Outbox) *Runtime {
	return &Runtime{builder: builder, outbox: outbox}
}

// Invoke runs tx. Transaction level problems (bad signatures, outbox
// failures) are returned as errors; program failures end up in Result.Err.
func (r *Runtime) Invoke(tx *Transaction) (*Result, error) {
	if err := tx.verifySignatures(); err != nil {
		return nil, err
	}

	inv := newInvocation(tx)
	out, err := instruction.Process(r.builder, inv, tx.Data)
	res := &Result{Logs: inv.logs, Output: out, Err: err}

	if err != nil {
		log.Host.Info().Err(err).Uint32("code", res.FailureCode()).Msg("Program failed")
		return res, nil
	}

	if out != nil && r.outbox != nil {
		if err := r.outbox.Enqueue(out); err != nil {
			return res, fmt.Errorf("enqueue record: %w", err)
		}
	}

	log.Host.Info().Stringer("program", tx.ProgramID).Msg("Program succeeded")
	return res, nil
}

type accountInfo struct {
	key    solana.PublicKey
	signer bool
}

func (a accountInfo) Key() solana.PublicKey { return a.key }

func (a accountInfo) SignerKey() (solana.PublicKey, bool) {
	if !a.signer {
		return solana.PublicKey{}, false
	}
	return a.key, true
}

type invocation struct {
	programID solana.PublicKey
	accounts  []memo.AccountRef
	logs      []string
}

// newInvocation expects signatures to be verified already.
func newInvocation(tx *Transaction) *invocation {
	accounts := make([]memo.AccountRef, len(tx.Accounts))
	for i, meta := range tx.Accounts {
		accounts[i] = accountInfo{key: meta.PublicKey, signer: meta.IsSigner}
	}
	return &invocation{programID: tx.ProgramID, accounts: accounts}
}

func (i *invocation) ProgramID() solana.PublicKey { return i.programID }

func (i *invocation) Accounts() []memo.AccountRef { return i.accounts }

func (i *invocation) Log(msg string) {
	i.logs = append(i.logs, msg)
	log.Host.Info().Str("msg", msg).Msg("Program log")
}
