package memo

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AccountRef is an account handed to the program by the host.
type AccountRef interface {
	Key() solana.PublicKey
	// SignerKey returns the account key and true when the account signed
	// the request.
	SignerKey() (solana.PublicKey, bool)
}

// Invocation is what the host exposes to a single request.
type Invocation interface {
	ProgramID() solana.PublicKey
	Accounts() []AccountRef
	// Log records a program log line for the request.
	Log(msg string)
}

// SignerPolicy selects how many accounts CheckSigners requires to sign.
type SignerPolicy uint8

const (
	// StrictAllSigners requires every account to have signed.
	StrictAllSigners SignerPolicy = iota
	// WeakAnySigner requires at least one account to have signed.
	WeakAnySigner
)

func (p SignerPolicy) String() string {
	switch p {
	case StrictAllSigners:
		return "StrictAllSigners"
	case WeakAnySigner:
		return "WeakAnySigner"
	default:
		return fmt.Sprintf("SignerPolicy(%d)", uint8(p))
	}
}

// CheckSigners logs every signer of the request and then applies policy.
// All accounts are visited before the verdict.
func CheckSigners(inv Invocation, policy SignerPolicy) error {
	accounts := inv.Accounts()

	signed := 0
	for _, acc := range accounts {
		if key, ok := acc.SignerKey(); ok {
			inv.Log(fmt.Sprintf("Signed by %s", key))
			signed++
		}
	}
	missing := len(accounts) - signed

	switch policy {
	case StrictAllSigners:
		if missing > 0 {
			return &Error{Code: MissingSigner, reason: fmt.Sprintf("%d of %d accounts did not sign", missing, len(accounts))}
		}
	case WeakAnySigner:
		if signed == 0 {
			return &Error{Code: MissingSigner, reason: "no account signed"}
		}
	default:
		return fmt.Errorf("unknown signer policy %s", policy)
	}
	return nil
}
