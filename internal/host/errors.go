package host

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrSignatureVerification = errors.New("signature verification failed")

// SignatureError names the account whose signature is missing or invalid.
type SignatureError struct {
	Account solana.PublicKey
	Missing bool
}

func (e *SignatureError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%v: missing signature for %s", ErrSignatureVerification, e.Account)
	}
	return fmt.Sprintf("%v: invalid signature for %s", ErrSignatureVerification, e.Account)
}

func (e *SignatureError) Is(target error) bool {
	return target == ErrSignatureVerification
}
