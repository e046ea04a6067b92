package host

import (
	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/compmemo/internal/crypto/ed25519"
)

// AccountMeta is an account attached to a transaction.
type AccountMeta struct {
	PublicKey  solana.PublicKey `json:"pubkey"`
	IsSigner   bool             `json:"is_signer"`
	IsWritable bool             `json:"is_writable"`
}

// Transaction is a single instruction addressed to the memo program.
type Transaction struct {
	ProgramID  solana.PublicKey                      `json:"program_id"`
	Accounts   []AccountMeta                         `json:"accounts"`
	Data       []byte                                `json:"data"`
	Signatures map[solana.PublicKey]solana.Signature `json:"signatures"`
}

func NewTransaction(programID solana.PublicKey, data []byte, accounts ...AccountMeta) *Transaction {
	return &Transaction{
		ProgramID:  programID,
		Accounts:   accounts,
		Data:       data,
		Signatures: make(map[solana.PublicKey]solana.Signature),
	}
}

// Message is the byte string covered by signatures.
func (tx *Transaction) Message() []byte {
	msg := make([]byte, 0, len(tx.ProgramID)+len(tx.Data))
	msg = append(msg, tx.ProgramID[:]...)
	return append(msg, tx.Data...)
}

// Sign adds a signature for every key.
func (tx *Transaction) Sign(keys ...solana.PrivateKey) {
	if tx.Signatures == nil {
		tx.Signatures = make(map[solana.PublicKey]solana.Signature)
	}
	msg := tx.Message()
	for _, k := range keys {
		tx.Signatures[k.PublicKey()] = ed25519.Sign(k, msg)
	}
}

// verifySignatures checks every account marked as signer.
func (tx *Transaction) verifySignatures() error {
	msg := tx.Message()
	for _, acc := range tx.Accounts {
		if !acc.IsSigner {
			continue
		}
		sig, ok := tx.Signatures[acc.PublicKey]
		if !ok {
			return &SignatureError{Account: acc.PublicKey, Missing: true}
		}
		if !ed25519.Verify(acc.PublicKey, msg, sig) {
			return &SignatureError{Account: acc.PublicKey}
		}
	}
	return nil
}
