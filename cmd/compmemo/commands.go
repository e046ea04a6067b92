package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"

	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/crypto"
	"github.com/eigerco/compmemo/internal/host"
	"github.com/eigerco/compmemo/internal/instruction"
	"github.com/eigerco/compmemo/internal/memo"
	"github.com/eigerco/compmemo/internal/store"
	"github.com/eigerco/compmemo/pkg/db/pebble"
	"github.com/eigerco/compmemo/pkg/log"
)

var (
	errSeedConflict = errors.New("--seed and --seed-text are mutually exclusive")
	errNoSeed       = errors.New("one of --seed or --seed-text is required")
)

var (
	memoFlag = &cli.StringFlag{
		Name:     "memo",
		Usage:    "memo text",
		Required: true,
	}
	seedFlag = &cli.StringFlag{
		Name:  "seed",
		Usage: "32 byte address seed as hex",
	}
	seedTextFlag = &cli.StringFlag{
		Name:  "seed-text",
		Usage: "derive the address seed from this text and the program id",
	}
	treeFlag = &cli.StringFlag{
		Name:     "tree",
		Usage:    "address merkle tree (base58)",
		Required: true,
	}
	queueFlag = &cli.StringFlag{
		Name:     "queue",
		Usage:    "address queue (base58)",
		Required: true,
	}
	rootIndexFlag = &cli.UintFlag{
		Name:  "root-index",
		Usage: "address tree root index used for the non-inclusion proof",
	}
	signersFlag = &cli.IntFlag{
		Name:  "signers",
		Usage: "number of signing accounts",
		Value: 1,
	}
	nonSignersFlag = &cli.IntFlag{
		Name:  "non-signers",
		Usage: "number of accounts that do not sign",
	}
	pendingTreeFlag = &cli.StringFlag{
		Name:  "tree",
		Usage: "only list addresses pending for this tree (base58)",
	}
)

// invokeResult is what create and memo print.
type invokeResult struct {
	Logs        []string     `json:"logs"`
	FailureCode uint32       `json:"failure_code"`
	Error       string       `json:"error,omitempty"`
	Output      *memo.Output `json:"output,omitempty"`
}

func (e *env) createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create a compressed account carrying a memo and queue it for insertion",
		Flags: []cli.Flag{
			memoFlag, seedFlag, seedTextFlag, treeFlag, queueFlag, rootIndexFlag,
			signersFlag, nonSignersFlag,
		},
		Action: func(c *cli.Context) error {
			programID, err := e.programID()
			if err != nil {
				return err
			}
			seed, err := parseSeed(c, programID)
			if err != nil {
				return err
			}
			ctx, err := parseMerkleContext(c)
			if err != nil {
				return err
			}
			rootIndex := c.Uint(rootIndexFlag.Name)
			if rootIndex > 0xffff {
				return fmt.Errorf("root index %d does not fit in 16 bits", rootIndex)
			}

			data := instruction.EncodeCreate(memo.CreateRequest{
				AddressSeed:   seed,
				MerkleContext: ctx,
				RootIndex:     uint16(rootIndex),
				Memo:          []byte(c.String(memoFlag.Name)),
			})

			outbox, closeFn, err := e.openOutbox()
			if err != nil {
				return err
			}
			defer closeFn()

			return e.invoke(c, outbox, programID, data)
		},
	}
}

func (e *env) memoCommand() *cli.Command {
	return &cli.Command{
		Name:  "memo",
		Usage: "log a memo without creating an account",
		Flags: []cli.Flag{memoFlag, signersFlag, nonSignersFlag},
		Action: func(c *cli.Context) error {
			programID, err := e.programID()
			if err != nil {
				return err
			}
			return e.invoke(c, nil, programID, []byte(c.String(memoFlag.Name)))
		},
	}
}

func (e *env) deriveAddressCommand() *cli.Command {
	return &cli.Command{
		Name:  "derive-address",
		Usage: "print the address a seed derives to in a tree",
		Flags: []cli.Flag{seedFlag, seedTextFlag, treeFlag},
		Action: func(c *cli.Context) error {
			programID, err := e.programID()
			if err != nil {
				return err
			}
			seed, err := parseSeed(c, programID)
			if err != nil {
				return err
			}
			tree, err := solana.PublicKeyFromBase58(c.String(treeFlag.Name))
			if err != nil {
				return fmt.Errorf("invalid tree: %w", err)
			}
			addr := address.Derive(seed, address.MerkleContext{Tree: tree})
			return writeJSON(c, map[string]any{
				"seed":    seed,
				"tree":    tree,
				"address": addr,
			})
		},
	}
}

func (e *env) pendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "list records waiting for tree insertion",
		Flags: []cli.Flag{pendingTreeFlag},
		Action: func(c *cli.Context) error {
			outbox, closeFn, err := e.openOutbox()
			if err != nil {
				return err
			}
			defer closeFn()

			if c.IsSet(pendingTreeFlag.Name) {
				tree, err := solana.PublicKeyFromBase58(c.String(pendingTreeFlag.Name))
				if err != nil {
					return fmt.Errorf("invalid tree: %w", err)
				}
				addrs, err := outbox.PendingForTree(tree)
				if err != nil {
					return err
				}
				return writeJSON(c, addrs)
			}

			records, err := outbox.Pending()
			if err != nil {
				return err
			}
			return writeJSON(c, records)
		},
	}
}

// invoke signs a transaction with fresh keys and runs it. The result is
// printed even when the program fails.
func (e *env) invoke(c *cli.Context, outbox *store.Outbox, programID solana.PublicKey, data []byte) error {
	hasher, err := crypto.NewHasher(e.cfg.Hasher.Kind)
	if err != nil {
		return err
	}

	tx, err := newSignedTransaction(programID, data, c.Int(signersFlag.Name), c.Int(nonSignersFlag.Name))
	if err != nil {
		return err
	}

	res, err := host.NewRuntime(memo.NewBuilder(hasher), outbox).Invoke(tx)
	if err != nil {
		return err
	}

	printed := invokeResult{Logs: res.Logs, FailureCode: res.FailureCode(), Output: res.Output}
	if res.Err != nil {
		printed.Error = res.Err.Error()
	}
	if err := writeJSON(c, printed); err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("program failed with code %d: %w", printed.FailureCode, res.Err)
	}
	return nil
}

func newSignedTransaction(programID solana.PublicKey, data []byte, signers, nonSigners int) (*host.Transaction, error) {
	if signers < 0 || nonSigners < 0 {
		return nil, fmt.Errorf("account counts must not be negative")
	}
	tx := host.NewTransaction(programID, data)
	for i := 0; i < signers+nonSigners; i++ {
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		signs := i < signers
		tx.Accounts = append(tx.Accounts, host.AccountMeta{PublicKey: key.PublicKey(), IsSigner: signs})
		if signs {
			tx.Sign(key)
		}
	}
	return tx, nil
}

func (e *env) programID() (solana.PublicKey, error) {
	id, err := solana.PublicKeyFromBase58(e.cfg.Program.ID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id %q: %w", e.cfg.Program.ID, err)
	}
	return id, nil
}

func (e *env) openOutbox() (*store.Outbox, func(), error) {
	var (
		kv  *pebble.KVStore
		err error
	)
	if e.cfg.Store.Path == "" {
		kv, err = pebble.NewMemKVStore()
	} else {
		kv, err = pebble.Open(e.cfg.Store.Path)
	}
	if err != nil {
		return nil, nil, err
	}

	outbox := store.NewOutbox(kv)
	return outbox, func() {
		if err := outbox.Close(); err != nil {
			log.Root.Warn().Err(err).Msg("Closing outbox")
		}
	}, nil
}

func parseSeed(c *cli.Context, programID solana.PublicKey) (address.Seed, error) {
	hexSet, textSet := c.IsSet(seedFlag.Name), c.IsSet(seedTextFlag.Name)
	switch {
	case hexSet && textSet:
		return address.Seed{}, errSeedConflict
	case hexSet:
		var seed address.Seed
		if err := seed.UnmarshalText([]byte(c.String(seedFlag.Name))); err != nil {
			return address.Seed{}, err
		}
		return seed, nil
	case textSet:
		return address.DeriveSeed(programID, []byte(c.String(seedTextFlag.Name))), nil
	default:
		return address.Seed{}, errNoSeed
	}
}

func parseMerkleContext(c *cli.Context) (address.MerkleContext, error) {
	tree, err := solana.PublicKeyFromBase58(c.String(treeFlag.Name))
	if err != nil {
		return address.MerkleContext{}, fmt.Errorf("invalid tree: %w", err)
	}
	queue, err := solana.PublicKeyFromBase58(c.String(queueFlag.Name))
	if err != nil {
		return address.MerkleContext{}, fmt.Errorf("invalid queue: %w", err)
	}
	return address.MerkleContext{Tree: tree, Queue: queue}, nil
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
