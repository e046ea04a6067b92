package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/config"
	"github.com/eigerco/compmemo/internal/memo"
)

const (
	tree  = "11111111111111111111111111111111"
	queue = "22222222222222222222222222222222222222222222"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run(append([]string{"compmemo", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestCreateAndPending(t *testing.T) {
	db := filepath.Join(t.TempDir(), "outbox")

	out, err := run(t, "--db", db, "create",
		"--memo", "Hello:)", "--seed-text", "greeting",
		"--tree", tree, "--queue", queue, "--root-index", "7", "--signers", "2")
	require.NoError(t, err)

	var res invokeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Zero(t, res.FailureCode)
	require.NotNil(t, res.Output)
	assert.Equal(t, uint16(7), res.Output.NewAddressParams.RootIndex)

	programID := solana.MustPublicKeyFromBase58(config.DefaultProgramID)
	seed := address.DeriveSeed(programID, []byte("greeting"))
	expected := address.Derive(seed, address.MerkleContext{Tree: solana.MustPublicKeyFromBase58(tree)})
	assert.Equal(t, expected, *res.Output.Account.Address)

	out, err = run(t, "--db", db, "pending")
	require.NoError(t, err)
	var pending []*memo.Output
	require.NoError(t, json.Unmarshal([]byte(out), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, res.Output, pending[0])

	out, err = run(t, "--db", db, "pending", "--tree", tree)
	require.NoError(t, err)
	var addrs []address.Address
	require.NoError(t, json.Unmarshal([]byte(out), &addrs))
	assert.Equal(t, []address.Address{expected}, addrs)

	// The same seed and tree cannot be queued twice
	_, err = run(t, "--db", db, "create",
		"--memo", "again", "--seed-text", "greeting", "--tree", tree, "--queue", queue)
	assert.Error(t, err)
}

func TestCreateMissingSigner(t *testing.T) {
	out, err := run(t, "--db", "", "create",
		"--memo", "Hello:)", "--seed", "0x"+string(bytes.Repeat([]byte("01"), 32)),
		"--tree", tree, "--queue", queue, "--non-signers", "1")
	assert.ErrorIs(t, err, memo.ErrMissingSigner)

	var res invokeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, uint32(memo.MissingSigner), res.FailureCode)
	assert.Nil(t, res.Output)
}

func TestMemo(t *testing.T) {
	out, err := run(t, "memo", "--memo", "Hello:)", "--signers", "1", "--non-signers", "2")
	require.NoError(t, err)

	var res invokeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Contains(t, res.Logs, `Memo (len 7): "Hello:)"`)

	_, err = run(t, "memo", "--memo", "nobody signed", "--signers", "0", "--non-signers", "1")
	assert.ErrorIs(t, err, memo.ErrMissingSigner)
}

func TestDeriveAddress(t *testing.T) {
	seed := "0x" + string(bytes.Repeat([]byte("ab"), 32))
	out, err := run(t, "derive-address", "--seed", seed, "--tree", tree)
	require.NoError(t, err)

	var printed struct {
		Seed    address.Seed    `json:"seed"`
		Address address.Address `json:"address"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	assert.Equal(t, seed, printed.Seed.String())
	assert.Equal(t, address.Derive(printed.Seed, address.MerkleContext{Tree: solana.MustPublicKeyFromBase58(tree)}), printed.Address)
}

func TestSeedFlags(t *testing.T) {
	_, err := run(t, "derive-address", "--tree", tree)
	assert.ErrorIs(t, err, errNoSeed)

	_, err = run(t, "derive-address", "--tree", tree, "--seed", "0x00", "--seed-text", "x")
	assert.ErrorIs(t, err, errSeedConflict)

	_, err = run(t, "derive-address", "--tree", tree, "--seed", "0x00")
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	_, err := run(t, "--log-format", "xml", "pending")
	assert.Error(t, err)
}
