package store

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/compmemo/internal/account"
	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/memo"
	"github.com/eigerco/compmemo/internal/testutils"
	"github.com/eigerco/compmemo/pkg/db/pebble"
)

var (
	programID = solana.MustPublicKeyFromBase58("Cj53TGGvopGVvdnB6vT5TK4LsoU4x7XY1w1ZLbpc9gfe")
	treeA     = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	treeB     = solana.MustPublicKeyFromBase58("22222222222222222222222222222222222222222222")
)

func newOutbox(t *testing.T) *Outbox {
	kv, err := pebble.NewMemKVStore()
	require.NoError(t, err)
	o := NewOutbox(kv)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func buildRecord(t *testing.T, seed byte, tree solana.PublicKey, text string) *memo.Output {
	var s address.Seed
	copy(s[:], bytes.Repeat([]byte{seed}, address.SeedSize))

	out, err := memo.NewBuilder(nil).CreateCompressedAccountWithMemo(
		testutils.NewInvocation(t, programID, true),
		memo.CreateRequest{
			Discriminator: account.DiscriminatorFromName("memo"),
			AddressSeed:   s,
			MerkleContext: address.MerkleContext{Tree: tree, Queue: treeB},
			RootIndex:     uint16(seed),
			Memo:          []byte(text),
		})
	require.NoError(t, err)
	return out
}

// requireSameRecord compares records through their JSON form and prints a
// unified diff on mismatch.
func requireSameRecord(t *testing.T, expected, actual *memo.Output) {
	t.Helper()
	e, err := json.MarshalIndent(expected, "", "  ")
	require.NoError(t, err)
	a, err := json.MarshalIndent(actual, "", "  ")
	require.NoError(t, err)

	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(e)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	if diff != "" {
		t.Fatalf("record mismatch:\n%s", diff)
	}
}

func TestOutboxEnqueueGet(t *testing.T) {
	o := newOutbox(t)
	rec := buildRecord(t, 1, treeA, "first")

	require.NoError(t, o.Enqueue(rec))

	got, err := o.Get(*rec.Account.Address)
	require.NoError(t, err)
	requireSameRecord(t, rec, got)
	assert.Equal(t, rec, got)

	_, err = o.Get(address.Address{})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestOutboxRejectsDuplicateAddress(t *testing.T) {
	o := newOutbox(t)

	require.NoError(t, o.Enqueue(buildRecord(t, 1, treeA, "first")))

	// Same seed and tree derive the same address regardless of the memo
	err := o.Enqueue(buildRecord(t, 1, treeA, "second"))
	assert.ErrorIs(t, err, ErrAddressPending)

	// A different tree is a different address
	assert.NoError(t, o.Enqueue(buildRecord(t, 1, treeB, "third")))
}

func TestOutboxRejectsRecordWithoutAddress(t *testing.T) {
	o := newOutbox(t)
	rec := buildRecord(t, 1, treeA, "first")
	rec.Account.Address = nil

	assert.ErrorIs(t, o.Enqueue(rec), ErrMissingAddress)
}

func TestOutboxPending(t *testing.T) {
	o := newOutbox(t)

	records := []*memo.Output{
		buildRecord(t, 1, treeA, "one"),
		buildRecord(t, 2, treeB, "two"),
		buildRecord(t, 3, treeA, "three"),
	}
	for _, r := range records {
		require.NoError(t, o.Enqueue(r))
	}

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i := 1; i < len(pending); i++ {
		prev, cur := *pending[i-1].Account.Address, *pending[i].Account.Address
		assert.Negative(t, bytes.Compare(prev[:], cur[:]), "pending records are in address order")
	}

	forA, err := o.PendingForTree(treeA)
	require.NoError(t, err)
	assert.ElementsMatch(t, []address.Address{*records[0].Account.Address, *records[2].Account.Address}, forA)

	forB, err := o.PendingForTree(treeB)
	require.NoError(t, err)
	assert.Equal(t, []address.Address{*records[1].Account.Address}, forB)
}

func TestOutboxTake(t *testing.T) {
	o := newOutbox(t)
	rec := buildRecord(t, 5, treeA, "take me")
	addr := *rec.Account.Address
	require.NoError(t, o.Enqueue(rec))

	got, err := o.Take(addr)
	require.NoError(t, err)
	requireSameRecord(t, rec, got)

	// Taken exactly once
	_, err = o.Take(addr)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	pending, err := o.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	forA, err := o.PendingForTree(treeA)
	require.NoError(t, err)
	assert.Empty(t, forA)

	// The address can be enqueued again once taken
	assert.NoError(t, o.Enqueue(rec))
}

func TestOutboxClosed(t *testing.T) {
	o := newOutbox(t)
	require.NoError(t, o.Close())

	assert.ErrorIs(t, o.Enqueue(buildRecord(t, 1, treeA, "x")), ErrOutboxClosed)
	_, err := o.Pending()
	assert.ErrorIs(t, err, ErrOutboxClosed)
	_, err = o.Get(address.Address{})
	assert.ErrorIs(t, err, ErrOutboxClosed)
	assert.NoError(t, o.Close())
}

func TestMakeKey(t *testing.T) {
	assert.Equal(t, []byte{prefixTreeIndex, 1, 2, 3}, makeKey(prefixTreeIndex, []byte{1, 2}, []byte{3}))
	assert.Equal(t, "pending", PrefixToString(prefixPending))
	assert.Equal(t, "unknown", PrefixToString(0xff))
}
