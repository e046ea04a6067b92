package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/compmemo/internal/address"
	"github.com/eigerco/compmemo/internal/memo"
	"github.com/eigerco/compmemo/pkg/db"
	"github.com/eigerco/compmemo/pkg/db/pebble"
	"github.com/eigerco/compmemo/pkg/log"
	"github.com/eigerco/compmemo/pkg/serialization"
	"github.com/eigerco/compmemo/pkg/serialization/codec"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrAddressPending = errors.New("address already pending insertion")
	ErrMissingAddress = errors.New("record has no address")
	ErrOutboxClosed   = errors.New("outbox store is closed")
)

// Outbox holds built records until the tree insertion subsystem takes them.
// Records are keyed by derived address and indexed by address tree.
type Outbox struct {
	db         db.KVStore
	serializer *serialization.Serializer
	mu         sync.Mutex
	closed     atomic.Bool
}

// NewOutbox creates an outbox on top of a KVStore.
func NewOutbox(kv db.KVStore) *Outbox {
	return &Outbox{
		db:         kv,
		serializer: serialization.NewSerializer(&codec.JSONCodec{}),
	}
}

// Enqueue stores a record. An address may only be pending once.
func (o *Outbox) Enqueue(out *memo.Output) error {
	if o.closed.Load() {
		return ErrOutboxClosed
	}
	if out.Account.Address == nil {
		return ErrMissingAddress
	}
	addr := *out.Account.Address

	o.mu.Lock()
	defer o.mu.Unlock()

	key := makeKey(prefixPending, addr[:])
	exists, err := o.db.Has(key)
	if err != nil {
		return fmt.Errorf("check pending %s: %w", addr, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAddressPending, addr)
	}

	value, err := o.serializer.Encode(out)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	batch := o.db.NewBatch()
	defer batch.Close()

	if err := batch.Put(key, value); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	tree := out.NewAddressParams.AddressMerkleTree
	if err := batch.Put(makeKey(prefixTreeIndex, tree[:], addr[:]), nil); err != nil {
		return fmt.Errorf("store tree index: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}

	log.Store.Debug().Stringer("address", addr).Stringer("tree", tree).Msg("record enqueued")
	return nil
}

// Get returns the pending record for addr.
func (o *Outbox) Get(addr address.Address) (*memo.Output, error) {
	if o.closed.Load() {
		return nil, ErrOutboxClosed
	}

	value, err := o.db.Get(makeKey(prefixPending, addr[:]))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record %s: %w", addr, err)
	}

	out := &memo.Output{}
	if err := o.serializer.Decode(value, out); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", addr, err)
	}
	return out, nil
}

// Pending lists every pending record in address order.
func (o *Outbox) Pending() ([]*memo.Output, error) {
	if o.closed.Load() {
		return nil, ErrOutboxClosed
	}

	prefix := []byte{prefixPending}
	iter, err := o.db.NewIterator(prefix, db.PrefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []*memo.Output
	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return nil, err
		}
		out := &memo.Output{}
		if err := o.serializer.Decode(value, out); err != nil {
			return nil, fmt.Errorf("decode record %x: %w", iter.Key()[1:], err)
		}
		records = append(records, out)
	}
	return records, nil
}

// PendingForTree lists the addresses waiting for insertion into tree.
func (o *Outbox) PendingForTree(tree solana.PublicKey) ([]address.Address, error) {
	if o.closed.Load() {
		return nil, ErrOutboxClosed
	}

	prefix := makeKey(prefixTreeIndex, tree[:])
	iter, err := o.db.NewIterator(prefix, db.PrefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var addrs []address.Address
	for iter.Next() {
		addrs = append(addrs, address.Address(iter.Key()[len(prefix):]))
	}
	return addrs, nil
}

// Take removes and returns the record for addr. Each record is handed out
// once.
func (o *Outbox) Take(addr address.Address) (*memo.Output, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	out, err := o.Get(addr)
	if err != nil {
		return nil, err
	}

	batch := o.db.NewBatch()
	defer batch.Close()

	tree := out.NewAddressParams.AddressMerkleTree
	if err := batch.Delete(makeKey(prefixPending, addr[:])); err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}
	if err := batch.Delete(makeKey(prefixTreeIndex, tree[:], addr[:])); err != nil {
		return nil, fmt.Errorf("delete tree index: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf(ErrFailedBatchCommit, err)
	}

	log.Store.Debug().Stringer("address", addr).Msg("record taken")
	return out, nil
}

// Close closes the outbox and the underlying store.
func (o *Outbox) Close() error {
	if !o.closed.CompareAndSwap(false, true) {
		return nil
	}
	return o.db.Close()
}
