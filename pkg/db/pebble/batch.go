package pebble

import (
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/eigerco/compmemo/pkg/db"
)

type Batch struct {
	batch     *pebble.Batch
	committed atomic.Bool
	closed    atomic.Bool
}

func (p *KVStore) NewBatch() db.Batch {
	return &Batch{
		batch: p.db.NewBatch(),
	}
}

func (b *Batch) Put(key, value []byte) error {
	if b.committed.Load() || b.closed.Load() {
		return ErrBatchDone
	}
	return b.batch.Set(key, value, nil)
}

func (b *Batch) Delete(key []byte) error {
	if b.committed.Load() || b.closed.Load() {
		return ErrBatchDone
	}
	return b.batch.Delete(key, nil)
}

// Commit applies the batch. A committed batch still has to be closed.
func (b *Batch) Commit() error {
	if b.closed.Load() || !b.committed.CompareAndSwap(false, true) {
		return ErrBatchDone
	}
	return b.batch.Commit(pebble.Sync)
}

func (b *Batch) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.batch.Close()
}
