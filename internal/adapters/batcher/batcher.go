// Package batcher accumulates single-key availability loads into batches.
//
// Callers issue Load for one key at a time; the batcher holds keys for a
// short window and hands the accumulated set to the resolver in one call,
// so the resolver sees one batch per window instead of one per caller.
// Identical in-flight keys coalesce into a single slot and share the
// resolved value.
package batcher

import (
	"context"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// Default batcher configuration constants.
const (
	defaultWindow  = 5 * time.Millisecond
	defaultMaxKeys = 250
)

// Flush trigger labels used in metrics.
const (
	triggerSize   = "size"
	triggerWindow = "window"
	triggerDrain  = "drain"
)

// Resolver answers a whole batch of keys positionally.
type Resolver interface {
	Resolve(ctx context.Context, keys []model.Key) ([]int64, error)
}

// pendingKey is one coalesced slot waiting for a flush.
type pendingKey struct {
	done     chan struct{}
	quantity int64
	err      error
}

// Batcher coalesces concurrent single-key loads into batched resolves.
type Batcher struct {
	resolver Resolver
	window   time.Duration
	maxKeys  int

	mu      sync.Mutex
	pending map[model.Key]*pendingKey
	order   []model.Key
	timer   *time.Timer
	closed  bool
	flushes sync.WaitGroup
}

// New creates a Batcher over the given resolver.
func New(resolver Resolver, opts ...Option) (*Batcher, error) {
	if resolver == nil {
		return nil, ErrNilResolver
	}
	b := &Batcher{
		resolver: resolver,
		window:   defaultWindow,
		maxKeys:  defaultMaxKeys,
		pending:  make(map[model.Key]*pendingKey),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Load blocks until the batch containing key is flushed and returns the
// resolved quantity. A canceled ctx abandons the wait but not the batch:
// the key still resolves for any other waiter.
func (b *Batcher) Load(ctx context.Context, key model.Key) (int64, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, ErrClosed
	}

	p, ok := b.pending[key]
	if ok {
		metrics.RecordBatcherCoalescedKey()
	} else {
		p = &pendingKey{done: make(chan struct{})}
		b.pending[key] = p
		b.order = append(b.order, key)
		metrics.UpdateBatcherPending(len(b.order))

		switch {
		case len(b.order) >= b.maxKeys:
			b.flushLocked(triggerSize)
		case len(b.order) == 1:
			b.timer = time.AfterFunc(b.window, func() {
				b.mu.Lock()
				defer b.mu.Unlock()
				b.flushLocked(triggerWindow)
			})
		}
	}
	b.mu.Unlock()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-p.done:
		return p.quantity, p.err
	}
}

// Stop flushes any pending keys and rejects further loads. It returns
// after every in-flight flush has completed.
func (b *Batcher) Stop() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		b.flushLocked(triggerDrain)
	}
	b.mu.Unlock()

	b.flushes.Wait()
}

// flushLocked snapshots the pending batch and resolves it off-lock.
// Must be called with b.mu held.
func (b *Batcher) flushLocked(trigger string) {
	if len(b.order) == 0 {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	keys := b.order
	slots := b.pending
	b.order = nil
	b.pending = make(map[model.Key]*pendingKey)
	metrics.UpdateBatcherPending(0)
	metrics.RecordBatcherFlush(trigger)
	metrics.ObserveBatcherBatchSize(len(keys))

	b.flushes.Add(1)
	go func() {
		defer b.flushes.Done()
		// The batch outlives any single caller, so it resolves on its
		// own context rather than a caller's.
		quantities, err := b.resolver.Resolve(context.Background(), keys)
		for i, key := range keys {
			slot := slots[key]
			if err != nil {
				slot.err = err
			} else {
				slot.quantity = quantities[i]
			}
			close(slot.done)
		}
	}()
}
