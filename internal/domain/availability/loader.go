// Package availability implements the batched availability lookup engine.
//
// The Loader answers "how many units of variant X can one order line get
// under zone Y" for a whole batch of keys at once, issuing exactly one
// store query per distinct zone in the batch. Each invocation is an
// independent unit of work: the Loader holds no state between calls and
// is safe for concurrent use.
package availability

import (
	"context"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// Default loader configuration constants.
const (
	// defaultMaxPerLine caps the quantity exposed for a single order
	// line so callers cannot probe exact stock levels.
	defaultMaxPerLine = 50

	defaultMaxConcurrentZones = 4
)

// Loader resolves availability for batches of lookup keys.
type Loader struct {
	source             RecordSource
	maxPerLine         int64
	maxConcurrentZones int
}

// NewLoader creates a Loader over the given record source. The per-line
// bound and zone concurrency are configurable; a negative per-line bound
// is rejected here so Resolve never has to re-check it.
func NewLoader(source RecordSource, opts ...Option) (*Loader, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	l := &Loader{
		source:             source,
		maxPerLine:         defaultMaxPerLine,
		maxConcurrentZones: defaultMaxConcurrentZones,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.maxPerLine < 0 {
		return nil, ErrInvalidMaxPerLine
	}
	return l, nil
}

// MaxPerLine returns the configured per-line quantity bound.
func (l *Loader) MaxPerLine() int64 {
	return l.maxPerLine
}

// Resolve answers every key in the batch. The result has the same length
// and positional correspondence as keys: out[i] answers keys[i], and
// duplicate keys receive identical values. Keys whose variant has no
// stock under their zone resolve to zero.
//
// Zone groups are fetched and aggregated concurrently; reassembly only
// starts after every group has finished. If any group's store query
// fails the whole call fails with no partial results, since silently
// under-reporting unresolved keys is worse than a visible error.
func (l *Loader) Resolve(ctx context.Context, keys []model.Key) ([]int64, error) {
	out := make([]int64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	start := time.Now()

	groups := partitionByZone(keys)
	metrics.ObserveBatchKeys(len(keys))
	metrics.ObserveBatchZones(len(groups))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	resolved := make(map[model.Key]int64, len(keys))
	sem := make(chan struct{}, l.maxConcurrentZones)

	for zone, variantIDs := range groups {
		wg.Add(1)
		go func(zone string, variantIDs []int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			quantities, err := l.resolveZone(ctx, zone, variantIDs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for variantID, qty := range quantities {
				resolved[model.Key{VariantID: variantID, Zone: zone}] = qty
			}
		}(zone, variantIDs)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	for i, k := range keys {
		out[i] = l.clamp(resolved[k])
	}

	metrics.ObserveResolveLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// clamp applies the per-line bound to one resolved quantity. A key that
// resolved nothing carries the map zero value and stays zero.
func (l *Loader) clamp(quantity int64) int64 {
	if quantity > l.maxPerLine {
		metrics.RecordResultClamped()
		return l.maxPerLine
	}
	if quantity == 0 {
		metrics.RecordZeroQuantityResult()
	}
	return quantity
}
