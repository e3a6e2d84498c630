package batcher

import "time"

// Option applies a configuration option to the Batcher.
type Option func(*Batcher)

// WithWindow sets the accumulation window: the longest a pending key
// waits before its batch is flushed.
func WithWindow(d time.Duration) Option {
	return func(b *Batcher) {
		if d > 0 {
			b.window = d
		}
	}
}

// WithMaxKeys sets the key count that flushes a batch early.
func WithMaxKeys(n int) Option {
	return func(b *Batcher) {
		if n > 0 {
			b.maxKeys = n
		}
	}
}
