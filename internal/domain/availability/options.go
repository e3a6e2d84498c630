// Package availability implements the batched availability lookup engine.
package availability

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithMaxPerLine sets the upper bound applied to every resolved quantity.
// Values are validated by NewLoader; a negative bound is a configuration
// error.
func WithMaxPerLine(limit int64) Option {
	return func(l *Loader) {
		l.maxPerLine = limit
	}
}

// WithMaxConcurrentZones bounds how many zone groups are resolved in
// parallel within one Resolve call.
func WithMaxConcurrentZones(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxConcurrentZones = n
		}
	}
}
