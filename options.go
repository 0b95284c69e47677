package harvest

import "github.com/rs/zerolog"

// DefaultWashSaleDays is the number of days before the target date scanned
// for repurchases.
const DefaultWashSaleDays = 30

// Option configures the engine functions and the Portfolio.
type Option func(*options)

type options struct {
	logger       zerolog.Logger
	washSaleDays int
}

func newOptions(opts []Option) options {
	o := options{
		logger:       zerolog.Nop(),
		washSaleDays: DefaultWashSaleDays,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used to report diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithWashSaleDays changes the wash-sale lookback window.
func WithWashSaleDays(days int) Option {
	return func(o *options) {
		if days >= 0 {
			o.washSaleDays = days
		}
	}
}
