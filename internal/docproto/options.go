package docproto

// DefaultMaxDepth bounds document nesting for both directions.
const DefaultMaxDepth = 256

// Options tunes a conversion call.
type Options struct {
	// MaxDepth is the deepest nesting level a conversion will walk. The root
	// document is level 0.
	MaxDepth int
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the nesting bound; values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxDepth = n
		}
	}
}

func resolveOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
