package segment

import "github.com/hupe1980/mmcore/resource"

// DefaultThreshold is the buffer size above which Split cuts at chapter
// headers.
const DefaultThreshold = 1 << 20

type options struct {
	split     bool
	threshold int
	minSize   int
	ctrl      *resource.Controller
}

// Option configures Split.
type Option func(*options)

// WithSplit enables or disables cutting at chapter headers.
// Enabled by default.
func WithSplit(enabled bool) Option {
	return func(o *options) { o.split = enabled }
}

// WithThreshold sets the size a buffer must exceed to be split.
func WithThreshold(n int) Option {
	return func(o *options) { o.threshold = n }
}

// WithMinSize skips chapter headers that would end a segment shorter than
// n bytes, merging small chapters into their successor.
func WithMinSize(n int) Option {
	return func(o *options) { o.minSize = n }
}

// WithController bounds the fingerprinting workers.
func WithController(ctrl *resource.Controller) Option {
	return func(o *options) { o.ctrl = ctrl }
}

func applyOptions(opts []Option) options {
	o := options{
		split:     true,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
