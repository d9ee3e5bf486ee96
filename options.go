package mmcore

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/mmcore/codec"
	"github.com/hupe1980/mmcore/diag"
	"github.com/hupe1980/mmcore/segment"
)

type options struct {
	logger         *Logger
	observer       Observer
	split          bool
	splitThreshold int
	minSegmentSize int
	jobs           int
	ioLimit        int64
	memoryLimit    int64
	traceRecalc    bool
	renderFormat   diag.Format
	codec          codec.Codec
}

// Option configures a Session.
type Option func(*options)

// WithLogger configures structured logging for session operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := mmcore.NewJSONLogger(slog.LevelInfo)
//	s := mmcore.Open(store, mmcore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithObserver configures an observer for session events.
// Pass nil to disable it.
//
// Example with BasicObserver:
//
//	obs := &mmcore.BasicObserver{}
//	s := mmcore.Open(store, mmcore.WithObserver(obs))
//	// ... load and render ...
//	stats := obs.GetStats()
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs == nil {
			obs = NoopObserver{}
		}
		o.observer = obs
	}
}

// WithSplit enables or disables splitting large texts at chapter headers.
// Splitting is enabled by default.
func WithSplit(enabled bool) Option {
	return func(o *options) {
		o.split = enabled
	}
}

// WithSplitThreshold sets the size in bytes above which texts are split.
// Defaults to segment.DefaultThreshold.
func WithSplitThreshold(n int) Option {
	return func(o *options) {
		o.splitThreshold = n
	}
}

// WithMinSegmentSize sets the minimum size of every segment but the last.
func WithMinSegmentSize(n int) Option {
	return func(o *options) {
		o.minSegmentSize = n
	}
}

// WithJobs sets the number of concurrent fingerprinting workers.
// Values <= 0 use GOMAXPROCS.
func WithJobs(n int) Option {
	return func(o *options) {
		o.jobs = n
	}
}

// WithIOLimit caps the read throughput from non-mapped sources in bytes per
// second. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMemoryLimit caps the bytes held by texts that had to be copied into
// memory. Mapped texts are not counted. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithTraceRecalc logs every segment that changed since the previous load of
// the same source.
func WithTraceRecalc(enabled bool) Option {
	return func(o *options) {
		o.traceRecalc = enabled
	}
}

// WithRenderFormat selects the output format of Render.
func WithRenderFormat(f diag.Format) Option {
	return func(o *options) {
		o.renderFormat = f
	}
}

// WithCodec configures the codec used for JSON rendering.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:         NoopLogger(),
		observer:       NoopObserver{},
		split:          true,
		splitThreshold: segment.DefaultThreshold,
		renderFormat:   diag.FormatCompact,
		codec:          codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.jobs <= 0 {
		o.jobs = runtime.GOMAXPROCS(0)
	}
	return o
}
