package mmcore

import (
	"sync/atomic"
	"time"
)

// Observer receives session events.
// Implement this interface to integrate with monitoring systems like Prometheus.
type Observer interface {
	// OnLoad is called after each Load. bytes is the size of the text and
	// mapped reports whether it aliases the source without a copy.
	OnLoad(name string, bytes int, mapped bool, duration time.Duration, err error)

	// OnSplit is called after a loaded text has been segmented. changed is
	// the number of segments that differ from the previous load.
	OnSplit(name string, segments, changed int, duration time.Duration)

	// OnIndexBuild is called when a line index is built for a text.
	OnIndexBuild(bytes int, duration time.Duration)

	// OnRender is called after each Render with the number of notations written.
	OnRender(count int, duration time.Duration, err error)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (NoopObserver) OnLoad(string, int, bool, time.Duration, error) {}
func (NoopObserver) OnSplit(string, int, int, time.Duration)        {}
func (NoopObserver) OnIndexBuild(int, time.Duration)                {}
func (NoopObserver) OnRender(int, time.Duration, error)             {}

// BasicObserver provides simple in-memory counters.
// Useful for debugging and basic monitoring without external dependencies.
type BasicObserver struct {
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	LoadBytes       atomic.Int64
	LoadMapped      atomic.Int64
	LoadTotalNanos  atomic.Int64
	SplitCount      atomic.Int64
	Segments        atomic.Int64
	ChangedSegments atomic.Int64
	IndexBuilds     atomic.Int64
	IndexBytes      atomic.Int64
	RenderCount     atomic.Int64
	RenderErrors    atomic.Int64
	Rendered        atomic.Int64
}

// OnLoad implements Observer.
func (b *BasicObserver) OnLoad(_ string, bytes int, mapped bool, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(int64(bytes))
	if mapped {
		b.LoadMapped.Add(1)
	}
}

// OnSplit implements Observer.
func (b *BasicObserver) OnSplit(_ string, segments, changed int, _ time.Duration) {
	b.SplitCount.Add(1)
	b.Segments.Add(int64(segments))
	b.ChangedSegments.Add(int64(changed))
}

// OnIndexBuild implements Observer.
func (b *BasicObserver) OnIndexBuild(bytes int, _ time.Duration) {
	b.IndexBuilds.Add(1)
	b.IndexBytes.Add(int64(bytes))
}

// OnRender implements Observer.
func (b *BasicObserver) OnRender(count int, _ time.Duration, err error) {
	b.RenderCount.Add(1)
	b.Rendered.Add(int64(count))
	if err != nil {
		b.RenderErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicObserver) GetStats() BasicStats {
	return BasicStats{
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadBytes:       b.LoadBytes.Load(),
		LoadMapped:      b.LoadMapped.Load(),
		LoadAvgNanos:    b.getAvgLoadNanos(),
		SplitCount:      b.SplitCount.Load(),
		Segments:        b.Segments.Load(),
		ChangedSegments: b.ChangedSegments.Load(),
		IndexBuilds:     b.IndexBuilds.Load(),
		IndexBytes:      b.IndexBytes.Load(),
		RenderCount:     b.RenderCount.Load(),
		RenderErrors:    b.RenderErrors.Load(),
		Rendered:        b.Rendered.Load(),
	}
}

func (b *BasicObserver) getAvgLoadNanos() int64 {
	count := b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadTotalNanos.Load() / count
}

// BasicStats is a snapshot of BasicObserver state.
type BasicStats struct {
	LoadCount       int64
	LoadErrors      int64
	LoadBytes       int64
	LoadMapped      int64
	LoadAvgNanos    int64
	SplitCount      int64
	Segments        int64
	ChangedSegments int64
	IndexBuilds     int64
	IndexBytes      int64
	RenderCount     int64
	RenderErrors    int64
	Rendered        int64
}
