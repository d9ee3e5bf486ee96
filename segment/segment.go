package segment

import (
	"context"
	"fmt"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mmcore/chapter"
	"github.com/hupe1980/mmcore/internal/hash"
	"github.com/hupe1980/mmcore/rawbuf"
)

// Segment is a contiguous byte range of a database buffer.
type Segment struct {
	Index       int    `json:"index"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Fingerprint uint64 `json:"fingerprint"`
}

// Len returns the size of the segment in bytes.
func (s Segment) Len() int { return s.End - s.Start }

// Bytes returns the segment's slice of buf.
func (s Segment) Bytes(buf []byte) []byte { return buf[s.Start:s.End:s.End] }

func (s Segment) String() string {
	return fmt.Sprintf("#%d [%d,%d) %016x", s.Index, s.Start, s.End, s.Fingerprint)
}

// Cuts returns the offsets at which buf is split: always 0 first, then the
// chapter header offsets that qualify under the options.
func Cuts(buf []byte, opts ...Option) []int {
	return cuts(buf, applyOptions(opts))
}

func cuts(buf []byte, o options) []int {
	out := []int{0}
	if !o.split || len(buf) <= o.threshold {
		return out
	}

	for _, h := range chapter.FindAll(buf) {
		if h == 0 || h-out[len(out)-1] < o.minSize {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Split cuts buf into segments and fingerprints them in parallel.
// An empty buffer yields a single empty segment.
func Split(ctx context.Context, buf []byte, opts ...Option) ([]Segment, error) {
	o := applyOptions(opts)

	starts := cuts(buf, o)
	segs := make([]Segment, len(starts))
	for i, start := range starts {
		end := len(buf)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		segs[i] = Segment{Index: i, Start: start, End: end}
	}

	g, gctx := errgroup.WithContext(ctx)
	if o.ctrl == nil {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}

	for i := range segs {
		g.Go(func() error {
			if err := o.ctrl.AcquireWorker(gctx); err != nil {
				return err
			}
			defer o.ctrl.ReleaseWorker()

			segs[i].Fingerprint = hash.Fingerprint(segs[i].Bytes(buf))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return segs, nil
}

// Assemble copies the bytes of s into dst, reusing its capacity.
func Assemble(dst, buf []byte, s Segment) []byte {
	return rawbuf.Append(rawbuf.Truncate(dst), s.Bytes(buf))
}

type identity struct {
	fp  uint64
	len int
}

// Diff returns the indices of the segments in next whose length and
// fingerprint do not occur in prev. Diff(next, prev) yields the segments of
// prev that are gone.
func Diff(prev, next []Segment) *roaring.Bitmap {
	seen := make(map[identity]struct{}, len(prev))
	for _, s := range prev {
		seen[identity{s.Fingerprint, s.Len()}] = struct{}{}
	}

	changed := roaring.New()
	for _, s := range next {
		if _, ok := seen[identity{s.Fingerprint, s.Len()}]; !ok {
			changed.Add(uint32(s.Index))
		}
	}
	return changed
}
