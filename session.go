package mmcore

import (
	"context"
	"errors"
	"io"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/diag"
	"github.com/hupe1980/mmcore/internal/hash"
	"github.com/hupe1980/mmcore/linecache"
	"github.com/hupe1980/mmcore/resource"
	"github.com/hupe1980/mmcore/segment"
)

// Session loads databases and collects their diagnostics. It is safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	store blobstore.Store
	opts  options
	ctrl  *resource.Controller

	cache    *linecache.Cache
	renderer *diag.Renderer

	history   map[string]loadState
	open      map[*Database]struct{}
	notations []diag.Notation
	closed    bool
}

// loadState is what a later load of the same name is compared against.
type loadState struct {
	checksum uint32
	size     int
	segments []segment.Segment
}

// Open returns a session reading from store. store may be nil when every
// load supplies its text as a virtual source.
func Open(store blobstore.Store, optFns ...Option) *Session {
	opts := applyOptions(optFns)

	cache := linecache.New()

	return &Session{
		store: store,
		opts:  opts,
		ctrl: resource.NewController(resource.Config{
			MemoryLimitBytes:   opts.memoryLimit,
			MaxWorkers:         int64(opts.jobs),
			IOLimitBytesPerSec: opts.ioLimit,
		}),
		cache:    cache,
		renderer: diag.NewRenderer(cache, diag.WithFormat(opts.renderFormat), diag.WithCodec(opts.codec)),
		history:  make(map[string]loadState),
		open:     make(map[*Database]struct{}),
	}
}

// Load reads the source named start, splits it at chapter headers and
// compares the segments with the previous load of the same name.
//
// Virtual sources are consulted before the store. An error satisfying
// errors.Is(err, ErrSourceNotFound) is returned when neither holds start.
func (s *Session) Load(ctx context.Context, start string, virtual ...blobstore.Source) (*Database, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	begin := time.Now()

	content, err := s.read(ctx, start, virtual)
	if err != nil {
		err = translateError(start, err)
		s.opts.observer.OnLoad(start, 0, false, time.Since(begin), err)
		s.opts.logger.LogLoad(ctx, start, 0, 0, 0, 0, err)
		return nil, err
	}

	db, err := s.index(ctx, start, content)
	if err != nil {
		_ = content.Close()
		err = translateError(start, err)
		s.opts.observer.OnLoad(start, len(content.Data), content.Mapped, time.Since(begin), err)
		s.opts.logger.LogLoad(ctx, start, len(content.Data), 0, 0, 0, err)
		return nil, err
	}

	d := time.Since(begin)
	changed := int(db.Changed.GetCardinality())
	s.opts.observer.OnLoad(start, len(content.Data), content.Mapped, d, nil)
	s.opts.logger.LogLoad(ctx, start, len(content.Data), len(db.Segments), changed, d, nil)

	return db, nil
}

func (s *Session) read(ctx context.Context, name string, virtual []blobstore.Source) (*blobstore.Content, error) {
	if len(virtual) > 0 {
		content, err := blobstore.ReadAll(ctx, blobstore.NewMemoryStore(virtual...), name, nil)
		if err == nil || !errors.Is(err, blobstore.ErrNotFound) {
			return content, err
		}
	}

	if s.store == nil {
		return nil, blobstore.ErrNotFound
	}

	return blobstore.ReadAll(ctx, s.store, name, s.ctrl)
}

func (s *Session) index(ctx context.Context, name string, content *blobstore.Content) (*Database, error) {
	data := content.Data
	checksum := hash.CRC32C(data)

	s.mu.Lock()
	prev, seen := s.history[name]
	s.mu.Unlock()

	db := &Database{
		Name:     name,
		Checksum: checksum,
		content:  content,
		session:  s,
	}

	if seen && prev.checksum == checksum && prev.size == len(data) {
		s.opts.logger.LogUnchanged(ctx, name, checksum)
		db.Segments = prev.segments
		db.Changed = roaring.New()
	} else {
		begin := time.Now()
		segs, err := segment.Split(ctx, data,
			segment.WithSplit(s.opts.split),
			segment.WithThreshold(s.opts.splitThreshold),
			segment.WithMinSize(s.opts.minSegmentSize),
			segment.WithController(s.ctrl),
		)
		if err != nil {
			return nil, err
		}

		db.Segments = segs
		if seen {
			db.Changed = segment.Diff(prev.segments, segs)
		} else {
			db.Changed = roaring.New()
			db.Changed.AddRange(0, uint64(len(segs)))
		}
		s.opts.observer.OnSplit(name, len(segs), int(db.Changed.GetCardinality()), time.Since(begin))
	}

	if s.opts.traceRecalc {
		it := db.Changed.Iterator()
		for it.HasNext() {
			s.opts.logger.LogRecalc(ctx, name, db.Segments[it.Next()])
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.history[name] = loadState{checksum: checksum, size: len(data), segments: db.Segments}
	db.buf = s.cache.Track(data)
	s.open[db] = struct{}{}

	return db, nil
}

// Report records notations produced by an external parser or verifier.
func (s *Session) Report(ns ...diag.Notation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.notations = append(s.notations, ns...)
}

// Diagnostics returns the reported notations of the given classes in report
// order. With no classes every notation is returned.
func (s *Session) Diagnostics(classes ...diag.Class) iter.Seq[diag.Notation] {
	s.mu.Lock()
	ns := slices.Clone(s.notations)
	s.mu.Unlock()

	filter := diag.Classes(classes...)
	all := len(classes) == 0

	return func(yield func(diag.Notation) bool) {
		for _, n := range ns {
			if !all && !filter.Has(int(n.Class)) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// ClearDiagnostics drops every reported notation.
func (s *Session) ClearDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notations = nil
}

// Render writes ns against the text of db. Spans are absolute offsets into
// db's text.
func (s *Session) Render(ctx context.Context, w io.Writer, db *Database, ns iter.Seq[diag.Notation]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db); err != nil {
		return err
	}

	begin := time.Now()
	builds := s.cache.Builds()

	var (
		count int
		err   error
	)
	for n := range ns {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = s.renderer.Render(w, db.buf, n); err != nil {
			break
		}
		count++
	}

	if s.cache.Builds() > builds {
		s.opts.observer.OnIndexBuild(db.buf.Len(), time.Since(begin))
	}
	s.opts.observer.OnRender(count, time.Since(begin), err)
	s.opts.logger.LogRender(ctx, db.Name, count, err)

	return err
}

// Locate returns the line and column of offset in db's text.
func (s *Session) Locate(db *Database, offset int) (linecache.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db); err != nil {
		return linecache.Position{}, err
	}
	return s.cache.Position(db.buf, offset)
}

// Offset returns the offset of the first byte of the 1-based line in db's text.
func (s *Session) Offset(db *Database, line int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db); err != nil {
		return 0, err
	}
	return s.cache.Offset(db.buf, line)
}

// Close releases every open database and drops the line indexes. It is safe
// to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	open := s.open
	s.open = nil
	s.history = nil
	s.notations = nil
	s.cache.Reset()
	s.mu.Unlock()

	var errs []error
	for db := range open {
		errs = append(errs, db.release())
	}
	return errors.Join(errs...)
}

// checkOpen returns ErrClosed unless both s and db are open. The caller
// holds s.mu; db's text stays mapped until it is removed from s.open.
func (s *Session) checkOpen(db *Database) error {
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.open[db]; !ok {
		return ErrClosed
	}
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) forget(db *Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, db)
	if !s.closed {
		s.cache.Forget(db.buf)
	}
}

// Database is one loaded source.
type Database struct {
	Name string

	// Segments partition the text in order.
	Segments []segment.Segment

	// Changed holds the indices of segments that differ from the previous
	// load of the same name. Every segment is changed on the first load.
	Changed *roaring.Bitmap

	// Checksum is the CRC32C of the text.
	Checksum uint32

	session *Session
	content *blobstore.Content
	buf     linecache.Buffer

	once sync.Once
	err  error
}

// Text returns the database text. It must not be modified or used after Close.
func (d *Database) Text() []byte { return d.content.Data }

// Mapped reports whether the text aliases the source without a copy.
func (d *Database) Mapped() bool { return d.content.Mapped }

// Segment returns the text of segment i.
func (d *Database) Segment(i int) []byte { return d.Segments[i].Bytes(d.content.Data) }

// Close releases the text. Later Render, Locate and Offset calls with d
// return ErrClosed. It is safe to call multiple times.
func (d *Database) Close() error {
	d.session.forget(d)
	return d.release()
}

func (d *Database) release() error {
	d.once.Do(func() {
		d.err = d.content.Close()
	})
	return d.err
}
