package mmcore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/diag"
	"github.com/hupe1980/mmcore/internal/compress"
	"github.com/hupe1980/mmcore/linecache"
	"github.com/hupe1980/mmcore/testutil"
)

const small = "$c wff |- $.\n$v ph ps $.\nax-1 $a |- ( ph -> ps ) $.\n"

func note(class diag.Class, start, end int, msg string) diag.Notation {
	return diag.Notation{
		Source:  diag.Source{Name: "set.mm"},
		Span:    diag.Span{Start: start, End: end},
		Level:   diag.Error,
		Class:   class,
		Message: msg,
	}
}

func TestLoad_Virtual(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	db, err := s.Load(context.Background(), "set.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "set.mm", db.Name)
	assert.Equal(t, small, string(db.Text()))
	assert.True(t, db.Mapped())
	require.Len(t, db.Segments, 1)
	assert.Equal(t, uint64(1), db.Changed.GetCardinality())
	assert.Equal(t, small, string(db.Segment(0)))
}

func TestLoad_VirtualShadowsStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore(
		blobstore.Source{Name: "set.mm", Text: []byte("on disk\n")},
		blobstore.Source{Name: "other.mm", Text: []byte("other\n")},
	)

	s := Open(store)
	defer s.Close()

	db, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: []byte("in editor\n")})
	require.NoError(t, err)
	assert.Equal(t, "in editor\n", string(db.Text()))

	db, err = s.Load(ctx, "other.mm", blobstore.Source{Name: "set.mm", Text: []byte("in editor\n")})
	require.NoError(t, err)
	assert.Equal(t, "other\n", string(db.Text()))
}

func TestLoad_NotFound(t *testing.T) {
	ctx := context.Background()

	for name, s := range map[string]*Session{
		"nil store":    Open(nil),
		"memory store": Open(blobstore.NewMemoryStore()),
	} {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			_, err := s.Load(ctx, "missing.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSourceNotFound)
			assert.ErrorIs(t, err, os.ErrNotExist)

			var se *SourceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "missing.mm", se.Name)
		})
	}
}

func TestLoad_LocalStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/set.mm", []byte(small), 0o644))

	obs := &BasicObserver{}
	s := Open(blobstore.NewLocalStore(dir), WithObserver(obs))
	defer s.Close()

	db, err := s.Load(context.Background(), "set.mm")
	require.NoError(t, err)
	assert.Equal(t, small, string(db.Text()))
	assert.True(t, db.Mapped())
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	stats := obs.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadMapped)
	assert.Equal(t, int64(len(small)), stats.LoadBytes)
}

func TestLoad_Compressed(t *testing.T) {
	ctx := context.Background()
	text, _ := testutil.NewRNG(3).Database(4, 4<<10)

	packed, err := compress.Compress(compress.Zstd, text)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "set.mm.zst", packed))

	s := Open(store, WithMemoryLimit(1<<20))
	defer s.Close()

	db, err := s.Load(ctx, "set.mm.zst")
	require.NoError(t, err)
	assert.Equal(t, text, db.Text())
	assert.False(t, db.Mapped())
}

func TestLoad_Incremental(t *testing.T) {
	ctx := context.Background()
	text, headers := testutil.NewRNG(11).Database(8, 16<<10)

	var logs bytes.Buffer
	obs := &BasicObserver{}
	s := Open(nil,
		WithSplitThreshold(1<<10),
		WithJobs(2),
		WithTraceRecalc(true),
		WithObserver(obs),
		WithLogger(NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	defer s.Close()

	first, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: text})
	require.NoError(t, err)
	require.Len(t, first.Segments, len(headers)+1)
	assert.Equal(t, uint64(len(first.Segments)), first.Changed.GetCardinality())

	// Edit a byte inside the body of chapter 3, which is segment 4.
	edited := slices.Clone(text)
	at := headers[3] + 400
	if edited[at] == 'Q' {
		edited[at] = 'R'
	} else {
		edited[at] = 'Q'
	}
	logs.Reset()

	second, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: edited})
	require.NoError(t, err)
	assert.Equal(t, []uint32{4}, second.Changed.ToArray())
	assert.NotEqual(t, first.Checksum, second.Checksum)
	assert.Contains(t, logs.String(), "msg=recalc")
	assert.Contains(t, logs.String(), "segment=4")

	third, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: edited})
	require.NoError(t, err)
	assert.True(t, third.Changed.IsEmpty())
	assert.Equal(t, second.Segments, third.Segments)
	assert.Contains(t, logs.String(), "source unchanged")

	stats := obs.GetStats()
	assert.Equal(t, int64(3), stats.LoadCount)
	assert.Equal(t, int64(2), stats.SplitCount)
	assert.Equal(t, int64(len(first.Segments)+1), stats.ChangedSegments)
}

func TestLoad_SplitDisabled(t *testing.T) {
	text, _ := testutil.NewRNG(5).Database(6, 8<<10)

	s := Open(nil, WithSplit(false), WithSplitThreshold(1<<10))
	defer s.Close()

	db, err := s.Load(context.Background(), "set.mm", blobstore.Source{Name: "set.mm", Text: text})
	require.NoError(t, err)
	assert.Len(t, db.Segments, 1)
}

func TestDiagnostics(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.Report(
		note(diag.Parse, 0, 2, "a"),
		note(diag.Verify, 2, 4, "b"),
		note(diag.Scope, 4, 6, "c"),
	)
	s.Report(note(diag.Parse, 6, 8, "d"))

	messages := func(seq func(func(diag.Notation) bool)) []string {
		var out []string
		for n := range seq {
			out = append(out, n.Message)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, messages(s.Diagnostics()))
	assert.Equal(t, []string{"a", "c", "d"}, messages(s.Diagnostics(diag.Parse, diag.Scope)))
	assert.Equal(t, []string{"b"}, messages(s.Diagnostics(diag.Verify)))
	assert.Empty(t, messages(s.Diagnostics(diag.Grammar)))
	assert.Empty(t, messages(s.Diagnostics(diag.Class(-1))))
	assert.Equal(t, []string{"b"}, messages(s.Diagnostics(diag.Class(-1), diag.Verify)))

	for n := range s.Diagnostics() {
		assert.Equal(t, "a", n.Message)
		break
	}

	s.ClearDiagnostics()
	assert.Empty(t, messages(s.Diagnostics()))
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	obs := &BasicObserver{}
	s := Open(nil, WithRenderFormat(diag.FormatPositioned), WithObserver(obs))
	defer s.Close()

	db, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
	require.NoError(t, err)

	at := strings.Index(small, "ax-1")
	s.Report(note(diag.Verify, at, at+4, "unknown axiom"))

	var out bytes.Buffer
	require.NoError(t, s.Render(ctx, &out, db, s.Diagnostics()))
	assert.Equal(t, "set.mm:3:1: error: unknown axiom\nax-1 $a |- ( ph -> ps ) $.\n^^^^\n", out.String())

	out.Reset()
	require.NoError(t, s.Render(ctx, &out, db, s.Diagnostics()))

	stats := obs.GetStats()
	assert.Equal(t, int64(1), stats.IndexBuilds)
	assert.Equal(t, int64(2), stats.RenderCount)
	assert.Equal(t, int64(2), stats.Rendered)
}

func TestRender_Compact(t *testing.T) {
	ctx := context.Background()
	s := Open(nil)
	defer s.Close()

	db, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
	require.NoError(t, err)

	n := note(diag.Parse, 3, 6, "bad token")
	n.Args = []diag.Arg{{ID: "token", Value: "wff"}}

	var out bytes.Buffer
	require.NoError(t, s.Render(ctx, &out, db, slices.Values([]diag.Notation{n})))
	assert.Equal(t, "set.mm:3-6:Error:bad token token=wff\n", out.String())
}

func TestRender_OutOfRange(t *testing.T) {
	ctx := context.Background()
	obs := &BasicObserver{}
	s := Open(nil, WithRenderFormat(diag.FormatPositioned), WithObserver(obs))
	defer s.Close()

	db, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
	require.NoError(t, err)

	ns := []diag.Notation{
		note(diag.Parse, 0, 2, "ok"),
		note(diag.Parse, len(small)+10, len(small)+11, "past the end"),
	}

	var out bytes.Buffer
	err = s.Render(ctx, &out, db, slices.Values(ns))
	assert.ErrorIs(t, err, linecache.ErrOffsetOutOfRange)
	assert.Equal(t, int64(1), obs.GetStats().Rendered)
	assert.Equal(t, int64(1), obs.GetStats().RenderErrors)
}

func TestLocateAndOffset(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	db, err := s.Load(context.Background(), "set.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
	require.NoError(t, err)

	pos, err := s.Locate(db, strings.Index(small, "ph ps"))
	require.NoError(t, err)
	assert.Equal(t, linecache.Position{Line: 2, Column: 4}, pos)

	off, err := s.Offset(db, 3)
	require.NoError(t, err)
	assert.Equal(t, strings.Index(small, "ax-1"), off)

	_, err = s.Offset(db, 10)
	assert.ErrorIs(t, err, linecache.ErrLineOutOfRange)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := Open(nil)

	db, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
	require.NoError(t, err)
	s.Report(note(diag.Parse, 0, 1, "x"))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.NoError(t, db.Close())

	_, err = s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: []byte(small)})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Render(ctx, &bytes.Buffer{}, db, s.Diagnostics()), ErrClosed)

	_, err = s.Locate(db, 0)
	assert.ErrorIs(t, err, ErrClosed)

	s.Report(note(diag.Parse, 0, 1, "y"))
	for range s.Diagnostics() {
		t.Fatal("closed session reported notations")
	}
}

func TestDatabaseClose_Mapped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "set.mm"), []byte(small), 0o644))

	s := Open(blobstore.NewLocalStore(dir))
	defer s.Close()

	db, err := s.Load(ctx, "set.mm")
	require.NoError(t, err)
	require.True(t, db.Mapped())

	_, err = s.Locate(db, len(small)-1)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = s.Locate(db, len(small)-1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Offset(db, 2)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Render(ctx, &bytes.Buffer{}, db, slices.Values([]diag.Notation{note(diag.Parse, 0, 1, "x")})), ErrClosed)

	// a fresh load of the same source is usable
	again, err := s.Load(ctx, "set.mm")
	require.NoError(t, err)
	defer again.Close()
	_, err = s.Locate(again, len(small)-1)
	assert.NoError(t, err)
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text, _ := testutil.NewRNG(9).Database(4, 4<<10)
	s := Open(nil, WithSplitThreshold(1<<10))
	defer s.Close()

	_, err := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: text})
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkLoad(b *testing.B) {
	ctx := context.Background()
	text, _ := testutil.NewRNG(1).Database(64, 64<<10)
	src := blobstore.Source{Name: "set.mm", Text: text}

	s := Open(nil)
	defer s.Close()

	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for b.Loop() {
		db, err := s.Load(ctx, "set.mm", src)
		if err != nil {
			b.Fatal(err)
		}
		_ = db.Close()
	}
}
