package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/codec"
	"github.com/hupe1980/mmcore/internal/compress"
	"github.com/hupe1980/mmcore/testutil"
)

const text = "$c wff |- $.\n$v ph $.\nax-1 $a |- ph $.\n"

func testGlobals() GlobalOptions {
	return GlobalOptions{LogLevel: "warn", Jobs: 1, Format: "compact"}
}

func writeNotes(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

const (
	parseNote  = `{"source":"set.mm","start":13,"end":15,"level":"Error","class":"parse","message":"bad keyword","args":{"kw":"$v"}}`
	verifyNote = `{"source":"set.mm","start":22,"end":26,"level":"Warning","class":"verify","message":"unused axiom"}`
)

func TestCheck_Text(t *testing.T) {
	notes := writeNotes(t, parseNote, "", verifyNote)

	var stdout, stderr bytes.Buffer
	opts := CheckOptions{Texts: []string{"set.mm=" + text}, Notes: notes}
	require.NoError(t, runCheck(context.Background(), testGlobals(), opts, nil, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, "set.mm:13-15:Error:bad keyword kw=$v\n", stdout.String())

	stdout.Reset()
	opts.Verify = true
	require.NoError(t, runCheck(context.Background(), testGlobals(), opts, nil, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, "set.mm:13-15:Error:bad keyword kw=$v\nset.mm:22-26:Warning:unused axiom\n", stdout.String())
}

func TestCheck_Positioned(t *testing.T) {
	notes := writeNotes(t, verifyNote)
	gopts := testGlobals()
	gopts.Format = "positioned"

	var stdout, stderr bytes.Buffer
	opts := CheckOptions{Texts: []string{"set.mm=" + text}, Notes: notes, Verify: true, Timing: true}
	require.NoError(t, runCheck(context.Background(), gopts, opts, nil, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, "set.mm:3:1: warning: unused axiom\nax-1 $a |- ph $.\n^^^^\n", stdout.String())
	assert.Contains(t, stderr.String(), "load set.mm:")
	assert.Contains(t, stderr.String(), "diagnostics:")
}

func TestCheck_Repeat(t *testing.T) {
	notes := writeNotes(t, parseNote)

	var stdout, stderr bytes.Buffer
	opts := CheckOptions{Texts: []string{"set.mm=" + text}, Notes: notes, Repeat: true}
	require.NoError(t, runCheck(context.Background(), testGlobals(), opts, nil, strings.NewReader("\n\n"), &stdout, &stderr))
	assert.Equal(t, 3, strings.Count(stdout.String(), "bad keyword"))
}

func TestCheck_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "set.mm")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	var stdout, stderr bytes.Buffer
	opts := CheckOptions{Notes: writeNotes(t, parseNote), Split: true}
	require.NoError(t, runCheck(context.Background(), testGlobals(), opts, []string{path}, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, "set.mm:13-15:Error:bad keyword kw=$v\n", stdout.String())
}

func TestCheck_Errors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	err := runCheck(ctx, testGlobals(), CheckOptions{}, nil, strings.NewReader(""), &out, &out)
	assert.ErrorContains(t, err, "no database given")

	err = runCheck(ctx, testGlobals(), CheckOptions{Texts: []string{"no-equals"}}, nil, strings.NewReader(""), &out, &out)
	assert.ErrorContains(t, err, "NAME=TEXT")

	err = runCheck(ctx, testGlobals(), CheckOptions{}, []string{filepath.Join(t.TempDir(), "missing.mm")}, strings.NewReader(""), &out, &out)
	assert.ErrorContains(t, err, "source not found")

	gopts := testGlobals()
	gopts.LogLevel = "loud"
	err = runCheck(ctx, gopts, CheckOptions{Texts: []string{"a.mm=x"}}, nil, strings.NewReader(""), &out, &out)
	assert.ErrorContains(t, err, "invalid log level")

	bad := writeNotes(t, `{"source":"set.mm","start":1,"end":2,"level":"Fatal","class":"parse"}`)
	err = runCheck(ctx, testGlobals(), CheckOptions{Texts: []string{"set.mm=" + text}, Notes: bad}, nil, strings.NewReader(""), &out, &out)
	assert.ErrorContains(t, err, "notes.jsonl:1")
}

func TestCheck_CompressedNotes(t *testing.T) {
	packed, err := compress.Compress(compress.Zstd, []byte(parseNote+"\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.jsonl.zst")
	require.NoError(t, os.WriteFile(path, packed, 0o644))

	var stdout, stderr bytes.Buffer
	opts := CheckOptions{Texts: []string{"set.mm=" + text}, Notes: path}
	require.NoError(t, runCheck(context.Background(), testGlobals(), opts, nil, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, "set.mm:13-15:Error:bad keyword kw=$v\n", stdout.String())
}

func TestSegments(t *testing.T) {
	data, headers := testutil.NewRNG(7).Database(5, 4<<10)
	dir := t.TempDir()
	path := filepath.Join(dir, "big.mm")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var out bytes.Buffer
	opts := SegmentsOptions{Threshold: 1 << 10, Codec: "go-json"}
	require.NoError(t, runSegments(context.Background(), testGlobals(), opts, path, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(headers)+1)
	assert.True(t, strings.HasPrefix(lines[0], "#0 [0,"))
	assert.Contains(t, lines[0], "line 1")

	out.Reset()
	opts.JSON = true
	require.NoError(t, runSegments(context.Background(), testGlobals(), opts, path, &out))

	lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(headers)+1)

	var row segmentRow
	require.NoError(t, codec.Default.Unmarshal([]byte(lines[1]), &row))
	assert.Equal(t, 1, row.Index)
	assert.Equal(t, headers[0], row.Start)
	assert.Greater(t, row.Line, 1)

	opts.Codec = "xml"
	assert.Error(t, runSegments(context.Background(), testGlobals(), opts, path, &out))
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want position
	}{
		{"0", position{Offset: 0}},
		{"1234", position{Offset: 1234}},
		{"L3", position{Line: 3, Column: 1}},
		{"3:7", position{Line: 3, Column: 7}},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"-1", "x", "0:1", "1:0", "L0", "3:x"} {
		_, err := parsePosition(bad)
		assert.Error(t, err, bad)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "set.mm")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	var out bytes.Buffer
	require.NoError(t, runLocate(context.Background(), testGlobals(), path, []string{"22", "L2", "3:6", "0"}, &out))
	assert.Equal(t, "22\t3:1\nL2\t13\n3:6\t27\n0\t1:1\n", out.String())

	assert.Error(t, runLocate(context.Background(), testGlobals(), path, []string{"9999"}, &out))
	assert.Error(t, runLocate(context.Background(), testGlobals(), path, []string{"1:40"}, &out))
	assert.Error(t, runLocate(context.Background(), testGlobals(), path, []string{"L9"}, &out))
}

func TestPack(t *testing.T) {
	ctx := context.Background()
	data, _ := testutil.NewRNG(2).Database(3, 8<<10)

	src := filepath.Join(t.TempDir(), "set.mm")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	dst := t.TempDir()
	gopts := testGlobals()
	gopts.Store = dst

	for _, name := range []string{"set.mm.zst", "set.mm.lz4", "copy/set.mm"} {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runPack(ctx, gopts, src, name, &out))
			assert.True(t, strings.HasPrefix(out.String(), name+": "))

			content, err := blobstore.ReadAll(ctx, blobstore.NewLocalStore(dst), name, nil)
			require.NoError(t, err)
			defer content.Close()
			assert.Equal(t, data, content.Data)
		})
	}

	empty := filepath.Join(t.TempDir(), "empty.mm")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.Error(t, runPack(ctx, gopts, empty, "empty.mm.zst", &bytes.Buffer{}))
}

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(reg)

	o.OnLoad("set.mm", 100, true, 0, nil)
	o.OnLoad("set.mm", 0, false, 0, assert.AnError)
	o.OnSplit("set.mm", 7, 2, 0)
	o.OnIndexBuild(100, 0)
	o.OnRender(3, 0, nil)

	assert.Equal(t, 1.0, promtest.ToFloat64(o.loads.WithLabelValues("success", "true")))
	assert.Equal(t, 1.0, promtest.ToFloat64(o.loads.WithLabelValues("error", "false")))
	assert.Equal(t, 100.0, promtest.ToFloat64(o.loadBytes))
	assert.Equal(t, 7.0, promtest.ToFloat64(o.segments))
	assert.Equal(t, 2.0, promtest.ToFloat64(o.changed))
	assert.Equal(t, 1.0, promtest.ToFloat64(o.indexBuilds))
	assert.Equal(t, 3.0, promtest.ToFloat64(o.rendered))

	n, err := promtest.GatherAndCount(reg, "mmcore_operation_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
