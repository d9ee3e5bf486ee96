package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mmcore"
	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/codec"
	"github.com/hupe1980/mmcore/diag"
	"github.com/hupe1980/mmcore/internal/compress"
)

var cmdCheck = &cobra.Command{
	Use:   "check [flags] [DATABASE]",
	Short: "Load a database and print its diagnostics",
	Long: `
The "check" command loads DATABASE, splits it into segments and prints the
parse and scope diagnostics (plus verify diagnostics with --verify) read from
a notes file written by a verifier. With --repeat the database is loaded again
each time a line is read from standard input, and only changed segments are
recalculated.

DATABASE may be omitted when sources are given with --text; the first one is
loaded.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
	Args:              cobra.MaximumNArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), globalOptions, checkOptions, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// CheckOptions bundles all options for the check command.
type CheckOptions struct {
	Split       bool
	Timing      bool
	Verify      bool
	TraceRecalc bool
	Repeat      bool
	Texts       []string
	Notes       string
}

var checkOptions CheckOptions

func init() {
	cmdRoot.AddCommand(cmdCheck)

	f := cmdCheck.Flags()
	f.BoolVar(&checkOptions.Split, "split", false, "process files > 1 MiB in multiple segments")
	f.BoolVar(&checkOptions.Timing, "timing", false, "print milliseconds after each stage")
	f.BoolVarP(&checkOptions.Verify, "verify", "v", false, "include proof validity diagnostics")
	f.BoolVar(&checkOptions.TraceRecalc, "trace-recalc", false, "print segments as they are recalculated")
	f.BoolVar(&checkOptions.Repeat, "repeat", false, "reload on every line read from standard input")
	f.StringArrayVar(&checkOptions.Texts, "text", nil, "provide raw database content as `NAME=TEXT` (repeatable)")
	f.StringVar(&checkOptions.Notes, "notes", "", "read diagnostics as JSON lines from `file` (.zst and .lz4 are decompressed)")
}

func runCheck(ctx context.Context, gopts GlobalOptions, opts CheckOptions, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	virtual, err := parseTexts(opts.Texts)
	if err != nil {
		return err
	}

	var start string
	switch {
	case len(args) > 0:
		start = args[0]
	case len(virtual) > 0:
		start = virtual[0].Name
	default:
		return errors.New("no database given, pass DATABASE or --text")
	}

	database := start
	if len(args) == 0 {
		database = ""
	}
	store, name, err := resolveStore(ctx, gopts.Store, database)
	if err != nil {
		return err
	}
	if name == "" {
		name = start
	}

	minLevel := slog.LevelError + 4
	if opts.TraceRecalc {
		minLevel = slog.LevelInfo
	}

	env, err := newEnvironment(gopts, store, minLevel,
		mmcore.WithSplit(opts.Split),
		mmcore.WithTraceRecalc(opts.TraceRecalc),
	)
	if err != nil {
		return err
	}
	defer env.Close()

	classes := []diag.Class{diag.Parse, diag.Scope}
	if opts.Verify {
		classes = append(classes, diag.Verify)
	}

	in := bufio.NewReader(stdin)
	for {
		if err := checkOnce(ctx, env.session, name, opts, classes, virtual, stdout, stderr); err != nil {
			return err
		}

		if !opts.Repeat {
			return nil
		}
		if _, err := in.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func checkOnce(ctx context.Context, s *mmcore.Session, name string, opts CheckOptions, classes []diag.Class, virtual []blobstore.Source, stdout, stderr io.Writer) error {
	begin := time.Now()

	db, err := s.Load(ctx, name, virtual...)
	if err != nil {
		return err
	}
	defer db.Close()

	if opts.Timing {
		fmt.Fprintf(stderr, "load %s: %d ms (%d segments, %d changed)\n",
			name, time.Since(begin).Milliseconds(), len(db.Segments), db.Changed.GetCardinality())
	}

	if opts.Notes != "" {
		ns, err := readNotes(opts.Notes, codec.Default)
		if err != nil {
			return err
		}
		s.ClearDiagnostics()
		s.Report(ns...)
	}

	begin = time.Now()
	if err := s.Render(ctx, stdout, db, s.Diagnostics(classes...)); err != nil {
		return err
	}

	if opts.Timing {
		fmt.Fprintf(stderr, "diagnostics: %d ms\n", time.Since(begin).Milliseconds())
	}
	return nil
}

// readNotes reads one diag.Record per line. Files ending in ".zst" or ".lz4"
// are decompressed while reading.
func readNotes(path string, c codec.Codec) ([]diag.Notation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := compress.NewReader(compress.KindOf(path), f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []diag.Notation

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec diag.Record
		if err := c.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		n, err := rec.Notation()
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		out = append(out, n)
	}
	return out, sc.Err()
}
