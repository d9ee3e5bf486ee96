package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mmcore"
	"github.com/hupe1980/mmcore/codec"
	"github.com/hupe1980/mmcore/segment"
)

var cmdSegments = &cobra.Command{
	Use:   "segments [flags] DATABASE",
	Short: "List the segments of a database",
	Long: `
The "segments" command splits DATABASE at its chapter headers and prints one
line per segment with its byte range, fingerprint and the line it starts on.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSegments(cmd.Context(), globalOptions, segmentsOptions, args[0], cmd.OutOrStdout())
	},
}

// SegmentsOptions bundles all options for the segments command.
type SegmentsOptions struct {
	Threshold int
	MinSize   int
	JSON      bool
	Codec     string
}

var segmentsOptions SegmentsOptions

func init() {
	cmdRoot.AddCommand(cmdSegments)

	f := cmdSegments.Flags()
	f.IntVar(&segmentsOptions.Threshold, "threshold", segment.DefaultThreshold, "split only databases larger than `bytes`")
	f.IntVar(&segmentsOptions.MinSize, "min-size", 0, "merge chapters into segments of at least `bytes`")
	f.BoolVar(&segmentsOptions.JSON, "json", false, "print segments as JSON lines")
	f.StringVar(&segmentsOptions.Codec, "codec", "go-json", "JSON codec: json or go-json")
}

// segmentRow is one line of output.
type segmentRow struct {
	segment.Segment
	Line int `json:"line"`
}

func runSegments(ctx context.Context, gopts GlobalOptions, opts SegmentsOptions, database string, stdout io.Writer) error {
	c, ok := codec.ByName(opts.Codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", opts.Codec)
	}

	store, name, err := resolveStore(ctx, gopts.Store, database)
	if err != nil {
		return err
	}

	env, err := newEnvironment(gopts, store, slog.LevelError+4,
		mmcore.WithSplit(true),
		mmcore.WithSplitThreshold(opts.Threshold),
		mmcore.WithMinSegmentSize(opts.MinSize),
	)
	if err != nil {
		return err
	}
	defer env.Close()

	db, err := env.session.Load(ctx, name)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, seg := range db.Segments {
		pos, err := env.session.Locate(db, seg.Start)
		if err != nil {
			return err
		}
		if err := writeSegment(stdout, c, opts.JSON, segmentRow{Segment: seg, Line: pos.Line}); err != nil {
			return err
		}
	}
	return nil
}

func writeSegment(w io.Writer, c codec.Codec, asJSON bool, row segmentRow) error {
	if !asJSON {
		_, err := fmt.Fprintf(w, "%s line %d (%d bytes)\n", row.Segment, row.Line, row.Len())
		return err
	}

	data, err := c.Marshal(row)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
