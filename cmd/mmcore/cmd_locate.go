package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mmcore"
	"github.com/hupe1980/mmcore/linecache"
)

var cmdLocate = &cobra.Command{
	Use:   "locate DATABASE POSITION...",
	Short: "Convert between byte offsets and line:column positions",
	Long: `
The "locate" command prints the line and column of every byte OFFSET, and the
byte offset of every LINE or LINE:COLUMN position. Lines and columns are
1-based.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
	Args:              cobra.MinimumNArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocate(cmd.Context(), globalOptions, args[0], args[1:], cmd.OutOrStdout())
	},
}

func init() {
	cmdRoot.AddCommand(cmdLocate)
}

// position is a parsed POSITION argument.
type position struct {
	Offset int // valid when Line == 0
	Line   int
	Column int
}

func parsePosition(s string) (position, error) {
	if line, col, ok := strings.Cut(s, ":"); ok {
		l, err := strconv.Atoi(line)
		if err != nil || l < 1 {
			return position{}, fmt.Errorf("invalid line in %q", s)
		}
		c, err := strconv.Atoi(col)
		if err != nil || c < 1 {
			return position{}, fmt.Errorf("invalid column in %q", s)
		}
		return position{Line: l, Column: c}, nil
	}

	if line, ok := strings.CutPrefix(s, "L"); ok {
		l, err := strconv.Atoi(line)
		if err != nil || l < 1 {
			return position{}, fmt.Errorf("invalid line in %q", s)
		}
		return position{Line: l, Column: 1}, nil
	}

	off, err := strconv.Atoi(s)
	if err != nil || off < 0 {
		return position{}, fmt.Errorf("invalid offset %q", s)
	}
	return position{Offset: off}, nil
}

func runLocate(ctx context.Context, gopts GlobalOptions, database string, args []string, stdout io.Writer) error {
	positions := make([]position, len(args))
	for i, a := range args {
		p, err := parsePosition(a)
		if err != nil {
			return err
		}
		positions[i] = p
	}

	store, name, err := resolveStore(ctx, gopts.Store, database)
	if err != nil {
		return err
	}

	env, err := newEnvironment(gopts, store, slog.LevelError+4, mmcore.WithSplit(false))
	if err != nil {
		return err
	}
	defer env.Close()

	db, err := env.session.Load(ctx, name)
	if err != nil {
		return err
	}
	defer db.Close()

	for i, p := range positions {
		if p.Line == 0 {
			pos, err := env.session.Locate(db, p.Offset)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s\t%d:%d\n", args[i], pos.Line, pos.Column)
			continue
		}

		start, err := env.session.Offset(db, p.Line)
		if err != nil {
			return err
		}
		end := linecache.LineEnd(db.Text(), start)
		if p.Column-1 > end-start {
			return fmt.Errorf("column %d past the end of line %d", p.Column, p.Line)
		}
		fmt.Fprintf(stdout, "%s\t%d\n", args[i], start+p.Column-1)
	}
	return nil
}
