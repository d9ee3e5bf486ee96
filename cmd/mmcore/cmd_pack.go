package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/internal/compress"
	"github.com/hupe1980/mmcore/resource"
)

var cmdPack = &cobra.Command{
	Use:   "pack SOURCE [NAME]",
	Short: "Compress a local database into a store",
	Long: `
The "pack" command compresses the local file SOURCE and writes it as NAME into
the store given by --store (default: the current directory). The compression
is chosen by the suffix of NAME: ".zst" for zstd, ".lz4" for LZ4 and none
otherwise. NAME defaults to the base name of SOURCE with a ".zst" suffix.
Packed databases are decompressed transparently when loaded.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
	Args:              cobra.RangeArgs(1, 2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := compress.Strip(filepath.Base(args[0])) + ".zst"
		if len(args) > 1 {
			name = args[1]
		}
		return runPack(cmd.Context(), globalOptions, args[0], name, cmd.OutOrStdout())
	},
}

func init() {
	cmdRoot.AddCommand(cmdPack)
}

func runPack(ctx context.Context, gopts GlobalOptions, source, name string, stdout io.Writer) error {
	loc, err := parseStoreURI(gopts.Store)
	if err != nil {
		return err
	}
	dst, err := openStore(ctx, loc)
	if err != nil {
		return err
	}

	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: gopts.MemoryLimit})

	src, err := blobstore.ReadAll(ctx, blobstore.NewLocalStore(filepath.Dir(source)), filepath.Base(source), ctrl)
	if err != nil {
		return err
	}
	defer src.Close()

	if len(src.Data) == 0 {
		return errors.New("source is empty")
	}

	kind := compress.KindOf(name)
	data, err := compress.Compress(kind, src.Data)
	if err != nil {
		return fmt.Errorf("pack %s: %w", name, err)
	}

	if err := dst.Put(ctx, name, data); err != nil {
		return fmt.Errorf("pack %s: %w", name, err)
	}

	_, err = fmt.Fprintf(stdout, "%s: %d -> %d bytes (%s, %.1f%%)\n",
		name, len(src.Data), len(data), kind, 100*float64(len(data))/float64(len(src.Data)))
	return err
}
