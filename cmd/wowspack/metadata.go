package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wowspack/wowspack/internal/metadata"
)

var (
	metadataFormat string
	metadataUgly   bool
)

var metadataCmd = &cobra.Command{
	Use:   "metadata [out-file]",
	Short: "Dump catalog metadata for every resource",
	Long: `Metadata writes one row per catalog entry (path, sizes, CRC32,
compression, directory flag), sorted by path. Useful for diffing game
builds. An out-file of "-" (the default) writes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := loadCatalog(context.Background())
		if err != nil {
			return err
		}

		out := os.Stdout
		if len(args) > 0 && args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer f.Close()
			out = f
		}
		w := bufio.NewWriter(out)
		defer w.Flush()

		entries := metadata.Dump(tree)
		switch metadataFormat {
		case "plain":
			return metadata.WritePlain(w, entries)
		case "json":
			return metadata.WriteJSON(w, entries, !metadataUgly)
		case "csv":
			return metadata.WriteCSV(w, entries)
		default:
			return fmt.Errorf("unknown format %q (want plain, json or csv)", metadataFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(metadataCmd)
	metadataCmd.Flags().StringVarP(&metadataFormat, "format", "f", "plain", "output format (plain, json, csv)")
	metadataCmd.Flags().BoolVar(&metadataUgly, "ugly", false, "don't pretty-print JSON output")
}
