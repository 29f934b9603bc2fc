package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wowspack/wowspack/internal/extract"
	"github.com/wowspack/wowspack/internal/utils"
)

var (
	outDir      string
	flatten     bool
	stripPrefix bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [patterns...]",
	Short: "Extract files from payload volumes",
	Long: `Extract locates every catalog file matching the given path patterns,
reads its bytes from the .pkg volumes, decompresses and CRC-checks them,
and writes the result under the output directory. A pattern may be an
exact path, a directory (its whole subtree is taken), or a glob over the
full path. Failures are reported per file and never stop the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		tree, locator, err := loadCatalog(ctx)
		if err != nil {
			return err
		}

		ids, names := selectFiles(tree.IDs(), args, func(id uint64) (string, bool) {
			if !tree.IsFile(id) {
				return "", false
			}
			p, err := tree.FullPath(id)
			return p, err == nil
		})
		if len(ids) == 0 {
			return fmt.Errorf("no files match the given patterns")
		}

		sink := &renameSink{
			next:  &extract.DirSink{Root: outDir, Flatten: flatten},
			names: names,
		}

		engine := extract.NewEngine(tree, locator, cfg.Workers)
		progress := utils.NewProgress(len(ids), !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug"))
		engine.OnOutcome = func(o extract.Outcome) {
			progress.Increment(o.Path)
		}

		start := time.Now()
		report := engine.Extract(ctx, ids, sink)
		progress.Finish()

		var bytesWritten int64
		for _, o := range report.Outcomes {
			bytesWritten += o.Size
			if o.Err != nil && !errIsCancel(o.Err) {
				name := o.Path
				if name == "" {
					name = fmt.Sprintf("id %#x", o.ID)
				}
				fmt.Fprintf(os.Stderr, "failed: %s (volume %s): %v\n", name, o.Volume, o.Err)
			}
		}

		fmt.Printf("Extracted: %d/%d files (%s)\n", report.Succeeded, len(ids), utils.Bytes(bytesWritten))
		fmt.Printf("Failed: %d\n", report.Failed)
		if report.Skipped > 0 {
			fmt.Printf("Skipped (canceled): %d\n", report.Skipped)
		}
		fmt.Printf("Duration: %s\n", utils.Duration(time.Since(start)))

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("extraction interrupted: %w", err)
		}
		return nil
	},
}

func errIsCancel(err error) bool {
	return err == context.Canceled || err == context.DeadlineExceeded
}

// selectFiles matches catalog file paths against the CLI patterns and
// computes each match's output name. The path predicate is deliberately
// simple: exact path, directory subtree, or path.Match glob.
func selectFiles(ids []uint64, patterns []string, pathOf func(uint64) (string, bool)) ([]uint64, map[string]string) {
	var matched []uint64
	names := make(map[string]string)

	for _, id := range ids {
		p, ok := pathOf(id)
		if !ok {
			continue
		}
		for _, pattern := range patterns {
			pattern = strings.Trim(pattern, "/")
			out, ok := matchPattern(pattern, p)
			if !ok {
				continue
			}
			matched = append(matched, id)
			names[p] = out
			break
		}
	}
	return matched, names
}

// matchPattern reports whether pattern selects p, and returns the
// output path for it. With --strip-prefix, the directory part of the
// pattern is removed from the output path.
func matchPattern(pattern, p string) (string, bool) {
	matched := false
	switch {
	case p == pattern:
		matched = true
	case strings.HasPrefix(p, pattern+"/"):
		matched = true
	default:
		if ok, err := path.Match(pattern, p); err == nil && ok {
			matched = true
		}
	}
	if !matched {
		return "", false
	}

	if stripPrefix {
		if prefix := path.Dir(pattern); prefix != "." {
			if rest, ok := strings.CutPrefix(p, prefix+"/"); ok {
				return rest, true
			}
		}
	}
	return p, true
}

// renameSink rewrites catalog paths to output paths before delegating.
type renameSink struct {
	next  extract.Sink
	names map[string]string
}

func (s *renameSink) Put(p string, data []byte) error {
	if out, ok := s.names[p]; ok {
		p = out
	}
	return s.next.Put(p, data)
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&outDir, "out", "o", "wowspack_extracted", "output directory")
	extractCmd.Flags().BoolVar(&flatten, "flatten", false, "write all files directly into the output directory")
	extractCmd.Flags().BoolVar(&stripPrefix, "strip-prefix", false, "drop the matched pattern's directory part from output paths")
}
