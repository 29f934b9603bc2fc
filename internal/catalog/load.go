package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wowspack/wowspack/internal/idx"
)

// Load reads and parses the given .idx files concurrently, then merges
// them in the order given. The order is the patch precedence: the base
// index first, later patches after it. Parse completion order does not
// affect the merge.
func Load(ctx context.Context, paths []string) (*ResourceTree, error) {
	start := time.Now()

	parsed := make([]*idx.ParsedIdx, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading index %s: %w", path, err)
			}
			parsed[i], err = idx.Parse(data, path)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree, err := Build(parsed)
	if err != nil {
		return nil, err
	}

	slog.Debug("Catalog loaded",
		"sources", len(paths),
		"nodes", len(tree.nodes),
		"files", len(tree.files),
		"volumes", len(tree.volumes),
		"duration", time.Since(start))

	return tree, nil
}
