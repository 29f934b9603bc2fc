// Package gamedoc is the seam for the game-configuration blob decoder.
// The decoder itself lives outside this codebase; the engine only
// promises correct raw bytes.
package gamedoc

import (
	"context"
	"fmt"

	"github.com/wowspack/wowspack/internal/catalog"
	"github.com/wowspack/wowspack/internal/extract"
)

// Decoder converts a raw configuration blob into a structured
// document.
type Decoder func(data []byte) (map[string]any, error)

// Convert extracts the blob at path and applies dec to it.
func Convert(ctx context.Context, tree *catalog.ResourceTree, eng *extract.Engine, path string, dec Decoder) (map[string]any, error) {
	id, err := tree.Resolve(path)
	if err != nil {
		return nil, err
	}

	sink := extract.NewMemSink()
	report := eng.Extract(ctx, []uint64{id}, sink)
	outcome := report.Outcomes[id]
	if outcome.Err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, outcome.Err)
	}

	data, ok := sink.Get(outcome.Path)
	if !ok {
		return nil, fmt.Errorf("extracting %s: no bytes delivered", path)
	}

	doc, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}
