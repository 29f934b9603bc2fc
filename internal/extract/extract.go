// Package extract locates, decompresses and integrity-checks payload
// bytes from volumes. Work is file-scoped: one file's failure never
// cancels its siblings in the same batch.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/klauspost/compress/flate"
	"golang.org/x/sync/errgroup"

	"github.com/wowspack/wowspack/internal/catalog"
	"github.com/wowspack/wowspack/internal/idx"
	"github.com/wowspack/wowspack/internal/volume"
)

// Per-file error kinds. Callers discriminate with errors.Is.
var (
	// ErrIO marks a failed read against a volume or sink.
	ErrIO = errors.New("i/o error")
	// ErrDecompression marks a corrupt compressed payload.
	ErrDecompression = errors.New("decompression error")
	// ErrIntegrity marks a CRC-32 or length mismatch in the produced
	// bytes.
	ErrIntegrity = errors.New("integrity error")
)

// Outcome is the result for one requested resource id.
type Outcome struct {
	ID     uint64
	Path   string // empty when the id has no resolvable path
	Volume string
	Size   int64 // bytes delivered to the sink
	Err    error // nil on success
}

// Report aggregates the per-id outcomes of one batch.
type Report struct {
	Outcomes  map[uint64]Outcome
	Succeeded int
	Failed    int
	Skipped   int
}

// Engine extracts file payloads from a built catalog. The catalog is
// read-only and shared; the engine never mutates it.
type Engine struct {
	tree    *catalog.ResourceTree
	locator volume.Locator
	workers int

	// OnOutcome, when set, is called once per finished work unit. Calls
	// are serialized.
	OnOutcome func(Outcome)
}

// NewEngine returns an engine running at most workers concurrent file
// units. A non-positive worker count uses the available parallelism.
func NewEngine(tree *catalog.ResourceTree, locator volume.Locator, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{tree: tree, locator: locator, workers: workers}
}

// Extract resolves each requested id to its volume byte range, reads
// and decompresses the payload, verifies its CRC-32, and hands the
// bytes to sink. Every id gets an outcome: failures are scoped to
// their file, and a cancellation skips units that have not started
// while preserving outcomes already produced.
func (e *Engine) Extract(ctx context.Context, ids []uint64, sink Sink) *Report {
	report := &Report{Outcomes: make(map[uint64]Outcome, len(ids))}
	var mu sync.Mutex

	record := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		report.Outcomes[o.ID] = o
		switch {
		case o.Err == nil:
			report.Succeeded++
		case errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded):
			report.Skipped++
		default:
			report.Failed++
		}
		if e.OnOutcome != nil {
			e.OnOutcome(o)
		}
	}

	// Group requests by volume so each referenced volume is opened
	// exactly once per batch.
	groups := make(map[uint64][]uint64)
	for _, id := range ids {
		rec, ok := e.tree.FileRecord(id)
		if !ok {
			record(Outcome{ID: id, Path: e.pathOf(id), Err: fmt.Errorf("no file record: %w", catalog.ErrNotFound)})
			continue
		}
		groups[rec.VolumeID] = append(groups[rec.VolumeID], id)
	}

	sources := make(map[uint64]volume.Source, len(groups))
	defer func() {
		for _, src := range sources {
			src.Close()
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for volID, group := range groups {
		vol, ok := e.tree.Volume(volID)
		if !ok {
			// The builder rejects unknown volume references, but ids
			// can also arrive from stale or foreign catalogs.
			for _, id := range group {
				record(Outcome{ID: id, Path: e.pathOf(id), Err: fmt.Errorf("unknown volume %#x: %w", volID, catalog.ErrNotFound)})
			}
			continue
		}
		src, err := e.locator.Open(vol.Name)
		if err != nil {
			for _, id := range group {
				record(Outcome{ID: id, Path: e.pathOf(id), Volume: vol.Name, Err: fmt.Errorf("%w: %v", ErrIO, err)})
			}
			continue
		}
		sources[volID] = src

		for _, id := range group {
			g.Go(func() error {
				o := Outcome{ID: id, Path: e.pathOf(id), Volume: vol.Name}
				if err := ctx.Err(); err != nil {
					o.Err = err
				} else {
					o.Size, o.Err = e.extractOne(id, src, o.Path, sink)
				}
				if o.Err != nil {
					slog.Debug("Extraction failed",
						"id", fmt.Sprintf("%#x", id),
						"path", o.Path,
						"volume", o.Volume,
						"error", o.Err)
				}
				record(o)
				return nil
			})
		}
	}

	g.Wait()
	return report
}

// extractOne reads one file's byte range, produces its uncompressed
// bytes and delivers them to the sink.
func (e *Engine) extractOne(id uint64, src volume.Source, path string, sink Sink) (int64, error) {
	rec, _ := e.tree.FileRecord(id)

	compressed := make([]byte, rec.CompressedSize)
	if _, err := src.ReadAt(compressed, int64(rec.Offset)); err != nil {
		return 0, fmt.Errorf("%w: reading %d bytes at offset %d: %v", ErrIO, rec.CompressedSize, rec.Offset, err)
	}

	data, err := decode(rec, compressed)
	if err != nil {
		return 0, err
	}

	if got := crc32.ChecksumIEEE(data); got != rec.CRC32 {
		return 0, fmt.Errorf("%w: crc32 %#x, want %#x", ErrIntegrity, got, rec.CRC32)
	}

	name := path
	if name == "" {
		// Orphan entries have no path; give them an id-derived name so
		// sinks can still place them.
		name = fmt.Sprintf("%016x.bin", id)
	}
	if err := sink.Put(name, data); err != nil {
		return 0, fmt.Errorf("%w: sink: %v", ErrIO, err)
	}
	return int64(len(data)), nil
}

// decode produces exactly rec.UncompressedSize bytes from the
// compressed slice. Compression 0 means the bytes are stored verbatim;
// anything else selects the deflate codec. A length mismatch is an
// error, never a silent truncation.
func decode(rec idx.FileRecord, compressed []byte) ([]byte, error) {
	if rec.Compression == 0 {
		if uint32(len(compressed)) != rec.UncompressedSize {
			return nil, fmt.Errorf("%w: stored size %d, want %d", ErrIntegrity, len(compressed), rec.UncompressedSize)
		}
		return compressed, nil
	}

	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	data, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if uint32(len(data)) != rec.UncompressedSize {
		return nil, fmt.Errorf("%w: decompressed to %d bytes, want %d", ErrIntegrity, len(data), rec.UncompressedSize)
	}
	return data, nil
}

func (e *Engine) pathOf(id uint64) string {
	path, err := e.tree.FullPath(id)
	if err != nil {
		return ""
	}
	return path
}
