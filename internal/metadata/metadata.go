// Package metadata renders the merged catalog as a flat, path-sorted
// listing. Useful for diffing game builds at a glance.
package metadata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"sort"
	"strconv"

	"github.com/wowspack/wowspack/internal/catalog"
)

// Entry is one row of the metadata dump.
type Entry struct {
	Path             string `json:"path"`
	IsDir            bool   `json:"is_directory"`
	Compression      uint64 `json:"compression"`
	CompressedSize   uint32 `json:"compressed_size"`
	CRC32            uint32 `json:"crc32"`
	UncompressedSize uint32 `json:"uncompressed_size"`
}

// Dump yields one entry per pathed catalog node, sorted by path.
// Entries are produced lazily; only the path order is computed up
// front. Nodes without a resolvable path (orphans, broken chains) are
// not part of the dump.
func Dump(t *catalog.ResourceTree) iter.Seq[Entry] {
	type pathed struct {
		path string
		id   uint64
	}
	rows := make([]pathed, 0, len(t.IDs()))
	for _, id := range t.IDs() {
		path, err := t.FullPath(id)
		if err != nil {
			continue
		}
		rows = append(rows, pathed{path: path, id: id})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].path < rows[j].path })

	return func(yield func(Entry) bool) {
		for _, row := range rows {
			e := Entry{Path: row.path, IsDir: true}
			if rec, ok := t.FileRecord(row.id); ok {
				e.IsDir = false
				e.Compression = rec.Compression
				e.CompressedSize = rec.CompressedSize
				e.CRC32 = rec.CRC32
				e.UncompressedSize = rec.UncompressedSize
			}
			if !yield(e) {
				return
			}
		}
	}
}

// WritePlain writes entries as aligned text columns.
func WritePlain(w io.Writer, entries iter.Seq[Entry]) error {
	if _, err := fmt.Fprintf(w, "%-12s %-12s %-10s %-5s %s\n", "SIZE", "UNPACKED", "CRC32", "DIR", "PATH"); err != nil {
		return err
	}
	for e := range entries {
		dir := ""
		if e.IsDir {
			dir = "d"
		}
		if _, err := fmt.Fprintf(w, "%-12d %-12d %-10s %-5s %s\n",
			e.CompressedSize, e.UncompressedSize, fmt.Sprintf("%08x", e.CRC32), dir, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes entries as a JSON array.
func WriteJSON(w io.Writer, entries iter.Seq[Entry], pretty bool) error {
	all := make([]Entry, 0, 1024)
	for e := range entries {
		all = append(all, e)
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(all)
}

// WriteCSV writes entries as CSV with a header row.
func WriteCSV(w io.Writer, entries iter.Seq[Entry]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "is_directory", "compression", "compressed_size", "crc32", "uncompressed_size"}); err != nil {
		return err
	}
	for e := range entries {
		row := []string{
			e.Path,
			strconv.FormatBool(e.IsDir),
			strconv.FormatUint(e.Compression, 10),
			strconv.FormatUint(uint64(e.CompressedSize), 10),
			fmt.Sprintf("%08x", e.CRC32),
			strconv.FormatUint(uint64(e.UncompressedSize), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
