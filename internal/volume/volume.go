// Package volume resolves logical volume names to openable byte
// sources. Volumes are never mutated after open, so a single source is
// safely shared by any number of concurrent readers.
package volume

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"
)

// Source is a read-only, randomly accessible view of one payload
// volume.
type Source interface {
	io.ReaderAt
	io.Closer
	Len() int
}

// Locator maps a volume's logical name to an openable byte source. The
// host application supplies the resolution strategy; the extraction
// engine only ever opens and reads.
type Locator interface {
	Open(name string) (Source, error)
}

// DirLocator resolves volume names relative to a single directory,
// the game's res_packages layout. Files are memory-mapped.
type DirLocator struct {
	dir string
}

// NewDirLocator returns a Locator rooted at dir.
func NewDirLocator(dir string) *DirLocator {
	return &DirLocator{dir: dir}
}

// Open memory-maps the named volume. The name comes from the catalog's
// volume table; path separators in it are rejected to keep lookups
// inside the root directory.
func (l *DirLocator) Open(name string) (Source, error) {
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid volume name %q", name)
	}
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("volume %s: %w", name, err)
	}
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping volume %s: %w", name, err)
	}
	return r, nil
}
