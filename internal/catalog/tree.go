// Package catalog merges parsed index sources into one immutable
// resource tree and answers path and hierarchy queries against it.
//
// Sources are applied in their declared order: a later source's entry
// for an id replaces the earlier one wholesale, which is how patch
// indices supersede base-game entries. Once built, a tree is read-only
// and safe for any number of concurrent readers.
package catalog

import (
	"log/slog"

	"github.com/wowspack/wowspack/internal/idx"
)

// ResourceTree is the merged catalog: nodes, file records and volumes
// keyed by id, plus derived child and path indexes.
type ResourceTree struct {
	nodes   map[uint64]idx.Node
	files   map[uint64]idx.FileRecord
	volumes map[uint64]idx.Volume

	// First-insertion order of node ids, preserved across overrides so
	// child listings stay deterministic.
	order []uint64

	children  map[uint64][]uint64
	paths     map[uint64]string
	pathErrs  map[uint64]error
	pathIndex map[string]uint64

	diagnostics []Diagnostic
}

// Entry is one row of a directory listing.
type Entry struct {
	ID    uint64
	Name  string
	IsDir bool
	Size  int64
}

// Build merges the parsed sources, in order, into a ResourceTree. File
// records referencing an unknown volume abort the build with a
// VolumeNotFoundError; orphan file records and path conflicts are kept
// as diagnostics.
func Build(sources []*idx.ParsedIdx) (*ResourceTree, error) {
	t := &ResourceTree{
		nodes:     make(map[uint64]idx.Node),
		files:     make(map[uint64]idx.FileRecord),
		volumes:   make(map[uint64]idx.Volume),
		children:  make(map[uint64][]uint64),
		paths:     make(map[uint64]string),
		pathErrs:  make(map[uint64]error),
		pathIndex: make(map[string]uint64),
	}

	recordSource := make(map[uint64]string)
	for _, src := range sources {
		for _, n := range src.Nodes {
			if _, seen := t.nodes[n.ID]; !seen {
				t.order = append(t.order, n.ID)
			}
			t.nodes[n.ID] = n
		}
		for _, f := range src.FileRecords {
			t.files[f.ResourceID] = f
			recordSource[f.ResourceID] = src.Source
		}
		for _, v := range src.Volumes {
			t.volumes[v.ID] = v
		}
	}

	for id, f := range t.files {
		if _, ok := t.volumes[f.VolumeID]; !ok {
			return nil, &VolumeNotFoundError{
				ResourceID: id,
				VolumeID:   f.VolumeID,
				Source:     recordSource[id],
			}
		}
		if _, ok := t.nodes[id]; !ok {
			t.diagnostics = append(t.diagnostics, Diagnostic{
				Kind:   OrphanEntry,
				ID:     id,
				Detail: "file record has no node, addressable by id only",
			})
		}
	}

	for _, id := range t.order {
		n := t.nodes[id]
		t.children[n.ParentID] = append(t.children[n.ParentID], id)
	}

	t.buildPathIndex()

	if len(t.diagnostics) > 0 {
		slog.Debug("Catalog built with diagnostics",
			"nodes", len(t.nodes),
			"files", len(t.files),
			"volumes", len(t.volumes),
			"diagnostics", len(t.diagnostics))
	}

	return t, nil
}

// Node returns the node stored for id.
func (t *ResourceTree) Node(id uint64) (idx.Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// FileRecord returns the file record attached to id. Absence means the
// id is a directory (or unknown).
func (t *ResourceTree) FileRecord(id uint64) (idx.FileRecord, bool) {
	f, ok := t.files[id]
	return f, ok
}

// Volume returns the volume stored for the given volume id.
func (t *ResourceTree) Volume(id uint64) (idx.Volume, bool) {
	v, ok := t.volumes[id]
	return v, ok
}

// IsFile reports whether id has a file record attached.
func (t *ResourceTree) IsFile(id uint64) bool {
	_, ok := t.files[id]
	return ok
}

// Children returns the ids whose parent is id, in first-insertion
// order. The catalog root is idx.RootParentID.
func (t *ResourceTree) Children(id uint64) []uint64 {
	return t.children[id]
}

// IDs returns every node id in first-insertion order.
func (t *ResourceTree) IDs() []uint64 {
	return t.order
}

// FileIDs returns the resource id of every file record in the catalog,
// including orphans, in unspecified order.
func (t *ResourceTree) FileIDs() []uint64 {
	ids := make([]uint64, 0, len(t.files))
	for id := range t.files {
		ids = append(ids, id)
	}
	return ids
}

// Diagnostics returns the non-fatal conditions recorded during the
// build.
func (t *ResourceTree) Diagnostics() []Diagnostic {
	return t.diagnostics
}

// List returns the immediate children of the directory at path, in
// insertion order. An empty path or "/" lists the root.
func (t *ResourceTree) List(path string) ([]Entry, error) {
	parent := idx.RootParentID
	if p := trimPath(path); p != "" {
		id, err := t.Resolve(p)
		if err != nil {
			return nil, err
		}
		parent = id
	}

	ids := t.children[parent]
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		n := t.nodes[id]
		e := Entry{ID: id, Name: n.Name}
		if f, ok := t.files[id]; ok {
			e.Size = int64(f.UncompressedSize)
		} else {
			e.IsDir = true
		}
		entries = append(entries, e)
	}
	return entries, nil
}
