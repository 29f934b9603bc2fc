package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a path does not resolve to any catalog
// entry.
var ErrNotFound = errors.New("path not found")

// VolumeNotFoundError indicates a file record referencing a volume id
// that no index source defined. This is a hard load error: a catalog
// with unresolvable payload references cannot be trusted.
type VolumeNotFoundError struct {
	ResourceID uint64
	VolumeID   uint64
	Source     string
}

func (e *VolumeNotFoundError) Error() string {
	return fmt.Sprintf("%s: file record %#x references unknown volume %#x", e.Source, e.ResourceID, e.VolumeID)
}

// CyclicHierarchyError indicates a parent chain that revisits a node,
// detected while resolving that node's path.
type CyclicHierarchyError struct {
	ID uint64
}

func (e *CyclicHierarchyError) Error() string {
	return fmt.Sprintf("cyclic hierarchy at node %#x", e.ID)
}

// DiagnosticKind classifies non-fatal conditions recorded during
// catalog construction.
type DiagnosticKind int

const (
	// OrphanEntry is a file record with no matching node. The record is
	// kept and remains addressable by id.
	OrphanEntry DiagnosticKind = iota
	// DuplicatePath is two distinct node ids producing the same path
	// string. The first-built id keeps the path.
	DuplicatePath
	// DanglingParent is a node whose parent chain reaches an id no
	// source defined. The node gets no path.
	DanglingParent
)

func (k DiagnosticKind) String() string {
	switch k {
	case OrphanEntry:
		return "orphan entry"
	case DuplicatePath:
		return "duplicate path"
	case DanglingParent:
		return "dangling parent"
	default:
		return "unknown"
	}
}

// Diagnostic records one non-fatal condition found while building the
// catalog.
type Diagnostic struct {
	Kind   DiagnosticKind
	ID     uint64
	Path   string
	Detail string
}

func (d Diagnostic) String() string {
	if d.Path != "" {
		return fmt.Sprintf("%s: id %#x path %q: %s", d.Kind, d.ID, d.Path, d.Detail)
	}
	return fmt.Sprintf("%s: id %#x: %s", d.Kind, d.ID, d.Detail)
}
