package idx

// RootParentID is the sentinel parent id that marks a node as a child
// of the catalog root.
const RootParentID uint64 = 0xdbb1a1d1b108b927

// Node is one entry of the resource table: a file or directory with a
// bare name and a parent link. Whether it is a file is decided later by
// the presence of a matching FileRecord.
type Node struct {
	ID       uint64
	ParentID uint64
	Name     string
}

// FileRecord associates a resource id with a byte range inside a
// volume. Compression is an opaque codec selector: 0 means the bytes
// are stored as-is, anything else selects the deflate codec.
type FileRecord struct {
	ResourceID       uint64
	VolumeID         uint64
	Offset           uint64
	Compression      uint64
	CompressedSize   uint32
	CRC32            uint32
	UncompressedSize uint32
}

// Volume names one payload container (.pkg file) referenced by file
// records.
type Volume struct {
	ID   uint64
	Name string
}

// ParsedIdx holds the three flat tables decoded from one .idx buffer.
// No cross-table linking is done here; that is the catalog's job.
type ParsedIdx struct {
	Source      string
	Nodes       []Node
	FileRecords []FileRecord
	Volumes     []Volume
}
