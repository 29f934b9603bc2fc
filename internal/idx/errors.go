package idx

import "fmt"

// FormatError indicates an index buffer that does not carry the expected
// magic or endian markers and cannot be trusted at all.
type FormatError struct {
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: bad index format: %s", e.Source, e.Reason)
}

// CorruptIndex indicates a count or pointer that falls outside the index
// buffer. The whole load is aborted when this is returned.
type CorruptIndex struct {
	Source string
	Offset int64
	Reason string
}

func (e *CorruptIndex) Error() string {
	return fmt.Sprintf("%s: corrupt index at offset %d: %s", e.Source, e.Offset, e.Reason)
}
