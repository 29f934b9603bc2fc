package idx

import "encoding/binary"

// Reader provides bounded little-endian access to an in-memory index
// buffer. Every read is range checked; a failed read returns a
// CorruptIndex naming the source and offending offset, never a partial
// value.
type Reader struct {
	data   []byte
	source string
}

// NewReader wraps data in a bounds-checked reader. The source name is
// carried into every error produced by the reader.
func NewReader(data []byte, source string) *Reader {
	return &Reader{data: data, source: source}
}

// Len returns the total buffer length.
func (r *Reader) Len() int64 {
	return int64(len(r.data))
}

func (r *Reader) check(off, size int64) error {
	if off < 0 || size < 0 || off+size > int64(len(r.data)) || off+size < off {
		return &CorruptIndex{
			Source: r.source,
			Offset: off,
			Reason: "read outside buffer bounds",
		}
	}
	return nil
}

// U32 reads a little-endian uint32 at off.
func (r *Reader) U32(off int64) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[off:]), nil
}

// U64 reads a little-endian uint64 at off.
func (r *Reader) U64(off int64) (uint64, error) {
	if err := r.check(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.data[off:]), nil
}

// CString reads a NUL-terminated string starting at off.
func (r *Reader) CString(off int64) (string, error) {
	if err := r.check(off, 0); err != nil {
		return "", err
	}
	end := off
	for end < int64(len(r.data)) && r.data[end] != 0 {
		end++
	}
	if end == int64(len(r.data)) {
		return "", &CorruptIndex{
			Source: r.source,
			Offset: off,
			Reason: "unterminated string",
		}
	}
	return string(r.data[off:end]), nil
}

// Resolve applies a relative pointer against its declared base. The
// base varies per structure (entry start for node and volume names,
// summary start for table pointers) but the resolution rule is always
// base + value. A raw value of 0 denotes a null reference, reported via
// ok == false. A resolved offset outside the buffer is a CorruptIndex.
func (r *Reader) Resolve(base int64, raw uint64) (off int64, ok bool, err error) {
	if raw == 0 {
		return 0, false, nil
	}
	target := base + int64(raw)
	if err := r.check(target, 0); err != nil {
		return 0, false, err
	}
	return target, true, nil
}
