// Package testutil builds synthetic .idx buffers for tests.
package testutil

import (
	"encoding/binary"

	"github.com/wowspack/wowspack/internal/idx"
)

const (
	headerSize  = 16
	summarySize = 40

	nodeEntrySize       = 32
	fileRecordEntrySize = 48
	volumeEntrySize     = 24
)

// BuildIdx serializes the given tables into a well-formed .idx buffer:
// header, summary, the three tables back to back, then a name region
// reached through per-entry relative pointers.
func BuildIdx(nodes []idx.Node, records []idx.FileRecord, volumes []idx.Volume) []byte {
	summaryOff := headerSize
	nodeTable := summaryOff + summarySize
	fileTable := nodeTable + nodeEntrySize*len(nodes)
	volTable := fileTable + fileRecordEntrySize*len(records)
	nameBase := volTable + volumeEntrySize*len(volumes)

	buf := make([]byte, nameBase)
	le := binary.LittleEndian

	le.PutUint32(buf[0:], 0x50465349)
	le.PutUint32(buf[4:], 0x20000000)
	le.PutUint32(buf[8:], 0)
	le.PutUint32(buf[12:], 0x40)

	le.PutUint32(buf[summaryOff:], uint32(len(nodes)))
	le.PutUint32(buf[summaryOff+4:], uint32(len(records)))
	le.PutUint32(buf[summaryOff+8:], uint32(len(volumes)))
	le.PutUint64(buf[summaryOff+16:], uint64(nodeTable-summaryOff))
	le.PutUint64(buf[summaryOff+24:], uint64(fileTable-summaryOff))
	le.PutUint64(buf[summaryOff+32:], uint64(volTable-summaryOff))

	appendName := func(name string) int {
		off := len(buf)
		buf = append(buf, name...)
		buf = append(buf, 0)
		return off
	}

	for i, n := range nodes {
		entry := nodeTable + i*nodeEntrySize
		if n.Name != "" {
			// appendName may reallocate buf, so finish it before slicing.
			nameOff := appendName(n.Name)
			le.PutUint32(buf[entry+8:], uint32(nameOff-entry))
		}
		le.PutUint64(buf[entry+16:], n.ID)
		le.PutUint64(buf[entry+24:], n.ParentID)
	}

	for i, r := range records {
		entry := fileTable + i*fileRecordEntrySize
		le.PutUint64(buf[entry:], r.ResourceID)
		le.PutUint64(buf[entry+8:], r.VolumeID)
		le.PutUint64(buf[entry+16:], r.Offset)
		le.PutUint64(buf[entry+24:], r.Compression)
		le.PutUint32(buf[entry+32:], r.CompressedSize)
		le.PutUint32(buf[entry+36:], r.CRC32)
		le.PutUint32(buf[entry+40:], r.UncompressedSize)
	}

	for i, v := range volumes {
		entry := volTable + i*volumeEntrySize
		le.PutUint64(buf[entry:], uint64(len(v.Name)))
		if v.Name != "" {
			nameOff := appendName(v.Name)
			le.PutUint64(buf[entry+8:], uint64(nameOff-entry))
		}
		le.PutUint64(buf[entry+16:], v.ID)
	}

	return buf
}
