// Package idx decodes the binary .idx resource index format.
//
// An index file carries a 16-byte header, a resource summary with table
// counts and pointers, and three flat tables: nodes (the catalog
// entries), file records (volume byte ranges) and volumes (payload
// container names). Node and volume names are stored out of line,
// reached through relative pointers whose base is the owning entry's
// start.
package idx

const (
	// indexMagic spells "ISFP" as a little-endian u32.
	indexMagic = 0x50465349

	endianMarker       = 0x20000000
	endianMarkerRepeat = 0x40

	headerSize  = 16
	summarySize = 40

	nodeEntrySize       = 32
	fileRecordEntrySize = 48
	volumeEntrySize     = 24
)

// Parse decodes one .idx buffer into its raw tables. The source name is
// used in errors only. A bad magic or endian marker is a FormatError;
// any count or pointer that runs past the buffer is a CorruptIndex. On
// error no partial result is returned.
func Parse(data []byte, source string) (*ParsedIdx, error) {
	r := NewReader(data, source)

	magic, err := r.U32(0)
	if err != nil {
		return nil, err
	}
	if magic != indexMagic {
		return nil, &FormatError{Source: source, Reason: "bad magic"}
	}
	endian, err := r.U32(4)
	if err != nil {
		return nil, err
	}
	endianRepeat, err := r.U32(12)
	if err != nil {
		return nil, err
	}
	// Real files carry both markers; reject only when neither matches.
	if endian != endianMarker && endianRepeat != endianMarkerRepeat {
		return nil, &FormatError{Source: source, Reason: "incorrect endian markers"}
	}

	// The resource summary sits immediately after the header and is the
	// base for the three table pointers.
	const summaryOff = int64(headerSize)

	nodeCount, err := r.U32(summaryOff)
	if err != nil {
		return nil, err
	}
	fileRecordCount, err := r.U32(summaryOff + 4)
	if err != nil {
		return nil, err
	}
	volumeCount, err := r.U32(summaryOff + 8)
	if err != nil {
		return nil, err
	}

	nodeTablePtr, err := r.U64(summaryOff + 16)
	if err != nil {
		return nil, err
	}
	fileRecordTablePtr, err := r.U64(summaryOff + 24)
	if err != nil {
		return nil, err
	}
	volumeTablePtr, err := r.U64(summaryOff + 32)
	if err != nil {
		return nil, err
	}

	nodes, err := parseNodes(r, summaryOff, nodeTablePtr, nodeCount)
	if err != nil {
		return nil, err
	}
	fileRecords, err := parseFileRecords(r, summaryOff, fileRecordTablePtr, fileRecordCount)
	if err != nil {
		return nil, err
	}
	volumes, err := parseVolumes(r, summaryOff, volumeTablePtr, volumeCount)
	if err != nil {
		return nil, err
	}

	return &ParsedIdx{
		Source:      source,
		Nodes:       nodes,
		FileRecords: fileRecords,
		Volumes:     volumes,
	}, nil
}

// tableOffset resolves a table pointer relative to the summary start
// and verifies the declared entry count fits inside the buffer.
func tableOffset(r *Reader, summaryOff int64, ptr uint64, count uint32, entrySize int64) (int64, error) {
	off, ok, err := r.Resolve(summaryOff, ptr)
	if err != nil {
		return 0, err
	}
	if !ok {
		if count == 0 {
			return 0, nil
		}
		return 0, &CorruptIndex{
			Source: r.source,
			Offset: summaryOff,
			Reason: "null table pointer with nonzero count",
		}
	}
	if err := r.check(off, int64(count)*entrySize); err != nil {
		return 0, err
	}
	return off, nil
}

func parseNodes(r *Reader, summaryOff int64, ptr uint64, count uint32) ([]Node, error) {
	table, err := tableOffset(r, summaryOff, ptr, count, nodeEntrySize)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, count)
	for i := int64(0); i < int64(count); i++ {
		entry := table + i*nodeEntrySize

		namePtr, err := r.U32(entry + 8)
		if err != nil {
			return nil, err
		}
		id, err := r.U64(entry + 16)
		if err != nil {
			return nil, err
		}
		parentID, err := r.U64(entry + 24)
		if err != nil {
			return nil, err
		}

		var name string
		nameOff, ok, err := r.Resolve(entry, uint64(namePtr))
		if err != nil {
			return nil, err
		}
		if ok {
			name, err = r.CString(nameOff)
			if err != nil {
				return nil, err
			}
		}

		nodes = append(nodes, Node{ID: id, ParentID: parentID, Name: name})
	}
	return nodes, nil
}

func parseFileRecords(r *Reader, summaryOff int64, ptr uint64, count uint32) ([]FileRecord, error) {
	table, err := tableOffset(r, summaryOff, ptr, count, fileRecordEntrySize)
	if err != nil {
		return nil, err
	}
	records := make([]FileRecord, 0, count)
	for i := int64(0); i < int64(count); i++ {
		entry := table + i*fileRecordEntrySize

		resourceID, err := r.U64(entry)
		if err != nil {
			return nil, err
		}
		volumeID, err := r.U64(entry + 8)
		if err != nil {
			return nil, err
		}
		offset, err := r.U64(entry + 16)
		if err != nil {
			return nil, err
		}
		compression, err := r.U64(entry + 24)
		if err != nil {
			return nil, err
		}
		compressedSize, err := r.U32(entry + 32)
		if err != nil {
			return nil, err
		}
		crc, err := r.U32(entry + 36)
		if err != nil {
			return nil, err
		}
		uncompressedSize, err := r.U32(entry + 40)
		if err != nil {
			return nil, err
		}

		records = append(records, FileRecord{
			ResourceID:       resourceID,
			VolumeID:         volumeID,
			Offset:           offset,
			Compression:      compression,
			CompressedSize:   compressedSize,
			CRC32:            crc,
			UncompressedSize: uncompressedSize,
		})
	}
	return records, nil
}

func parseVolumes(r *Reader, summaryOff int64, ptr uint64, count uint32) ([]Volume, error) {
	table, err := tableOffset(r, summaryOff, ptr, count, volumeEntrySize)
	if err != nil {
		return nil, err
	}
	volumes := make([]Volume, 0, count)
	for i := int64(0); i < int64(count); i++ {
		entry := table + i*volumeEntrySize

		namePtr, err := r.U64(entry + 8)
		if err != nil {
			return nil, err
		}
		id, err := r.U64(entry + 16)
		if err != nil {
			return nil, err
		}

		var name string
		nameOff, ok, err := r.Resolve(entry, namePtr)
		if err != nil {
			return nil, err
		}
		if ok {
			name, err = r.CString(nameOff)
			if err != nil {
				return nil, err
			}
		}

		volumes = append(volumes, Volume{ID: id, Name: name})
	}
	return volumes, nil
}
