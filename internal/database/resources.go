package database

import (
	"context"
	"fmt"
	"iter"

	"github.com/wowspack/wowspack/internal/metadata"
)

const resourcesSchema = `
CREATE TABLE resources (
	path              TEXT PRIMARY KEY,
	is_directory      INTEGER NOT NULL,
	compression       INTEGER NOT NULL,
	compressed_size   INTEGER NOT NULL,
	crc32             INTEGER NOT NULL,
	uncompressed_size INTEGER NOT NULL
)`

// insertBatchSize bounds the number of rows per transaction during an
// export.
const insertBatchSize = 1000

// ExportMetadata creates the resources table and fills it from the
// metadata entries, committing in batches. Returns the number of rows
// inserted.
func (d *Database) ExportMetadata(ctx context.Context, entries iter.Seq[metadata.Entry]) (int64, error) {
	if _, err := d.Exec(ctx, resourcesSchema); err != nil {
		return 0, fmt.Errorf("creating resources table: %w", err)
	}

	const insert = `INSERT INTO resources
		(path, is_directory, compression, compressed_size, crc32, uncompressed_size)
		VALUES (?, ?, ?, ?, ?, ?)`

	var total int64
	tx, err := d.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	inBatch := 0

	for e := range entries {
		if _, err := tx.ExecContext(ctx, insert,
			e.Path, e.IsDir, int64(e.Compression), int64(e.CompressedSize),
			int64(e.CRC32), int64(e.UncompressedSize)); err != nil {
			tx.Rollback()
			return total, fmt.Errorf("inserting %s: %w", e.Path, err)
		}
		total++
		inBatch++

		if inBatch >= insertBatchSize {
			if err := tx.Commit(); err != nil {
				return total, fmt.Errorf("committing batch: %w", err)
			}
			tx, err = d.BeginTx(ctx)
			if err != nil {
				return total, err
			}
			inBatch = 0
		}
	}

	if err := tx.Commit(); err != nil {
		return total, fmt.Errorf("committing final batch: %w", err)
	}
	return total, nil
}
