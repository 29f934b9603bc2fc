package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowspack/wowspack/internal/catalog"
	"github.com/wowspack/wowspack/internal/database"
	"github.com/wowspack/wowspack/internal/idx"
	"github.com/wowspack/wowspack/internal/metadata"
)

func open(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(database.DefaultOptions(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := database.Open(nil)
	assert.Error(t, err)
	_, err = database.Open(&database.Options{})
	assert.Error(t, err)
}

func TestHasResources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := open(t)

	has, err := db.HasResources(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = db.Exec(ctx, `CREATE TABLE resources (path TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	has, err = db.HasResources(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestExportMetadata(t *testing.T) {
	t.Parallel()

	tree, err := catalog.Build([]*idx.ParsedIdx{{
		Source: "test.idx",
		Nodes: []idx.Node{
			{ID: 1, ParentID: idx.RootParentID, Name: "gui"},
			{ID: 2, ParentID: 1, Name: "icon.png"},
		},
		FileRecords: []idx.FileRecord{
			{ResourceID: 2, VolumeID: 7, Compression: 1, CompressedSize: 100, CRC32: 0xCAFE, UncompressedSize: 400},
		},
		Volumes: []idx.Volume{{ID: 7, Name: "00.pkg"}},
	}})
	require.NoError(t, err)

	ctx := context.Background()
	db := open(t)

	rows, err := db.ExportMetadata(ctx, metadata.Dump(tree))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	var count int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM resources WHERE is_directory = 0`).Scan(&count))
	assert.Equal(t, 1, count)

	var size int64
	require.NoError(t, db.QueryRow(ctx, `SELECT uncompressed_size FROM resources WHERE path = ?`, "gui/icon.png").Scan(&size))
	assert.Equal(t, int64(400), size)
}

func TestExecAfterClose(t *testing.T) {
	t.Parallel()

	db := open(t)
	require.NoError(t, db.Close())

	_, err := db.Exec(context.Background(), `SELECT 1`)
	assert.Error(t, err)
}
