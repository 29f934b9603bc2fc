package extract

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowspack/wowspack/internal/catalog"
	"github.com/wowspack/wowspack/internal/idx"
	"github.com/wowspack/wowspack/internal/volume"
)

// memLocator serves volumes from in-memory byte slices.
type memLocator struct {
	volumes map[string][]byte
	opened  map[string]int
}

func newMemLocator() *memLocator {
	return &memLocator{volumes: make(map[string][]byte), opened: make(map[string]int)}
}

func (l *memLocator) Open(name string) (volume.Source, error) {
	data, ok := l.volumes[name]
	if !ok {
		return nil, fmt.Errorf("volume %s does not exist", name)
	}
	l.opened[name]++
	return &memSource{Reader: bytes.NewReader(data), n: len(data)}, nil
}

type memSource struct {
	*bytes.Reader
	n int
}

func (s *memSource) Len() int     { return s.n }
func (s *memSource) Close() error { return nil }

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, fw.Close())
	return buf.Bytes()
}

func buildTree(t *testing.T, nodes []idx.Node, records []idx.FileRecord, volumes []idx.Volume) *catalog.ResourceTree {
	t.Helper()
	tree, err := catalog.Build([]*idx.ParsedIdx{{
		Source:      "test.idx",
		Nodes:       nodes,
		FileRecords: records,
		Volumes:     volumes,
	}})
	require.NoError(t, err)
	return tree
}

// End to end: a deflated payload at offset 1024 of 00.pkg comes back
// as its exact uncompressed bytes with the CRC confirmed.
func TestExtractDeflate(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("warships"), 128) // 1024 bytes
	compressed := deflate(t, payload)

	vol := make([]byte, 1024+len(compressed))
	copy(vol[1024:], compressed)

	tree := buildTree(t,
		[]idx.Node{
			{ID: 1, ParentID: idx.RootParentID, Name: "gui"},
			{ID: 100, ParentID: 1, Name: "icon.png"},
		},
		[]idx.FileRecord{{
			ResourceID:       100,
			VolumeID:         7,
			Offset:           1024,
			Compression:      1,
			CompressedSize:   uint32(len(compressed)),
			CRC32:            crc32.ChecksumIEEE(payload),
			UncompressedSize: uint32(len(payload)),
		}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = vol

	sink := NewMemSink()
	report := NewEngine(tree, locator, 2).Extract(context.Background(), []uint64{100}, sink)

	require.Equal(t, 1, report.Succeeded)
	outcome := report.Outcomes[100]
	require.NoError(t, outcome.Err)
	assert.Equal(t, "gui/icon.png", outcome.Path)
	assert.Equal(t, "00.pkg", outcome.Volume)
	assert.Equal(t, int64(1024), outcome.Size)

	got, ok := sink.Get("gui/icon.png")
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestExtractStored(t *testing.T) {
	t.Parallel()

	payload := []byte("stored verbatim")
	tree := buildTree(t,
		[]idx.Node{{ID: 1, ParentID: idx.RootParentID, Name: "readme.txt"}},
		[]idx.FileRecord{{
			ResourceID:       1,
			VolumeID:         7,
			Offset:           0,
			Compression:      0,
			CompressedSize:   uint32(len(payload)),
			CRC32:            crc32.ChecksumIEEE(payload),
			UncompressedSize: uint32(len(payload)),
		}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = payload

	sink := NewMemSink()
	report := NewEngine(tree, locator, 1).Extract(context.Background(), []uint64{1}, sink)

	require.Equal(t, 1, report.Succeeded)
	got, ok := sink.Get("readme.txt")
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

// A bad CRC fails only its own file; the sibling in the same batch and
// volume still succeeds.
func TestIntegrityFailureIsScopedPerFile(t *testing.T) {
	t.Parallel()

	good := []byte("good bytes")
	bad := []byte("bad bytes!")
	vol := append(append([]byte{}, good...), bad...)

	tree := buildTree(t,
		[]idx.Node{
			{ID: 1, ParentID: idx.RootParentID, Name: "good.bin"},
			{ID: 2, ParentID: idx.RootParentID, Name: "bad.bin"},
		},
		[]idx.FileRecord{
			{
				ResourceID: 1, VolumeID: 7, Offset: 0,
				CompressedSize: uint32(len(good)), CRC32: crc32.ChecksumIEEE(good),
				UncompressedSize: uint32(len(good)),
			},
			{
				ResourceID: 2, VolumeID: 7, Offset: uint64(len(good)),
				CompressedSize: uint32(len(bad)), CRC32: 0xDEADBEEF,
				UncompressedSize: uint32(len(bad)),
			},
		},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = vol

	sink := NewMemSink()
	report := NewEngine(tree, locator, 4).Extract(context.Background(), []uint64{1, 2}, sink)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.NoError(t, report.Outcomes[1].Err)
	assert.ErrorIs(t, report.Outcomes[2].Err, ErrIntegrity)

	_, ok := sink.Get("good.bin")
	assert.True(t, ok)
	_, ok = sink.Get("bad.bin")
	assert.False(t, ok)

	// One batch, one volume opening.
	assert.Equal(t, 1, locator.opened["00.pkg"])
}

func TestStoredLengthMismatch(t *testing.T) {
	t.Parallel()

	payload := []byte("short")
	tree := buildTree(t,
		[]idx.Node{{ID: 1, ParentID: idx.RootParentID, Name: "f.bin"}},
		[]idx.FileRecord{{
			ResourceID: 1, VolumeID: 7,
			CompressedSize:   uint32(len(payload)),
			CRC32:            crc32.ChecksumIEEE(payload),
			UncompressedSize: 999,
		}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = payload

	report := NewEngine(tree, locator, 1).Extract(context.Background(), []uint64{1}, NewMemSink())
	assert.ErrorIs(t, report.Outcomes[1].Err, ErrIntegrity)
}

func TestDecompressionError(t *testing.T) {
	t.Parallel()

	garbage := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	tree := buildTree(t,
		[]idx.Node{{ID: 1, ParentID: idx.RootParentID, Name: "f.bin"}},
		[]idx.FileRecord{{
			ResourceID: 1, VolumeID: 7, Compression: 1,
			CompressedSize:   uint32(len(garbage)),
			UncompressedSize: 64,
		}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = garbage

	report := NewEngine(tree, locator, 1).Extract(context.Background(), []uint64{1}, NewMemSink())
	assert.ErrorIs(t, report.Outcomes[1].Err, ErrDecompression)
}

func TestMissingVolumeFileFailsGroup(t *testing.T) {
	t.Parallel()

	tree := buildTree(t,
		[]idx.Node{{ID: 1, ParentID: idx.RootParentID, Name: "f.bin"}},
		[]idx.FileRecord{{ResourceID: 1, VolumeID: 7, CompressedSize: 4, UncompressedSize: 4}},
		[]idx.Volume{{ID: 7, Name: "gone.pkg"}},
	)

	report := NewEngine(tree, newMemLocator(), 1).Extract(context.Background(), []uint64{1}, NewMemSink())
	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Outcomes[1].Err, ErrIO)
}

func TestReadBeyondVolume(t *testing.T) {
	t.Parallel()

	tree := buildTree(t,
		[]idx.Node{{ID: 1, ParentID: idx.RootParentID, Name: "f.bin"}},
		[]idx.FileRecord{{ResourceID: 1, VolumeID: 7, Offset: 1 << 20, CompressedSize: 16, UncompressedSize: 16}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = []byte("tiny")

	report := NewEngine(tree, locator, 1).Extract(context.Background(), []uint64{1}, NewMemSink())
	assert.ErrorIs(t, report.Outcomes[1].Err, ErrIO)
}

func TestExtractUnknownID(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, nil, nil, nil)
	report := NewEngine(tree, newMemLocator(), 1).Extract(context.Background(), []uint64{123}, NewMemSink())
	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Outcomes[123].Err, catalog.ErrNotFound)
}

func TestCancellationSkipsPendingUnits(t *testing.T) {
	t.Parallel()

	payload := []byte("data")
	tree := buildTree(t,
		[]idx.Node{{ID: 1, ParentID: idx.RootParentID, Name: "f.bin"}},
		[]idx.FileRecord{{
			ResourceID: 1, VolumeID: 7,
			CompressedSize: uint32(len(payload)), CRC32: crc32.ChecksumIEEE(payload),
			UncompressedSize: uint32(len(payload)),
		}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = payload

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewEngine(tree, locator, 1).Extract(ctx, []uint64{1}, NewMemSink())
	assert.Equal(t, 1, report.Skipped)
	assert.ErrorIs(t, report.Outcomes[1].Err, context.Canceled)
}

// Extracting the same id twice from an unchanged tree yields identical
// bytes.
func TestExtractIsDeterministic(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0xAB}, 512)
	compressed := deflate(t, payload)

	tree := buildTree(t,
		[]idx.Node{{ID: 1, ParentID: idx.RootParentID, Name: "f.bin"}},
		[]idx.FileRecord{{
			ResourceID: 1, VolumeID: 7, Compression: 4,
			CompressedSize: uint32(len(compressed)), CRC32: crc32.ChecksumIEEE(payload),
			UncompressedSize: uint32(len(payload)),
		}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = compressed

	engine := NewEngine(tree, locator, 2)

	first := NewMemSink()
	require.Equal(t, 1, engine.Extract(context.Background(), []uint64{1}, first).Succeeded)
	second := NewMemSink()
	require.Equal(t, 1, engine.Extract(context.Background(), []uint64{1}, second).Succeeded)

	a, _ := first.Get("f.bin")
	b, _ := second.Get("f.bin")
	assert.Equal(t, a, b)
	assert.Equal(t, crc32.ChecksumIEEE(a), crc32.ChecksumIEEE(b))
}

// Orphan records extract under an id-derived name.
func TestExtractOrphanByID(t *testing.T) {
	t.Parallel()

	payload := []byte("orphan bytes")
	tree := buildTree(t,
		nil,
		[]idx.FileRecord{{
			ResourceID: 0xABC, VolumeID: 7,
			CompressedSize: uint32(len(payload)), CRC32: crc32.ChecksumIEEE(payload),
			UncompressedSize: uint32(len(payload)),
		}},
		[]idx.Volume{{ID: 7, Name: "00.pkg"}},
	)

	locator := newMemLocator()
	locator.volumes["00.pkg"] = payload

	sink := NewMemSink()
	report := NewEngine(tree, locator, 1).Extract(context.Background(), []uint64{0xABC}, sink)
	require.Equal(t, 1, report.Succeeded)

	got, ok := sink.Get("0000000000000abc.bin")
	require.True(t, ok)
	assert.Equal(t, payload, got)
}
