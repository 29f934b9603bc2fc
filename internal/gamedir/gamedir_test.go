package gamedir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowspack/wowspack/internal/gamedir"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, os.MkdirAll(path, 0755))
	}
}

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
}

func TestDetectIdxDirPicksHighestBuild(t *testing.T) {
	t.Parallel()

	game := t.TempDir()
	mkdirs(t,
		filepath.Join(game, "bin", "1234567", "idx"),
		filepath.Join(game, "bin", "9234567", "idx"),
		filepath.Join(game, "bin", "2234567", "idx"),
		filepath.Join(game, "bin", "not-a-build"),
	)

	got, err := gamedir.DetectIdxDir(game)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(game, "bin", "9234567", "idx"), got)
}

func TestDetectIdxDirNoBuilds(t *testing.T) {
	t.Parallel()

	game := t.TempDir()
	mkdirs(t, filepath.Join(game, "bin", "stale"))

	_, err := gamedir.DetectIdxDir(game)
	assert.Error(t, err)
}

func TestDetectIdxDirMissingIdx(t *testing.T) {
	t.Parallel()

	game := t.TempDir()
	mkdirs(t, filepath.Join(game, "bin", "1234567"))

	_, err := gamedir.DetectIdxDir(game)
	assert.Error(t, err)
}

func TestDefaultPkgDir(t *testing.T) {
	t.Parallel()

	idxDir := filepath.Join("game", "bin", "1234567", "idx")
	assert.Equal(t, filepath.Join("game", "res_packages"), gamedir.DefaultPkgDir(idxDir))
}

func TestExpandIdxPathsSortsDirectoryContents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "b.idx"),
		filepath.Join(dir, "a.idx"),
		filepath.Join(dir, "c.idx"),
	)
	mkdirs(t, filepath.Join(dir, "subdir"))

	got, err := gamedir.ExpandIdxPaths([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.idx"),
		filepath.Join(dir, "b.idx"),
		filepath.Join(dir, "c.idx"),
	}, got)
}

func TestExpandIdxPathsKeepsFileOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "z.idx")
	second := filepath.Join(dir, "a.idx")
	touch(t, first, second)

	// Explicit file arguments keep their declared order; only directory
	// contents get sorted.
	got, err := gamedir.ExpandIdxPaths([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, got)
}

func TestExpandIdxPathsEmpty(t *testing.T) {
	t.Parallel()

	_, err := gamedir.ExpandIdxPaths([]string{t.TempDir()})
	assert.Error(t, err)
}

func TestExpandIdxPathsMissing(t *testing.T) {
	t.Parallel()

	_, err := gamedir.ExpandIdxPaths([]string{filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
