// Package gamedir locates idx and pkg directories inside a game
// installation.
package gamedir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// DetectIdxDir finds the idx directory of the newest build under
// <gameDir>/bin. Build directories are named by their numeric build
// id; the highest one wins, which may be a prepped but not yet live
// update.
func DetectIdxDir(gameDir string) (string, error) {
	binDir := filepath.Join(gameDir, "bin")
	entries, err := os.ReadDir(binDir)
	if err != nil {
		return "", fmt.Errorf("enumerating %s: %w", binDir, err)
	}

	var latest uint64
	found := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		build, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		if !found || build > latest {
			latest = build
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("no build directories under %s", binDir)
	}

	idxDir := filepath.Join(binDir, strconv.FormatUint(latest, 10), "idx")
	if _, err := os.Stat(idxDir); err != nil {
		return "", fmt.Errorf("build %d has no idx directory: %w", latest, err)
	}
	return idxDir, nil
}

// DefaultPkgDir returns the conventional res_packages location for an
// idx directory: <game>/bin/<build>/idx −> <game>/res_packages.
func DefaultPkgDir(idxDir string) string {
	return filepath.Join(idxDir, "..", "..", "..", "res_packages")
}

// ExpandIdxPaths turns a mix of .idx files and directories into a flat,
// deterministic list of files. Directory contents are sorted by name so
// the patch precedence order does not depend on readdir order.
func ExpandIdxPaths(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("enumerating %s: %w", path, err)
		}
		var files []string
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no index files found")
	}
	return out, nil
}
