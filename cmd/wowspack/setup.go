package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/wowspack/wowspack/internal/catalog"
	"github.com/wowspack/wowspack/internal/gamedir"
	"github.com/wowspack/wowspack/internal/volume"
)

// resolveSources turns the configuration into an ordered idx file list
// and the pkg directory to read volumes from.
func resolveSources() ([]string, string, error) {
	paths := cfg.IdxFiles
	if len(paths) == 0 {
		if cfg.GameDir == "" {
			return nil, "", fmt.Errorf("no index files: provide --idx-files or --game-dir")
		}
		idxDir, err := gamedir.DetectIdxDir(cfg.GameDir)
		if err != nil {
			return nil, "", fmt.Errorf("detecting idx directory: %w", err)
		}
		slog.Debug("Detected idx directory", "dir", idxDir)
		paths = []string{idxDir}
	}

	files, err := gamedir.ExpandIdxPaths(paths)
	if err != nil {
		return nil, "", err
	}

	pkgs := cfg.PkgDir
	if pkgs == "" {
		pkgs = gamedir.DefaultPkgDir(filepath.Dir(files[0]))
	}
	return files, pkgs, nil
}

// loadCatalog parses and merges the configured index sources.
func loadCatalog(ctx context.Context) (*catalog.ResourceTree, *volume.DirLocator, error) {
	files, pkgs, err := resolveSources()
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Loading catalog", "sources", len(files))
	tree, err := catalog.Load(ctx, files)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}

	for _, d := range tree.Diagnostics() {
		slog.Warn("Catalog diagnostic", "detail", d.String())
	}

	return tree, volume.NewDirLocator(pkgs), nil
}
