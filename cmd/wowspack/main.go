package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/wowspack/wowspack/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string

	gameDir    string
	pkgDir     string
	idxFiles   []string
	workers    int
	dbPath     string
	logLevel   string
	logFormat  string
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "wowspack",
	Short: "World of Warships resource index and extraction tool",
	Long: `wowspack reads the game's binary .idx resource indices, merges base and
patch catalogs into one resource tree, and extracts files from the .pkg
payload volumes with decompression and CRC verification.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("game-dir") {
			cfg.GameDir = gameDir
		}
		if cmd.Flags().Changed("pkg-dir") {
			cfg.PkgDir = pkgDir
		}
		if cmd.Flags().Changed("idx-files") {
			cfg.IdxFiles = idxFiles
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}
		if cmd.Flags().Changed("database") {
			cfg.Database = dbPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}

		slog.SetDefault(slog.New(handler))

		slog.Debug("Configuration",
			"game_dir", cfg.GameDir,
			"pkg_dir", cfg.PkgDir,
			"idx_files", cfg.IdxFiles,
			"workers", cfg.Workers,
			"database", cfg.Database,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is wowspack.yaml in pwd or home)")
	rootCmd.PersistentFlags().StringVarP(&gameDir, "game-dir", "g", "", "game installation directory (newest build's idx files are used)")
	rootCmd.PersistentFlags().StringVarP(&pkgDir, "pkg-dir", "p", "", "directory holding .pkg volumes (default: res_packages relative to the idx dir)")
	rootCmd.PersistentFlags().StringSliceVarP(&idxFiles, "idx-files", "i", []string{}, ".idx files or directories, in patch precedence order")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "extraction worker count (0 = hardware parallelism)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "", "metadata database file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}
