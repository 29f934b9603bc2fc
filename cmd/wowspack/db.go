package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/wowspack/wowspack/internal/database"
	"github.com/wowspack/wowspack/internal/metadata"
	"github.com/wowspack/wowspack/internal/utils"
)

var dbForce bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Export catalog metadata into a queryable SQLite database",
	Long: `Db builds the merged catalog and writes every entry's metadata into a
SQLite database, one row per resource path. The database can then be
queried with any SQLite client.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		tree, _, err := loadCatalog(ctx)
		if err != nil {
			return err
		}

		db, err := database.Open(database.DefaultOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		exists, err := db.HasResources(ctx)
		if err != nil {
			return err
		}
		if exists {
			if !dbForce {
				return fmt.Errorf("database %s already holds a resources table (use --force to replace)", cfg.Database)
			}
			if _, err := db.Exec(ctx, `DROP TABLE resources`); err != nil {
				return fmt.Errorf("dropping resources table: %w", err)
			}
		}

		slog.Info("Exporting metadata", "database", cfg.Database)
		start := time.Now()

		rows, err := db.ExportMetadata(ctx, metadata.Dump(tree))
		if err != nil {
			return fmt.Errorf("exporting metadata: %w", err)
		}

		fmt.Printf("Rows inserted: %s\n", utils.Number(rows))
		fmt.Printf("Duration: %s\n", utils.Duration(time.Since(start)))
		fmt.Printf("Try: sqlite3 %s 'SELECT COUNT(*) FROM resources WHERE is_directory = 0'\n", cfg.Database)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.Flags().BoolVar(&dbForce, "force", false, "replace an existing resources table")
}
