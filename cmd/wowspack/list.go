package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wowspack/wowspack/internal/utils"
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List files in a catalog directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := loadCatalog(context.Background())
		if err != nil {
			return err
		}

		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}

		entries, err := tree.List(dir)
		if err != nil {
			return fmt.Errorf("listing %s: %w", dir, err)
		}

		files, dirs := 0, 0
		for _, e := range entries {
			if e.IsDir {
				fmt.Printf("%-10s %s/\n", "", e.Name)
				dirs++
			} else {
				fmt.Printf("%-10s %s\n", utils.Bytes(e.Size), e.Name)
				files++
			}
		}
		fmt.Printf("%d directories, %d files\n", dirs, files)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
