package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blucap/ssrnbib/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the library file",
	Long: `Rebuild the SQLite search index from library.jsonl.

Use this after editing or syncing library.jsonl by hand.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	count, err := rebuildLibrary(cfg.LibraryDir)
	if err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	if jsonOutput {
		return outputJSON(StatusResponse{Status: "rebuilt", Path: config.DBPath(cfg.LibraryDir), Count: count})
	}
	fmt.Printf("Rebuilt search index with %d records\n", count)
	return nil
}
