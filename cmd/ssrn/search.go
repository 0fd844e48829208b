package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blucap/ssrnbib/internal/reference"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search saved records by keyword",
	Long: `Search saved records by title, author, bib-key or year.

Examples:
  ssrn search mortgage
  ssrn search "Vickery 2018"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenLibrary(cfg)
	defer db.Close()

	query := strings.Join(args, " ")
	cites, err := db.Search(query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if jsonOutput {
		if cites == nil {
			cites = []reference.Citation{}
		}
		return outputJSON(cites)
	}

	if len(cites) == 0 {
		fmt.Println("No records found")
		return nil
	}
	fmt.Printf("Found %d records:\n\n", len(cites))
	for _, c := range cites {
		printCitationSummary(os.Stdout, c)
	}
	return nil
}
