package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blucap/ssrnbib/internal/reference"
)

var listLimit int

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved records",
	Long: `List the records saved with --save, newest first.

Examples:
  ssrn list
  ssrn list --limit 20`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenLibrary(cfg)
	defer db.Close()

	cites, err := db.ListAll(listLimit)
	if err != nil {
		exitWithError(ExitError, "listing records: %v", err)
	}

	if jsonOutput {
		if cites == nil {
			cites = []reference.Citation{}
		}
		return outputJSON(cites)
	}

	if len(cites) == 0 {
		fmt.Println("No records in library")
		return nil
	}

	total, _ := db.Count()
	if listLimit > 0 && listLimit < total {
		fmt.Printf("%d records (showing first %d):\n\n", total, len(cites))
	} else {
		fmt.Printf("%d records in library:\n\n", len(cites))
	}
	for _, c := range cites {
		printCitationSummary(os.Stdout, c)
	}
	return nil
}
