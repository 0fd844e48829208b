// Package main provides the ssrn CLI entry point.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// jsonOutput switches stdout to structured JSON
	jsonOutput bool
	verbose    bool
)

// logger writes diagnostics to stderr; stdout is reserved for records.
var logger = newLogger(os.Stderr, false)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ssrn [id|url|file.pdf]",
	Short: "Turn an SSRN paper into a BibTeX entry",
	Long: `ssrn fetches an SSRN abstract page and prints a BibTeX @article entry
for it, together with the paper's author roster.

The paper can be given as a numeric abstract id, as the abstract page URL,
or as a PDF downloaded from SSRN.`,
	Example: `  ssrn 3846655
  ssrn https://papers.ssrn.com/sol3/papers.cfm?abstract_id=3846655
  ssrn ~/Downloads/SSRN-id3846655.pdf --append refs.bib`,
	Args:             cobra.MaximumNArgs(1),
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRun: setupLogging,
	RunE:             runLookup,
}

func init() {
	// .env in the working directory may carry SSRN_* overrides
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and retries to stderr")
	rootCmd.Version = Version
}

func setupLogging(cmd *cobra.Command, args []string) {
	logger = newLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
}

// newLogger returns a text logger at Warn, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
