package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blucap/ssrnbib/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in the global config file (~/.config/ssrn/config.yml).

Usage:
  ssrn config                            # Show all config
  ssrn config journal                    # Get specific value
  ssrn config bib-file ~/refs/main.bib   # Set value

Keys:
  user-agent          User-Agent header sent to SSRN
  journal             journal field of generated entries
  publisher           publisher field of generated entries
  bib-file            .bib file used by --bib
  library-dir         Where --save keeps records
  timeout             Per-request timeout (e.g. 30s)
  rate-limit          Requests per second
  retry-max-attempts  Attempts before giving up
  retry-base-delay    Wait after the first failure (e.g. 4s)
  retry-max-delay     Longest wait between attempts
  retry-multiplier    Growth factor of the wait

SSRN_USER_AGENT, SSRN_LIBRARY_DIR and SSRN_BIB_FILE override the file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		values := make(map[string]string, len(config.Keys))
		for _, key := range config.Keys {
			values[key], _ = cfg.Get(key)
		}
		if jsonOutput {
			return outputJSON(values)
		}
		for _, key := range config.Keys {
			fmt.Printf("%-19s %s\n", key+":", values[key])
		}
		return nil
	}

	key := config.NormalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if jsonOutput {
			return outputJSON(map[string]string{key: value})
		}
		fmt.Println(value)
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := config.SetGlobalValue(key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitConfigError, "%v", err)
	}

	if jsonOutput {
		return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	fmt.Printf("Updated %s to %s\n", key, value)
	return nil
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}
