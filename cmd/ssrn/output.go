package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blucap/ssrnbib/internal/reference"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands
	ListTitleMaxLen    = 60 // Title truncation in list and search output
)

// Styles for human output. lipgloss drops the colours when stdout is not a terminal.
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#005f87", Dark: "#5fafd7"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6c6c6c", Dark: "#8a8a8a"}

	TitleStyle   = lipgloss.NewStyle().Bold(true)
	HeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		outputJSON(ErrorResponse{Error: msg, Code: code})
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// authorsHeading introduces the roster; singular for a single author.
func authorsHeading(n int) string {
	if n > 1 {
		return "Author's names:"
	}
	return "Author's name:"
}

// printRecord writes the lookup result the way it is read at a terminal:
// title, author roster, the BibTeX block and the page URL.
func printRecord(w io.Writer, c reference.Citation, bib string) {
	fmt.Fprintf(w, "\n%s\n\n", TitleStyle.Render(c.Title))

	fmt.Fprintln(w, HeadingStyle.Render(authorsHeading(len(c.Authors))))
	if len(c.CoAuthors) > 0 {
		for _, a := range c.CoAuthors {
			fmt.Fprintf(w, "%s (%d)\n", a.Name, a.ID)
		}
	} else {
		// No profile links on the page; fall back to the meta tags
		for _, a := range c.Authors {
			fmt.Fprintln(w, a.FullName())
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", HeadingStyle.Render("Bibtex:"))
	fmt.Fprintln(w, strings.TrimRight(bib, "\n"))
	fmt.Fprintf(w, "\n%s\n\n", MutedStyle.Render(c.URL))
}

// printCitationSummary writes one line per saved citation.
func printCitationSummary(w io.Writer, c reference.Citation) {
	fmt.Fprintf(w, "  %-24s %s  %s\n",
		c.Key,
		truncateString(c.Title, ListTitleMaxLen),
		MutedStyle.Render(c.PermanentURL()))
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
