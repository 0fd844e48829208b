package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/blucap/ssrnbib/internal/clipboard"
	"github.com/blucap/ssrnbib/internal/config"
	"github.com/blucap/ssrnbib/internal/export"
	"github.com/blucap/ssrnbib/internal/pdf"
	"github.com/blucap/ssrnbib/internal/reference"
	"github.com/blucap/ssrnbib/internal/ssrn"
	"github.com/blucap/ssrnbib/internal/storage"
)

const (
	missingArgMessage   = "Please add the SSRN # or url string"
	invalidInputMessage = "Check your inputs, give it some time, or use the URL instead."
	notFoundMessage     = "SSRN has no abstract page for this id; check the number or use the URL instead."
)

var (
	lookupCopy      bool
	lookupAppend    string
	lookupAppendBib bool
	lookupSave      bool
)

func init() {
	rootCmd.Flags().BoolVar(&lookupCopy, "copy", false, "Copy the BibTeX entry to the clipboard")
	rootCmd.Flags().StringVar(&lookupAppend, "append", "", "Append the entry to this .bib file unless it is already there")
	rootCmd.Flags().BoolVar(&lookupAppendBib, "bib", false, "Append the entry to the configured bib_file")
	rootCmd.Flags().BoolVar(&lookupSave, "save", false, "Save the record to the local library")
}

// LookupResponse is the JSON output of a lookup.
type LookupResponse struct {
	Citation    reference.Citation `json:"citation"`
	BibTeX      string             `json:"bibtex"`
	CoAuthorIDs map[int]string     `json:"coauthor_ids,omitempty"` // SSRN author id -> name
	Saved       string             `json:"saved,omitempty"`        // new, update
	AppendedTo  string             `json:"appended_to,omitempty"`
	InBibFile   bool               `json:"in_bib_file,omitempty"` // Entry already present, not appended
	Copied      bool               `json:"copied,omitempty"`
}

// newLookupResponse fills the parts of a response derived from c alone.
func newLookupResponse(c reference.Citation) LookupResponse {
	resp := LookupResponse{Citation: c, BibTeX: export.ToBibTeX(c)}
	if len(c.CoAuthors) > 0 {
		resp.CoAuthorIDs = c.CoAuthors.ByID()
	}
	return resp
}

func runLookup(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println(missingArgMessage)
		return nil
	}

	cfg := mustLoadConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c, err := lookup(ctx, newResolver(cfg), args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%s", lookupErrorMessage(err))
	}

	resp := newLookupResponse(c)

	if lookupSave {
		stored, action, err := saveCitation(cfg.LibraryDir, c)
		if err != nil {
			exitWithError(ExitError, "saving record: %v", err)
		}
		saved := newLookupResponse(stored)
		saved.Saved = action
		resp = saved
	}

	bibPath := lookupAppend
	if bibPath == "" && lookupAppendBib {
		if cfg.BibFile == "" {
			exitWithError(ExitConfigError, "no bib_file configured; set one with 'ssrn config bib-file <path>'")
		}
		bibPath = cfg.BibFile
	}
	if bibPath != "" {
		bibPath = config.ExpandPath(bibPath)
		appended, err := appendEntry(bibPath, resp.Citation, resp.BibTeX)
		if err != nil {
			exitWithError(ExitError, "appending to %s: %v", bibPath, err)
		}
		if appended {
			resp.AppendedTo = bibPath
		} else {
			resp.InBibFile = true
		}
	}

	if lookupCopy {
		if !clipboard.IsAvailable() {
			logger.Warn("no clipboard tool found, entry not copied")
		} else if err := clipboard.Copy(resp.BibTeX); err != nil {
			logger.Warn("could not copy to clipboard", "error", err)
		} else {
			resp.Copied = true
		}
	}

	if jsonOutput {
		return outputJSON(resp)
	}

	printRecord(os.Stdout, resp.Citation, resp.BibTeX)
	printLookupStatus(resp)
	return nil
}

// lookup resolves arg (id, URL or SSRN PDF) into a citation.
func lookup(ctx context.Context, r *ssrn.Resolver, arg string) (reference.Citation, error) {
	var pdfPages int
	target, err := ssrn.ParseTarget(arg)
	if err != nil && pdf.IsPDFPath(arg) {
		var info pdf.Info
		target, info, err = targetFromPDF(arg)
		pdfPages = info.Pages
	}
	if err != nil {
		return reference.Citation{}, err
	}

	logger.Debug("looking up paper", "id", target.ID, "url", target.URL)

	c, err := r.Resolve(ctx, target)
	if err != nil {
		return reference.Citation{}, fmt.Errorf("fetching %s: %w", target.URL, err)
	}

	if c.Pages.IsZero() && pdfPages > 0 {
		c.Pages = ssrn.WholeDocument(pdfPages)
	}
	return c, nil
}

// targetFromPDF reads the SSRN footer of a downloaded paper.
func targetFromPDF(path string) (ssrn.Target, pdf.Info, error) {
	info, err := pdf.Inspect(config.ExpandPath(path))
	if err != nil {
		return ssrn.Target{}, info, fmt.Errorf("%w: %v", ssrn.ErrInvalidInput, err)
	}
	if info.SSRNID == "" {
		return ssrn.Target{}, info, fmt.Errorf("%w: no SSRN link found in %s", ssrn.ErrInvalidInput, path)
	}
	target, err := ssrn.ParseTarget(info.SSRNID)
	return target, info, err
}

// exitCodeFor maps a lookup error to the CLI exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, ssrn.ErrInvalidInput):
		return ExitInputError
	case ssrn.IsNetworkError(err), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitNetworkError
	default:
		return ExitError
	}
}

// lookupErrorMessage adds a hint for the failures a user can act on.
func lookupErrorMessage(err error) string {
	switch {
	case errors.Is(err, ssrn.ErrInvalidInput):
		return fmt.Sprintf("%v\n%s", err, invalidInputMessage)
	case ssrn.IsNotFound(err):
		return fmt.Sprintf("%v\n%s", err, notFoundMessage)
	default:
		return err.Error()
	}
}

// saveCitation upserts c into the library and refreshes the index.
func saveCitation(dir string, c reference.Citation) (reference.Citation, string, error) {
	stored, action, err := storage.Upsert(config.LibraryPath(dir), c)
	if err != nil {
		return c, "", err
	}
	if _, err := rebuildLibrary(dir); err != nil {
		return stored, action, fmt.Errorf("rebuilding index: %w", err)
	}
	return stored, action, nil
}

// appendEntry adds bib to the .bib file at path unless an entry with the same
// key or SSRN id is already there. It reports whether the file was changed.
func appendEntry(path string, c reference.Citation, bib string) (bool, error) {
	idx, err := export.ParseBibTeXFile(path)
	if err != nil {
		return false, err
	}
	if idx.HasEntry(c.Key, c.SSRNID) {
		return false, nil
	}
	if err := export.AppendToBibFile(path, bib); err != nil {
		return false, err
	}
	return true, nil
}

// printLookupStatus reports side effects on stderr so stdout stays pasteable.
func printLookupStatus(resp LookupResponse) {
	switch resp.Saved {
	case storage.ActionNew:
		fmt.Fprintf(os.Stderr, "Saved %s to library\n", resp.Citation.Key)
	case storage.ActionUpdate:
		fmt.Fprintf(os.Stderr, "Updated %s in library\n", resp.Citation.Key)
	}
	if resp.AppendedTo != "" {
		fmt.Fprintf(os.Stderr, "Appended %s to %s\n", resp.Citation.Key, resp.AppendedTo)
	}
	if resp.InBibFile {
		fmt.Fprintf(os.Stderr, "%s is already in the bib file, not appended\n", resp.Citation.Key)
	}
	if resp.Copied {
		fmt.Fprintln(os.Stderr, "Copied BibTeX entry to clipboard")
	}
}
