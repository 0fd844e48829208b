// Package pdf reads SSRN identifiers and page counts from downloaded papers.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// SearchPages is how many leading pages are scanned for the SSRN footer.
const SearchPages = 3

// SSRN stamps "Electronic copy available at: https://ssrn.com/abstract=NNN"
// on the pages it serves. Older downloads carry the papers.cfm form.
// Extracted text often breaks lines inside the URL, so the prefix tolerates
// whitespace between characters. The id itself must be contiguous: the
// footer is usually followed by a page number.
var ssrnPattern = regexp.MustCompile(`(?i)` +
	spaced("ssrn.com/") +
	`(?:` + spaced("abstract") + `(?:` + spaced("_id") + `)?\s*=` +
	`|` + spaced("sol3/papers.cfm?abstract_id") + `\s*=)` +
	`\s*(\d+)`)

// spaced quotes lit and allows whitespace between its characters.
func spaced(lit string) string {
	parts := make([]string, 0, len(lit))
	for _, r := range lit {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return strings.Join(parts, `\s*`)
}

// Info is what a PDF can tell about an SSRN paper.
type Info struct {
	SSRNID string // Empty when no footer was found
	Pages  int
}

// Inspect opens the PDF at path and returns its page count and SSRN id.
// A PDF without an SSRN footer is not an error.
func Inspect(path string) (Info, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	info := Info{Pages: r.NumPage()}

	maxPages := min(SearchPages, info.Pages)
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if id := FindSSRNID(text); id != "" {
			info.SSRNID = id
			break
		}
	}

	return info, nil
}

// FindSSRNID returns the first SSRN abstract id referenced in text.
func FindSSRNID(text string) string {
	m := ssrnPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimLeft(m[1], "0")
}

// IsPDFPath reports whether arg names a PDF file by extension.
func IsPDFPath(arg string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(arg)), ".pdf")
}
