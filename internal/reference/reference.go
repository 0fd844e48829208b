// Package reference defines the citation record built from an SSRN page.
package reference

import (
	"strconv"
	"strings"
	"time"
)

// PermanentURLTemplate is the short, stable SSRN link used in the note field.
const PermanentURLTemplate = "https://ssrn.com/abstract="

// Citation is a single bibliography record extracted from an SSRN abstract page.
type Citation struct {
	// Identity
	Key    string `json:"key"`     // Bib-key, e.g. FusterVickery2018
	SSRNID string `json:"ssrn_id"` // Numeric abstract id as found on the page or URL
	URL    string `json:"url"`     // Page the record was extracted from

	// Metadata
	Title     string       `json:"title"`
	Authors   []Author     `json:"authors"`
	Pages     PageRange    `json:"pages"`
	Journal   string       `json:"journal"`
	Publisher string       `json:"publisher"`
	CoAuthors CoAuthorList `json:"coauthors,omitempty"`

	// Publication Date
	DateString string    `json:"date_str,omitempty"` // Raw citation_publication_date content
	Published  time.Time `json:"published"`
}

// PageRange is the page span of a paper. The zero value means no page
// information was found.
type PageRange struct {
	Range string `json:"range,omitempty"` // BibTeX pages value, e.g. "1--44" or "10-15"
	Count int    `json:"count,omitempty"`
}

// IsZero reports whether no page information is present.
func (p PageRange) IsZero() bool {
	return p.Range == ""
}

// Field is one named value of the ordered record view.
type Field struct {
	Name    string
	Value   string
	Numeric bool // Value is an integer, or empty when unknown
}

// PermanentURL returns the short ssrn.com link for the record, or "" when the
// SSRN id is unknown.
func (c Citation) PermanentURL() string {
	if c.SSRNID == "" {
		return ""
	}
	return PermanentURLTemplate + c.SSRNID
}

// Note returns the BibTeX note value wrapping the permanent URL.
func (c Citation) Note() string {
	u := c.PermanentURL()
	if u == "" {
		return ""
	}
	return `\url{` + u + `}`
}

// Month returns the lowercase three-letter month token ("jun").
func (c Citation) Month() string {
	return MonthToken(c.Published.Month())
}

// Year returns the publication year as a string.
func (c Citation) Year() string {
	return strconv.Itoa(c.Published.Year())
}

// AuthorList formats the authors the way BibTeX expects: "Last, First and Last, First".
func (c Citation) AuthorList() string {
	names := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		names = append(names, a.BibTeXName())
	}
	return strings.Join(names, " and ")
}

// Fields returns the record as an ordered list of named values. The order is
// stable and suitable for a single-row tabular rendering.
func (c Citation) Fields() []Field {
	return []Field{
		{Name: "bib_entry", Value: c.Key},
		{Name: "authors", Value: c.AuthorList()},
		{Name: "title", Value: c.Title},
		{Name: "pages", Value: c.Pages.Range},
		{Name: "journal", Value: c.Journal},
		{Name: "publisher", Value: c.Publisher},
		{Name: "note", Value: c.Note()},
		{Name: "month", Value: c.Month()},
		{Name: "year", Value: c.Year(), Numeric: true},
		{Name: "ssrn_no", Value: c.SSRNID},
		{Name: "date_str", Value: c.DateString},
		{Name: "pagescount", Value: pageCountString(c.Pages), Numeric: true},
	}
}

func pageCountString(p PageRange) string {
	if p.IsZero() {
		return ""
	}
	return strconv.Itoa(p.Count)
}

// MonthToken returns the lowercase three-letter abbreviation for m.
func MonthToken(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return strings.ToLower(m.String()[:3])
}
