// Package export renders citation records as BibTeX and spreadsheets.
package export

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/blucap/ssrnbib/internal/reference"
)

// EntryType is the BibTeX entry type used for SSRN papers.
const EntryType = "article"

// anonymousKey prefixes the bib-key of a paper without any author tag.
const anonymousKey = "Anon"

// BibKey builds the short citation key: the first author's surname, then the
// second author's surname (exactly two authors) or "EtAl" (three or more),
// then the year. FusterVickery2018, Fuster2018, FusterEtAl2018.
func BibKey(authors []reference.Author, year int) string {
	var b strings.Builder
	switch {
	case len(authors) == 0:
		b.WriteString(anonymousKey)
	case len(authors) == 1:
		b.WriteString(keySurname(authors[0]))
	case len(authors) == 2:
		b.WriteString(keySurname(authors[0]))
		b.WriteString(keySurname(authors[1]))
	default:
		b.WriteString(keySurname(authors[0]))
		b.WriteString("EtAl")
	}
	b.WriteString(strconv.Itoa(year))
	return b.String()
}

// keySurname returns the surname with whitespace and BibTeX-hostile
// punctuation removed ("van der Berg" → "vanderBerg").
func keySurname(a reference.Author) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(`{}(),"'#%~\`, r) {
			return -1
		}
		return r
	}, a.Last)
}

// ToBibTeX converts a citation to a BibTeX @article entry. Field order and
// layout follow the format reference managers import without edits.
func ToBibTeX(c reference.Citation) string {
	var b strings.Builder

	b.WriteString("@" + EntryType + "{" + c.Key + ",\n")
	if len(c.Authors) > 0 {
		b.WriteString("author = {" + c.AuthorList() + "},\n")
	}
	b.WriteString("title = {{" + escapeLatex(c.Title) + "}},\n")
	if !c.Pages.IsZero() {
		b.WriteString("pages = {" + c.Pages.Range + "},\n")
	}
	b.WriteString("journal = {" + c.Journal + "},\n")
	b.WriteString("publisher = {" + c.Publisher + "},\n")
	if note := c.Note(); note != "" {
		b.WriteString(`note = "` + note + "\",\n")
	}
	b.WriteString("month = " + c.Month() + ",\n")
	b.WriteString("year = " + c.Year() + "\n")
	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple citations to BibTeX, separated by blank lines.
func ToBibTeXList(cs []reference.Citation) string {
	entries := make([]string, 0, len(cs))
	for _, c := range cs {
		entries = append(entries, ToBibTeX(c))
	}
	return strings.Join(entries, "\n")
}

// escapeLatex escapes characters that break a braced BibTeX value. Braces
// are left alone: titles are already double-braced to keep their casing.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
	)
	return replacer.Replace(s)
}
