package reference

import "strings"

// Author is one entry of the citation_author meta tags.
type Author struct {
	First string `json:"first"`         // Given name(s)
	Last  string `json:"last"`          // Family name
	Raw   string `json:"raw,omitempty"` // Tag content as published, e.g. "Fuster, Andreas"
}

// ParseAuthor splits an author string. SSRN publishes "Last, First"; a name
// without a comma is treated as "First ... Last".
func ParseAuthor(raw string) Author {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return Author{}
	}

	if last, first, ok := strings.Cut(raw, ","); ok {
		return Author{
			First: strings.TrimSpace(first),
			Last:  strings.TrimSpace(last),
			Raw:   raw,
		}
	}

	parts := strings.Fields(raw)
	if len(parts) == 1 {
		return Author{Last: parts[0], Raw: raw}
	}
	return Author{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
		Raw:   raw,
	}
}

// BibTeXName returns "Last, First", or just "Last" when no given name is known.
func (a Author) BibTeXName() string {
	if a.First != "" {
		return a.Last + ", " + a.First
	}
	return a.Last
}

// FullName returns "First Last".
func (a Author) FullName() string {
	if a.First != "" {
		return a.First + " " + a.Last
	}
	return a.Last
}

// CoAuthor is an SSRN author discovered through a "View other papers by this
// author" link.
type CoAuthor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CoAuthorList keeps co-authors in page order.
type CoAuthorList []CoAuthor

// ByID returns the co-authors keyed by SSRN author id. The first name seen
// for an id wins.
func (l CoAuthorList) ByID() map[int]string {
	m := make(map[int]string, len(l))
	for _, c := range l {
		if _, ok := m[c.ID]; !ok {
			m[c.ID] = c.Name
		}
	}
	return m
}
