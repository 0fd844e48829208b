package ssrn

import (
	"regexp"
	"strconv"

	"github.com/blucap/ssrnbib/internal/reference"
)

// PageMatcher recognises one way an SSRN page states its length.
type PageMatcher struct {
	Name    string
	Pattern *regexp.Regexp
	// Build turns the submatches of Pattern into a page range. It returns
	// false to let the next matcher try.
	Build func(groups []string) (reference.PageRange, bool)
}

// DefaultPageMatchers returns the matchers in priority order:
// "Number of pages: N", then "pp. N-M", then "N Pages".
func DefaultPageMatchers() []PageMatcher {
	return []PageMatcher{
		{
			Name:    "number-of-pages",
			Pattern: regexp.MustCompile(`(?i)Number\s+of\s+pages:\s*(\d+)`),
			Build:   wholeDocument,
		},
		{
			Name:    "pp-range",
			Pattern: regexp.MustCompile(`(?i)pp\.\s*(\d+)\s*[-–]\s*(\d+)`),
			Build:   explicitRange,
		},
		{
			Name:    "n-pages",
			Pattern: regexp.MustCompile(`(?i)(\d+)\s+Pages\b`),
			Build:   wholeDocument,
		},
	}
}

// MatchPages runs matchers in order against text and returns the first
// success along with the name of the matcher that produced it.
func MatchPages(text string, matchers []PageMatcher) (reference.PageRange, string, bool) {
	for _, m := range matchers {
		groups := m.Pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		if pr, ok := m.Build(groups); ok {
			return pr, m.Name, true
		}
	}
	return reference.PageRange{}, "", false
}

// wholeDocument builds "1--N" from a single page count.
func wholeDocument(groups []string) (reference.PageRange, bool) {
	n, err := strconv.Atoi(groups[1])
	if err != nil || n <= 0 {
		return reference.PageRange{}, false
	}
	return WholeDocument(n), true
}

// explicitRange keeps the published "N-M" range; the count is M-N.
func explicitRange(groups []string) (reference.PageRange, bool) {
	first, err1 := strconv.Atoi(groups[1])
	last, err2 := strconv.Atoi(groups[2])
	if err1 != nil || err2 != nil || last < first {
		return reference.PageRange{}, false
	}
	return reference.PageRange{
		Range: groups[1] + "-" + groups[2],
		Count: last - first,
	}, true
}

// WholeDocument returns the page range of an n-page document.
func WholeDocument(n int) reference.PageRange {
	return reference.PageRange{Range: "1--" + strconv.Itoa(n), Count: n}
}
