package ssrn

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// AbstractURLTemplate builds the canonical abstract page URL from a numeric id.
const AbstractURLTemplate = "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=%d"

// abstractIDPattern matches abstract_id=NNN as well as the short abstract=NNN form.
var abstractIDPattern = regexp.MustCompile(`(?i)abstract(?:_id)?=(\d+)`)

// Target is a resolved lookup argument.
type Target struct {
	ID  int    // 0 when the caller supplied a URL without a recognisable id
	URL string // Page to fetch
}

// AbstractURL returns the canonical SSRN abstract page URL for id.
func AbstractURL(id int) string {
	return fmt.Sprintf(AbstractURLTemplate, id)
}

// ParseTarget interprets a CLI argument as either a numeric SSRN id or a URL.
// Surrounding whitespace is ignored. Anything else is ErrInvalidInput.
func ParseTarget(arg string) (Target, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Target{}, ErrInvalidInput
	}

	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		u, err := url.Parse(arg)
		if err != nil || u.Host == "" {
			return Target{}, fmt.Errorf("%w: %q", ErrInvalidInput, arg)
		}
		t := Target{URL: arg}
		if id, ok := IDFromURL(arg); ok {
			t.ID = id
		}
		return t, nil
	}

	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidInput, arg)
	}
	return Target{ID: id, URL: AbstractURL(id)}, nil
}

// IDFromURL extracts the abstract id from an SSRN URL.
func IDFromURL(rawURL string) (int, bool) {
	m := abstractIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
