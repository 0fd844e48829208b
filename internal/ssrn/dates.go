package ssrn

import (
	"strings"
	"time"
)

// SentinelDate stands in for an online date that is missing or unparsable.
var SentinelDate = time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order. SSRN mostly uses 2006/01/02, but older
// pages carry ISO dates or spelled-out months.
var dateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"2006/01",
	"2006-01",
	"2006",
}

// parseDate parses a meta tag date in any of the known layouts.
func parseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveDates applies the fallback chain: publication date, then online
// date, then SentinelDate.
func resolveDates(onlineRaw, publicationRaw string) time.Time {
	online := SentinelDate
	if t, ok := parseDate(onlineRaw); ok {
		online = t
	}
	if t, ok := parseDate(publicationRaw); ok {
		return t
	}
	return online
}
