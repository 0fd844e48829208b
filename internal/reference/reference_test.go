package reference

import (
	"testing"
	"time"
)

func TestParseAuthor(t *testing.T) {
	tests := []struct {
		raw       string
		wantFirst string
		wantLast  string
	}{
		{"Fuster, Andreas", "Andreas", "Fuster"},
		{"Vickery, James I.", "James I.", "Vickery"},
		{"  Vickery,   James  I. ", "James I.", "Vickery"},
		{"Andreas Fuster", "Andreas", "Fuster"},
		{"Plato", "", "Plato"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseAuthor(tt.raw)
			if got.First != tt.wantFirst || got.Last != tt.wantLast {
				t.Errorf("ParseAuthor(%q) = {%q, %q}, want {%q, %q}",
					tt.raw, got.First, got.Last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestAuthorNames(t *testing.T) {
	a := Author{First: "James I.", Last: "Vickery"}
	if got := a.BibTeXName(); got != "Vickery, James I." {
		t.Errorf("BibTeXName() = %q", got)
	}
	if got := a.FullName(); got != "James I. Vickery" {
		t.Errorf("FullName() = %q", got)
	}

	solo := Author{Last: "Plato"}
	if got := solo.BibTeXName(); got != "Plato" {
		t.Errorf("BibTeXName() without first name = %q", got)
	}
}

func TestMonthToken(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "jan"},
		{time.June, "jun"},
		{time.December, "dec"},
		{0, ""},
	}
	for _, tt := range tests {
		if got := MonthToken(tt.month); got != tt.want {
			t.Errorf("MonthToken(%d) = %q, want %q", tt.month, got, tt.want)
		}
	}
}

func TestCitation_DateDerivedFields(t *testing.T) {
	c := Citation{Published: time.Date(2018, time.June, 15, 0, 0, 0, 0, time.UTC)}
	if got := c.Month(); got != "jun" {
		t.Errorf("Month() = %q, want jun", got)
	}
	if got := c.Year(); got != "2018" {
		t.Errorf("Year() = %q, want 2018", got)
	}
}

func TestCitation_Note(t *testing.T) {
	c := Citation{SSRNID: "3197365"}
	if got := c.Note(); got != `\url{https://ssrn.com/abstract=3197365}` {
		t.Errorf("Note() = %q", got)
	}
	if got := (Citation{}).Note(); got != "" {
		t.Errorf("Note() without id = %q, want empty", got)
	}
}

func TestCitation_Fields(t *testing.T) {
	c := Citation{
		Key:    "FusterVickery2018",
		SSRNID: "3197365",
		Title:  "Regulation and Risk Shuffling in Bank Securities Portfolios",
		Authors: []Author{
			{First: "Andreas", Last: "Fuster"},
			{First: "James I.", Last: "Vickery"},
		},
		Pages:     PageRange{Range: "1--44", Count: 44},
		Journal:   "SSRN Electronic Journal",
		Publisher: "Elsevier BV",
		Published: time.Date(2018, time.June, 15, 0, 0, 0, 0, time.UTC),
	}

	fields := c.Fields()
	wantOrder := []string{"bib_entry", "authors", "title", "pages", "journal", "publisher", "note", "month", "year", "ssrn_no", "date_str", "pagescount"}
	if len(fields) != len(wantOrder) {
		t.Fatalf("Fields() returned %d fields, want %d", len(fields), len(wantOrder))
	}
	for i, name := range wantOrder {
		if fields[i].Name != name {
			t.Errorf("Fields()[%d].Name = %q, want %q", i, fields[i].Name, name)
		}
	}

	if fields[1].Value != "Fuster, Andreas and Vickery, James I." {
		t.Errorf("authors = %q", fields[1].Value)
	}
	if fields[11].Value != "44" {
		t.Errorf("pagescount = %q, want 44", fields[11].Value)
	}
	for _, f := range fields {
		wantNumeric := f.Name == "year" || f.Name == "pagescount"
		if f.Numeric != wantNumeric {
			t.Errorf("%s Numeric = %v, want %v", f.Name, f.Numeric, wantNumeric)
		}
	}
}

func TestCoAuthorList_ByID(t *testing.T) {
	m := CoAuthorList{
		{ID: 1093471, Name: "Andreas Fuster"},
		{ID: 497725, Name: "James I. Vickery"},
		{ID: 1093471, Name: "A. Fuster"},
	}.ByID()
	if len(m) != 2 {
		t.Fatalf("ByID() has %d entries, want 2", len(m))
	}
	if m[1093471] != "Andreas Fuster" {
		t.Errorf("first name seen should win, got %q", m[1093471])
	}
}
