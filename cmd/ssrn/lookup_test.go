package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blucap/ssrnbib/internal/export"
	"github.com/blucap/ssrnbib/internal/reference"
	"github.com/blucap/ssrnbib/internal/retry"
	"github.com/blucap/ssrnbib/internal/ssrn"
)

func init() {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResolver() *ssrn.Resolver {
	noWait := retry.SleeperFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() })
	client := ssrn.NewClient(
		ssrn.WithRateLimit(0),
		ssrn.WithSleeper(noWait),
		ssrn.WithLogger(logger),
	)
	return ssrn.NewResolver(client, nil)
}

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	page, err := os.ReadFile(filepath.Join("..", "..", "internal", "ssrn", "testdata", "abstract_3197365.html"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("abstract_id") != "3197365" {
			http.NotFound(w, r)
			return
		}
		w.Write(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup_URL(t *testing.T) {
	srv := fixtureServer(t)

	c, err := lookup(context.Background(), testResolver(), srv.URL+"/sol3/papers.cfm?abstract_id=3197365")
	if err != nil {
		t.Fatalf("lookup() error = %v", err)
	}
	if c.Key != "FusterVickery2018" {
		t.Errorf("Key = %q, want FusterVickery2018", c.Key)
	}
	if c.SSRNID != "3197365" {
		t.Errorf("SSRNID = %q", c.SSRNID)
	}
	if c.Pages.Range != "1--44" {
		t.Errorf("Pages = %+v", c.Pages)
	}
}

func TestLookup_InvalidInput(t *testing.T) {
	tests := []string{"abc", "-5", "notes.txt", filepath.Join(t.TempDir(), "missing.pdf")}

	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			_, err := lookup(context.Background(), testResolver(), arg)
			if !errors.Is(err, ssrn.ErrInvalidInput) {
				t.Errorf("lookup(%q) error = %v, want ErrInvalidInput", arg, err)
			}
			if code := exitCodeFor(err); code != ExitInputError {
				t.Errorf("exitCodeFor() = %d, want %d", code, ExitInputError)
			}
		})
	}
}

func TestLookup_NotFoundIsNetworkError(t *testing.T) {
	srv := fixtureServer(t)

	_, err := lookup(context.Background(), testResolver(), srv.URL+"/sol3/papers.cfm?abstract_id=1")
	if err == nil {
		t.Fatal("lookup() error = nil, want failure")
	}
	if !ssrn.IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if code := exitCodeFor(err); code != ExitNetworkError {
		t.Errorf("exitCodeFor() = %d, want %d", code, ExitNetworkError)
	}
	if msg := lookupErrorMessage(err); !strings.Contains(msg, notFoundMessage) {
		t.Errorf("lookupErrorMessage() = %q, want the not-found hint", msg)
	}
}

func TestLookupErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{"invalid input", fmt.Errorf("%w: %q", ssrn.ErrInvalidInput, "abc"), invalidInputMessage},
		{"not found", &retry.ExhaustedError{Attempts: 5, Err: &ssrn.HTTPStatusError{StatusCode: 404}}, notFoundMessage},
		{"server error", &ssrn.HTTPStatusError{StatusCode: 503}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := lookupErrorMessage(tt.err)
			if !strings.HasPrefix(msg, tt.err.Error()) {
				t.Errorf("lookupErrorMessage() = %q, should start with the error", msg)
			}
			if tt.wantHint == "" {
				if strings.Contains(msg, "\n") {
					t.Errorf("lookupErrorMessage() = %q, want no hint", msg)
				}
				return
			}
			if !strings.HasSuffix(msg, "\n"+tt.wantHint) {
				t.Errorf("lookupErrorMessage() = %q, want hint %q", msg, tt.wantHint)
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", ssrn.ErrInvalidInput), ExitInputError},
		{fmt.Errorf("wrap: %w", ssrn.ErrNetworkError), ExitNetworkError},
		{&retry.ExhaustedError{Attempts: 5, Err: &ssrn.HTTPStatusError{StatusCode: 503}}, ExitNetworkError},
		{context.Canceled, ExitNetworkError},
		{errors.New("disk full"), ExitError},
	}
	for _, tt := range tests {
		if got := exitCodeFor(tt.err); got != tt.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func fusterVickery() reference.Citation {
	return reference.Citation{
		Key:    "FusterVickery2018",
		SSRNID: "3197365",
		URL:    "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=3197365",
		Title:  "Regulation and Risk Shuffling in Bank Securities Portfolios",
		Authors: []reference.Author{
			{First: "Andreas", Last: "Fuster"},
			{First: "James I.", Last: "Vickery"},
		},
		CoAuthors: []reference.CoAuthor{
			{ID: 1093471, Name: "Andreas Fuster"},
			{ID: 497725, Name: "James I. Vickery"},
		},
		Pages:     reference.PageRange{Range: "1--44", Count: 44},
		Journal:   "SSRN Electronic Journal",
		Publisher: "Elsevier BV",
		Published: time.Date(2018, time.June, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestAppendEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	c := fusterVickery()
	bib := export.ToBibTeX(c)

	appended, err := appendEntry(path, c, bib)
	if err != nil {
		t.Fatalf("appendEntry() error = %v", err)
	}
	if !appended {
		t.Error("first appendEntry() should write the entry")
	}

	appended, err = appendEntry(path, c, bib)
	if err != nil {
		t.Fatal(err)
	}
	if appended {
		t.Error("second appendEntry() should skip the duplicate")
	}

	// Same paper under another key is still a duplicate
	renamed := c
	renamed.Key = "Fuster2018"
	if appended, _ := appendEntry(path, renamed, export.ToBibTeX(renamed)); appended {
		t.Error("appendEntry() should match on the SSRN id")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "@article{"); n != 1 {
		t.Errorf("bib file has %d entries, want 1", n)
	}
}

func TestNewLookupResponse(t *testing.T) {
	c := fusterVickery()
	c.CoAuthors = append(c.CoAuthors, reference.CoAuthor{ID: 1093471, Name: "A. Fuster"})

	resp := newLookupResponse(c)
	if resp.BibTeX != export.ToBibTeX(c) {
		t.Errorf("BibTeX = %q", resp.BibTeX)
	}
	want := map[int]string{1093471: "Andreas Fuster", 497725: "James I. Vickery"}
	if len(resp.CoAuthorIDs) != len(want) {
		t.Fatalf("CoAuthorIDs = %v, want %v", resp.CoAuthorIDs, want)
	}
	for id, name := range want {
		if resp.CoAuthorIDs[id] != name {
			t.Errorf("CoAuthorIDs[%d] = %q, want %q", id, resp.CoAuthorIDs[id], name)
		}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"coauthor_ids":{"1093471":"Andreas Fuster","497725":"James I. Vickery"}`) {
		t.Errorf("JSON missing co-author ids: %s", data)
	}

	c.CoAuthors = nil
	if resp := newLookupResponse(c); resp.CoAuthorIDs != nil {
		t.Errorf("CoAuthorIDs = %v, want nil without profile links", resp.CoAuthorIDs)
	}
}

func TestPrintRecord(t *testing.T) {
	c := fusterVickery()
	var buf bytes.Buffer
	printRecord(&buf, c, export.ToBibTeX(c))
	out := buf.String()

	for _, want := range []string{
		c.Title,
		"Author's names:",
		"Andreas Fuster (1093471)",
		"James I. Vickery (497725)",
		"Bibtex:",
		"@article{FusterVickery2018,",
		"year = 2018\n}",
		c.URL,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Roster comes before the BibTeX block
	if strings.Index(out, "Andreas Fuster (1093471)") > strings.Index(out, "@article{") {
		t.Error("author roster should precede the BibTeX block")
	}
}

func TestPrintRecord_SingleAuthorWithoutLinks(t *testing.T) {
	c := fusterVickery()
	c.Authors = c.Authors[:1]
	c.CoAuthors = nil

	var buf bytes.Buffer
	printRecord(&buf, c, export.ToBibTeX(c))
	out := buf.String()

	if !strings.Contains(out, "Author's name:") || strings.Contains(out, "Author's names:") {
		t.Errorf("expected singular heading:\n%s", out)
	}
	if !strings.Contains(out, "Andreas Fuster\n") {
		t.Errorf("expected meta-tag author in roster:\n%s", out)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, false).Debug("hidden")
	newLogger(&buf, false).Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("default level should be warn, got %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, true).Debug("detail")
	if !strings.Contains(buf.String(), "detail") {
		t.Errorf("verbose logger should emit debug, got %q", buf.String())
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer title", 10, "a much ..."},
		{"Übergangsregelungen", 8, "Überg..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
