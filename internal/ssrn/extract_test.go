package ssrn

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/blucap/ssrnbib/internal/export"
	"github.com/blucap/ssrnbib/internal/reference"
)

const fixtureURL = "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=3197365"

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

func TestExtract_Fixture(t *testing.T) {
	c, err := NewExtractor().ExtractHTML(loadFixture(t, "abstract_3197365.html"), fixtureURL)
	if err != nil {
		t.Fatalf("ExtractHTML() error = %v", err)
	}

	if c.Key != "FusterVickery2018" {
		t.Errorf("Key = %q, want FusterVickery2018", c.Key)
	}
	if c.SSRNID != "3197365" {
		t.Errorf("SSRNID = %q, want 3197365", c.SSRNID)
	}
	if c.Title != "Regulation and Risk Shuffling in Bank Securities Portfolios" {
		t.Errorf("Title = %q", c.Title)
	}
	if got := c.AuthorList(); got != "Fuster, Andreas and Vickery, James I." {
		t.Errorf("AuthorList() = %q", got)
	}
	if c.Pages.Range != "1--44" || c.Pages.Count != 44 {
		t.Errorf("Pages = %+v, want {1--44 44}", c.Pages)
	}
	if c.Month() != "jun" || c.Year() != "2018" {
		t.Errorf("Month/Year = %s/%s, want jun/2018", c.Month(), c.Year())
	}
	if c.DateString != "2018/06/15" {
		t.Errorf("DateString = %q, want 2018/06/15", c.DateString)
	}
	if c.Journal != DefaultJournal || c.Publisher != DefaultPublisher {
		t.Errorf("venue = %q/%q, want defaults", c.Journal, c.Publisher)
	}

	want := reference.CoAuthorList{
		{ID: 1093471, Name: "Andreas Fuster"},
		{ID: 497725, Name: "James I. Vickery"},
	}
	if !reflect.DeepEqual(c.CoAuthors, want) {
		t.Errorf("CoAuthors = %+v, want %+v", c.CoAuthors, want)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	body := loadFixture(t, "abstract_3197365.html")
	e := NewExtractor()

	first, err := e.ExtractHTML(body, fixtureURL)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.ExtractHTML(body, fixtureURL)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("records differ:\n%+v\n%+v", first, second)
	}
	if export.ToBibTeX(first) != export.ToBibTeX(second) {
		t.Error("formatted records differ between runs")
	}
}

func TestExtract_CoAuthorDeduplication(t *testing.T) {
	page := `<html><body>
<a href="/sol3/cf_dev/AbsByAuth.cfm?per_id=42" title="View other papers by this author">Jane Doe</a>
<a href="/sol3/cf_dev/AbsByAuth.cfm?PER_ID=42" title="View other papers by this author">J. Doe</a>
<a href="/sol3/cf_dev/AbsByAuth.cfm?per_id=43" title="View other papers by this author">See all articles by John Roe</a>
<a href="/sol3/cf_dev/AbsByAuth.cfm?per_id=44" title="Something else">Not An Author</a>
<a href="/no-id-here" title="View other papers by this author">Missing Id</a>
</body></html>`

	c, err := NewExtractor().ExtractHTML([]byte(page), fixtureURL)
	if err != nil {
		t.Fatal(err)
	}

	want := reference.CoAuthorList{{ID: 42, Name: "Jane Doe"}}
	if !reflect.DeepEqual(c.CoAuthors, want) {
		t.Errorf("CoAuthors = %+v, want %+v", c.CoAuthors, want)
	}
	if m := c.CoAuthors.ByID(); len(m) != 1 {
		t.Errorf("co-author map has %d entries, want 1", len(m))
	}
}

func TestExtract_DateFallbacks(t *testing.T) {
	tests := []struct {
		name string
		meta string
		want time.Time
	}{
		{
			name: "publication date preferred",
			meta: `<meta name="citation_online_date" content="2019/01/02"><meta name="citation_publication_date" content="2018/06/15">`,
			want: time.Date(2018, time.June, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "bad publication date falls back to online date",
			meta: `<meta name="citation_online_date" content="2019/01/02"><meta name="citation_publication_date" content="forthcoming">`,
			want: time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "publication tag before online tag",
			meta: `<meta name="citation_publication_date" content="n/a"><meta name="citation_online_date" content="2019/01/02">`,
			want: time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "both unparsable gives sentinel",
			meta: `<meta name="citation_online_date" content="??"><meta name="citation_publication_date" content="??">`,
			want: SentinelDate,
		},
		{
			name: "no date tags gives sentinel",
			meta: ``,
			want: SentinelDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := "<html><head>" + tt.meta + `<meta name="citation_author" content="Doe, Jane"></head><body></body></html>`
			c, err := NewExtractor().ExtractHTML([]byte(page), fixtureURL)
			if err != nil {
				t.Fatal(err)
			}
			if !c.Published.Equal(tt.want) {
				t.Errorf("Published = %v, want %v", c.Published, tt.want)
			}
			if want := "Doe" + c.Year(); c.Key != want {
				t.Errorf("Key = %q, want %q", c.Key, want)
			}
		})
	}
}

func TestExtract_ThreeAuthorsEtAl(t *testing.T) {
	page := `<html><head>
<meta name="citation_author" content="Alpha, Ann">
<meta name="citation_author" content="">
<meta name="citation_author" content="Beta, Bob">
<meta name="citation_author" content="Gamma, Gail">
<meta name="citation_publication_date" content="2021-03-04">
</head><body></body></html>`

	c, err := NewExtractor().ExtractHTML([]byte(page), fixtureURL)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Authors) != 3 {
		t.Fatalf("got %d authors, want 3 (empty tags skipped)", len(c.Authors))
	}
	if c.Key != "AlphaEtAl2021" {
		t.Errorf("Key = %q, want AlphaEtAl2021", c.Key)
	}
}

func TestExtract_IDFromMetaWhenURLHasNone(t *testing.T) {
	page := `<html><head><meta name="citation_abstract_html_url" content="https://papers.ssrn.com/sol3/papers.cfm?abstract_id=3846655"></head></html>`

	c, err := NewExtractor().ExtractHTML([]byte(page), "https://papers.ssrn.com/sol3/Delivery.cfm")
	if err != nil {
		t.Fatal(err)
	}
	if c.SSRNID != "3846655" {
		t.Errorf("SSRNID = %q, want 3846655", c.SSRNID)
	}
}

func TestExtract_CustomVenue(t *testing.T) {
	e := NewExtractor(WithVenue("Working Paper Series", ""))
	c, err := e.ExtractHTML([]byte("<html></html>"), fixtureURL)
	if err != nil {
		t.Fatal(err)
	}
	if c.Journal != "Working Paper Series" {
		t.Errorf("Journal = %q", c.Journal)
	}
	if c.Publisher != DefaultPublisher {
		t.Errorf("Publisher = %q, want default", c.Publisher)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2018/06/15", time.Date(2018, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"2018-06-15", time.Date(2018, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"June 15, 2018", time.Date(2018, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"15 Jun 2018", time.Date(2018, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"2018", time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			if ok != tt.wantOK || !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
