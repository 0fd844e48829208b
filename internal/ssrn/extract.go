package ssrn

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/blucap/ssrnbib/internal/export"
	"github.com/blucap/ssrnbib/internal/reference"
)

// Venue defaults for SSRN working papers.
const (
	DefaultJournal   = "SSRN Electronic Journal"
	DefaultPublisher = "Elsevier BV"
)

// Meta tag names read from the abstract page.
const (
	metaTitle           = "citation_title"
	metaAuthor          = "citation_author"
	metaOnlineDate      = "citation_online_date"
	metaPublicationDate = "citation_publication_date"
	metaAbstractURL     = "citation_abstract_html_url"
)

const (
	// authorLinkTitle marks links to an author's SSRN profile.
	authorLinkTitle = "View other papers by this author"
	// seeAllPrefix marks the profile link that lists all articles, not an author.
	seeAllPrefix = "See all articles"
)

var authorIDPattern = regexp.MustCompile(`(?i)per_id=(\d+)`)

// Extractor turns an SSRN abstract page into a citation record. It holds no
// per-page state, so one Extractor may be reused for any number of pages.
type Extractor struct {
	Journal      string
	Publisher    string
	PageMatchers []PageMatcher
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithVenue overrides the journal and publisher written into every record.
// Empty values keep the defaults.
func WithVenue(journal, publisher string) ExtractorOption {
	return func(e *Extractor) {
		if journal != "" {
			e.Journal = journal
		}
		if publisher != "" {
			e.Publisher = publisher
		}
	}
}

// WithPageMatchers replaces the page-count matchers.
func WithPageMatchers(m []PageMatcher) ExtractorOption {
	return func(e *Extractor) {
		e.PageMatchers = m
	}
}

// NewExtractor creates an Extractor with SSRN defaults.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		Journal:      DefaultJournal,
		Publisher:    DefaultPublisher,
		PageMatchers: DefaultPageMatchers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractHTML parses body and extracts the citation record.
func (e *Extractor) ExtractHTML(body []byte, pageURL string) (reference.Citation, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return reference.Citation{}, fmt.Errorf("parse html: %w", err)
	}
	return e.Extract(doc, pageURL), nil
}

// Extract reads the citation meta tags, the page count and the author links
// from doc. Missing or malformed data falls back to defaults; it never fails.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) reference.Citation {
	c := reference.Citation{
		URL:       pageURL,
		Journal:   e.Journal,
		Publisher: e.Publisher,
	}

	var onlineRaw, abstractURL string
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		content = collapseSpace(content)

		switch strings.ToLower(name) {
		case metaTitle:
			c.Title = content
		case metaOnlineDate:
			onlineRaw = content
		case metaPublicationDate:
			c.DateString = content
		case metaAuthor:
			if content != "" {
				c.Authors = append(c.Authors, reference.ParseAuthor(content))
			}
		case metaAbstractURL:
			abstractURL = content
		}
	})

	c.Published = resolveDates(onlineRaw, c.DateString)

	if id, ok := IDFromURL(pageURL); ok {
		c.SSRNID = strconv.Itoa(id)
	} else if id, ok := IDFromURL(abstractURL); ok {
		c.SSRNID = strconv.Itoa(id)
	}

	if pr, _, ok := MatchPages(pageText(doc), e.PageMatchers); ok {
		c.Pages = pr
	}

	c.CoAuthors = findCoAuthors(doc)
	c.Key = export.BibKey(c.Authors, c.Published.Year())

	return c
}

// findCoAuthors collects author profile links in page order, one entry per
// SSRN author id.
func findCoAuthors(doc *goquery.Document) reference.CoAuthorList {
	var out reference.CoAuthorList
	seen := make(map[int]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if title, _ := s.Attr("title"); strings.TrimSpace(title) != authorLinkTitle {
			return
		}
		href, _ := s.Attr("href")
		m := authorIDPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		name := collapseSpace(s.Text())
		if strings.HasPrefix(name, seeAllPrefix) {
			return
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, reference.CoAuthor{ID: id, Name: name})
	})

	return out
}

// pageText returns the visible text of the document with runs of whitespace
// collapsed, so patterns spanning element boundaries still match.
func pageText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return collapseSpace(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
