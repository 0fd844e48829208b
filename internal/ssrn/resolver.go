package ssrn

import (
	"context"
	"strconv"

	"github.com/blucap/ssrnbib/internal/reference"
)

// Resolver runs the fetch → extract pipeline for one target.
type Resolver struct {
	fetcher   Fetcher
	extractor *Extractor
}

// NewResolver creates a Resolver. A nil extractor uses NewExtractor().
func NewResolver(f Fetcher, e *Extractor) *Resolver {
	if e == nil {
		e = NewExtractor()
	}
	return &Resolver{fetcher: f, extractor: e}
}

// Resolve fetches the target page and returns its citation record. Only
// fetch failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, t Target) (reference.Citation, error) {
	body, err := r.fetcher.Fetch(ctx, t.URL)
	if err != nil {
		return reference.Citation{}, err
	}

	c, err := r.extractor.ExtractHTML(body, t.URL)
	if err != nil {
		return reference.Citation{}, err
	}
	if c.SSRNID == "" && t.ID > 0 {
		c.SSRNID = strconv.Itoa(t.ID)
	}
	return c, nil
}
