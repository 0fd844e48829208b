package export

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// SSRNIDs maps SSRN abstract ids found in note/url fields to citation keys
	SSRNIDs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys:    make(map[string]bool),
		SSRNIDs: make(map[string]string),
	}
}

var (
	// entryStartRegex matches the entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\s*\{\s*([^,\s]+)\s*,`)
	// ssrnFieldRegex matches an SSRN link inside a note, url or howpublished field.
	ssrnFieldRegex = regexp.MustCompile(`(?i)^\s*(?:note|url|howpublished)\s*=.*ssrn\.com/(?:abstract=|sol3/papers\.cfm\?abstract_id=)(\d+)`)
)

// HasEntry returns true if the entry already exists. The SSRN id is the
// primary match; the citation key is the fallback.
func (idx *BibTeXIndex) HasEntry(key, ssrnID string) bool {
	if ssrnID != "" {
		if _, exists := idx.SSRNIDs[ssrnID]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// ParseBibTeXFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("opening bib file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := ssrnFieldRegex.FindStringSubmatch(line); len(matches) > 1 && currentKey != "" {
			idx.SSRNIDs[matches[1]] = currentKey
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bib file: %w", err)
	}
	return idx, nil
}

// AppendToBibFile appends BibTeX content to a file.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}
