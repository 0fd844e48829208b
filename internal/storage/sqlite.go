package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/blucap/ssrnbib/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectCitationFields contains the standard field list for SELECT queries.
const selectCitationFields = `key, ssrn_id, url, title, journal, publisher,
	pages, page_count, published, date_str,
	authors_json, coauthors_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS citations (
			key TEXT PRIMARY KEY,
			ssrn_id TEXT,
			url TEXT,
			title TEXT NOT NULL,
			journal TEXT,
			publisher TEXT,
			pages TEXT,
			page_count INTEGER,
			published TEXT NOT NULL,
			date_str TEXT,
			authors_json TEXT NOT NULL,
			coauthors_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_citations_ssrn ON citations(ssrn_id) WHERE ssrn_id IS NOT NULL AND ssrn_id != '';

		-- Standalone full-text table, rebuilt with the main table
		CREATE VIRTUAL TABLE IF NOT EXISTS citations_fts USING fts5(
			key,
			title,
			authors_text,
			year
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	cites, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM citations"); err != nil {
		return 0, fmt.Errorf("clearing citations table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM citations_fts"); err != nil {
		return 0, fmt.Errorf("clearing citations_fts table: %w", err)
	}

	rowStmt, err := tx.Prepare(`
		INSERT INTO citations (
			key, ssrn_id, url, title, journal, publisher,
			pages, page_count, published, date_str,
			authors_json, coauthors_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing citations insert: %w", err)
	}
	defer rowStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO citations_fts (key, title, authors_text, year)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, c := range cites {
		authorsJSON, err := json.Marshal(c.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", c.Key, err)
		}
		var coauthorsJSON []byte
		if len(c.CoAuthors) > 0 {
			coauthorsJSON, err = json.Marshal(c.CoAuthors)
			if err != nil {
				return 0, fmt.Errorf("marshaling coauthors for %s: %w", c.Key, err)
			}
		}

		_, err = rowStmt.Exec(
			c.Key, nullableStringValue(c.SSRNID), c.URL, c.Title, c.Journal, c.Publisher,
			nullableStringValue(c.Pages.Range), c.Pages.Count,
			c.Published.UTC().Format(time.RFC3339), nullableStringValue(c.DateString),
			string(authorsJSON), nullableString(coauthorsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting citation %s: %w", c.Key, err)
		}

		if _, err := ftsStmt.Exec(c.Key, c.Title, formatAuthorsText(c.Authors), c.Year()); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", c.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(cites), nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []reference.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.FullName())
	}
	return strings.Join(names, ", ")
}

// GetByKey retrieves a citation by its bib-key. It returns nil, nil when no
// record matches.
func (d *DB) GetByKey(key string) (*reference.Citation, error) {
	row := d.db.QueryRow(`SELECT `+selectCitationFields+` FROM citations WHERE key = ?`, key)
	return scanCitation(row)
}

// GetBySSRNID retrieves a citation by SSRN abstract id.
func (d *DB) GetBySSRNID(id string) (*reference.Citation, error) {
	row := d.db.QueryRow(`SELECT `+selectCitationFields+` FROM citations WHERE ssrn_id = ?`, id)
	return scanCitation(row)
}

// Search performs a full-text search over keys, titles, authors and years.
func (d *DB) Search(query string, limit int) ([]reference.Citation, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectCitationFields+`
		FROM citations
		WHERE key IN (SELECT key FROM citations_fts WHERE citations_fts MATCH ?)
		ORDER BY published DESC, key
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanCitations(rows)
}

// ListAll returns all citations, newest first, optionally limited.
func (d *DB) ListAll(limit int) ([]reference.Citation, error) {
	query := `SELECT ` + selectCitationFields + ` FROM citations ORDER BY published DESC, key`
	var args []any

	if limit > 0 {
		query += " LIMIT ?"
		args = []any{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing citations: %w", err)
	}
	defer rows.Close()

	return scanCitations(rows)
}

// Count returns the total number of citations.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM citations").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanCitation(s scanner) (*reference.Citation, error) {
	var c reference.Citation
	var ssrnID, pages, dateStr, coauthorsJSON sql.NullString
	var pageCount sql.NullInt64
	var published, authorsJSON string

	err := s.Scan(
		&c.Key, &ssrnID, &c.URL, &c.Title, &c.Journal, &c.Publisher,
		&pages, &pageCount, &published, &dateStr,
		&authorsJSON, &coauthorsJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	c.SSRNID = ssrnID.String
	c.Pages.Range = pages.String
	c.Pages.Count = int(pageCount.Int64)
	c.DateString = dateStr.String

	c.Published, err = time.Parse(time.RFC3339, published)
	if err != nil {
		return nil, fmt.Errorf("parsing published date for %s: %w", c.Key, err)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &c.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", c.Key, err)
	}
	if coauthorsJSON.Valid && coauthorsJSON.String != "" {
		if err := json.Unmarshal([]byte(coauthorsJSON.String), &c.CoAuthors); err != nil {
			return nil, fmt.Errorf("parsing coauthors JSON for %s: %w", c.Key, err)
		}
	}

	return &c, nil
}

func scanCitations(rows *sql.Rows) ([]reference.Citation, error) {
	var cites []reference.Citation
	for rows.Next() {
		c, err := scanCitation(rows)
		if err != nil {
			return nil, err
		}
		if c != nil {
			cites = append(cites, *c)
		}
	}
	return cites, rows.Err()
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery turns free text into an FTS5 query. Each word is quoted as
// a string so punctuation in names and titles ("O'Brien", "U.S.", "R&D") is
// tokenized instead of parsed as query syntax. Words are ANDed.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, word := range strings.Fields(query) {
		if !strings.ContainsFunc(word, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(word, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}
