package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/bibparse/internal/author"
	"github.com/matsen/bibparse/internal/bibtex"
	_ "modernc.org/sqlite"
)

// ErrEmptyQuery is returned by Search and SearchField for a blank query.
var ErrEmptyQuery = errors.New("empty search query")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

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
		CREATE TABLE IF NOT EXISTS entries (
			cite_key TEXT PRIMARY KEY,
			entry_type TEXT NOT NULL,
			title TEXT,
			year TEXT,
			authors_json TEXT,
			entry_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(entry_type);

		-- Full-text search over converted (Unicode) values
		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			cite_key,
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
	entries, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clearing entries table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM entries_fts"); err != nil {
		return 0, fmt.Errorf("clearing entries_fts table: %w", err)
	}

	entriesStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO entries (cite_key, entry_type, title, year, authors_json, entry_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing entries insert: %w", err)
	}
	defer entriesStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO entries_fts (cite_key, title, authors_text, year)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, e := range entries {
		authors := entryAuthors(e)
		authorsJSON, err := json.Marshal(authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", e.Key, err)
		}
		entryJSON, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("marshaling entry %s: %w", e.Key, err)
		}

		title := e.Get("title")
		year := e.Raw("year")
		if _, err := entriesStmt.Exec(e.Key, e.Type, title, year, string(authorsJSON), string(entryJSON)); err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", e.Key, err)
		}
		if _, err := ftsStmt.Exec(e.Key, title, strings.Join(authors, ", "), year); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(entries), nil
}

// entryAuthors returns the normalized author names of an entry. Entries
// decoded from hand-written JSON may lack the split list.
func entryAuthors(e *bibtex.Entry) []string {
	f, ok := e.Field("author")
	if !ok {
		return nil
	}
	if f.Authors != nil {
		return f.Authors
	}
	return author.Split(f.Value)
}

// GetByKey retrieves an entry by its citation key. Returns nil if not found.
func (d *DB) GetByKey(key string) (*bibtex.Entry, error) {
	row := d.db.QueryRow(`SELECT entry_json FROM entries WHERE cite_key = ?`, key)
	return scanEntry(row)
}

// Search performs a full-text search and returns matching entries.
func (d *DB) Search(query string, limit int) ([]*bibtex.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	rows, err := d.db.Query(`
		SELECT entry_json
		FROM entries
		WHERE cite_key IN (SELECT cite_key FROM entries_fts WHERE entries_fts MATCH ?)
		ORDER BY cite_key
		LIMIT ?`, prepareFTSQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SearchField performs a search on a specific field.
func (d *DB) SearchField(field, value string, limit int) ([]*bibtex.Entry, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w for %s", ErrEmptyQuery, field)
	}

	var ftsQuery string

	switch field {
	case "author":
		ftsQuery = "authors_text:" + prepareAuthorQuery(value)
	case "title":
		ftsQuery = "title:" + prepareFTSQuery(value)
	case "year":
		ftsQuery = "year:" + prepareFTSQuery(value)
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	rows, err := d.db.Query(`
		SELECT entry_json
		FROM entries
		WHERE cite_key IN (SELECT cite_key FROM entries_fts WHERE entries_fts MATCH ?)
		ORDER BY cite_key
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListAll returns all entries ordered by key, optionally limited.
func (d *DB) ListAll(limit int) ([]*bibtex.Entry, error) {
	query := `SELECT entry_json FROM entries ORDER BY cite_key`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByType returns all entries of one entry type ordered by key.
func (d *DB) ListByType(entryType string) ([]*bibtex.Entry, error) {
	rows, err := d.db.Query(`SELECT entry_json FROM entries WHERE entry_type = ? ORDER BY cite_key`,
		strings.ToLower(entryType))
	if err != nil {
		return nil, fmt.Errorf("listing %s entries: %w", entryType, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the total number of entries.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*bibtex.Entry, error) {
	var data string
	if err := s.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var e bibtex.Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]*bibtex.Entry, error) {
	var entries []*bibtex.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if e != nil {
			entries = append(entries, e)
		}
	}
	return entries, rows.Err()
}

// prepareFTSQuery quotes a query for FTS5 if it contains special characters.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching,
// so "Tim" matches "Timothy".
func prepareAuthorQuery(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}

	terms := make([]string, len(parts))
	for i, part := range parts {
		terms[i] = "\"" + strings.ReplaceAll(part, "\"", "\"\"") + "\"*"
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}
