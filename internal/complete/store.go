// Package complete persists the symbol word list harvested from a tag
// index, serving prefix completion without re-reading the index. The
// list is derived state: a rebuild clears it and the next query reloads
// it.
package complete

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed symbol word list.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the store at path. ":memory:" works for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening completion store: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS completions (
		symbol TEXT PRIMARY KEY
	) WITHOUT ROWID`)
	if err != nil {
		return fmt.Errorf("creating completions table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load inserts symbols into the word list, ignoring duplicates.
func (s *Store) Load(symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting completion load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO completions (symbol) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("preparing completion insert: %w", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		if sym == "" {
			continue
		}
		if _, err := stmt.Exec(sym); err != nil {
			return fmt.Errorf("inserting %q: %w", sym, err)
		}
	}

	return tx.Commit()
}

// likeEscaper neutralizes LIKE wildcards so a prefix containing % or _
// matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Complete returns up to limit symbols starting with prefix,
// case-insensitively, in sorted order.
func (s *Store) Complete(prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT symbol FROM completions
		 WHERE lower(symbol) LIKE lower(?) || '%' ESCAPE '\'
		 ORDER BY symbol LIMIT ?`,
		likeEscaper.Replace(prefix), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying completions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scanning completion: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// Count returns the number of stored symbols.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting completions: %w", err)
	}
	return n, nil
}

// Clear empties the word list. The rebuild orchestrator calls this
// after regenerating an index.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM completions`); err != nil {
		return fmt.Errorf("clearing completions: %w", err)
	}
	return nil
}
