// Package store keeps per-author revision datasets in a SQLite file. One row
// per author holds the ordered feature rows of past revisions, the current
// revision's features, and the target label.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/davbzh/lstm-wikipedia/learning"
)

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	author   TEXT PRIMARY KEY,
	history  TEXT NOT NULL,
	features TEXT NOT NULL,
	target   REAL NOT NULL
);`

// DB wraps a SQLite dataset file.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the dataset at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error { return db.conn.Close() }

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Put inserts or replaces one author's entry.
func (db *DB) Put(it learning.Item) error {
	history, err := json.Marshal(it.History)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	features, err := json.Marshal(it.Features)
	if err != nil {
		return fmt.Errorf("encoding features: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO authors (author, history, features, target) VALUES (?, ?, ?, ?)`,
		it.Author, string(history), string(features), it.Target,
	)
	if err != nil {
		return fmt.Errorf("storing author %s: %w", it.Author, err)
	}
	return nil
}

// PutAll stores every item in one transaction.
func (db *DB) PutAll(items []learning.Item) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	for _, it := range items {
		history, err := json.Marshal(it.History)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding history: %w", err)
		}
		features, err := json.Marshal(it.Features)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding features: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO authors (author, history, features, target) VALUES (?, ?, ?, ?)`,
			it.Author, string(history), string(features), it.Target,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("storing author %s: %w", it.Author, err)
		}
	}
	return tx.Commit()
}

// All returns every author entry in the dataset.
func (db *DB) All() ([]learning.Item, error) {
	rows, err := db.conn.Query(`SELECT author, history, features, target FROM authors`)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	var items []learning.Item
	for rows.Next() {
		var it learning.Item
		var history, features string
		if err := rows.Scan(&it.Author, &history, &features, &it.Target); err != nil {
			return nil, fmt.Errorf("scanning author row: %w", err)
		}
		if err := json.Unmarshal([]byte(history), &it.History); err != nil {
			return nil, fmt.Errorf("decoding history for %s: %w", it.Author, err)
		}
		if err := json.Unmarshal([]byte(features), &it.Features); err != nil {
			return nil, fmt.Errorf("decoding features for %s: %w", it.Author, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Count returns the number of stored authors.
func (db *DB) Count() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM authors`).Scan(&n)
	return n, err
}
