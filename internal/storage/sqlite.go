package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend keeps every document as a row of the documents table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens the database at dbPath and creates the documents
// table if needed.
func NewSQLiteBackend(ctx context.Context, dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer keeps sqlite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return b, nil
}

func (b *SQLiteBackend) createTables(ctx context.Context) error {
	createDocumentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := b.db.ExecContext(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	return nil
}

func (b *SQLiteBackend) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := b.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM documents WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", name, err)
	}

	return n > 0, nil
}

func (b *SQLiteBackend) Read(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return []byte(body), nil
}

func (b *SQLiteBackend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
	INSERT INTO documents (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
