package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

// schemaStatements is valid for both SQLite and PostgreSQL
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS corpora(
    name TEXT PRIMARY KEY,
    config TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS segments(
    id TEXT PRIMARY KEY,
    corpus_name TEXT NOT NULL,
    dir_name TEXT NOT NULL,
    doc_count INTEGER NOT NULL,
    created_at BIGINT NOT NULL DEFAULT 0,
    FOREIGN KEY (corpus_name) REFERENCES corpora(name) ON DELETE CASCADE
)`,
}

// SQLiteDB is a SQLite catalog file opened through database/sql
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(ctx context.Context, dbPath string) (*SQLiteDB, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	logrus.Debugf("Opened SQLite database at '%s'", dbPath)
	return &SQLiteDB{db: db}, nil
}

// Exec executes a SQL command
func (s *SQLiteDB) Exec(ctx context.Context, sql string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, sql, args...)
}

// Query executes a SQL query
func (s *SQLiteDB) Query(ctx context.Context, sql string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, sql, args...)
}

// QueryRow executes a SQL query that returns a single row
func (s *SQLiteDB) QueryRow(ctx context.Context, sql string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, sql, args...)
}

// Close closes the database connection
func (s *SQLiteDB) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// ParseDatabaseURL parses a database URL and returns the database type and connection string
func ParseDatabaseURL(dbURL string) (string, string, error) {
	if strings.HasPrefix(dbURL, "sqlite:") {
		path := strings.TrimPrefix(strings.TrimPrefix(dbURL, "sqlite:"), "//")
		if path == "" {
			return "", "", fmt.Errorf("sqlite database URL is missing a path: %s", dbURL)
		}
		return "sqlite", path, nil
	} else if strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://") {
		return "postgres", dbURL, nil
	}

	return "", "", fmt.Errorf("unsupported database URL format: %s", dbURL)
}
