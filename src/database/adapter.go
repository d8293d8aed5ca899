package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DBAdapter is the corpus catalog: the corpora and segments tables, kept in
// either SQLite or PostgreSQL. Statements always use '?' placeholders.
type DBAdapter interface {
	Exec(ctx context.Context, sql string, args ...interface{}) error
	Query(ctx context.Context, sql string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) Row
	Close()
}

// Rows iterates the result of a catalog query
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close()
	Err() error
}

// Row is a single catalog row, e.g. a corpus config lookup
type Row interface {
	Scan(dest ...interface{}) error
}

// Rebind rewrites '?' placeholders into the '$1, $2, ...' form postgres expects.
// Question marks inside single-quoted literals are left alone.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// PostgreSQLAdapter keeps the catalog in PostgreSQL. Statements are rebound
// to '$n' placeholders before they reach the pool.
type PostgreSQLAdapter struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLAdapter wraps an open pool
func NewPostgreSQLAdapter(pool *pgxpool.Pool) *PostgreSQLAdapter {
	return &PostgreSQLAdapter{pool: pool}
}

func (p *PostgreSQLAdapter) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := p.pool.Exec(ctx, Rebind(sql), args...)
	return err
}

func (p *PostgreSQLAdapter) Query(ctx context.Context, sql string, args ...interface{}) (Rows, error) {
	rows, err := p.pool.Query(ctx, Rebind(sql), args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (p *PostgreSQLAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) Row {
	return p.pool.QueryRow(ctx, Rebind(sql), args...)
}

func (p *PostgreSQLAdapter) Close() {
	p.pool.Close()
}

// SQLiteAdapter keeps the catalog in a local SQLite file
type SQLiteAdapter struct {
	db *SQLiteDB
}

// NewSQLiteAdapter wraps an open SQLite database
func NewSQLiteAdapter(db *SQLiteDB) *SQLiteAdapter {
	return &SQLiteAdapter{db: db}
}

func (s *SQLiteAdapter) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := s.db.Exec(ctx, sql, args...)
	return err
}

func (s *SQLiteAdapter) Query(ctx context.Context, sql string, args ...interface{}) (Rows, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (s *SQLiteAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) Row {
	return s.db.QueryRow(ctx, sql, args...)
}

func (s *SQLiteAdapter) Close() {
	s.db.Close()
}

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool {
	return r.rows.Next()
}

func (r *pgxRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

func (r *pgxRows) Close() {
	r.rows.Close()
}

func (r *pgxRows) Err() error {
	return r.rows.Err()
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

func (r *sqlRows) Close() {
	r.rows.Close()
}

func (r *sqlRows) Err() error {
	return r.rows.Err()
}

// InitSchema creates the corpora and segments tables if they don't exist
func InitSchema(ctx context.Context, db DBAdapter) error {
	for _, stmt := range schemaStatements {
		if err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}
	logrus.Debug("Catalog schema initialized successfully")
	return nil
}

// CreateDatabaseAdapter opens the catalog named by dbURL ("sqlite:<path>" or a
// postgres URL) and makes sure its schema exists
func CreateDatabaseAdapter(ctx context.Context, dbURL string) (DBAdapter, error) {
	dbType, connStr, err := ParseDatabaseURL(dbURL)
	if err != nil {
		return nil, err
	}

	var adapter DBAdapter
	switch dbType {
	case "sqlite":
		db, err := NewSQLiteDB(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite connection: %w", err)
		}
		adapter = NewSQLiteAdapter(db)

	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PostgreSQL URL: %w", err)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		adapter = NewPostgreSQLAdapter(pool)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	if err := InitSchema(ctx, adapter); err != nil {
		adapter.Close()
		return nil, err
	}

	return adapter, nil
}
