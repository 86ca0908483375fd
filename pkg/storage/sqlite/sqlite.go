// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // register the "sqlite3" database/sql driver

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/storage"
	"github.com/papercomputeco/parley/pkg/transcript"
)

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver opens the database at dbPath and creates the schema if needed.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	d := &Driver{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		prompt TEXT NOT NULL,
		reply TEXT NOT NULL,
		content_type TEXT NOT NULL,
		graph_type TEXT NOT NULL DEFAULT '',
		is_error BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exchanges_username_created ON exchanges(username, created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Put stores an exchange. Existing IDs are left untouched.
func (d *Driver) Put(ctx context.Context, ex *transcript.Exchange) (bool, error) {
	if ex == nil {
		return false, storage.ErrNilExchange
	}

	query := `INSERT OR IGNORE INTO exchanges
		(id, username, prompt, reply, content_type, graph_type, is_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		ex.ID, ex.Username, ex.Prompt, ex.Reply,
		string(ex.ContentType), ex.GraphType, ex.IsError, ex.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert exchange: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return n > 0, nil
}

// Get retrieves an exchange by ID.
func (d *Driver) Get(ctx context.Context, id string) (*transcript.Exchange, error) {
	query := `SELECT id, username, prompt, reply, content_type, graph_type, is_error, created_at
		FROM exchanges WHERE id = ?`

	ex, err := scanExchange(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan exchange: %w", err)
	}

	return ex, nil
}

// List returns exchanges matching q, most recent first.
func (d *Driver) List(ctx context.Context, q storage.Query) ([]*transcript.Exchange, error) {
	query := `SELECT id, username, prompt, reply, content_type, graph_type, is_error, created_at
		FROM exchanges`
	var args []any

	if q.Username != "" {
		query += ` WHERE username = ?`
		args = append(args, q.Username)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, q.EffectiveLimit())

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var result []*transcript.Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		result = append(result, ex)
	}

	return result, rows.Err()
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(row scanner) (*transcript.Exchange, error) {
	var ex transcript.Exchange
	var contentType string

	err := row.Scan(
		&ex.ID, &ex.Username, &ex.Prompt, &ex.Reply,
		&contentType, &ex.GraphType, &ex.IsError, &ex.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ex.ContentType = chat.ContentType(contentType)
	return &ex, nil
}
