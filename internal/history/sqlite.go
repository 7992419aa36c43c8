package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	tool       TEXT NOT NULL,
	action     TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_history_created_at ON run_history (created_at);
`

// SQLiteRepository persists the run history in a SQLite database file.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and returns
// a repository bound to it.
func Open(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create history directory for %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history database %s", path)
	}

	return &SQLiteRepository{db: db}, nil
}

// Bootstrap creates the schema when missing.
func (r *SQLiteRepository) Bootstrap(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create history schema")
	}
	return nil
}

// Append stores a record and returns its identifier.
func (r *SQLiteRepository) Append(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO run_history (tool, action, detail, outcome, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Tool, rec.Action, rec.Detail, rec.Outcome, rec.CreatedAt,
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to append history record")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read inserted record id")
	}
	return id, nil
}

// Recent returns up to limit records, newest first.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tool, action, detail, outcome, created_at
		 FROM run_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query history")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Action, &rec.Detail, &rec.Outcome, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan history record")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Prune removes everything but the newest keep records.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM run_history WHERE id NOT IN (
			SELECT id FROM run_history ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return errors.Wrap(err, "failed to prune history")
	}
	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

var _ Repository = (*SQLiteRepository)(nil)
