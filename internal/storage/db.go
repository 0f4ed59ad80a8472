package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite"

	"decorprice/internal"
)

// DB is the local SQLite snapshot of the decor catalog. It implements
// pricing.Fetcher so rankings can run without the REST API.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// each pooled connection would get its own empty database
		conn.SetMaxOpenConns(1)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS decors (
  id INTEGER PRIMARY KEY,
  category TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  available INTEGER NOT NULL DEFAULT 1,
  mid_price REAL NOT NULL DEFAULT 0,
  raw_json TEXT NOT NULL,
  source TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_decors_category ON decors(category);

CREATE TABLE IF NOT EXISTS sync_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  source TEXT NOT NULL,
  fetched INTEGER NOT NULL,
  stored INTEGER NOT NULL,
  skipped INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertDecors(ctx context.Context, rows []internal.DecorRow) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO decors (id, category, name, available, mid_price, raw_json, source, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  category=excluded.category,
  name=excluded.name,
  available=excluded.available,
  mid_price=excluded.mid_price,
  raw_json=excluded.raw_json,
  source=excluded.source,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Category, r.Name, r.Available, r.MidPrice, r.RawJSON, string(r.Source),
		); err != nil {
			return errors.Wrapf(err, "upsert decor %d", r.ID)
		}
	}

	return tx.Commit()
}

// FetchRawByID returns nil, nil when the snapshot has no such decor.
func (d *DB) FetchRawByID(ctx context.Context, id int) (internal.RawRecord, error) {
	var rawJSON string
	err := d.conn.QueryRowContext(ctx, `SELECT raw_json FROM decors WHERE id = ?`, id).Scan(&rawJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRaw(rawJSON)
}

// FetchRawByCategory lists snapshot records ordered by name. An empty
// category lists everything.
func (d *DB) FetchRawByCategory(ctx context.Context, category string, onlyAvailable bool) ([]internal.RawRecord, error) {
	query := `SELECT raw_json FROM decors WHERE (? = '' OR category = ? COLLATE NOCASE)`
	if onlyAvailable {
		query += ` AND available = 1`
	}
	query += ` ORDER BY name, id`

	rows, err := d.conn.QueryContext(ctx, query, category, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.RawRecord, 0)
	for rows.Next() {
		var rawJSON string
		if err := rows.Scan(&rawJSON); err != nil {
			return nil, err
		}
		raw, err := decodeRaw(rawJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func (d *DB) ListCategories(ctx context.Context) ([]internal.CategorySummary, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT category, COUNT(*) FROM decors
GROUP BY category
ORDER BY category
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CategorySummary
	for rows.Next() {
		var s internal.CategorySummary
		if err := rows.Scan(&s.Category, &s.Items); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DB) CountDecors(ctx context.Context) (int, error) {
	var n int
	err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM decors`).Scan(&n)
	return n, err
}

func (d *DB) InsertSyncRun(ctx context.Context, run internal.SyncResult) error {
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO sync_runs (traceId, source, fetched, stored, skipped) VALUES (?, ?, ?, ?, ?)
`, run.TraceID, string(run.Source), run.Fetched, run.Stored, run.Skipped)
	return err
}

// LastSyncRun returns nil, nil before the first run.
func (d *DB) LastSyncRun(ctx context.Context) (*internal.SyncResult, error) {
	var run internal.SyncResult
	var source string
	err := d.conn.QueryRowContext(ctx, `
SELECT traceId, source, fetched, stored, skipped, createdAt
FROM sync_runs ORDER BY id DESC LIMIT 1
`).Scan(&run.TraceID, &source, &run.Fetched, &run.Stored, &run.Skipped, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Source = internal.ImportSource(source)
	return &run, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func decodeRaw(rawJSON string) (internal.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(rawJSON)))
	dec.UseNumber()
	var raw internal.RawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode stored record")
	}
	return raw, nil
}
