package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chatvault/chatvault/internal/archive"
)

//go:embed schema.sql
var schemaFS embed.FS

const defaultSQLiteParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"

// SQLiteBackend is the durable Backend over a local SQLite database.
type SQLiteBackend struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens or creates the database at the given path and ensures
// the schema exists.
func OpenSQLite(dbPath string) (*SQLiteBackend, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+defaultSQLiteParams)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	b := &SQLiteBackend{db: db, dbPath: dbPath}
	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBackend) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := b.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("execute schema.sql: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// withTx executes fn within a transaction, rolling back on error.
func (b *SQLiteBackend) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *SQLiteBackend) PutDataset(ctx context.Context, ds *archive.Dataset, meta archive.DatasetMeta, raw []byte) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	messagesJSON, err := json.Marshal(ds.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	err = b.withTx(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO datasets (file_id, original_name, created_at_ms, meta_json, messages_json, raw_markup)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(file_id) DO UPDATE SET
				original_name = excluded.original_name,
				created_at_ms = excluded.created_at_ms,
				meta_json     = excluded.meta_json,
				messages_json = excluded.messages_json,
				raw_markup    = excluded.raw_markup
		`, ds.FileID, ds.OriginalName, ds.CreatedAtMs, metaJSON, messagesJSON, raw)
		if err != nil {
			return fmt.Errorf("upsert dataset: %w", err)
		}

		// Replacement is wholesale: old attachments go with the old record.
		if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE file_id = ?`, ds.FileID); err != nil {
			return fmt.Errorf("clear attachments: %w", err)
		}
		for ref, data := range ds.Attachments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO attachments (file_id, ref, data) VALUES (?, ?, ?)
			`, ds.FileID, ref, data); err != nil {
				return fmt.Errorf("insert attachment %q: %w", ref, err)
			}
		}
		return nil
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (b *SQLiteBackend) GetDataset(ctx context.Context, fileID string) (*archive.Dataset, error) {
	var ds archive.Dataset
	var messagesJSON []byte
	err := b.db.QueryRowContext(ctx, `
		SELECT file_id, original_name, created_at_ms, messages_json
		FROM datasets WHERE file_id = ?
	`, fileID).Scan(&ds.FileID, &ds.OriginalName, &ds.CreatedAtMs, &messagesJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", archive.ErrUnknownDataset, fileID)
	}
	if err != nil {
		return nil, storageErr(fmt.Errorf("get dataset: %w", err))
	}
	if err := json.Unmarshal(messagesJSON, &ds.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}

	rows, err := b.db.QueryContext(ctx, `SELECT ref, data FROM attachments WHERE file_id = ?`, fileID)
	if err != nil {
		return nil, storageErr(fmt.Errorf("get attachments: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		var data []byte
		if err := rows.Scan(&ref, &data); err != nil {
			return nil, storageErr(fmt.Errorf("scan attachment: %w", err))
		}
		if ds.Attachments == nil {
			ds.Attachments = make(map[string][]byte)
		}
		ds.Attachments[ref] = data
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(fmt.Errorf("iterate attachments: %w", err))
	}

	return &ds, nil
}

func (b *SQLiteBackend) GetRaw(ctx context.Context, fileID string) ([]byte, error) {
	var raw []byte
	err := b.db.QueryRowContext(ctx, `SELECT raw_markup FROM datasets WHERE file_id = ?`, fileID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", archive.ErrUnknownDataset, fileID)
	}
	if err != nil {
		return nil, storageErr(fmt.Errorf("get raw markup: %w", err))
	}
	return raw, nil
}

func (b *SQLiteBackend) ListMeta(ctx context.Context) ([]archive.DatasetMeta, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT meta_json FROM datasets ORDER BY created_at_ms DESC, file_id ASC
	`)
	if err != nil {
		return nil, storageErr(fmt.Errorf("list datasets: %w", err))
	}
	defer rows.Close()

	var metas []archive.DatasetMeta
	for rows.Next() {
		var metaJSON []byte
		if err := rows.Scan(&metaJSON); err != nil {
			return nil, storageErr(fmt.Errorf("scan meta: %w", err))
		}
		var meta archive.DatasetMeta
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(fmt.Errorf("iterate datasets: %w", err))
	}
	return metas, nil
}

func (b *SQLiteBackend) DeleteDataset(ctx context.Context, fileID string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM datasets WHERE file_id = ?`, fileID)
	if err != nil {
		return storageErr(fmt.Errorf("delete dataset: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr(fmt.Errorf("delete dataset: %w", err))
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", archive.ErrUnknownDataset, fileID)
	}
	return nil
}

// storageErr tags a durable-store I/O failure so callers can match it
// with errors.Is(err, archive.ErrStorageUnavailable).
func storageErr(err error) error {
	return fmt.Errorf("%w: %w", archive.ErrStorageUnavailable, err)
}
