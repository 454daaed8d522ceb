package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/trogers1052/carteira-service/internal/store"
)

type dialect struct {
	name    string
	insert  string
	get     string
	list    string
	replace string
	delete  string
}

var postgresDialect = dialect{
	name: "postgres",
	insert: `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $4)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`,
	get:     `SELECT data FROM documents WHERE collection = $1 AND id = $2`,
	list:    `SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq`,
	replace: `UPDATE documents SET data = $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`,
	delete:  `DELETE FROM documents WHERE collection = $1 AND id = $2`,
}

var sqliteDialect = dialect{
	name: "sqlite",
	insert: `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`,
	get:     `SELECT data FROM documents WHERE collection = ? AND id = ?`,
	list:    `SELECT id, data FROM documents WHERE collection = ? ORDER BY seq`,
	replace: `UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
	delete:  `DELETE FROM documents WHERE collection = ? AND id = ?`,
}

var (
	_ store.Gateway     = (*DB)(nil)
	_ store.FieldLister = (*DB)(nil)
)

// Create inserts a document, overwriting an existing one with the same id
func (db *DB) Create(ctx context.Context, collection, id string, doc store.Document) (string, error) {
	if id == "" {
		id = store.NewID()
	}
	data, err := store.Marshal(doc)
	if err != nil {
		return "", store.Fault("create", collection, err)
	}

	now := time.Now().UTC()
	args := []any{collection, id, string(data), now}
	if db.dialect.name == sqliteDialect.name {
		args = append(args, now)
	}

	if _, err := db.conn.ExecContext(ctx, db.dialect.insert, args...); err != nil {
		return "", store.Fault("create", collection, fmt.Errorf("failed to insert document: %w", err))
	}
	return id, nil
}

// Get retrieves a document by id
func (db *DB) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var data []byte
	err := db.conn.QueryRowContext(ctx, db.dialect.get, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, store.Fault("get", collection, fmt.Errorf("failed to get document: %w", err))
	}

	doc, err := store.Unmarshal(data, id)
	if err != nil {
		return nil, store.Fault("get", collection, fmt.Errorf("failed to parse document %s: %w", id, err))
	}
	return doc, nil
}

// List retrieves every document of a collection in insertion order
func (db *DB) List(ctx context.Context, collection string) ([]store.Document, error) {
	rows, err := db.conn.QueryContext(ctx, db.dialect.list, collection)
	if err != nil {
		return nil, store.Fault("list", collection, fmt.Errorf("failed to query documents: %w", err))
	}
	return scanDocuments(rows, collection)
}

// ListByField retrieves the documents whose top-level field equals value.
// On Postgres the position_id filter is served by idx_documents_position_id.
func (db *DB) ListByField(ctx context.Context, collection, field, value string) ([]store.Document, error) {
	var query string
	var args []any
	if db.dialect.name == sqliteDialect.name {
		query = `SELECT id, data FROM documents WHERE collection = ? AND json_extract(data, ?) = ? ORDER BY seq`
		args = []any{collection, "$." + field, value}
	} else {
		query = fmt.Sprintf(`SELECT id, data FROM documents WHERE collection = $1 AND data->>%s = $2 ORDER BY seq`, pq.QuoteLiteral(field))
		args = []any{collection, value}
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Fault("list", collection, fmt.Errorf("failed to query documents by %s: %w", field, err))
	}
	return scanDocuments(rows, collection)
}

func scanDocuments(rows *sql.Rows, collection string) ([]store.Document, error) {
	defer rows.Close()

	docs := []store.Document{}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, store.Fault("list", collection, fmt.Errorf("failed to scan document: %w", err))
		}
		doc, err := store.Unmarshal(data, id)
		if err != nil {
			return nil, store.Fault("list", collection, fmt.Errorf("failed to parse document %s: %w", id, err))
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Fault("list", collection, fmt.Errorf("failed to iterate documents: %w", err))
	}
	return docs, nil
}

// Replace overwrites an existing document
func (db *DB) Replace(ctx context.Context, collection, id string, doc store.Document) error {
	data, err := store.Marshal(doc)
	if err != nil {
		return store.Fault("replace", collection, err)
	}

	now := time.Now().UTC()
	args := []any{collection, id, string(data), now}
	if db.dialect.name == sqliteDialect.name {
		args = []any{string(data), now, collection, id}
	}

	result, err := db.conn.ExecContext(ctx, db.dialect.replace, args...)
	if err != nil {
		return store.Fault("replace", collection, fmt.Errorf("failed to update document: %w", err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	return nil
}

// Delete removes a document by id
func (db *DB) Delete(ctx context.Context, collection, id string) error {
	result, err := db.conn.ExecContext(ctx, db.dialect.delete, collection, id)
	if err != nil {
		return store.Fault("delete", collection, fmt.Errorf("failed to delete document: %w", err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	return nil
}

// Ping checks the connection
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return store.Fault("ping", "", err)
	}
	return nil
}
