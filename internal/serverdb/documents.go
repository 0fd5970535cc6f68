package serverdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/storefront/internal/docstore"
)

var _ docstore.Store = (*ServerDB)(nil)

func (db *ServerDB) List(ctx context.Context, collection string) ([]docstore.Snapshot, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return nil, err
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := []docstore.Snapshot{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := docstore.Decode([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, err)
		}
		out = append(out, docstore.Snapshot{ID: id, Data: doc})
	}
	return out, rows.Err()
}

func (db *ServerDB) Add(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return "", err
	}
	data, err := docstore.Encode(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := db.insert(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (db *ServerDB) insert(ctx context.Context, collection, id string, data []byte) error {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO documents (collection, id, seq, data, created_at, updated_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents), ?, ?, ?)`,
		collection, id, string(data), now, now)
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (db *ServerDB) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var cur string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", collection, id, err)
	}
	doc, err := docstore.Decode([]byte(cur))
	if err != nil {
		return err
	}
	data, err := docstore.Encode(docstore.Merge(doc, fields))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(data), time.Now().UTC(), collection, id); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

func (db *ServerDB) Delete(ctx context.Context, collection, id string) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (db *ServerDB) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return nil, err
	}
	var data string
	err := db.conn.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return docstore.Decode([]byte(data))
}

func (db *ServerDB) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	data, err := docstore.Encode(doc)
	if err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(data), time.Now().UTC(), collection, id)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	return db.insert(ctx, collection, id, data)
}

// Stats returns document counts per collection, sorted by name.
func (db *ServerDB) Stats(ctx context.Context) ([]docstore.CollectionStat, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT collection, COUNT(*) FROM documents GROUP BY collection ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("collection stats: %w", err)
	}
	defer rows.Close()

	var out []docstore.CollectionStat
	for rows.Next() {
		var s docstore.CollectionStat
		if err := rows.Scan(&s.Name, &s.Documents); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
