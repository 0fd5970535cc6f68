// Package pgstore is a Postgres-backed docstore.Store. Documents live in a
// single JSONB table keyed by (collection, id).
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcus/storefront/internal/docstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a docstore.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ docstore.Store = (*Store)(nil)

// Open connects to connStr and applies the embedded migrations.
func Open(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies every embedded migration in name order. Migrations are
// idempotent, so running them on every start is safe.
func (s *Store) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// Ping checks the pool can reach the server.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Snapshot, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY seq`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := []docstore.Snapshot{}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := docstore.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, err)
		}
		out = append(out, docstore.Snapshot{ID: id, Data: doc})
	}
	return out, rows.Err()
}

func (s *Store) Add(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return "", err
	}
	data, err := docstore.Encode(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, data,
	); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

// Update merges fields into the stored document with JSONB concatenation,
// which replaces top-level keys.
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	patch, err := docstore.Encode(fields)
	if err != nil {
		return err
	}
	var size int
	err = s.pool.QueryRow(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2 AND octet_length((data || $3::jsonb)::text) <= $4
		RETURNING octet_length(data::text)`,
		collection, id, patch, docstore.MaxDocumentSize,
	).Scan(&size)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.missingOrTooLarge(ctx, collection, id)
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// missingOrTooLarge tells apart the two reasons a guarded UPDATE matched nothing.
func (s *Store) missingOrTooLarge(ctx context.Context, collection, id string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
		collection, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check %s/%s: %w", collection, id, err)
	}
	if exists {
		return docstore.ErrTooLarge
	}
	return docstore.ErrNotFound
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return nil, err
	}
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return docstore.Decode(data)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	data, err := docstore.Encode(doc)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, data,
	); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Stats returns document counts per collection, sorted by name.
func (s *Store) Stats(ctx context.Context) ([]docstore.CollectionStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT collection, COUNT(*) FROM documents
		GROUP BY collection
		ORDER BY collection`,
	)
	if err != nil {
		return nil, fmt.Errorf("collection stats: %w", err)
	}
	defer rows.Close()

	var out []docstore.CollectionStat
	for rows.Next() {
		var st docstore.CollectionStat
		var n int64
		if err := rows.Scan(&st.Name, &n); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		st.Documents = int(n)
		out = append(out, st)
	}
	return out, rows.Err()
}
