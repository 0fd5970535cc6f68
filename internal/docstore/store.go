// Package docstore defines the keyed-document boundary the storefront talks
// to, plus two local implementations: an in-memory store and the offline
// store used when no remote is configured.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// MaxDocumentSize is the largest encoded document any backend accepts.
const MaxDocumentSize = 1 << 20

var (
	ErrNotFound     = errors.New("document not found")
	ErrTooLarge     = errors.New("document exceeds size limit")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnconfigured = errors.New("remote store not configured")
	ErrBadName      = errors.New("invalid collection name")
)

// Document is a JSON object stored under a collection/id key.
type Document map[string]any

// Snapshot is a document together with its id, as returned by List.
type Snapshot struct {
	ID   string   `json:"id"`
	Data Document `json:"data"`
}

// CollectionStat is a per-collection document count.
type CollectionStat struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

// Store is a collection-of-documents service.
//
// List returns documents in creation order. Update merges top-level fields
// into an existing document and fails with ErrNotFound when it is missing.
// Set replaces or creates. Delete is idempotent.
type Store interface {
	List(ctx context.Context, collection string) ([]Snapshot, error)
	Add(ctx context.Context, collection string, doc Document) (string, error)
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
}

var collectionRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidCollection reports whether name is usable as a collection name.
func ValidCollection(name string) bool {
	return collectionRe.MatchString(name)
}

// CheckCollection returns ErrBadName for an unusable collection name.
func CheckCollection(name string) error {
	if !ValidCollection(name) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

// Encode marshals doc and enforces MaxDocumentSize.
func Encode(doc Document) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	return data, nil
}

// Decode unmarshals a stored document.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Merge copies the top-level fields of patch over base and returns base.
func Merge(base, patch Document) Document {
	if base == nil {
		base = Document{}
	}
	for k, v := range patch {
		base[k] = v
	}
	return base
}

// FromValue converts a struct into a Document through its JSON form.
func FromValue(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return Decode(data)
}

// ToValue decodes a Document into v through its JSON form.
func ToValue(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}
