package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. Documents are kept in encoded form so
// callers never share maps with the store.
type Memory struct {
	mu          sync.Mutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

func (m *Memory) coll(name string, create bool) *memCollection {
	c, ok := m.collections[name]
	if !ok && create {
		c = &memCollection{docs: make(map[string][]byte)}
		m.collections[name] = c
	}
	return c
}

func (c *memCollection) put(id string, data []byte) {
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = data
}

func (m *Memory) List(ctx context.Context, collection string) ([]Snapshot, error) {
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection, false)
	if c == nil {
		return []Snapshot{}, nil
	}
	out := make([]Snapshot, 0, len(c.order))
	for _, id := range c.order {
		doc, err := Decode(c.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, Snapshot{ID: id, Data: doc})
	}
	return out, nil
}

func (m *Memory) Add(ctx context.Context, collection string, doc Document) (string, error) {
	if err := CheckCollection(collection); err != nil {
		return "", err
	}
	data, err := Encode(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.coll(collection, true).put(id, data)
	return id, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields Document) error {
	if err := CheckCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection, false)
	if c == nil {
		return ErrNotFound
	}
	cur, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc, err := Decode(cur)
	if err != nil {
		return err
	}
	data, err := Encode(Merge(doc, fields))
	if err != nil {
		return err
	}
	c.docs[id] = data
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := CheckCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection, false)
	if c == nil {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection, false)
	if c == nil {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(data)
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc Document) error {
	if err := CheckCollection(collection); err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coll(collection, true).put(id, data)
	return nil
}

// Len returns the number of documents in collection.
func (m *Memory) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.coll(collection, false); c != nil {
		return len(c.docs)
	}
	return 0
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error { return nil }

// Stats returns document counts per collection, sorted by name.
func (m *Memory) Stats(ctx context.Context) ([]CollectionStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CollectionStat, 0, len(m.collections))
	for name, c := range m.collections {
		if len(c.docs) > 0 {
			out = append(out, CollectionStat{Name: name, Documents: len(c.docs)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
