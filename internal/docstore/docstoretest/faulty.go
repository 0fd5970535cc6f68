// Package docstoretest provides helpers for testing code built on docstore:
// a fault-injecting Store wrapper and a behaviour suite every backend runs.
package docstoretest

import (
	"context"
	"errors"
	"sync"

	"github.com/marcus/storefront/internal/docstore"
)

// Operation names used by Faulty.
const (
	OpList   = "list"
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpGet    = "get"
	OpSet    = "set"
)

// ErrInjected is the default error returned by an injected fault.
var ErrInjected = errors.New("injected failure")

type faultKey struct {
	op         string
	collection string
}

// Faulty wraps a Store and fails selected operations. It also counts calls
// so tests can assert that no remote traffic happened.
type Faulty struct {
	docstore.Store

	mu     sync.Mutex
	faults map[faultKey]error
	calls  map[string]int
	holds  map[string]chan struct{}
}

// NewFaulty wraps inner.
func NewFaulty(inner docstore.Store) *Faulty {
	return &Faulty{
		Store:  inner,
		faults: make(map[faultKey]error),
		calls:  make(map[string]int),
		holds:  make(map[string]chan struct{}),
	}
}

// Hold blocks every call to op until the returned release func is called.
// Release is safe to call more than once.
func (f *Faulty) Hold(op string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.holds[op] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.holds[op] == ch {
				delete(f.holds, op)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
}

// FailOn makes op on collection return err. An empty collection matches all
// collections; a nil err means ErrInjected.
func (f *Faulty) FailOn(op, collection string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	f.faults[faultKey{op, collection}] = err
	f.mu.Unlock()
}

// Heal removes every injected fault.
func (f *Faulty) Heal() {
	f.mu.Lock()
	f.faults = make(map[faultKey]error)
	f.mu.Unlock()
}

// Calls returns how many times op was invoked, failed or not.
func (f *Faulty) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (f *Faulty) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *Faulty) check(ctx context.Context, op, collection string) error {
	f.mu.Lock()
	f.calls[op]++
	hold := f.holds[op]
	f.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.faults[faultKey{op, collection}]; ok {
		return err
	}
	if err, ok := f.faults[faultKey{op, ""}]; ok {
		return err
	}
	return nil
}

func (f *Faulty) List(ctx context.Context, collection string) ([]docstore.Snapshot, error) {
	if err := f.check(ctx, OpList, collection); err != nil {
		return nil, err
	}
	return f.Store.List(ctx, collection)
}

func (f *Faulty) Add(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if err := f.check(ctx, OpAdd, collection); err != nil {
		return "", err
	}
	return f.Store.Add(ctx, collection, doc)
}

func (f *Faulty) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := f.check(ctx, OpUpdate, collection); err != nil {
		return err
	}
	return f.Store.Update(ctx, collection, id, fields)
}

func (f *Faulty) Delete(ctx context.Context, collection, id string) error {
	if err := f.check(ctx, OpDelete, collection); err != nil {
		return err
	}
	return f.Store.Delete(ctx, collection, id)
}

func (f *Faulty) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := f.check(ctx, OpGet, collection); err != nil {
		return nil, err
	}
	return f.Store.Get(ctx, collection, id)
}

func (f *Faulty) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := f.check(ctx, OpSet, collection); err != nil {
		return err
	}
	return f.Store.Set(ctx, collection, id, doc)
}
