// Package probe checks that a document store is really usable by doing a
// write-read-delete round trip on a sentinel document.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcus/storefront/internal/docstore"
)

// Sentinel location written by the probe.
const (
	Collection = "_test"
	DocumentID = "ping"
)

// ErrMissing is reported when the sentinel cannot be read back after a
// successful write.
var ErrMissing = errors.New("ping document missing after write")

// Result is the outcome of one probe.
type Result struct {
	Connected bool
	Err       error
	Latency   time.Duration
}

// Message returns the error text, or "" when connected.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Prober runs connectivity probes against a store.
type Prober struct {
	store docstore.Store
	now   func() time.Time
}

// New returns a Prober for store.
func New(store docstore.Store) *Prober {
	return &Prober{store: store, now: time.Now}
}

// Probe writes {"t": <unix ms>} to _test/ping, reads it back and deletes it.
// Connected is true only when every step succeeds and the read finds the
// document. Errors are captured in the result, never returned.
func (p *Prober) Probe(ctx context.Context) Result {
	start := p.now()
	err := p.roundTrip(ctx, start)
	return Result{
		Connected: err == nil,
		Err:       err,
		Latency:   p.now().Sub(start),
	}
}

func (p *Prober) roundTrip(ctx context.Context, start time.Time) error {
	if err := p.store.Set(ctx, Collection, DocumentID, docstore.Document{"t": start.UnixMilli()}); err != nil {
		return fmt.Errorf("write ping: %w", err)
	}
	if _, err := p.store.Get(ctx, Collection, DocumentID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrMissing
		}
		return fmt.Errorf("read ping: %w", err)
	}
	if err := p.store.Delete(ctx, Collection, DocumentID); err != nil {
		return fmt.Errorf("delete ping: %w", err)
	}
	return nil
}
