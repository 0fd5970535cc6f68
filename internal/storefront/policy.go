package storefront

import (
	"fmt"
	"strings"
)

// Operation kinds reported in Write.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReplace = "replace"
)

// Entity names reported in Write.
const (
	EntityMenuItem    = "menuItem"
	EntityReservation = "reservation"
	EntityConfig      = "config"
	EntityCategories  = "categories"
)

// Write describes a background remote write that failed.
type Write struct {
	Op     string
	Entity string
	ID     string
	Err    error
	// Undo restores the cache entry this write changed to its value before
	// the local apply. It is a no-op if the entry has changed since.
	Undo func()
}

// WritePolicy decides what happens to the local cache when a remote write
// fails. The failure has already been logged.
type WritePolicy interface {
	Name() string
	Failed(w Write)
}

// Optimistic keeps the local change. Local and remote may diverge.
type Optimistic struct{}

func (Optimistic) Name() string { return PolicyOptimistic }

func (Optimistic) Failed(Write) {}

// Rollback undoes the local change when its remote write fails.
type Rollback struct{}

func (Rollback) Name() string { return PolicyRollback }

func (Rollback) Failed(w Write) {
	if w.Undo != nil {
		w.Undo()
	}
}

// Policy names accepted by PolicyByName.
const (
	PolicyOptimistic = "optimistic"
	PolicyRollback   = "rollback"
)

// PolicyByName returns the policy for name. An empty name is optimistic.
func PolicyByName(name string) (WritePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyOptimistic:
		return Optimistic{}, nil
	case PolicyRollback:
		return Rollback{}, nil
	default:
		return nil, fmt.Errorf("unknown write policy %q (want optimistic or rollback)", name)
	}
}
