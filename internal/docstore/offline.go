package docstore

import "context"

// Offline is the Store used when no remote is configured. Every call fails
// with ErrUnconfigured, which makes the connectivity probe report the session
// as local-only.
type Offline struct{}

func (Offline) List(context.Context, string) ([]Snapshot, error) { return nil, ErrUnconfigured }

func (Offline) Add(context.Context, string, Document) (string, error) { return "", ErrUnconfigured }

func (Offline) Update(context.Context, string, string, Document) error { return ErrUnconfigured }

func (Offline) Delete(context.Context, string, string) error { return ErrUnconfigured }

func (Offline) Get(context.Context, string, string) (Document, error) { return nil, ErrUnconfigured }

func (Offline) Set(context.Context, string, string, Document) error { return ErrUnconfigured }
