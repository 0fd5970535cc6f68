package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/marcus/storefront/internal/docstore"
	"github.com/marcus/storefront/internal/docstore/docstoretest"
)

func TestProbeConnected(t *testing.T) {
	mem := docstore.NewMemory()
	res := New(mem).Probe(context.Background())
	if !res.Connected || res.Err != nil || res.Message() != "" {
		t.Fatalf("result = %+v", res)
	}
	if mem.Len(Collection) != 0 {
		t.Fatal("sentinel left behind")
	}
}

func TestProbeWriteOKReadMissing(t *testing.T) {
	f := docstoretest.NewFaulty(docstore.NewMemory())
	f.FailOn(docstoretest.OpGet, Collection, docstore.ErrNotFound)

	res := New(f).Probe(context.Background())
	if res.Connected {
		t.Fatal("connected despite missing readback")
	}
	if !errors.Is(res.Err, ErrMissing) || res.Message() == "" {
		t.Fatalf("err = %v", res.Err)
	}
	if f.Calls(docstoretest.OpDelete) != 0 {
		t.Fatal("delete attempted after failed read")
	}
}

func TestProbeFailures(t *testing.T) {
	tests := []struct {
		name string
		op   string
	}{
		{"write", docstoretest.OpSet},
		{"read", docstoretest.OpGet},
		{"delete", docstoretest.OpDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := docstoretest.NewFaulty(docstore.NewMemory())
			f.FailOn(tt.op, Collection, nil)
			res := New(f).Probe(context.Background())
			if res.Connected {
				t.Fatal("connected despite failure")
			}
			if !errors.Is(res.Err, docstoretest.ErrInjected) {
				t.Fatalf("err = %v", res.Err)
			}
		})
	}
}

func TestProbeOffline(t *testing.T) {
	res := New(docstore.Offline{}).Probe(context.Background())
	if res.Connected || !errors.Is(res.Err, docstore.ErrUnconfigured) {
		t.Fatalf("result = %+v", res)
	}
}
