package docserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marcus/storefront/internal/docstore"
)

const testKey = "ds_live_testkey0000000000000000000000"

// TestHarness wraps a full Server with a real HTTP listener for integration tests.
type TestHarness struct {
	t       *testing.T
	Server  *Server
	Store   *docstore.Memory
	BaseURL string
	client  *http.Client
	httpSrv *httptest.Server
}

// newTestHarness creates a TestHarness backed by an in-memory store. Auth is
// enabled with testKey unless an option clears it.
func newTestHarness(t *testing.T, opts ...func(*Config)) *TestHarness {
	t.Helper()

	store := docstore.NewMemory()
	cfg := Config{
		ListenAddr: ":0",
		APIKeys:    []string{testKey},
		RateLimit:  100000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := NewServer(cfg, store)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}

	httpSrv := httptest.NewServer(srv.Handler())

	h := &TestHarness{
		t:       t,
		Server:  srv,
		Store:   store,
		BaseURL: httpSrv.URL,
		client:  &http.Client{},
		httpSrv: httpSrv,
	}

	t.Cleanup(func() {
		httpSrv.Close()
		srv.cancel()
	})

	return h
}

// Do sends an HTTP request and returns the response. body may be a []byte
// (sent as-is) or any JSON-encodable value.
func (h *TestHarness) Do(method, path, token string, body any) *http.Response {
	h.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			h.t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, h.BaseURL+path, reader)
	if err != nil {
		h.t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("do request %s %s: %v", method, path, err)
	}
	return resp
}

// AssertStatus checks the status code and closes the body.
func (h *TestHarness) AssertStatus(resp *http.Response, want int) {
	h.t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		h.t.Fatalf("status = %d, want %d: %s", resp.StatusCode, want, body)
	}
}

// AssertErrorResponse checks status and error code and closes the body.
func (h *TestHarness) AssertErrorResponse(resp *http.Response, status int, code string) {
	h.t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != status {
		body, _ := io.ReadAll(resp.Body)
		h.t.Fatalf("status = %d, want %d: %s", resp.StatusCode, status, body)
	}
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		h.t.Fatalf("decode error body: %v", err)
	}
	if er.Error.Code != code {
		h.t.Fatalf("error code = %q, want %q", er.Error.Code, code)
	}
}

// ReadJSON decodes the body into v and closes it.
func (h *TestHarness) ReadJSON(resp *http.Response, v any) {
	h.t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		h.t.Fatalf("decode response: %v", err)
	}
}
