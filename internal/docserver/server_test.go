package docserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcus/storefront/internal/docstore"
)

const itemsPath = "/v1/collections/menuItems/documents"

func TestHealthz(t *testing.T) {
	h := newTestHarness(t)
	resp := h.Do("GET", "/healthz", "", nil)
	var body map[string]string
	h.ReadJSON(resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("status = %q", body["status"])
	}
}

func TestDocumentLifecycle(t *testing.T) {
	h := newTestHarness(t)

	resp := h.Do("POST", itemsPath, testKey, map[string]any{"name": "tea", "price": 2.5})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	var added addDocumentResponse
	h.ReadJSON(resp, &added)
	if added.ID == "" {
		t.Fatal("empty id")
	}

	h.AssertStatus(h.Do("PATCH", itemsPath+"/"+added.ID, testKey, map[string]any{"price": 3.0}), http.StatusNoContent)

	var snap docstore.Snapshot
	h.ReadJSON(h.Do("GET", itemsPath+"/"+added.ID, testKey, nil), &snap)
	if snap.ID != added.ID || snap.Data["price"] != 3.0 || snap.Data["name"] != "tea" {
		t.Fatalf("snapshot = %+v", snap)
	}

	var list []docstore.Snapshot
	h.ReadJSON(h.Do("GET", itemsPath, testKey, nil), &list)
	if len(list) != 1 {
		t.Fatalf("list len = %d", len(list))
	}

	h.AssertStatus(h.Do("DELETE", itemsPath+"/"+added.ID, testKey, nil), http.StatusNoContent)
	h.AssertStatus(h.Do("DELETE", itemsPath+"/"+added.ID, testKey, nil), http.StatusNoContent)
	h.AssertErrorResponse(h.Do("GET", itemsPath+"/"+added.ID, testKey, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestSetCreatesSingleton(t *testing.T) {
	h := newTestHarness(t)
	path := "/v1/collections/config/documents/business"
	h.AssertStatus(h.Do("PUT", path, testKey, map[string]any{"name": "Shop"}), http.StatusNoContent)

	var snap docstore.Snapshot
	h.ReadJSON(h.Do("GET", path, testKey, nil), &snap)
	if snap.Data["name"] != "Shop" {
		t.Fatalf("data = %v", snap.Data)
	}
}

func TestPatchMissingIsNotFound(t *testing.T) {
	h := newTestHarness(t)
	h.AssertErrorResponse(h.Do("PATCH", itemsPath+"/missing", testKey, map[string]any{"x": 1}), http.StatusNotFound, ErrCodeNotFound)
}

func TestAuthRequired(t *testing.T) {
	h := newTestHarness(t)
	h.AssertErrorResponse(h.Do("GET", itemsPath, "", nil), http.StatusUnauthorized, ErrCodeUnauthorized)
	h.AssertErrorResponse(h.Do("GET", itemsPath, "wrong", nil), http.StatusUnauthorized, ErrCodeUnauthorized)
	h.AssertStatus(h.Do("GET", itemsPath, testKey, nil), http.StatusOK)
}

func TestOpenServerWithoutKeys(t *testing.T) {
	h := newTestHarness(t, func(c *Config) { c.APIKeys = nil })
	h.AssertStatus(h.Do("GET", itemsPath, "", nil), http.StatusOK)
}

func TestBadRequests(t *testing.T) {
	h := newTestHarness(t)
	h.AssertErrorResponse(h.Do("GET", "/v1/collections/bad-name/documents", testKey, nil), http.StatusBadRequest, ErrCodeBadRequest)
	h.AssertErrorResponse(h.Do("POST", itemsPath, testKey, []byte("[1,2]")), http.StatusBadRequest, ErrCodeBadRequest)
	h.AssertErrorResponse(h.Do("POST", itemsPath, testKey, []byte("{not json")), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestOversizedDocument(t *testing.T) {
	h := newTestHarness(t)
	big := strings.Repeat("x", docstore.MaxDocumentSize)
	h.AssertErrorResponse(h.Do("POST", itemsPath, testKey, map[string]any{"image": big}), http.StatusRequestEntityTooLarge, ErrCodeTooLarge)

	h2 := newTestHarness(t, func(c *Config) { c.MaxBodyBytes = 64 })
	h2.AssertErrorResponse(h2.Do("POST", itemsPath, testKey, map[string]any{"image": strings.Repeat("y", 128)}), http.StatusRequestEntityTooLarge, ErrCodeTooLarge)
}

func TestRateLimited(t *testing.T) {
	h := newTestHarness(t, func(c *Config) { c.RateLimit = 2 })
	h.AssertStatus(h.Do("GET", itemsPath, testKey, nil), http.StatusOK)
	h.AssertStatus(h.Do("GET", itemsPath, testKey, nil), http.StatusOK)
	resp := h.Do("GET", itemsPath, testKey, nil)
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	h.AssertErrorResponse(resp, http.StatusTooManyRequests, ErrCodeRateLimited)

	var snap MetricsSnapshot
	h.ReadJSON(h.Do("GET", "/metricz", "", nil), &snap)
	if snap.RateLimited != 1 {
		t.Fatalf("rate_limited = %d", snap.RateLimited)
	}
	if snap.ClientErrors != 1 {
		t.Fatalf("client_errors = %d", snap.ClientErrors)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := newTestHarness(t)
	h.AssertStatus(h.Do("POST", itemsPath, testKey, map[string]any{}), http.StatusCreated)

	var stats []docstore.CollectionStat
	h.ReadJSON(h.Do("GET", "/v1/stats", testKey, nil), &stats)
	if len(stats) != 1 || stats[0].Name != "menuItems" || stats[0].Documents != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestHarness(t)
	resp := h.Do("GET", "/healthz", "", nil)
	defer resp.Body.Close()
	if len(resp.Header.Get("X-Request-ID")) != 32 {
		t.Fatalf("request id = %q", resp.Header.Get("X-Request-ID"))
	}
}

func TestRequestIDReused(t *testing.T) {
	handler := withScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sc := scopeOf(r.Context()); sc == nil || sc.id != "client-abc123" {
			t.Errorf("scope = %+v", sc)
		}
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-abc123" {
		t.Fatalf("request id = %q", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "bad id")
	rec = httptest.NewRecorder()
	handler = withScope(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got == "bad id" || len(got) != 32 {
		t.Fatalf("unsafe request id echoed: %q", got)
	}
}

func TestObserveCountsPanicsAsErrors(t *testing.T) {
	m := NewMetrics()
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), withScope, observe(m), recoveryMiddleware)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	handler = chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "nope")
	}), withScope, observe(m), recoveryMiddleware)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	snap := m.Snapshot()
	if snap.Requests != 2 || snap.ServerErrors != 1 || snap.ClientErrors != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3, func() time.Time { return now })
	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("k1"); !ok {
			t.Fatalf("expected allow on request %d", i+1)
		}
	}
	now = now.Add(20 * time.Second)
	ok, wait := rl.Allow("k1")
	if ok {
		t.Fatal("expected deny after limit")
	}
	if wait != 40*time.Second {
		t.Fatalf("wait = %v", wait)
	}
	if ok, _ := rl.Allow("k2"); !ok {
		t.Fatal("callers share a window")
	}

	now = now.Add(time.Minute)
	if ok, _ := rl.Allow("k1"); !ok {
		t.Fatal("expected allow after window reset")
	}

	now = now.Add(3 * time.Minute)
	rl.sweep()
	if len(rl.windows) != 0 {
		t.Fatalf("sweep left %d windows", len(rl.windows))
	}
}

func TestKeySet(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(key, apiKeyPrefix) || len(key) != len(apiKeyPrefix)+keyLength {
		t.Fatalf("key = %q", key)
	}
	ks := NewKeySet([]string{"other", key})
	id, ok := ks.Verify(key)
	if !ok || id != key[len(apiKeyPrefix):len(apiKeyPrefix)+8] {
		t.Fatalf("verify = %q, %v", id, ok)
	}
	if _, ok := ks.Verify("nope"); ok {
		t.Fatal("unexpected match")
	}
	if len(HashKey(key)) != 64 {
		t.Fatal("hash length")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCSTORE_LISTEN_ADDR", ":9999")
	t.Setenv("DOCSTORE_BACKEND", "Postgres")
	t.Setenv("DOCSTORE_API_KEYS", " a, ,b ")
	t.Setenv("DOCSTORE_RATE_LIMIT", "42")
	t.Setenv("DOCSTORE_SHUTDOWN_TIMEOUT", "5s")

	cfg := LoadConfig()
	if cfg.ListenAddr != ":9999" || cfg.Backend != BackendPostgres {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[0] != "a" || cfg.APIKeys[1] != "b" {
		t.Fatalf("keys = %q", cfg.APIKeys)
	}
	if cfg.RateLimit != 42 || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.DBPath != "./data/docstore.db" || cfg.SQLiteDriver != "sqlite" {
		t.Fatalf("defaults = %+v", cfg)
	}
}
