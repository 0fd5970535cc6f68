package docserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type scopeKey struct{}

// requestScope is the per-request state shared between middleware and
// handlers. requireAuth fills in keyID once the caller is known.
type requestScope struct {
	id    string
	keyID string
	log   *slog.Logger
}

func scopeOf(ctx context.Context) *requestScope {
	sc, _ := ctx.Value(scopeKey{}).(*requestScope)
	return sc
}

func getKeyIDFromContext(ctx context.Context) string {
	if sc := scopeOf(ctx); sc != nil {
		return sc.keyID
	}
	return ""
}

// logFor returns the request logger, or the default logger outside a request.
func logFor(ctx context.Context) *slog.Logger {
	if sc := scopeOf(ctx); sc != nil {
		return sc.log
	}
	return slog.Default()
}

// requestID reuses a caller supplied X-Request-ID when it looks sane so a
// storefront client and the server log the same id.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); len(id) >= 8 && len(id) <= 64 && !strings.ContainsAny(id, " \t\r\n\"") {
		return id
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// withScope attaches a requestScope and echoes its id back to the caller.
func withScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		w.Header().Set("X-Request-ID", id)
		sc := &requestScope{id: id, log: slog.Default().With("rid", id)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey{}, sc)))
	})
}

// recorder captures what a handler wrote.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += n
	return n, err
}

// observe counts the request in m and writes one access log line.
func observe(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &recorder{ResponseWriter: w, status: http.StatusOK}
			m.RecordRequest()
			next.ServeHTTP(rw, r)

			switch {
			case rw.status >= 500:
				m.RecordError()
			case rw.status >= 400:
				m.RecordClientError()
			}
			level := slog.LevelInfo
			if rw.status >= 500 {
				level = slog.LevelWarn
			}
			logFor(r.Context()).Log(r.Context(), level, "req",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"bytes", rw.bytes,
				"dur", time.Since(start).Round(time.Microsecond).String(),
			)
		})
	}
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logFor(r.Context()).Error("handler panic", "panic", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth checks the bearer token against the key set. A server with no
// keys lets every request through.
func (s *Server) requireAuth(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.keys.Enabled() {
			handler(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid authorization format")
			return
		}
		id, ok := s.keys.Verify(token)
		if !ok {
			logFor(r.Context()).Debug("rejected api key")
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid api key")
			return
		}
		if sc := scopeOf(r.Context()); sc != nil {
			sc.keyID = id
			sc.log = sc.log.With("kid", id)
		}
		handler(w, r)
	}
}

func limitBody(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}

// chain wraps h so the first middleware listed runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
