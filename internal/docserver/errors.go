package docserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/marcus/storefront/internal/docstore"
)

// Error codes carried in the "error.code" field of failed responses.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeInternal     = "internal"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeTooLarge     = "too_large"
	ErrCodeRateLimited  = "rate_limited"
)

// APIError is the body of a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope around an APIError.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// storeErrors maps backend sentinels to a status and code. Anything not
// listed is a 500.
var storeErrors = []struct {
	err    error
	status int
	code   string
}{
	{docstore.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{docstore.ErrTooLarge, http.StatusRequestEntityTooLarge, ErrCodeTooLarge},
	{docstore.ErrBadName, http.StatusBadRequest, ErrCodeBadRequest},
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: APIError{Code: code, Message: message}})
}

// writeStoreError answers a failed backend call. Unknown errors are logged
// under op and hidden from the client.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	for _, se := range storeErrors {
		if errors.Is(err, se.err) {
			msg := err.Error()
			if se.code == ErrCodeNotFound {
				msg = "document not found"
			}
			writeError(w, se.status, se.code, msg)
			return
		}
	}
	logFor(r.Context()).Error(op, "err", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, "storage error")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("encode response", "status", status, "err", err)
	}
}
