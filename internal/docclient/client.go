// Package docclient is an HTTP client for the docstore document service. It
// implements docstore.Store so the storefront can use a remote service and
// an in-process store interchangeably.
package docclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcus/storefront/internal/docstore"
)

// ErrForbidden is returned for a 403 response.
var ErrForbidden = errors.New("forbidden")

// Client is an HTTP client for the document service.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

var _ docstore.Store = (*Client)(nil)

// New creates a client. A zero timeout leaves requests bounded only by ctx.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// addResponse is the response from POST .../documents.
type addResponse struct {
	ID string `json:"id"`
}

// HealthCheck hits /healthz to verify the service is up.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/healthz", nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func collectionPath(collection string) string {
	return "/v1/collections/" + url.PathEscape(collection) + "/documents"
}

func documentPath(collection, id string) string {
	return collectionPath(collection) + "/" + url.PathEscape(id)
}

func (c *Client) List(ctx context.Context, collection string) ([]docstore.Snapshot, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return nil, err
	}
	var resp []docstore.Snapshot
	if err := c.do(ctx, http.MethodGet, collectionPath(collection), nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []docstore.Snapshot{}
	}
	return resp, nil
}

func (c *Client) Add(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return "", err
	}
	data, err := docstore.Encode(doc)
	if err != nil {
		return "", err
	}
	var resp addResponse
	if err := c.do(ctx, http.MethodPost, collectionPath(collection), json.RawMessage(data), &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("add %s: server returned no id", collection)
	}
	return resp.ID, nil
}

func (c *Client) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	data, err := docstore.Encode(fields)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, documentPath(collection, id), json.RawMessage(data), nil)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, documentPath(collection, id), nil, nil)
}

func (c *Client) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := docstore.CheckCollection(collection); err != nil {
		return nil, err
	}
	var resp docstore.Snapshot
	if err := c.do(ctx, http.MethodGet, documentPath(collection, id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = docstore.Document{}
	}
	return resp.Data, nil
}

func (c *Client) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := docstore.CheckCollection(collection); err != nil {
		return err
	}
	data, err := docstore.Encode(doc)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, documentPath(collection, id), json.RawMessage(data), nil)
}

// --- HTTP helpers ---

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// do executes an authenticated HTTP request.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, true)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, auth bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	rid := strings.ReplaceAll(uuid.NewString(), "-", "")
	req.Header.Set("X-Request-ID", rid)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		slog.Debug("remote request failed", "rid", rid, "method", method, "path", path, "status", resp.StatusCode)
		return statusError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

func statusError(status int, body []byte) error {
	var er errorResponse
	if json.Unmarshal(body, &er) != nil || er.Error.Code == "" {
		return fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(string(body)))
	}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", docstore.ErrUnauthorized, er.Error.Message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, er.Error.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, er.Error.Message)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", docstore.ErrTooLarge, er.Error.Message)
	default:
		return &er.Error
	}
}
