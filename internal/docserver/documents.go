package docserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcus/storefront/internal/docstore"
)

type addDocumentResponse struct {
	ID string `json:"id"`
}

// pathCollection validates the {collection} path value and writes a 400 if
// it is unusable.
func pathCollection(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := r.PathValue("collection")
	if !docstore.ValidCollection(c) {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid collection name")
		return "", false
	}
	return c, true
}

// decodeDocument reads a JSON object body.
func decodeDocument(w http.ResponseWriter, r *http.Request) (docstore.Document, bool) {
	var doc docstore.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "body must be a json object")
		return nil, false
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return doc, true
}

// handleListDocuments handles GET /v1/collections/{collection}/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	coll, ok := pathCollection(w, r)
	if !ok {
		return
	}
	docs, err := s.store.List(r.Context(), coll)
	if err != nil {
		writeStoreError(w, r, "list documents", err)
		return
	}
	s.metrics.RecordRead()
	writeJSON(w, http.StatusOK, docs)
}

// handleAddDocument handles POST /v1/collections/{collection}/documents.
func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	coll, ok := pathCollection(w, r)
	if !ok {
		return
	}
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	id, err := s.store.Add(r.Context(), coll, doc)
	if err != nil {
		writeStoreError(w, r, "add document", err)
		return
	}
	s.metrics.RecordWrite()
	writeJSON(w, http.StatusCreated, addDocumentResponse{ID: id})
}

// handleGetDocument handles GET /v1/collections/{collection}/documents/{id}.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	coll, ok := pathCollection(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	doc, err := s.store.Get(r.Context(), coll, id)
	if err != nil {
		writeStoreError(w, r, "get document", err)
		return
	}
	s.metrics.RecordRead()
	writeJSON(w, http.StatusOK, docstore.Snapshot{ID: id, Data: doc})
}

// handleSetDocument handles PUT /v1/collections/{collection}/documents/{id}.
func (s *Server) handleSetDocument(w http.ResponseWriter, r *http.Request) {
	coll, ok := pathCollection(w, r)
	if !ok {
		return
	}
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	if err := s.store.Set(r.Context(), coll, r.PathValue("id"), doc); err != nil {
		writeStoreError(w, r, "set document", err)
		return
	}
	s.metrics.RecordWrite()
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateDocument handles PATCH /v1/collections/{collection}/documents/{id}.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	coll, ok := pathCollection(w, r)
	if !ok {
		return
	}
	fields, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	if err := s.store.Update(r.Context(), coll, r.PathValue("id"), fields); err != nil {
		writeStoreError(w, r, "update document", err)
		return
	}
	s.metrics.RecordWrite()
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteDocument handles DELETE /v1/collections/{collection}/documents/{id}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	coll, ok := pathCollection(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), coll, r.PathValue("id")); err != nil {
		writeStoreError(w, r, "delete document", err)
		return
	}
	s.metrics.RecordWrite()
	w.WriteHeader(http.StatusNoContent)
}
