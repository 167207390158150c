package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chatvault/chatvault/internal/archive"
	"github.com/chatvault/chatvault/internal/extract"
	"github.com/chatvault/chatvault/internal/search"
)

// errorResponse is the JSON error body for all API errors.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Too late to change the status; nothing useful to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeStoreError maps store error kinds onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, archive.ErrUnknownDataset):
		writeError(w, http.StatusNotFound, "unknown_dataset", err.Error())
	case errors.Is(err, archive.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, archive.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// handleUpload ingests a raw HTML export. The body is the markup itself;
// ?name= sets the display name and ?replace=1 reuses the fileId of an
// existing dataset with the same name.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "oversized_input",
				"upload exceeds the configured size cap")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read request body")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "upload.html"
	}

	messages := extract.Extract(string(raw))
	if len(messages) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "extraction_empty",
			"no message blocks recognized in the uploaded markup")
		return
	}

	var fileID string
	if r.URL.Query().Get("replace") == "1" {
		id, ok, err := s.store.ResolveFileID(r.Context(), name)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if ok {
			fileID = id
		}
	}

	meta, err := s.store.Put(r.Context(), fileID, name, raw, messages, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.logger.Info("dataset imported",
		"file_id", meta.FileID,
		"name", meta.OriginalName,
		"messages", meta.MessageCount,
	)
	writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	metas, err := s.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if metas == nil {
		metas = []archive.DatasetMeta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	meta := archive.ComputeMeta(ds.FileID, ds.OriginalName, ds.CreatedAtMs, ds.Messages)
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("dataset removed", "file_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "file_id": id})
}

// handleSearchDataset runs a query against one dataset. An unknown dataset
// is a 404, distinct from a valid search with zero hits.
func (s *Server) handleSearchDataset(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	ds, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	res, err := search.Run(ds.Messages, q)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSearchAll runs the merge search across every stored dataset.
func (s *Server) handleSearchAll(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	metas, err := s.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	datasets := make([]search.DatasetMessages, 0, len(metas))
	for _, m := range metas {
		ds, err := s.store.Get(r.Context(), m.FileID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		datasets = append(datasets, search.DatasetMessages{
			FileID:   ds.FileID,
			FileName: ds.OriginalName,
			Messages: ds.Messages,
		})
	}

	res, err := search.RunAll(r.Context(), datasets, q)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ref := chi.URLParam(r, "*")

	data, ok, err := s.store.Attachment(r.Context(), id, ref)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_attachment", "no attachment matches "+ref)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// statsResponse aggregates totals across every stored dataset.
type statsResponse struct {
	Datasets    int `json:"datasets"`
	Messages    int `json:"messages"`
	Attachments int `json:"attachments"`
	Senders     int `json:"senders"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	metas, err := s.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	stats := statsResponse{Datasets: len(metas)}
	senders := make(map[string]bool)
	for _, m := range metas {
		stats.Messages += m.MessageCount
		for _, sender := range m.Senders {
			senders[sender] = true
		}
		ds, err := s.store.Get(r.Context(), m.FileID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		stats.Attachments += len(ds.Attachments)
	}
	stats.Senders = len(senders)

	writeJSON(w, http.StatusOK, stats)
}

// queryFromRequest builds a search query from URL parameters. Pagination
// defaults to the first 50 hits; explicit invalid values are rejected.
func queryFromRequest(r *http.Request) (search.Query, error) {
	params := r.URL.Query()

	mode, err := search.ParseMatchMode(params.Get("mode"))
	if err != nil {
		return search.Query{}, err
	}

	q := search.Query{
		Text:    params.Get("q"),
		Exclude: params.Get("exclude"),
		Mode:    mode,
		Sender:  params.Get("sender"),
		Offset:  0,
		Limit:   50,
	}

	if v := params.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return search.Query{}, fmt.Errorf("%w: offset %q is not an integer", archive.ErrInvalidQuery, v)
		}
		q.Offset = n
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return search.Query{}, fmt.Errorf("%w: limit %q is not an integer", archive.ErrInvalidQuery, v)
		}
		q.Limit = n
	}
	if v := params.Get("from_ms"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return search.Query{}, fmt.Errorf("%w: from_ms %q is not epoch milliseconds", archive.ErrInvalidQuery, v)
		}
		q.FromMs = &ms
	}
	if v := params.Get("to_ms"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return search.Query{}, fmt.Errorf("%w: to_ms %q is not epoch milliseconds", archive.ErrInvalidQuery, v)
		}
		q.ToMs = &ms
	}

	return q, q.Validate()
}
