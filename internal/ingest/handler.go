package ingest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/searchfoundry/docsearch/internal/analytics"
	"github.com/searchfoundry/docsearch/internal/document"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
	"github.com/searchfoundry/docsearch/pkg/logger"
)

// Handler exposes the document ingestion and retrieval HTTP endpoints.
type Handler struct {
	service   *Service
	store     document.Store
	collector *analytics.Collector
	sampleDir string
	logger    *slog.Logger
}

// NewHandler creates a Handler. collector may be nil (analytics disabled).
func NewHandler(service *Service, store document.Store, collector *analytics.Collector, sampleDir string) *Handler {
	return &Handler{
		service:   service,
		store:     store,
		collector: collector,
		sampleDir: sampleDir,
		logger:    slog.Default().With("component", "ingest-handler"),
	}
}

// Ingest handles POST /api/v1/documents.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	doc, err := h.service.IndexDocument(ctx, &req)
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}
	h.track(doc)
	h.writeJSON(w, http.StatusCreated, map[string]any{"document": doc})
}

// IngestBulk handles POST /api/v1/documents/bulk.
func (h *Handler) IngestBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req struct {
		Documents []Request `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Documents == nil {
		h.writeError(w, http.StatusBadRequest, "expected a JSON body with a documents array")
		return
	}
	docs, err := h.service.IndexMany(ctx, req.Documents)
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}
	for _, doc := range docs {
		h.track(doc)
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"count":     len(docs),
		"documents": docs,
	})
}

// LoadSamples handles POST /api/v1/documents/load-sample.
func (h *Handler) LoadSamples(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	docs, err := h.service.LoadSamples(ctx, h.sampleDir)
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}
	for _, doc := range docs {
		h.track(doc)
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"count":     len(docs),
		"documents": docs,
	})
}

// List handles GET /api/v1/documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	summaries := make([]document.Summary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, doc.Summary())
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(summaries),
		"documents": summaries,
	})
}

// Get handles GET /api/v1/documents/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, logger.FromContext(r.Context()), err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"document": doc})
}

func (h *Handler) track(doc *document.Document) {
	if h.collector == nil {
		return
	}
	h.collector.Track(analytics.IndexEvent{
		Type:       analytics.EventIndexDoc,
		DocumentID: doc.ID,
		Title:      doc.Title,
		TermCount:  len(doc.Terms),
		Timestamp:  time.Now().UTC(),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := apperrors.HTTPStatusCode(err)
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}
	if status >= http.StatusInternalServerError {
		log.Error("ingest request failed", "error", err, "status_code", status)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
