package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/searchfoundry/docsearch/internal/analytics"
	"github.com/searchfoundry/docsearch/internal/searcher"
	"github.com/searchfoundry/docsearch/internal/searcher/cache"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
	"github.com/searchfoundry/docsearch/pkg/logger"
	"github.com/searchfoundry/docsearch/pkg/middleware"
)

// Searcher is the search contract consumed by the HTTP layer.
type Searcher interface {
	Search(ctx context.Context, query string) (*searcher.Result, error)
}

// Tracker receives analytics events from the search endpoint;
// *analytics.Collector satisfies it.
type Tracker interface {
	Track(event any)
}

// Handler exposes the search and cache-admin HTTP endpoints.
type Handler struct {
	searcher  Searcher
	cache     *cache.QueryCache
	collector Tracker
	logger    *slog.Logger
}

// New creates a Handler. cache and collector may be nil.
func New(s Searcher, queryCache *cache.QueryCache, collector Tracker) *Handler {
	return &Handler{
		searcher:  s,
		cache:     queryCache,
		collector: collector,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	result, err := h.searcher.Search(ctx, query)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("search failed", "query", query, "error", err)
		}
		h.writeError(w, status, err.Error())
		return
	}

	latencyMs := time.Since(start).Milliseconds()
	log.Info("search completed",
		"query", query,
		"results", len(result.Results),
		"cached", result.Cached,
		"latency_ms", latencyMs,
	)
	if h.collector != nil {
		// A zero-result search is always a recomputation (empty results are
		// never cached), so zero_result subsumes cache_miss.
		eventType := analytics.EventCacheMiss
		switch {
		case result.Cached:
			eventType = analytics.EventCacheHit
		case result.TotalHits == 0:
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     query,
			TotalHits: result.TotalHits,
			Returned:  len(result.Results),
			LatencyMs: latencyMs,
			CacheHit:  result.Cached,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, result)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate. It is a manual
// operator action; ingest never flushes the cache.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
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
