// Package searcher orchestrates a search request: cache lookup, per-query
// index rebuild, TF-IDF scoring, ranking, and result caching.
package searcher

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/searchfoundry/docsearch/internal/analyzer"
	"github.com/searchfoundry/docsearch/internal/document"
	"github.com/searchfoundry/docsearch/internal/index"
	"github.com/searchfoundry/docsearch/internal/ranker"
	"github.com/searchfoundry/docsearch/internal/searcher/cache"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
	"github.com/searchfoundry/docsearch/pkg/metrics"
	"github.com/searchfoundry/docsearch/pkg/middleware"
	"github.com/searchfoundry/docsearch/pkg/tracing"
)

// Cache is the result-cache contract consumed by the orchestrator.
// *cache.QueryCache satisfies it.
type Cache interface {
	Get(ctx context.Context, query string) (*cache.Entry, bool, error)
	Put(ctx context.Context, query string, entry *cache.Entry) error
}

// Result is the outcome of a search: document summaries in rank order, the
// score per document id, and whether the result came from the cache.
type Result struct {
	Query     string             `json:"query"`
	Results   []document.Summary `json:"results"`
	Scores    map[string]float64 `json:"scores"`
	TotalHits int                `json:"total_hits"`
	Cached    bool               `json:"cached"`
}

// Service composes the analyzer, index builder, ranker, document store, and
// result cache. All steps within one query run sequentially; concurrent
// identical queries are collapsed so the index is built once.
type Service struct {
	store   document.Store
	cache   Cache
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
}

// New creates a search Service. cache and m may be nil (caching and metrics
// disabled respectively).
func New(store document.Store, queryCache Cache, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		cache:   queryCache,
		metrics: m,
		logger:  slog.Default().With("component", "searcher"),
	}
}

// Search runs the full pipeline for the raw query string. The cache key is
// the exact raw query: two queries differing only in case or whitespace are
// distinct entries.
func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, 400, "search query is required")
	}
	start := time.Now()

	if s.cache != nil {
		entry, ok, err := s.cache.Get(ctx, query)
		if err != nil {
			return nil, err
		}
		if ok {
			result, err := s.resolveCached(ctx, query, entry)
			s.observeLatency(result, start)
			return result, err
		}
	}

	// Collapse concurrent identical queries: one rebuild, one cache write.
	v, err, _ := s.group.Do(query, func() (interface{}, error) {
		return s.compute(ctx, query)
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	result := v.(*Result)
	s.observeLatency(result, start)
	return result, nil
}

func (s *Service) observeLatency(result *Result, start time.Time) {
	if s.metrics == nil || result == nil {
		return
	}
	status := "miss"
	if result.Cached {
		status = "hit"
	}
	s.metrics.SearchLatency.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// resolveCached fetches the documents behind a cached entry, preserving the
// cached rank order. Ids that no longer resolve are dropped silently.
func (s *Service) resolveCached(ctx context.Context, query string, entry *cache.Entry) (*Result, error) {
	docs, err := s.store.FindByIDs(ctx, entry.RankedIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*document.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	results := make([]document.Summary, 0, len(entry.RankedIDs))
	for _, id := range entry.RankedIDs {
		if doc, ok := byID[id]; ok {
			results = append(results, doc.Summary())
		}
	}
	if s.metrics != nil {
		s.metrics.CacheHitsTotal.Inc()
		s.metrics.SearchQueriesTotal.WithLabelValues("cache_hit").Inc()
	}
	s.logger.Info("search served from cache", "query", query, "results", len(results))
	return &Result{
		Query:     query,
		Results:   results,
		Scores:    entry.Scores,
		TotalHits: len(results),
		Cached:    true,
	}, nil
}

// compute is the cache-miss path: rebuild the index from the full collection
// snapshot, score the candidates, rank, resolve, and cache a non-empty
// result.
func (s *Service) compute(ctx context.Context, query string) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	defer func() {
		span.End()
		span.Log()
	}()

	if s.cache != nil {
		// A concurrent flight may have cached this query while we waited.
		entry, ok, err := s.cache.Get(ctx, query)
		if err != nil {
			return nil, err
		}
		if ok {
			return s.resolveCached(ctx, query, entry)
		}
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.Inc()
	}

	buildCtx, buildSpan := tracing.StartChildSpan(ctx, "build_index")
	buildStart := time.Now()
	docs, err := s.store.ListAll(buildCtx)
	if err != nil {
		return nil, err
	}
	idx := index.Build(docs)
	buildSpan.SetAttr("documents", len(docs))
	buildSpan.SetAttr("terms", len(idx.Postings))
	buildSpan.End()
	if s.metrics != nil {
		s.metrics.IndexBuildDuration.Observe(time.Since(buildStart).Seconds())
		s.metrics.IndexBuildDocs.Set(float64(len(docs)))
	}

	byID := make(map[string]*document.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	_, scoreSpan := tracing.StartChildSpan(ctx, "score")
	queryTerms := analyzer.Analyze(query)
	scores := ranker.Score(queryTerms, idx, func(docID string) ranker.DocInfo {
		doc := byID[docID]
		return ranker.DocInfo{
			TermFrequency: doc.TermFrequency,
			TermCount:     len(doc.Terms),
		}
	})
	ranked := ranker.Rank(scores)
	scoreSpan.SetAttr("query_terms", len(queryTerms))
	scoreSpan.SetAttr("candidates", len(ranked))
	scoreSpan.End()

	results := make([]document.Summary, 0, len(ranked))
	rankedIDs := make([]string, 0, len(ranked))
	for _, sd := range ranked {
		doc := byID[sd.DocID]
		results = append(results, doc.Summary())
		rankedIDs = append(rankedIDs, sd.DocID)
	}

	// Empty results are never cached: a query that matches nothing today
	// must see documents ingested tomorrow.
	if s.cache != nil && len(results) > 0 {
		if err := s.cache.Put(ctx, query, &cache.Entry{RankedIDs: rankedIDs, Scores: scores}); err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		outcome := "cache_miss"
		if len(results) == 0 {
			outcome = "zero_result"
		}
		s.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
		s.metrics.SearchResultsCount.Observe(float64(len(results)))
	}
	s.logger.Info("search computed",
		"query", query,
		"query_terms", len(queryTerms),
		"documents", len(docs),
		"results", len(results),
	)
	return &Result{
		Query:     query,
		Results:   results,
		Scores:    scores,
		TotalHits: len(results),
		Cached:    false,
	}, nil
}
