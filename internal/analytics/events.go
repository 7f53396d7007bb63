// Package analytics collects search and ingest events, ships them to Kafka,
// and aggregates them into the stats served by the analytics endpoint.
package analytics

import "time"

type EventType string

const (
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventIndexDoc   EventType = "index_document"
	EventZeroResult EventType = "zero_result"
)

// SearchEvent records one search request.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// IndexEvent records one document ingestion.
type IndexEvent struct {
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	TermCount  int       `json:"term_count"`
	Timestamp  time.Time `json:"timestamp"`
}
