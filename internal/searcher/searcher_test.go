package searcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchfoundry/docsearch/internal/analyzer"
	"github.com/searchfoundry/docsearch/internal/document"
	"github.com/searchfoundry/docsearch/internal/searcher/cache"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
)

// fakeStore is an in-memory document.Store that counts snapshot reads.
// listDelay slows ListAll down to widen concurrency windows.
type fakeStore struct {
	docs      []*document.Document
	listErr   error
	listDelay time.Duration
	listRead  atomic.Int64
}

func (s *fakeStore) Create(ctx context.Context, title, content string, terms []string, termFrequency map[string]int) (*document.Document, error) {
	doc := &document.Document{
		ID:            fmt.Sprintf("doc-%d", len(s.docs)+1),
		Title:         title,
		Content:       content,
		Terms:         terms,
		TermFrequency: termFrequency,
	}
	s.docs = append(s.docs, doc)
	return doc, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*document.Document, error) {
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrDocumentNotFound, 404, "document not found")
}

func (s *fakeStore) ListAll(ctx context.Context) ([]*document.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.listDelay > 0 {
		time.Sleep(s.listDelay)
	}
	s.listRead.Add(1)
	return s.docs, nil
}

func (s *fakeStore) FindByIDs(ctx context.Context, ids []string) ([]*document.Document, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*document.Document
	for _, doc := range s.docs {
		if _, ok := want[doc.ID]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// fakeCache is an in-memory Cache with injectable failures and a write
// counter.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*cache.Entry
	getErr  error
	putErr  error
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*cache.Entry)}
}

func (c *fakeCache) Get(ctx context.Context, query string) (*cache.Entry, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[query]
	return entry, ok, nil
}

func (c *fakeCache) Put(ctx context.Context, query string, entry *cache.Entry) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = entry
	c.puts++
	return nil
}

func (c *fakeCache) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

func seedStore(t *testing.T, contents map[string]string) *fakeStore {
	t.Helper()
	store := &fakeStore{}
	// Deterministic ids: seed in sorted title order.
	titles := make([]string, 0, len(contents))
	for title := range contents {
		titles = append(titles, title)
	}
	for i := 0; i < len(titles); i++ {
		for j := i + 1; j < len(titles); j++ {
			if titles[j] < titles[i] {
				titles[i], titles[j] = titles[j], titles[i]
			}
		}
	}
	for _, title := range titles {
		terms := analyzer.Analyze(contents[title])
		_, err := store.Create(context.Background(), title, contents[title], terms, analyzer.TermFrequency(terms))
		require.NoError(t, err)
	}
	return store
}

func sampleStore(t *testing.T) *fakeStore {
	return seedStore(t, map[string]string{
		"Doc 1": "This is a sample document about information retrieval systems. These systems are designed to retrieve information from a collection of documents.",
		"Doc 2": "Search engines are examples of information retrieval systems that help users find relevant information on the web.",
		"Doc 3": "Document retrieval is the process of matching and ranking documents based on their relevance to a user query.",
		"Doc 4": "TF-IDF is a numerical statistic that reflects how important a word is to a document in a collection.",
		"Doc 5": "Indexing is an important part of information retrieval systems as it allows for efficient searching.",
	})
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := New(sampleStore(t), newFakeCache(), nil)

	_, err := svc.Search(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSearchRanksMostRelevantFirst(t *testing.T) {
	svc := New(sampleStore(t), newFakeCache(), nil)

	result, err := svc.Search(context.Background(), "search engines")
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "Doc 2", result.Results[0].Title,
		"the document matching both query terms must rank first")
	assert.Equal(t, "Doc 5", result.Results[1].Title)
	assert.False(t, result.Cached)
	assert.Equal(t, 2, result.TotalHits)
	assert.Greater(t, result.Scores[result.Results[0].ID], result.Scores[result.Results[1].ID])
}

func TestSearchCachesAndReplays(t *testing.T) {
	store := sampleStore(t)
	qc := newFakeCache()
	svc := New(store, qc, nil)

	first, err := svc.Search(context.Background(), "information retrieval")
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)
	assert.False(t, first.Cached)

	second, err := svc.Search(context.Background(), "information retrieval")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Results, second.Results, "replay must preserve rank order")
	assert.Equal(t, first.Scores, second.Scores)
	assert.EqualValues(t, 1, store.listRead.Load(), "a cache hit must not rebuild the index")
}

func TestSearchCollapsesConcurrentIdenticalQueries(t *testing.T) {
	store := sampleStore(t)
	store.listDelay = 50 * time.Millisecond
	qc := newFakeCache()
	svc := New(store, qc, nil)

	const callers = 20
	results := make([]*Result, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Search(context.Background(), "search")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].Results, results[i].Results,
			"every caller must see the same ranking")
	}
	assert.EqualValues(t, 1, store.listRead.Load(),
		"concurrent identical queries share a single snapshot read")
	assert.Equal(t, 1, qc.putCount(),
		"concurrent identical queries produce a single cache write")
}

func TestSearchCacheKeyIsRawQuery(t *testing.T) {
	qc := newFakeCache()
	svc := New(sampleStore(t), qc, nil)

	_, err := svc.Search(context.Background(), "search")
	require.NoError(t, err)
	result, err := svc.Search(context.Background(), "Search ")
	require.NoError(t, err)

	// Same terms after analysis, but a different raw string is a miss.
	assert.False(t, result.Cached)
	assert.Contains(t, qc.entries, "search")
	assert.Contains(t, qc.entries, "Search ")
}

func TestSearchZeroResultsNotCached(t *testing.T) {
	qc := newFakeCache()
	svc := New(sampleStore(t), qc, nil)

	for i := 0; i < 2; i++ {
		result, err := svc.Search(context.Background(), "zebra quantum")
		require.NoError(t, err)
		assert.Empty(t, result.Results)
		assert.Zero(t, result.TotalHits)
		assert.False(t, result.Cached, "a zero-result query is recomputed every time")
	}
	assert.Empty(t, qc.entries)
}

func TestSearchDropsUnresolvableCachedIDs(t *testing.T) {
	store := sampleStore(t)
	qc := newFakeCache()
	qc.entries["stale"] = &cache.Entry{
		RankedIDs: []string{"doc-deleted", "doc-2"},
		Scores:    map[string]float64{"doc-deleted": 0.9, "doc-2": 0.5},
	}
	svc := New(store, qc, nil)

	result, err := svc.Search(context.Background(), "stale")
	require.NoError(t, err)
	assert.True(t, result.Cached)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "doc-2", result.Results[0].ID)
}

func TestSearchWithoutCache(t *testing.T) {
	store := sampleStore(t)
	svc := New(store, nil, nil)

	for i := 0; i < 2; i++ {
		result, err := svc.Search(context.Background(), "search engines")
		require.NoError(t, err)
		assert.False(t, result.Cached)
		assert.NotEmpty(t, result.Results)
	}
	assert.EqualValues(t, 2, store.listRead.Load(), "without a cache every search rebuilds")
}

func TestSearchCacheGetFailurePropagates(t *testing.T) {
	qc := newFakeCache()
	qc.getErr = apperrors.New(apperrors.ErrStoreFailure, 502, "cache get: connection refused")
	svc := New(sampleStore(t), qc, nil)

	_, err := svc.Search(context.Background(), "search")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreFailure)
}

func TestSearchCachePutFailurePropagates(t *testing.T) {
	qc := newFakeCache()
	qc.putErr = apperrors.New(apperrors.ErrStoreFailure, 502, "cache put: connection refused")
	svc := New(sampleStore(t), qc, nil)

	_, err := svc.Search(context.Background(), "search")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreFailure)
}

func TestSearchStoreFailurePropagates(t *testing.T) {
	store := sampleStore(t)
	store.listErr = errors.New("connection reset")
	svc := New(store, newFakeCache(), nil)

	_, err := svc.Search(context.Background(), "search")
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
}

func TestSearchSeesNewDocumentsOnMiss(t *testing.T) {
	store := seedStore(t, map[string]string{
		"Doc A": "caching strategies for search services",
	})
	svc := New(store, nil, nil)

	first, err := svc.Search(context.Background(), "caching")
	require.NoError(t, err)
	require.Len(t, first.Results, 1)

	terms := analyzer.Analyze("more notes on caching and eviction")
	_, err = store.Create(context.Background(), "Doc B", "more notes on caching and eviction", terms, analyzer.TermFrequency(terms))
	require.NoError(t, err)

	second, err := svc.Search(context.Background(), "caching")
	require.NoError(t, err)
	assert.Len(t, second.Results, 2, "each miss rebuilds from the current snapshot")
}
