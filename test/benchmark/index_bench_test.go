package benchmark

import (
	"fmt"
	"testing"

	"github.com/searchfoundry/docsearch/internal/analyzer"
	"github.com/searchfoundry/docsearch/internal/document"
	"github.com/searchfoundry/docsearch/internal/index"
	"github.com/searchfoundry/docsearch/internal/ranker"
)

// collection builds n analyzed documents cycling through the sample texts.
func collection(n int) []*document.Document {
	texts := []string{sampleTexts["short"], sampleTexts["medium"]}
	docs := make([]*document.Document, 0, n)
	for i := 0; i < n; i++ {
		terms := analyzer.Analyze(texts[i%len(texts)])
		docs = append(docs, &document.Document{
			ID:            fmt.Sprintf("doc-%d", i),
			Terms:         terms,
			TermFrequency: analyzer.TermFrequency(terms),
		})
	}
	return docs
}

// BenchmarkIndexBuild measures the per-query rebuild cost at several
// collection sizes. This is the dominant cost of a cache miss.
func BenchmarkIndexBuild(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		docs := collection(size)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				idx := index.Build(docs)
				_ = idx
			}
		})
	}
}

// BenchmarkScoreAndRank measures scoring and ordering over a prebuilt index.
func BenchmarkScoreAndRank(b *testing.B) {
	docs := collection(10000)
	idx := index.Build(docs)
	byID := make(map[string]*document.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	queryTerms := analyzer.Analyze("document frequency ranking")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scores := ranker.Score(queryTerms, idx, func(id string) ranker.DocInfo {
			doc := byID[id]
			return ranker.DocInfo{TermFrequency: doc.TermFrequency, TermCount: len(doc.Terms)}
		})
		ranked := ranker.Rank(scores)
		_ = ranked
	}
}

// BenchmarkCandidates measures posting-set union cost for multi-term queries.
func BenchmarkCandidates(b *testing.B) {
	idx := index.Build(collection(10000))
	queryTerms := analyzer.Analyze("inverted index rebuild frequency")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		candidates := idx.Candidates(queryTerms)
		_ = candidates
	}
}
