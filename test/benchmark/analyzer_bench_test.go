// Package benchmark contains Go benchmarks for the text analyzer, the
// per-query index rebuild, and the scoring pipeline, measuring throughput
// and allocation behaviour.
package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/searchfoundry/docsearch/internal/analyzer"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Search services rebuild their inverted index from the full document
        collection on every cache miss. Each document contributes its analyzed
        terms to the postings, and inverse document frequency is computed over
        the same snapshot. Results are ranked by normalized TF-IDF so longer
        documents do not dominate purely through repetition.`,
	"long": strings.Repeat(`Information retrieval systems combine tokenization, stemming,
        and stop word removal to normalize text into searchable terms. The inverted
        index maps each term to the documents containing it. TF-IDF ranking considers
        term frequency, document length normalization, and inverse document frequency
        to produce relevance scores. Caching layers absorb repeated queries while the
        index rebuild keeps results consistent with the stored collection. `, 20),
}

// BenchmarkAnalyze measures the full normalization pipeline over varying
// input sizes.
func BenchmarkAnalyze(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				terms := analyzer.Analyze(text)
				_ = terms
			}
		})
	}
}

// BenchmarkAnalyzeParallel measures concurrent analyzer throughput; the
// pipeline is stateless and must scale with cores.
func BenchmarkAnalyzeParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			terms := analyzer.Analyze(text)
			_ = terms
		}
	})
}

// BenchmarkTermFrequency measures frequency counting over an already
// analyzed term slice.
func BenchmarkTermFrequency(b *testing.B) {
	terms := analyzer.Analyze(sampleTexts["long"])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		freq := analyzer.TermFrequency(terms)
		_ = freq
	}
}

// BenchmarkAnalyzeVaryingSize tracks how analysis cost scales with input
// length.
func BenchmarkAnalyzeVaryingSize(b *testing.B) {
	sizes := []int{100, 1000, 10000, 100000}
	base := "documents ranked by term frequency and inverse document frequency "
	for _, size := range sizes {
		text := strings.Repeat(base, size/len(base)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				terms := analyzer.Analyze(text)
				_ = terms
			}
		})
	}
}
