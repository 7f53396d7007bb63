package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeNormalizes(t *testing.T) {
	terms := Analyze("Running QUICKLY through the Index!")

	// "the" and "through" are stop words; the rest is lower-cased and stemmed.
	assert.Equal(t, []string{"run", "quick", "index"}, terms)
}

func TestAnalyzeSplitsOnNonAlphanumeric(t *testing.T) {
	terms := Analyze("cache-friendly,index/build_time")
	assert.Equal(t, []string{"cach", "friend", "index", "build", "time"}, terms)
}

func TestAnalyzeDropsShortAndNonASCIITokens(t *testing.T) {
	terms := Analyze("I x café naïve db")

	// "i" and "x" are too short, accented tokens are not ASCII alphanumeric.
	assert.Equal(t, []string{"db"}, terms)
}

func TestAnalyzeKeepsDigits(t *testing.T) {
	terms := Analyze("ipv6 http2 42")
	assert.Equal(t, []string{"ipv6", "http2", "42"}, terms)
}

func TestAnalyzeRemovesStopWordsBeforeStemming(t *testing.T) {
	// "being" is a stop word and must be removed as-is, not stemmed first.
	terms := Analyze("being indexed")
	assert.Equal(t, []string{"index"}, terms)
}

func TestAnalyzePreservesDuplicatesAndOrder(t *testing.T) {
	terms := Analyze("search search engine search")
	assert.Equal(t, []string{"search", "search", "engin", "search"}, terms)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "...", "the of and"} {
		terms := Analyze(input)
		require.NotNil(t, terms, "input %q", input)
		assert.Empty(t, terms, "input %q", input)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	const text = "Document retrieval is the process of matching and ranking documents."
	first := Analyze(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Analyze(text))
	}
}

func TestTermFrequency(t *testing.T) {
	terms := Analyze("search engines help searching the search index")
	freq := TermFrequency(terms)

	assert.Equal(t, 3, freq["search"])
	assert.Equal(t, 1, freq["engin"])
	assert.Equal(t, 1, freq["index"])

	total := 0
	for _, n := range freq {
		total += n
	}
	assert.Equal(t, len(terms), total, "frequencies must sum to the term count")
}

func TestTermFrequencyEmpty(t *testing.T) {
	freq := TermFrequency(nil)
	require.NotNil(t, freq)
	assert.Empty(t, freq)
}

func TestAnalyzeLongText(t *testing.T) {
	text := strings.Repeat("indexing documents efficiently ", 500)
	terms := Analyze(text)
	assert.Len(t, terms, 1500)
}
