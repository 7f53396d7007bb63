// Package index builds the ephemeral inverted index used for scoring.
//
// The index is rebuilt from the full document collection on every cache
// miss and discarded afterwards, so it always reflects the collection
// snapshot at query time. The cost is O(total terms) per rebuild; the
// payoff is that no invalidation or shared mutable state exists.
package index

import (
	"math"

	"github.com/searchfoundry/docsearch/internal/document"
)

// Index maps each term to the set of document ids containing it, along with
// the per-term inverse document frequency over the same snapshot.
type Index struct {
	// Postings maps term -> set of document ids. A document id appears
	// under term t iff t is in that document's terms.
	Postings map[string]map[string]struct{}
	// IDF maps term -> ln(N / (df+1)). The +1 damps the ratio and avoids a
	// zero denominator; terms present in most documents get negative IDF,
	// which scorers must tolerate.
	IDF map[string]float64
	// TotalDocs is the collection size N at build time.
	TotalDocs int
}

// Build constructs the inverted index and IDF table for the given snapshot.
// An empty collection yields empty (non-nil) maps.
func Build(docs []*document.Document) *Index {
	idx := &Index{
		Postings:  make(map[string]map[string]struct{}),
		IDF:       make(map[string]float64),
		TotalDocs: len(docs),
	}
	if len(docs) == 0 {
		return idx
	}

	for _, doc := range docs {
		for _, term := range doc.Terms {
			set, ok := idx.Postings[term]
			if !ok {
				set = make(map[string]struct{})
				idx.Postings[term] = set
			}
			set[doc.ID] = struct{}{}
		}
	}

	n := float64(idx.TotalDocs)
	for term, set := range idx.Postings {
		idx.IDF[term] = math.Log(n / float64(len(set)+1))
	}
	return idx
}

// Candidates returns the union of posting sets for the query terms: every
// document containing at least one query term. Terms absent from the index
// contribute nothing; an empty result is a valid zero-match outcome.
func (idx *Index) Candidates(queryTerms []string) map[string]struct{} {
	candidates := make(map[string]struct{})
	for _, term := range queryTerms {
		for docID := range idx.Postings[term] {
			candidates[docID] = struct{}{}
		}
	}
	return candidates
}

// DocFrequency returns the number of documents containing the term.
func (idx *Index) DocFrequency(term string) int {
	return len(idx.Postings[term])
}
