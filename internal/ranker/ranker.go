// Package ranker computes normalized TF-IDF relevance scores over an
// inverted-index snapshot.
package ranker

import (
	"sort"

	"github.com/searchfoundry/docsearch/internal/index"
)

// ScoredDoc is a ranked search result.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// DocInfo supplies the per-document data needed for scoring.
type DocInfo struct {
	TermFrequency map[string]int
	TermCount     int
}

// Score computes a normalized TF-IDF score for every candidate document:
// the documents containing at least one query term. For each candidate,
// score = sum over query term occurrences of tf(term, doc) * idf(term),
// divided by the document's total term count (1 if the document is empty).
//
// A query term absent from a document contributes tf 0; a term absent from
// the index contributes idf 0. Scores may be negative when common terms
// carry negative IDF; they are never clamped. An empty candidate set yields
// an empty map, not an error.
func Score(queryTerms []string, idx *index.Index, getDocInfo func(docID string) DocInfo) map[string]float64 {
	scores := make(map[string]float64)
	for docID := range idx.Candidates(queryTerms) {
		info := getDocInfo(docID)
		var raw float64
		for _, term := range queryTerms {
			tf := info.TermFrequency[term]
			if tf == 0 {
				continue
			}
			raw += float64(tf) * idx.IDF[term]
		}
		length := info.TermCount
		if length == 0 {
			length = 1
		}
		scores[docID] = raw / float64(length)
	}
	return scores
}

// Rank orders the scored documents by descending score. Ties break by
// ascending document id so identical inputs always rank identically.
func Rank(scores map[string]float64) []ScoredDoc {
	ranked := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		ranked = append(ranked, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].DocID < ranked[j].DocID
	})
	return ranked
}
