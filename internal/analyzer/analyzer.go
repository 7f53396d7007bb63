// Package analyzer turns raw text into the normalized terms used for
// indexing and matching. The pipeline lower-cases input, splits on
// non-alphanumeric boundaries, drops short and non-alphanumeric tokens,
// removes English stop-words, and stems with the snowball English stemmer.
//
// Documents and queries must go through the same pipeline: a document's
// stored terms and term frequencies are only comparable to query terms
// produced by the same Analyze call chain.
package analyzer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Analyze breaks text into an ordered slice of normalized terms. Duplicates
// are preserved and order follows first occurrence in the source text.
// Empty input yields an empty (non-nil) slice.
func Analyze(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words)/2)
	for _, word := range words {
		if len(word) < 2 || !isAlphanumeric(word) {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		stemmed := english.Stem(word, false)
		if stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// TermFrequency counts occurrences of each term in the given sequence.
func TermFrequency(terms []string) map[string]int {
	freq := make(map[string]int, len(terms))
	for _, term := range terms {
		freq[term]++
	}
	return freq
}

// isAlphanumeric reports whether the word consists solely of ASCII
// letters and digits. Tokens with symbols or non-ASCII runes are dropped.
func isAlphanumeric(word string) bool {
	for i := 0; i < len(word); i++ {
		c := word[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
