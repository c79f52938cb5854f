package search

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// Keyword scoring constants.
const (
	minTermLength      = 3
	occurrenceDivisor  = 10.0
	maxOccurrenceBonus = 0.3
	phraseBonus        = 0.3
	maxFilenameBonus   = 0.2
)

// wordRe matches letter, digit and underscore runs in any script.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "up": {},
	"about": {}, "into": {}, "through": {}, "during": {}, "before": {}, "after": {},
	"above": {}, "below": {}, "between": {}, "among": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "what": {},
	"which": {}, "who": {}, "when": {}, "where": {}, "why": {}, "how": {}, "not": {},
	"no": {}, "yes": {}, "if": {}, "then": {}, "else": {}, "there": {}, "here": {},
}

// extractTerms lower-cases the query and keeps word tokens longer than two
// characters that are not stopwords. Order and duplicates are preserved.
func extractTerms(query string) []string {
	tokens := wordRe.FindAllString(strings.ToLower(query), -1)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) < minTermLength {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// keywordScores computes a lexical match score in [0, 1] per result id.
// Results without any signal are absent from the map and count as 0.
//
// Every entry of terms counts, duplicates included: coverage is matching
// entries over len(terms), and each matching entry adds its density bonus.
// The filename bonus uses the same denominator.
func keywordScores(results []result.Result, terms []string, query string) map[string]float64 {
	scores := make(map[string]float64, len(results))
	if len(terms) == 0 {
		return scores
	}

	total := float64(len(terms))
	phrase := strings.ToLower(strings.TrimSpace(query))

	for _, res := range results {
		text := strings.ToLower(res.Text())
		filename := strings.ToLower(res.Filename())

		var matches, filenameHits int
		var bonus float64
		for _, term := range terms {
			if n := strings.Count(text, term); n > 0 {
				matches++
				bonus += min(float64(n)/occurrenceDivisor, maxOccurrenceBonus)
			}
			if strings.Contains(filename, term) {
				filenameHits++
			}
		}

		score := float64(matches)/total + bonus
		if phrase != "" && strings.Contains(text, phrase) {
			score += phraseBonus
		}
		if filenameHits > 0 {
			score += min(float64(filenameHits)/total, maxFilenameBonus)
		}

		scores[res.ID()] = clamp01(score)
	}
	return scores
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
