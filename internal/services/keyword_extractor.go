package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// KeywordExtractor pulls research-topic keywords out of faculty
// biographies. The indexer stores them alongside each entry so the
// index metadata stays searchable by humans, not just by vector.
type KeywordExtractor struct {
	stopWords map[string]bool
	minLength int
}

// NewKeywordExtractor creates a new keyword extractor
func NewKeywordExtractor() *KeywordExtractor {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
		"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
		"this": true, "that": true, "these": true, "those": true, "i": true, "you": true,
		"he": true, "she": true, "it": true, "we": true, "they": true, "my": true,
		"your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
		"dr": true, "professor": true, "faculty": true, "university": true, "department": true,
	}

	return &KeywordExtractor{
		stopWords: stopWords,
		minLength: 3,
	}
}

type keywordCandidate struct {
	word      string
	frequency int
	score     float64
}

// ExtractKeywords returns up to limit keywords from the text, ranked by
// a frequency-weighted part-of-speech score. Nouns dominate; named
// entities get a boost.
func (ke *KeywordExtractor) ExtractKeywords(text string, limit int) ([]string, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	wordFreq := make(map[string]*keywordCandidate)

	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)

		if ke.shouldSkipWord(word, tok.Tag) {
			continue
		}

		score := ke.tagScore(tok.Tag)

		if existing, exists := wordFreq[word]; exists {
			existing.frequency++
			existing.score += score
		} else {
			wordFreq[word] = &keywordCandidate{
				word:      word,
				frequency: 1,
				score:     score,
			}
		}
	}

	// Named entities get higher scores
	for _, ent := range doc.Entities() {
		word := strings.ToLower(ent.Text)
		if len(word) >= ke.minLength && !ke.stopWords[word] {
			if existing, exists := wordFreq[word]; exists {
				existing.score += 2.0
			} else {
				wordFreq[word] = &keywordCandidate{
					word:      word,
					frequency: 1,
					score:     2.0,
				}
			}
		}
	}

	candidates := make([]keywordCandidate, 0, len(wordFreq))
	for _, candidate := range wordFreq {
		candidate.score = candidate.score * float64(candidate.frequency)
		candidates = append(candidates, *candidate)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	keywords := make([]string, len(candidates))
	for i, candidate := range candidates {
		keywords[i] = candidate.word
	}

	return keywords, nil
}

func (ke *KeywordExtractor) shouldSkipWord(word, posTag string) bool {
	if len(word) < ke.minLength {
		return true
	}
	if ke.stopWords[word] {
		return true
	}
	if isPureNumber(word) || isPunctuation(word) {
		return true
	}

	// Determiners, prepositions, conjunctions, pronouns carry no topic signal
	skipTags := map[string]bool{
		"DT": true, "IN": true, "TO": true, "CC": true,
		"PRP": true, "PRP$": true, "WDT": true, "WP": true,
	}
	return skipTags[posTag]
}

func (ke *KeywordExtractor) tagScore(posTag string) float64 {
	switch {
	case strings.HasPrefix(posTag, "NN"): // nouns
		return 1.5
	case strings.HasPrefix(posTag, "JJ"): // adjectives
		return 1.0
	case strings.HasPrefix(posTag, "VB"): // verbs
		return 0.5
	default:
		return 0.25
	}
}

func isPureNumber(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}

func isPunctuation(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
