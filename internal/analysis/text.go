package analysis

import (
	"math"
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// A word token is a run of letters/digits/apostrophes/hyphens that
	// starts and ends on a letter or digit, so stray punctuation runs
	// like "--" never count as words.
	wordRe     = regexp.MustCompile(`[\p{L}\p{N}_](?:[\p{L}\p{N}_'-]*[\p{L}\p{N}_])?`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

// NormalizeWhitespace collapses runs of whitespace to single spaces and
// trims the ends.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// WordCount counts word tokens in text. It uses the same tokenizer as
// UniqueWordRatio so the two metrics are comparable.
func WordCount(text string) int {
	return len(wordRe.FindAllString(text, -1))
}

// SentenceCount counts non-empty segments between runs of terminal
// punctuation. Non-empty text without any terminal punctuation counts
// as a single sentence.
func SentenceCount(text string) int {
	count := 0
	for _, part := range sentenceRe.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// UniqueWordRatio is the ratio of distinct lowercased word tokens to total
// tokens, rounded to 3 decimal places. Empty text yields 0.
func UniqueWordRatio(text string) float64 {
	words := wordRe.FindAllString(text, -1)
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = struct{}{}
	}
	return round3(float64(len(seen)) / float64(len(words)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
