// Package accuracy grades free-text answers against a target using
// Levenshtein distance, producing a 0-100 similarity percentage and a
// partial-credit classification.
package accuracy

import (
	"math"
	"strings"
)

const (
	// DefaultPartialThreshold marks a near-correct answer for typed input.
	DefaultPartialThreshold int32 = 80
	// ConstructPartialThreshold is the more lenient threshold for
	// drag/construct style exercises.
	ConstructPartialThreshold int32 = 70
)

// Result is the outcome of grading one answer.
type Result struct {
	IsCorrect     bool
	Accuracy      int32
	PartialCredit bool
}

// Scorer grades answers with a configurable partial-credit threshold.
type Scorer struct {
	partialThreshold int32
}

// NewScorer returns a scorer with the default typed-input threshold.
func NewScorer() *Scorer {
	return &Scorer{partialThreshold: DefaultPartialThreshold}
}

// NewConstructScorer returns a scorer for reordering-type input.
func NewConstructScorer() *Scorer {
	return &Scorer{partialThreshold: ConstructPartialThreshold}
}

// Score grades userInput against target. Both strings are normalized
// (trimmed, lowercased, inner whitespace collapsed) before comparison.
// Accuracy is round(100*(maxLen-distance)/maxLen) over runes; two empty
// strings score 100.
func (s *Scorer) Score(userInput, target string) Result {
	input := normalize(userInput)
	want := normalize(target)

	if input == want {
		return Result{IsCorrect: true, Accuracy: 100}
	}

	acc := similarity(input, want)
	return Result{
		Accuracy:      acc,
		PartialCredit: acc >= s.partialThreshold,
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

func similarity(a, b string) int32 {
	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein(ra, rb)
	return int32(math.Round(100 * float64(maxLen-dist) / float64(maxLen)))
}

// levenshtein computes the classic edit distance using two rolling rows.
func levenshtein(a, b []rune) int {
	cols := len(b) + 1
	prev := make([]int, cols)
	curr := make([]int, cols)
	for j := 0; j < cols; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j < cols; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(
				curr[j-1]+1,    // insertion
				prev[j]+1,      // deletion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[cols-1]
}

func minOf(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
