// internal/game/types.go
//
// Core type definitions for guess evaluation.
// Defines:
//   - Classification: per-letter result of a guess (exact/present/absent).
//   - LetterResult / GuessResult: the scored attempt, in attempt order.
//   - Keyboard: best classification seen per letter across a round.

package game

import "strings"

// Classification represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "exact":   letter is correct and in the correct position.
//   - "present": letter occurs elsewhere in the secret with unmatched occurrences left.
//   - "absent":  letter is not in the secret, or all its occurrences are already matched.
type Classification string

const (
	Exact   Classification = "exact"
	Present Classification = "present"
	Absent  Classification = "absent"
)

// rank orders classifications for keyboard merging.
func (c Classification) rank() int {
	switch c {
	case Exact:
		return 3
	case Present:
		return 2
	case Absent:
		return 1
	}
	return 0
}

// LetterResult pairs an attempt letter with its classification.
type LetterResult struct {
	Letter string         `json:"letter"`
	Class  Classification `json:"class"`
}

// GuessResult is one scored attempt, one entry per position.
type GuessResult []LetterResult

// Solved reports whether every position is Exact.
func (g GuessResult) Solved() bool {
	if len(g) == 0 {
		return false
	}
	for _, lr := range g {
		if lr.Class != Exact {
			return false
		}
	}
	return true
}

// Classes returns the classifications in position order.
func (g GuessResult) Classes() []Classification {
	out := make([]Classification, len(g))
	for i, lr := range g {
		out[i] = lr.Class
	}
	return out
}

// Pattern renders the result as E/P/A characters, e.g. "PPEAA".
func (g GuessResult) Pattern() string {
	var b strings.Builder
	for _, lr := range g {
		switch lr.Class {
		case Exact:
			b.WriteByte('E')
		case Present:
			b.WriteByte('P')
		default:
			b.WriteByte('A')
		}
	}
	return b.String()
}

// Keyboard is the letter-status snapshot shown alongside the grid.
type Keyboard map[string]Classification

// Merge folds a result into the keyboard, keeping the strongest classification per letter.
func (k Keyboard) Merge(g GuessResult) {
	for _, lr := range g {
		if lr.Class.rank() > k[lr.Letter].rank() {
			k[lr.Letter] = lr.Class
		}
	}
}
