// internal/game/evaluate.go
//
// Guess evaluation: compares an attempt against the secret word.
//
// Validation:
//   - The attempt must be a dictionary word (checked first; nothing is scored otherwise).
//   - The attempt must be as long as the secret.
//
// Scoring is the classic two-pass algorithm so repeated letters are never over-credited.

package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNotADictionaryWord rejects attempts outside the dictionary. No guess is consumed.
	ErrNotADictionaryWord = errors.New("not in word list")
	// ErrInvalidGuessLength rejects attempts whose length differs from the secret.
	ErrInvalidGuessLength = errors.New("invalid guess length")
)

// Dictionary is the membership check the evaluator delegates to.
type Dictionary interface {
	Contains(word string) bool
}

// Evaluate scores attempt against secret.
func Evaluate(dict Dictionary, attempt, secret string) (GuessResult, error) {
	if !dict.Contains(attempt) {
		return nil, fmt.Errorf("%w: %q", ErrNotADictionaryWord, attempt)
	}
	if len(attempt) != len(secret) {
		return nil, fmt.Errorf("%w: got %d letters, want %d", ErrInvalidGuessLength, len(attempt), len(secret))
	}
	return score(attempt, secret), nil
}

// score implements the two-pass algorithm.
//
// Pass 1:
//   - Mark exact matches and reserve those letters.
//   - Count the remaining (unmatched) secret letters.
//
// Pass 2:
//   - For each non-exact attempt letter: if the letter still has remaining count,
//     mark Present and decrement; otherwise Absent.
func score(attempt, secret string) GuessResult {
	n := len(attempt)
	res := make(GuessResult, n)
	remaining := make(map[byte]int, n)

	for i := 0; i < n; i++ {
		res[i].Letter = string(attempt[i])
		if attempt[i] == secret[i] {
			res[i].Class = Exact
		} else {
			remaining[secret[i]]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i].Class == Exact {
			continue
		}
		c := attempt[i]
		if remaining[c] > 0 {
			res[i].Class = Present
			remaining[c]--
		} else {
			res[i].Class = Absent
		}
	}
	return res
}
