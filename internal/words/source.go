// internal/words/source.go
//
// Source hands out secret words for rounds.
//
// Rules:
//   - Draws are uniform over the dictionary; a seed makes a draw reproducible.
//   - A word is never issued twice by the same Source while unused words remain.
//   - Once every word has been issued, Policy decides: recycle the list or fail.
//   - Contains checks the full dictionary (issued or not), exact match only.
//
// A Source is not safe for concurrent use; callers serialize access.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var (
	// ErrEmpty is returned when a Source is built from an empty list.
	ErrEmpty = errors.New("words: dictionary is empty")
	// ErrExhausted is returned by NextWord under PolicyError once every word was issued.
	ErrExhausted = errors.New("words: dictionary exhausted")
)

// Policy selects what NextWord does once the dictionary is exhausted.
type Policy int

const (
	// PolicyRecycle forgets issued words and starts over.
	PolicyRecycle Policy = iota
	// PolicyError refuses to draw and returns ErrExhausted.
	PolicyError
)

func (p Policy) String() string {
	switch p {
	case PolicyError:
		return "error"
	default:
		return "recycle"
	}
}

// ParsePolicy maps "recycle"/"error" (case-insensitive) to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recycle":
		return PolicyRecycle, nil
	case "error":
		return PolicyError, nil
	}
	return PolicyRecycle, fmt.Errorf("words: unknown exhaustion policy %q", s)
}

// Source owns the dictionary and the set of words issued so far.
type Source struct {
	words  []string            // distinct words, load order
	all    map[string]struct{} // membership over the full dictionary
	used   map[string]struct{} // issued during this Source's lifetime
	policy Policy
}

// NewSource builds a Source over list. Duplicate entries are collapsed.
func NewSource(list []string, policy Policy) (*Source, error) {
	uniq := lo.Uniq(list)
	if len(uniq) == 0 {
		return nil, ErrEmpty
	}
	return &Source{
		words:  uniq,
		all:    lo.SliceToMap(uniq, func(w string) (string, struct{}) { return w, struct{}{} }),
		used:   make(map[string]struct{}),
		policy: policy,
	}, nil
}

// NextWord draws a word that has not been issued yet and marks it used.
// A non-nil seed makes the sequence of candidate draws deterministic.
func (s *Source) NextWord(seed *int64) (string, error) {
	if len(s.used) >= len(s.words) {
		if s.policy == PolicyError {
			return "", ErrExhausted
		}
		log.Info().Int("words", len(s.words)).Msg("dictionary exhausted, recycling")
		s.used = make(map[string]struct{})
	}

	draw := cryptoIntn
	if seed != nil {
		r := mrand.New(mrand.NewPCG(uint64(*seed), 0))
		draw = r.IntN
	}

	for {
		w := s.words[draw(len(s.words))]
		if _, ok := s.used[w]; !ok {
			s.used[w] = struct{}{}
			return w, nil
		}
	}
}

// Contains reports whether word is in the dictionary. No normalization is applied.
func (s *Source) Contains(word string) bool {
	_, ok := s.all[word]
	return ok
}

// UsedCount is the number of distinct words issued so far.
func (s *Source) UsedCount() int { return len(s.used) }

// Len is the dictionary size.
func (s *Source) Len() int { return len(s.words) }

// Policy reports the configured exhaustion policy.
func (s *Source) Policy() Policy { return s.policy }

// Reserve marks a word restored from persistence as issued so it is not handed out again.
// Words outside the dictionary are ignored.
func (s *Source) Reserve(word string) {
	if s.Contains(word) {
		s.used[word] = struct{}{}
	}
}

// cryptoIntn returns a uniform int in [0, n) from crypto/rand.
func cryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return mrand.IntN(n)
	}
	return int(v.Int64())
}
