package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setDict map[string]struct{}

func (d setDict) Contains(w string) bool {
	_, ok := d[w]
	return ok
}

func dict(words ...string) setDict {
	d := setDict{}
	for _, w := range words {
		d[w] = struct{}{}
	}
	return d
}

func TestEvaluate(t *testing.T) {
	d := dict("arise", "rainy", "speed", "erase", "sleep", "eerie", "apple")

	tests := []struct {
		name    string
		attempt string
		secret  string
		want    []Classification
	}{
		{
			name:    "straightforward",
			attempt: "arise",
			secret:  "rainy",
			want:    []Classification{Present, Present, Exact, Absent, Absent},
		},
		{
			name:    "duplicate attempt letter with two secret occurrences",
			attempt: "speed",
			secret:  "erase",
			want:    []Classification{Present, Absent, Present, Present, Absent},
		},
		{
			name:    "exact matches reserved before present",
			attempt: "sleep",
			secret:  "speed",
			want:    []Classification{Exact, Absent, Exact, Exact, Present},
		},
		{
			name:    "third copy of a letter marked absent",
			attempt: "eerie",
			secret:  "speed",
			want:    []Classification{Present, Present, Absent, Absent, Absent},
		},
		{
			name:    "solved",
			attempt: "apple",
			secret:  "apple",
			want:    []Classification{Exact, Exact, Exact, Exact, Exact},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(d, tt.attempt, tt.secret)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Classes())
			for i, lr := range got {
				assert.Equal(t, string(tt.attempt[i]), lr.Letter)
			}
		})
	}
}

// Present is never awarded more often than the letter remains after exact hits.
func TestEvaluateNeverOverCredits(t *testing.T) {
	words := []string{"speed", "erase", "sleep", "geese", "eerie", "elder", "level", "eagle"}
	d := dict(words...)
	for _, secret := range words {
		for _, attempt := range words {
			got, err := Evaluate(d, attempt, secret)
			require.NoError(t, err)

			credited := map[string]int{}
			for _, lr := range got {
				if lr.Class != Absent {
					credited[lr.Letter]++
				}
			}
			for letter, n := range credited {
				inSecret := 0
				for i := range secret {
					if string(secret[i]) == letter {
						inSecret++
					}
				}
				assert.LessOrEqual(t, n, inSecret, "%s vs %s: letter %s", attempt, secret, letter)
			}
		}
	}
}

func TestEvaluateRejectsUnknownWord(t *testing.T) {
	d := dict("rainy", "arise")
	for _, secret := range []string{"rainy", "arise"} {
		got, err := Evaluate(d, "zzzzz", secret)
		assert.ErrorIs(t, err, ErrNotADictionaryWord)
		assert.Nil(t, got)
	}
}

func TestEvaluateRejectsLengthMismatch(t *testing.T) {
	d := dict("rain", "rainy")
	_, err := Evaluate(d, "rain", "rainy")
	assert.ErrorIs(t, err, ErrInvalidGuessLength)
}

func TestGuessResultHelpers(t *testing.T) {
	d := dict("arise", "rainy")
	got, err := Evaluate(d, "arise", "rainy")
	require.NoError(t, err)
	assert.Equal(t, "PPEAA", got.Pattern())
	assert.False(t, got.Solved())

	solved, err := Evaluate(d, "rainy", "rainy")
	require.NoError(t, err)
	assert.True(t, solved.Solved())
	assert.False(t, GuessResult{}.Solved())
}

func TestKeyboardMerge(t *testing.T) {
	d := dict("arise", "rainy", "raise")
	kb := Keyboard{}

	first, err := Evaluate(d, "arise", "rainy")
	require.NoError(t, err)
	kb.Merge(first)
	assert.Equal(t, Present, kb["r"])
	assert.Equal(t, Absent, kb["s"])

	second, err := Evaluate(d, "raise", "rainy")
	require.NoError(t, err)
	kb.Merge(second)
	assert.Equal(t, Exact, kb["r"], "upgraded to exact")
	assert.Equal(t, Exact, kb["a"])
	assert.Equal(t, Absent, kb["e"])

	kb.Merge(first)
	assert.Equal(t, Exact, kb["r"], "never downgraded")
}
