// internal/player/record.go
//
// Record is one player's persistent progress.
//
// Round lifecycle:
//   InRound (0 ≤ Guesses < MaxGuesses) → won / lost → NewGame → InRound
//
// Transitions:
//   - GuessMade: Guesses++ (the caller checks ExhaustedGuesses first).
//   - GameWon:   histogram, totals and streak updated; saved round cleared; achievements evaluated.
//   - GameLost:  longest streak folded in, streak reset; totals updated; saved round cleared.
//   - NewGame:   fresh round with a new secret; counters untouched.
//
// A Record is owned by whichever session has the account logged in; it has no locking of its own.

package player

import (
	"time"

	"github.com/robalobadob/wordle/apps/engine/internal/game"
)

// DefaultMaxGuesses is the classic number of attempts per round.
const DefaultMaxGuesses = 6

// Histogram counts wins by the number of guesses used, keyed 1..MaxGuesses.
type Histogram map[int]int

// Round is the saved state of the in-progress round.
type Round struct {
	Secret   string             `json:"secret"`
	Guesses  []string           `json:"guesses"`
	Grid     []game.GuessResult `json:"grid"`
	Keyboard game.Keyboard      `json:"keyboard"`
}

// Active reports whether a round has been started and not yet resolved.
func (r Round) Active() bool { return r.Secret != "" }

// Record holds one account's counters, saved round and achievements.
type Record struct {
	Username     string                 `json:"username"`
	PasswordHash string                 `json:"-"`
	CreatedAt    time.Time              `json:"createdAt"`
	MaxGuesses   int                    `json:"maxGuesses"`
	Guesses      int                    `json:"guesses"`
	Wins         Histogram              `json:"wins"`
	Streak       int                    `json:"streak"`
	Longest      int                    `json:"longestStreak"`
	TotalGames   int                    `json:"totalGames"`
	TotalWins    int                    `json:"totalWins"`
	Round        Round                  `json:"round"`
	Achievements map[AchievementID]bool `json:"achievements"`
}

// NewRecord creates an account record with zeroed counters and a round already started on secret.
func NewRecord(username, passwordHash, secret string, maxGuesses int) *Record {
	if maxGuesses <= 0 {
		maxGuesses = DefaultMaxGuesses
	}
	r := &Record{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
		MaxGuesses:   maxGuesses,
		Wins:         Histogram{},
		Achievements: map[AchievementID]bool{},
	}
	r.NewGame(secret)
	return r
}

// Normalize fills maps and limits that may be missing on a record decoded from storage.
func (r *Record) Normalize() {
	if r.MaxGuesses <= 0 {
		r.MaxGuesses = DefaultMaxGuesses
	}
	if r.Wins == nil {
		r.Wins = Histogram{}
	}
	if r.Achievements == nil {
		r.Achievements = map[AchievementID]bool{}
	}
	if r.Round.Keyboard == nil {
		r.Round.Keyboard = game.Keyboard{}
	}
}

// GuessMade counts one accepted attempt in the current round.
func (r *Record) GuessMade() { r.Guesses++ }

// ExhaustedGuesses reports whether every allowed attempt has been used.
func (r *Record) ExhaustedGuesses() bool { return r.Guesses > r.MaxGuesses-1 }

// RecordGuess saves an accepted attempt into the in-progress round.
func (r *Record) RecordGuess(word string, res game.GuessResult) {
	r.Round.Guesses = append(r.Round.Guesses, word)
	r.Round.Grid = append(r.Round.Grid, res)
	if r.Round.Keyboard == nil {
		r.Round.Keyboard = game.Keyboard{}
	}
	r.Round.Keyboard.Merge(res)
}

// GameWon books a win at the current guess count and returns achievements unlocked by it.
func (r *Record) GameWon() []Unlock {
	if r.Wins == nil {
		r.Wins = Histogram{}
	}
	r.Wins[r.Guesses]++
	r.TotalGames++
	r.TotalWins++
	r.Guesses = 0
	r.Streak++
	r.Round = Round{}
	return DefaultAchievements().Evaluate(r)
}

// GameLost books a loss and resets the streak.
func (r *Record) GameLost() {
	if r.Streak > r.Longest {
		r.Longest = r.Streak
	}
	r.Streak = 0
	r.TotalGames++
	r.Guesses = 0
	r.Round = Round{}
}

// NewGame starts a fresh round on secret without touching win/loss bookkeeping.
func (r *Record) NewGame(secret string) {
	r.Guesses = 0
	r.Round = Round{
		Secret:   secret,
		Guesses:  []string{},
		Grid:     []game.GuessResult{},
		Keyboard: game.Keyboard{},
	}
}

// LongestStreak is the best streak ever observed, including the one in progress.
func (r *Record) LongestStreak() int {
	return max(r.Longest, r.Streak)
}

// WinPercentage is TotalWins / TotalGames × 100, or 0 before the first game.
func (r *Record) WinPercentage() float64 {
	if r.TotalGames == 0 {
		return 0
	}
	return float64(r.TotalWins) / float64(r.TotalGames) * 100
}

// WeightedGuesses is Σ(i × wins at i) over 1..MaxGuesses divided by 1+2+…+MaxGuesses.
// Lower is better; it covers every win ever recorded.
func (r *Record) WeightedGuesses() float64 {
	n := r.MaxGuesses
	if n <= 0 {
		n = DefaultMaxGuesses
	}
	sum := 0
	for i := 1; i <= n; i++ {
		sum += i * r.Wins[i]
	}
	weights := n * (n + 1) / 2
	return float64(sum) / float64(weights)
}

// Stats is a read-only view of a record's counters.
type Stats struct {
	Username        string      `json:"username"`
	TotalGames      int         `json:"totalGames"`
	TotalWins       int         `json:"totalWins"`
	WinPercentage   float64     `json:"winPercentage"`
	Streak          int         `json:"streak"`
	LongestStreak   int         `json:"longestStreak"`
	WeightedGuesses float64     `json:"weightedGuesses"`
	Wins            Histogram   `json:"wins"`
	Achievements    []Milestone `json:"achievements"`
}

// Stats snapshots the record's counters. The histogram is copied.
func (r *Record) Stats() Stats {
	wins := make(Histogram, len(r.Wins))
	for k, v := range r.Wins {
		wins[k] = v
	}
	return Stats{
		Username:        r.Username,
		TotalGames:      r.TotalGames,
		TotalWins:       r.TotalWins,
		WinPercentage:   r.WinPercentage(),
		Streak:          r.Streak,
		LongestStreak:   r.LongestStreak(),
		WeightedGuesses: r.WeightedGuesses(),
		Wins:            wins,
		Achievements:    DefaultAchievements().Milestones(r),
	}
}

// Clone returns a deep copy of the record, credential included.
func (r *Record) Clone() *Record {
	c := *r
	c.Wins = make(Histogram, len(r.Wins))
	for k, v := range r.Wins {
		c.Wins[k] = v
	}
	c.Achievements = make(map[AchievementID]bool, len(r.Achievements))
	for k, v := range r.Achievements {
		c.Achievements[k] = v
	}
	c.Round.Guesses = append([]string(nil), r.Round.Guesses...)
	c.Round.Grid = make([]game.GuessResult, len(r.Round.Grid))
	for i, g := range r.Round.Grid {
		c.Round.Grid[i] = append(game.GuessResult(nil), g...)
	}
	c.Round.Keyboard = make(game.Keyboard, len(r.Round.Keyboard))
	for k, v := range r.Round.Keyboard {
		c.Round.Keyboard[k] = v
	}
	return &c
}
