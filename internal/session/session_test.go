package session

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/engine/internal/events"
	"github.com/robalobadob/wordle/apps/engine/internal/game"
	"github.com/robalobadob/wordle/apps/engine/internal/leaderboard"
	"github.com/robalobadob/wordle/apps/engine/internal/player"
	"github.com/robalobadob/wordle/apps/engine/internal/store"
	"github.com/robalobadob/wordle/apps/engine/internal/words"
)

var testWords = []string{"rainy", "arise", "erase", "speed", "crane", "apple", "table", "slate"}

func newTestEngine(t *testing.T, st store.Store) *Engine {
	t.Helper()
	src, err := words.NewSource(testWords, words.PolicyRecycle)
	require.NoError(t, err)
	return NewEngine(context.Background(), src, st, nil, Options{})
}

func signedUp(t *testing.T, e *Engine, username string) *Session {
	t.Helper()
	s := e.NewSession()
	require.NoError(t, s.CreateAccount(context.Background(), username, "pw"))
	return s
}

func secretOf(s *Session) string { return s.rec.Round.Secret }

// wrongWords returns dictionary words that are not the current secret.
func wrongWords(s *Session) []string {
	secret := secretOf(s)
	return lo.Filter(testWords, func(w string, _ int) bool { return w != secret })
}

func drain(ch <-chan events.Event) []events.Subject {
	var out []events.Subject
	for {
		select {
		case e := <-ch:
			out = append(out, e.Subject)
		default:
			return out
		}
	}
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	s := signedUp(t, e, "john")

	assert.True(t, s.LoggedIn())
	assert.Equal(t, "john", s.Username())
	assert.Equal(t, 1, e.Accounts())
	assert.Contains(t, testWords, secretOf(s))
	assert.Equal(t, []string{"john"}, e.Holders())

	other := e.NewSession()
	err := other.CreateAccount(ctx, "john", "different")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.False(t, other.LoggedIn())
	assert.Equal(t, 1, e.Accounts())

	assert.ErrorIs(t, other.CreateAccount(ctx, "x", "pw"), player.ErrInvalidUsername)
	assert.ErrorIs(t, other.CreateAccount(ctx, "mary", ""), player.ErrInvalidPassword)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	john := signedUp(t, e, "john")

	s := e.NewSession()
	assert.ErrorIs(t, s.Login(ctx, "nobody", "pw"), ErrAccountNotFound)
	assert.ErrorIs(t, s.Login(ctx, "john", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.Login(ctx, "john", "pw"), ErrAccountInUse)

	require.NoError(t, john.Login(ctx, "john", "pw"), "the holder may log in again")
	require.NoError(t, john.Logout(ctx))
	assert.ErrorIs(t, john.Logout(ctx), ErrNotLoggedIn)
	assert.Empty(t, e.Holders())

	require.NoError(t, s.Login(ctx, " john ", "pw"))
	assert.Equal(t, "john", s.Username())
}

func TestLoginResumesSavedRound(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	s := signedUp(t, e, "john")
	secret := secretOf(s)
	first := wrongWords(s)[0]

	_, err := s.SubmitGuess(ctx, first)
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	s2 := e.NewSession()
	require.NoError(t, s2.Login(ctx, "john", "pw"))
	assert.Equal(t, secret, secretOf(s2))
	st := s2.State()
	assert.Equal(t, RoundPlaying, st.Round)
	assert.Equal(t, []string{first}, st.Guesses)
	assert.Len(t, st.Grid, 1)
	assert.Equal(t, player.DefaultMaxGuesses-1, st.Remaining)
	assert.Empty(t, st.Secret)
}

func TestWinInThreeGuesses(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	ch, cancel := e.Bus().Subscribe(64)
	defer cancel()

	s := signedUp(t, e, "john")
	secret := secretOf(s)
	wrong := wrongWords(s)

	for _, w := range wrong[:2] {
		out, err := s.SubmitGuess(ctx, w)
		require.NoError(t, err)
		assert.False(t, out.Result.Solved())
		assert.Equal(t, RoundPlaying, out.State.Round)
		assert.False(t, s.IsRoundOver())
	}

	out, err := s.SubmitGuess(ctx, secret)
	require.NoError(t, err)
	assert.True(t, out.Result.Solved())
	assert.Equal(t, "EEEEE", out.Result.Pattern())
	assert.Equal(t, RoundWon, out.State.Round)
	assert.Equal(t, secret, out.State.Secret)
	assert.Len(t, out.State.Grid, 3)
	assert.Equal(t, 1, out.State.Rank)
	require.NotEmpty(t, out.Unlocked)
	assert.Equal(t, player.FirstWin, out.Unlocked[0].ID)

	assert.True(t, s.IsRoundOver())
	rec := s.rec
	assert.Equal(t, 1, rec.Wins[3])
	assert.Equal(t, 1, rec.TotalWins)
	assert.Equal(t, 1, rec.Streak)
	assert.Equal(t, 0, rec.Guesses)

	_, err = s.SubmitGuess(ctx, secret)
	assert.ErrorIs(t, err, ErrRoundOver)

	subjects := drain(ch)
	assert.Contains(t, subjects, events.AccountCreated)
	assert.Contains(t, subjects, events.RoundStarted)
	assert.Contains(t, subjects, events.GuessScored)
	assert.Contains(t, subjects, events.RoundWon)
	assert.Contains(t, subjects, events.AchievementUnlocked)

	require.NoError(t, s.Restart(ctx))
	assert.False(t, s.IsRoundOver())
	assert.Equal(t, RoundPlaying, s.State().Round)
	assert.NotEqual(t, secret, secretOf(s), "an issued word is not dealt again while others remain")
}

func TestRejectedGuessConsumesNothing(t *testing.T) {
	ctx := context.Background()
	src, err := words.NewSource(append([]string{"cat"}, testWords...), words.PolicyRecycle)
	require.NoError(t, err)
	e := NewEngine(ctx, src, nil, nil, Options{})
	s := e.NewSession()
	require.NoError(t, s.CreateAccount(ctx, "john", "pw"))
	for secretOf(s) == "cat" {
		require.NoError(t, s.Restart(ctx))
	}

	_, err = s.SubmitGuess(ctx, "zzzzz")
	assert.ErrorIs(t, err, game.ErrNotADictionaryWord)
	assert.True(t, IsRejection(err))

	_, err = s.SubmitGuess(ctx, "cat")
	assert.ErrorIs(t, err, game.ErrInvalidGuessLength)

	assert.Equal(t, 0, s.rec.Guesses)
	assert.Empty(t, s.State().Guesses)
}

func TestGuessIsNormalized(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	s := signedUp(t, e, "john")

	w := wrongWords(s)[0]
	out, err := s.SubmitGuess(ctx, "  "+string([]byte{w[0] - 32})+w[1:]+"\n")
	require.NoError(t, err)
	assert.Equal(t, []string{w}, out.State.Guesses)
}

func TestOutOfGuesses(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	s := signedUp(t, e, "john")
	s.rec.Streak = 3
	secret := secretOf(s)
	wrong := wrongWords(s)

	for i := range player.DefaultMaxGuesses {
		_, err := s.SubmitGuess(ctx, wrong[i%len(wrong)])
		require.NoError(t, err)
	}
	assert.True(t, s.IsRoundOver())
	st := s.State()
	assert.Equal(t, RoundLost, st.Round)
	assert.Equal(t, secret, st.Secret)
	assert.Equal(t, 0, st.Remaining)
	assert.Equal(t, 0, s.rec.TotalGames, "the loss is booked on the next attempt")

	_, err := s.SubmitGuess(ctx, secret)
	assert.ErrorIs(t, err, ErrOutOfGuesses)
	assert.Equal(t, 1, s.rec.TotalGames)
	assert.Equal(t, 0, s.rec.TotalWins)
	assert.Equal(t, 0, s.rec.Streak)
	assert.Equal(t, 3, s.rec.Longest)

	_, err = s.SubmitGuess(ctx, secret)
	assert.ErrorIs(t, err, ErrRoundOver)
	assert.Equal(t, 1, s.rec.TotalGames)
}

func TestRestartBooksPendingLoss(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	s := signedUp(t, e, "john")
	wrong := wrongWords(s)

	for i := range player.DefaultMaxGuesses {
		_, err := s.SubmitGuess(ctx, wrong[i%len(wrong)])
		require.NoError(t, err)
	}
	require.NoError(t, s.Restart(ctx))
	assert.Equal(t, 1, s.rec.TotalGames)
	assert.Equal(t, RoundPlaying, s.State().Round)

	// abandoning a round in progress is not a loss
	_, err := s.SubmitGuess(ctx, wrongWords(s)[0])
	require.NoError(t, err)
	require.NoError(t, s.Restart(ctx))
	assert.Equal(t, 1, s.rec.TotalGames)
}

func TestLeaderboardFollowsWins(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	alice := signedUp(t, e, "alice")
	bob := signedUp(t, e, "bob")

	_, err := bob.SubmitGuess(ctx, secretOf(bob))
	require.NoError(t, err)

	board := alice.CurrentLeaderboard()
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Username)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 1, board[0].TotalWins)
	assert.InDelta(t, 1.0/21.0, board[0].WeightedGuesses, 1e-12)
	assert.Equal(t, "alice", board[1].Username)

	_, err = alice.SubmitGuess(ctx, secretOf(alice))
	require.NoError(t, err)
	board = e.Leaderboard()
	assert.Equal(t, []string{"bob", "alice"}, lo.Map(board, func(en leaderboard.Entry, _ int) string { return en.Username }),
		"a tie on both keys keeps the earlier winner on top")
}

func TestRemoveAccount(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	john := signedUp(t, e, "john")
	mary := signedUp(t, e, "mary")

	assert.ErrorIs(t, mary.RemoveAccount(ctx, "nobody"), ErrAccountNotFound)
	assert.ErrorIs(t, mary.RemoveAccount(ctx, "john"), ErrAccountInUse)

	require.NoError(t, john.RemoveAccount(ctx, "john"))
	assert.False(t, john.LoggedIn())
	assert.Equal(t, 1, e.Accounts())
	assert.Len(t, e.Leaderboard(), 1)

	_, err := e.Stats("john")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.ErrorIs(t, john.Login(ctx, "john", "pw"), ErrAccountNotFound)
}

func TestEngineReloadsAccounts(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st)

	john := signedUp(t, e, "john")
	_, err := john.SubmitGuess(ctx, secretOf(john))
	require.NoError(t, err)
	require.NoError(t, john.Logout(ctx))
	mary := signedUp(t, e, "mary")
	pending := secretOf(mary)
	require.NoError(t, mary.Logout(ctx))

	e2 := newTestEngine(t, st)
	assert.Equal(t, 2, e2.Accounts())
	board := e2.Leaderboard()
	require.Len(t, board, 2)
	assert.Equal(t, "john", board[0].Username)

	stats, err := e2.Stats("john")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalWins)

	s := e2.NewSession()
	require.NoError(t, s.Login(ctx, "mary", "pw"))
	assert.Equal(t, pending, secretOf(s))
}

type brokenStore struct{}

func (brokenStore) LoadAll(context.Context) (map[string]*player.Record, error) {
	return nil, errors.New("disk on fire")
}

func (brokenStore) SaveAll(context.Context, map[string]*player.Record) error {
	return errors.New("disk on fire")
}

func TestStoreFailuresDoNotStopPlay(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, brokenStore{})
	assert.Equal(t, 0, e.Accounts())

	s := signedUp(t, e, "john")
	out, err := s.SubmitGuess(ctx, secretOf(s))
	require.NoError(t, err)
	assert.Equal(t, RoundWon, out.State.Round)
}

func TestExhaustedDictionary(t *testing.T) {
	ctx := context.Background()
	src, err := words.NewSource([]string{"rainy", "arise"}, words.PolicyError)
	require.NoError(t, err)
	e := NewEngine(ctx, src, nil, nil, Options{})

	s := e.NewSession()
	require.NoError(t, s.CreateAccount(ctx, "john", "pw"))
	require.NoError(t, s.Restart(ctx))
	assert.ErrorIs(t, s.Restart(ctx), words.ErrExhausted)

	other := e.NewSession()
	assert.ErrorIs(t, other.CreateAccount(ctx, "mary", "pw"), words.ErrExhausted)
	assert.Equal(t, 1, e.Accounts())
}

func TestSeededDraws(t *testing.T) {
	ctx := context.Background()
	seed := int64(42)
	deal := func() string {
		src, err := words.NewSource(testWords, words.PolicyRecycle)
		require.NoError(t, err)
		e := NewEngine(ctx, src, nil, nil, Options{Seed: func() *int64 { return &seed }})
		return secretOf(signedUp(t, e, "john"))
	}
	assert.Equal(t, deal(), deal())
}

func TestLoggedOutSession(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	s := e.NewSession()

	_, err := s.SubmitGuess(ctx, "rainy")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, s.Restart(ctx), ErrNotLoggedIn)
	assert.False(t, s.IsRoundOver())
	assert.Equal(t, RoundNone, s.State().Round)
	assert.Empty(t, s.CurrentLeaderboard())
}
