// internal/session/session.go
//
// Session is one client's view of the Engine: at most one logged-in account and its round.
//
// Round flow:
//   Login/CreateAccount → playing → SubmitGuess … → won | exhausted → (next submit) lost
//   Restart → playing (a pending loss is booked first)
//
// A round is over once it is won, lost, or every guess has been used. After exhaustion the
// loss is booked by the next SubmitGuess (which returns ErrOutOfGuesses) or by Restart.

package session

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/engine/internal/events"
	"github.com/robalobadob/wordle/apps/engine/internal/game"
	"github.com/robalobadob/wordle/apps/engine/internal/leaderboard"
	"github.com/robalobadob/wordle/apps/engine/internal/player"
)

// RoundState is the outward state of the current round.
type RoundState string

const (
	RoundNone    RoundState = "none"
	RoundPlaying RoundState = "playing"
	RoundWon     RoundState = "won"
	RoundLost    RoundState = "lost"
)

// Session drives rounds for one logged-in account.
type Session struct {
	ID string

	eng     *Engine
	rec     *player.Record
	roundID string
	won     bool
	lost    bool
	// finished keeps the last round on screen after GameWon/GameLost clears it from the record.
	finished player.Round
}

// State is a snapshot of the session for presentation.
type State struct {
	SessionID  string             `json:"sessionId"`
	RoundID    string             `json:"roundId,omitempty"`
	Username   string             `json:"username,omitempty"`
	Round      RoundState         `json:"round"`
	Guesses    []string           `json:"guesses"`
	Grid       []game.GuessResult `json:"grid"`
	Keyboard   game.Keyboard      `json:"keyboard"`
	MaxGuesses int                `json:"maxGuesses"`
	Remaining  int                `json:"remaining"`
	Secret     string             `json:"secret,omitempty"`
	Rank       int                `json:"rank,omitempty"`
	Stats      *player.Stats      `json:"stats,omitempty"`
}

// Outcome is the result of an accepted guess.
type Outcome struct {
	Result   game.GuessResult `json:"result"`
	Unlocked []player.Unlock  `json:"unlocked,omitempty"`
	State    State            `json:"state"`
}

// Username of the logged-in account, or "".
func (s *Session) Username() string {
	if s.rec == nil {
		return ""
	}
	return s.rec.Username
}

// LoggedIn reports whether the session holds an account.
func (s *Session) LoggedIn() bool { return s.rec != nil }

// CreateAccount registers username and logs this session into it with a fresh round.
func (s *Session) CreateAccount(ctx context.Context, username, password string) error {
	e := s.eng
	username = player.NormalizeUsername(username)
	if err := player.ValidateCredentials(username, password); err != nil {
		return err
	}
	if _, exists := e.accounts[username]; exists {
		return ErrDuplicateUsername
	}

	hash, err := player.HashPassword(password)
	if err != nil {
		return err
	}
	secret, err := e.draw()
	if err != nil {
		return err
	}

	if s.rec != nil {
		s.release(ctx)
	}

	rec := player.NewRecord(username, hash, secret, e.maxGuesses)
	e.accounts[username] = rec
	e.board.Add(rec)
	s.acquire(rec)
	e.save(ctx)

	log.Info().Str("user", username).Str("session", s.ID).Msg("account created")
	e.publish(events.AccountCreated, username, nil)
	e.publish(events.PlayerLogin, username, nil)
	s.publishRoundStarted()
	return nil
}

// Login acquires username for this session and resumes its saved round, or deals a new one.
func (s *Session) Login(ctx context.Context, username, password string) error {
	e := s.eng
	username = player.NormalizeUsername(username)
	rec, ok := e.accounts[username]
	if !ok {
		return ErrAccountNotFound
	}
	if !player.CheckPassword(rec.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	if holder, held := e.held[username]; held && holder != s.ID {
		return ErrAccountInUse
	}

	started := false
	if !rec.Round.Active() {
		secret, err := e.draw()
		if err != nil {
			return err
		}
		rec.NewGame(secret)
		started = true
	}

	if s.rec != nil && s.rec != rec {
		s.release(ctx)
	}
	s.acquire(rec)
	e.save(ctx)

	log.Info().Str("user", username).Str("session", s.ID).Bool("resumed", !started).Msg("login")
	e.publish(events.PlayerLogin, username, nil)
	if started {
		s.publishRoundStarted()
	}
	return nil
}

// Logout releases the account. The saved round is kept for the next login.
func (s *Session) Logout(ctx context.Context) error {
	if s.rec == nil {
		return ErrNotLoggedIn
	}
	s.release(ctx)
	return nil
}

// SubmitGuess scores attempt against the current secret.
//
// The attempt is trimmed and lowercased first. Unknown words and wrong lengths return
// game.ErrNotADictionaryWord / game.ErrInvalidGuessLength and consume nothing. Once every guess
// is used, the next call books the loss and returns ErrOutOfGuesses.
func (s *Session) SubmitGuess(ctx context.Context, attempt string) (Outcome, error) {
	if s.rec == nil {
		return Outcome{}, ErrNotLoggedIn
	}
	if s.won || s.lost {
		return Outcome{State: s.State()}, ErrRoundOver
	}
	e, rec := s.eng, s.rec

	if rec.ExhaustedGuesses() {
		s.bookLoss(ctx)
		return Outcome{State: s.State()}, ErrOutOfGuesses
	}

	attempt = strings.ToLower(strings.TrimSpace(attempt))
	secret := rec.Round.Secret
	res, err := game.Evaluate(e.words, attempt, secret)
	if err != nil {
		return Outcome{}, err
	}

	rec.GuessMade()
	rec.RecordGuess(attempt, res)
	log.Debug().Str("user", rec.Username).Str("round", s.roundID).Int("guesses", rec.Guesses).
		Str("pattern", res.Pattern()).Msg("guess scored")
	e.publish(events.GuessScored, rec.Username, map[string]any{
		"round":   s.roundID,
		"guesses": rec.Guesses,
		"pattern": res.Pattern(),
	})

	out := Outcome{Result: res}
	if res.Solved() {
		out.Unlocked = s.bookWin(ctx)
	}
	out.State = s.State()
	return out, nil
}

// IsRoundOver reports whether the round is won, lost or out of guesses.
// A logged-out session has no round and reports false.
func (s *Session) IsRoundOver() bool {
	if s.rec == nil {
		return false
	}
	return s.won || s.lost || s.rec.ExhaustedGuesses()
}

// Restart deals a new round. An exhausted round is booked as a loss first.
func (s *Session) Restart(ctx context.Context) error {
	if s.rec == nil {
		return ErrNotLoggedIn
	}
	if !s.won && !s.lost && s.rec.ExhaustedGuesses() {
		s.bookLoss(ctx)
	}

	secret, err := s.eng.draw()
	if err != nil {
		return err
	}
	s.rec.NewGame(secret)
	s.resetRound()
	s.publishRoundStarted()
	return nil
}

// CurrentLeaderboard returns every account in rank order.
func (s *Session) CurrentLeaderboard() []leaderboard.Entry {
	return s.eng.board.Snapshot()
}

// RemoveAccount deletes username. Removing the account this session holds logs it out first.
func (s *Session) RemoveAccount(ctx context.Context, username string) error {
	username = player.NormalizeUsername(username)
	if s.rec != nil && s.rec.Username == username {
		s.release(ctx)
	}
	return s.eng.RemoveAccount(ctx, username)
}

// State snapshots the session. The secret is revealed only once the round is over.
func (s *Session) State() State {
	st := State{SessionID: s.ID, Round: RoundNone, Guesses: []string{}, Grid: []game.GuessResult{}, Keyboard: game.Keyboard{}}
	if s.rec == nil {
		return st
	}
	rec := s.rec
	st.RoundID = s.roundID
	st.Username = rec.Username
	st.MaxGuesses = rec.MaxGuesses
	st.Rank = s.eng.board.Rank(rec.Username)
	stats := rec.Stats()
	st.Stats = &stats

	round := rec.Round
	switch {
	case s.won:
		st.Round, round = RoundWon, s.finished
	case s.lost:
		st.Round, round = RoundLost, s.finished
	case rec.ExhaustedGuesses():
		st.Round = RoundLost
	default:
		st.Round = RoundPlaying
	}

	st.Guesses = append(st.Guesses, round.Guesses...)
	st.Grid = append(st.Grid, round.Grid...)
	for k, v := range round.Keyboard {
		st.Keyboard[k] = v
	}
	st.Remaining = max(0, rec.MaxGuesses-len(round.Guesses))
	if st.Round != RoundPlaying {
		st.Secret = round.Secret
	}
	return st
}

// bookWin applies a solve to the record and the leaderboard.
func (s *Session) bookWin(ctx context.Context) []player.Unlock {
	e, rec := s.eng, s.rec
	s.finished = rec.Round
	guesses := rec.Guesses
	before := e.board.Rank(rec.Username)

	unlocked := rec.GameWon()
	s.won = true
	after := e.board.RepositionAfterWin(rec) + 1
	e.save(ctx)

	log.Info().Str("user", rec.Username).Str("round", s.roundID).Int("guesses", guesses).
		Int("rank", after).Msg("round won")
	e.publish(events.RoundWon, rec.Username, map[string]any{
		"round":   s.roundID,
		"guesses": guesses,
		"secret":  s.finished.Secret,
	})
	for _, u := range unlocked {
		e.publish(events.AchievementUnlocked, rec.Username, u)
	}
	if after != before {
		e.publish(events.LeaderboardChanged, rec.Username, e.board.Top(leaderboardEventSize))
	}
	return unlocked
}

// bookLoss applies an exhausted round to the record.
func (s *Session) bookLoss(ctx context.Context) {
	e, rec := s.eng, s.rec
	s.finished = rec.Round
	rec.GameLost()
	s.lost = true
	e.save(ctx)

	log.Info().Str("user", rec.Username).Str("round", s.roundID).Msg("round lost")
	e.publish(events.RoundLost, rec.Username, map[string]any{
		"round":  s.roundID,
		"secret": s.finished.Secret,
	})
}

func (s *Session) acquire(rec *player.Record) {
	s.rec = rec
	s.eng.held[rec.Username] = s.ID
	s.resetRound()
}

func (s *Session) release(ctx context.Context) {
	username := s.rec.Username
	if s.eng.held[username] == s.ID {
		delete(s.eng.held, username)
	}
	s.rec = nil
	s.resetRound()
	s.roundID = ""
	s.eng.save(ctx)

	log.Info().Str("user", username).Str("session", s.ID).Msg("logout")
	s.eng.publish(events.PlayerLogout, username, nil)
}

func (s *Session) resetRound() {
	s.roundID = uuid.NewString()
	s.won, s.lost = false, false
	s.finished = player.Round{}
}

func (s *Session) publishRoundStarted() {
	log.Debug().Str("user", s.rec.Username).Str("round", s.roundID).Str("secret", s.rec.Round.Secret).Msg("round started")
	s.eng.publish(events.RoundStarted, s.rec.Username, map[string]any{
		"round":      s.roundID,
		"maxGuesses": s.rec.MaxGuesses,
	})
}

// IsRejection reports whether err is a guess the player should simply retype.
func IsRejection(err error) bool {
	return errors.Is(err, game.ErrNotADictionaryWord) || errors.Is(err, game.ErrInvalidGuessLength)
}
