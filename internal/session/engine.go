// internal/session/engine.go
//
// Engine is the shared game state behind every Session: the word source, the account map,
// the leaderboard, the account store and the event bus.
//
// Concurrency: single writer. Every Engine and Session call must be serialized by the caller
// (the HTTP layer holds one mutex around all of them). Login is an exclusive acquisition of an
// account: at most one Session holds a given username at a time.
//
// Persistence: accounts are loaded once at startup and saved whole at session boundaries
// (account creation/removal, login, logout) and when a round ends. Store failures are logged
// and never interrupt play.

package session

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/engine/internal/events"
	"github.com/robalobadob/wordle/apps/engine/internal/leaderboard"
	"github.com/robalobadob/wordle/apps/engine/internal/player"
	"github.com/robalobadob/wordle/apps/engine/internal/store"
	"github.com/robalobadob/wordle/apps/engine/internal/words"
)

var (
	ErrDuplicateUsername  = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInUse       = errors.New("account is logged in elsewhere")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrOutOfGuesses       = errors.New("out of guesses")
	ErrRoundOver          = errors.New("round is over")
)

// Options tunes an Engine. Zero values select the defaults.
type Options struct {
	// MaxGuesses per round for newly created accounts.
	MaxGuesses int
	// Seed, when set, supplies the seed for every secret-word draw (see daily.SeedFunc).
	Seed func() *int64
}

// Engine owns the accounts and everything shared between sessions.
type Engine struct {
	words      *words.Source
	accounts   map[string]*player.Record
	board      *leaderboard.Board
	store      store.Store
	bus        *events.Bus
	held       map[string]string // username -> session id
	maxGuesses int
	seed       func() *int64
}

// NewEngine loads every account from st and ranks them. A load failure is logged and treated
// as an empty account store. A nil st selects an in-memory store, a nil bus a private one.
func NewEngine(ctx context.Context, src *words.Source, st store.Store, bus *events.Bus, opts Options) *Engine {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	if opts.MaxGuesses <= 0 {
		opts.MaxGuesses = player.DefaultMaxGuesses
	}

	accounts, err := st.LoadAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load accounts, starting empty")
		accounts = nil
	}
	if accounts == nil {
		accounts = make(map[string]*player.Record)
	}

	for _, rec := range accounts {
		rec.Normalize()
		// a saved secret stays reserved so no other round is dealt it
		if rec.Round.Active() {
			src.Reserve(rec.Round.Secret)
		}
	}

	board := leaderboard.New()
	board.Rebuild(lo.Values(accounts))

	log.Info().Int("accounts", len(accounts)).Int("words", src.Len()).Msg("engine ready")

	return &Engine{
		words:      src,
		accounts:   accounts,
		board:      board,
		store:      st,
		bus:        bus,
		held:       make(map[string]string),
		maxGuesses: opts.MaxGuesses,
		seed:       opts.Seed,
	}
}

// NewSession returns a logged-out session with a fresh id.
func (e *Engine) NewSession() *Session {
	return &Session{ID: uuid.NewString(), eng: e}
}

// Bus exposes the event bus for subscribers.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Accounts reports the number of registered accounts.
func (e *Engine) Accounts() int { return len(e.accounts) }

// Leaderboard returns the ranked snapshot of every account.
func (e *Engine) Leaderboard() []leaderboard.Entry { return e.board.Snapshot() }

// Stats returns the counters of username.
func (e *Engine) Stats(username string) (player.Stats, error) {
	rec, ok := e.accounts[username]
	if !ok {
		return player.Stats{}, ErrAccountNotFound
	}
	return rec.Stats(), nil
}

// RemoveAccount deletes username. An account held by a session cannot be removed.
func (e *Engine) RemoveAccount(ctx context.Context, username string) error {
	username = player.NormalizeUsername(username)
	if _, ok := e.accounts[username]; !ok {
		return ErrAccountNotFound
	}
	if _, held := e.held[username]; held {
		return ErrAccountInUse
	}
	delete(e.accounts, username)
	e.board.Remove(username)
	e.save(ctx)

	log.Info().Str("user", username).Msg("account removed")
	e.publish(events.AccountRemoved, username, nil)
	e.publish(events.LeaderboardChanged, "", e.board.Top(leaderboardEventSize))
	return nil
}

// Holders lists the usernames currently logged in, sorted.
func (e *Engine) Holders() []string {
	names := lo.Keys(e.held)
	slices.Sort(names)
	return names
}

const leaderboardEventSize = 10

// draw deals the next secret word.
func (e *Engine) draw() (string, error) {
	var seed *int64
	if e.seed != nil {
		seed = e.seed()
	}
	return e.words.NextWord(seed)
}

func (e *Engine) save(ctx context.Context) {
	if err := e.store.SaveAll(ctx, e.accounts); err != nil {
		log.Error().Err(err).Int("accounts", len(e.accounts)).Msg("save accounts")
	}
}

func (e *Engine) publish(subject events.Subject, username string, payload any) {
	e.bus.Publish(events.Event{Subject: subject, Username: username, Payload: payload})
}
