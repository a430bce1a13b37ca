// internal/httpserver/server.go
//
// HTTP controller over the session API.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/leaderboard", "/events" (SSE).
//   - Auth endpoints: POST /auth/signup, /auth/login, /auth/logout.
//   - Game endpoints (require a session): GET /game/state, POST /game/guess, POST /game/restart.
//   - DELETE /accounts/{username} for the logged-in account.
//
// Notes:
//   - Every engine call runs under one mutex; the engine assumes a single writer.
//   - Each login gets its own session, named by the "sid" claim of the issued JWT.
//   - Sessions idle longer than SessionIdle are logged out when someone else logs in,
//     so an abandoned browser does not hold an account forever.
//   - Guess submission is rate limited per session.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/wordle/apps/engine/internal/game"
	"github.com/robalobadob/wordle/apps/engine/internal/player"
	"github.com/robalobadob/wordle/apps/engine/internal/session"
	"github.com/robalobadob/wordle/apps/engine/internal/words"
)

// Options configures the controller.
type Options struct {
	JWTSecret    string
	JWTExpires   time.Duration
	CookieName   string
	ClientOrigin string
	Production   bool
	GuessRPS     float64
	GuessBurst   int
	SessionIdle  time.Duration
}

func (o *Options) defaults() {
	if o.JWTSecret == "" {
		o.JWTSecret = "dev_secret_change_me"
	}
	if o.JWTExpires <= 0 {
		o.JWTExpires = 14 * 24 * time.Hour
	}
	if o.CookieName == "" {
		o.CookieName = "wordle_token"
	}
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.GuessRPS <= 0 {
		o.GuessRPS = 5
	}
	if o.GuessBurst <= 0 {
		o.GuessBurst = 10
	}
	if o.SessionIdle <= 0 {
		o.SessionIdle = 30 * time.Minute
	}
}

// client is one logged-in browser.
type client struct {
	sess     *session.Session
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Server bundles router, engine and live sessions.
type Server struct {
	r    *chi.Mux
	eng  *session.Engine
	opts Options

	mu      sync.Mutex // guards eng and clients
	clients map[string]*client
}

// New constructs a Server, installs middleware, and registers routes.
func New(eng *session.Engine, opts Options) *Server {
	opts.defaults()
	s := &Server{r: chi.NewRouter(), eng: eng, opts: opts, clients: make(map[string]*client)}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS

	// the event stream is long-lived and stays outside the handler timeout
	s.r.Get("/events", s.handleEvents)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"wordle-engine","endpoints":["/health","/leaderboard","/events","/auth/*","/game/*"]}`))
		})
		r.Get("/health", s.handleHealth)

		r.Get("/leaderboard", s.handleLeaderboard)

		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/game/state", s.handleState)
			r.Post("/game/guess", s.handleGuess)
			r.Post("/game/restart", s.handleRestart)
			r.Delete("/accounts/{username}", s.handleRemoveAccount)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- AUTH --------------------------------------

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authRes struct {
	Username string        `json:"username"`
	Token    string        `json:"token"`
	State    session.State `json:"state"`
}

// handleSignup creates an account, logs a new session into it and issues its token.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, (*session.Session).CreateAccount)
}

// handleLogin logs a new session into an existing account and issues its token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, (*session.Session).Login)
}

type authFunc func(*session.Session, context.Context, string, string) error

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, fn authFunc) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapIdle(r)

	sess := s.eng.NewSession()
	if err := fn(sess, r.Context(), body.Username, body.Password); err != nil {
		writeSessionError(w, err)
		return
	}

	tok, exp, err := s.signJWT(sess.ID, sess.Username())
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		_ = sess.Logout(r.Context())
		writeError(w, http.StatusInternalServerError, "sign_failed", "could not issue token")
		return
	}
	s.clients[sess.ID] = &client{
		sess:     sess,
		limiter:  rate.NewLimiter(rate.Limit(s.opts.GuessRPS), s.opts.GuessBurst),
		lastSeen: time.Now(),
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, authRes{Username: sess.Username(), Token: tok, State: sess.State()})
}

// handleLogout ends the caller's session if it has one and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sid, _, err := s.parseToken(bearerOrCookie(r, s.opts.CookieName)); err == nil {
		s.mu.Lock()
		if c, ok := s.clients[sid]; ok {
			_ = c.sess.Logout(r.Context())
			delete(s.clients, sid)
		}
		s.mu.Unlock()
	}
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// reapIdle logs out sessions not seen within SessionIdle. Caller holds s.mu.
func (s *Server) reapIdle(r *http.Request) {
	cutoff := time.Now().Add(-s.opts.SessionIdle)
	for sid, c := range s.clients {
		if c.lastSeen.Before(cutoff) {
			log.Info().Str("session", sid).Str("user", c.sess.Username()).Msg("idle session logged out")
			_ = c.sess.Logout(r.Context())
			delete(s.clients, sid)
		}
	}
}

// ------------------------------ GAME ---------------------------------------

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	c := currentClient(r)
	s.mu.Lock()
	st := c.sess.State()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

type guessReq struct {
	Guess string `json:"guess"`
}

type guessErrRes struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	State   *session.State `json:"state,omitempty"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	c := currentClient(r)
	if !c.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many guesses, slow down")
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}

	s.mu.Lock()
	out, err := c.sess.SubmitGuess(r.Context(), req.Guess)
	s.mu.Unlock()

	if err != nil {
		status, code := statusFor(err)
		res := guessErrRes{Error: code, Message: err.Error()}
		if errors.Is(err, session.ErrOutOfGuesses) || errors.Is(err, session.ErrRoundOver) {
			res.State = &out.State
		}
		writeJSON(w, status, res)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	c := currentClient(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := c.sess.Restart(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.sess.State())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	board := s.eng.Leaderboard()
	s.mu.Unlock()

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(board) {
			board = board[:n]
		}
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	c := currentClient(r)
	username := chi.URLParam(r, "username")

	s.mu.Lock()
	defer s.mu.Unlock()
	if username != c.sess.Username() {
		writeError(w, http.StatusForbidden, "forbidden", "you can only remove your own account")
		return
	}
	if err := c.sess.RemoveAccount(r.Context(), username); err != nil {
		writeSessionError(w, err)
		return
	}
	delete(s.clients, c.sess.ID)
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	accounts, online := s.eng.Accounts(), len(s.eng.Holders())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "accounts": accounts, "online": online})
}

// ------------------------------- errors ------------------------------------

// statusFor maps engine errors to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrDuplicateUsername):
		return http.StatusConflict, "username_taken"
	case errors.Is(err, player.ErrInvalidUsername), errors.Is(err, player.ErrInvalidPassword):
		return http.StatusBadRequest, "invalid_signup"
	case errors.Is(err, session.ErrAccountNotFound), errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_login"
	case errors.Is(err, session.ErrAccountInUse):
		return http.StatusConflict, "account_in_use"
	case errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, game.ErrNotADictionaryWord):
		return http.StatusUnprocessableEntity, "not_in_word_list"
	case errors.Is(err, game.ErrInvalidGuessLength):
		return http.StatusUnprocessableEntity, "invalid_length"
	case errors.Is(err, session.ErrOutOfGuesses):
		return http.StatusConflict, "out_of_guesses"
	case errors.Is(err, session.ErrRoundOver):
		return http.StatusConflict, "round_over"
	case errors.Is(err, words.ErrExhausted):
		return http.StatusServiceUnavailable, "words_exhausted"
	}
	return http.StatusInternalServerError, "internal"
}

func writeSessionError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	switch code {
	case "invalid_login":
		// unknown user and wrong password read the same
		msg = "Invalid username or password"
	case "internal":
		log.Error().Err(err).Msg("engine call failed")
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}
