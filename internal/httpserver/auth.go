// internal/httpserver/auth.go
//
// Session tokens and cookies.
//   - Tokens are HS256 JWTs carrying the session id ("sid") and username.
//   - A token is accepted from "Authorization: Bearer" or the auth cookie.
//   - A valid token whose session is gone (logout, restart, idle reap) is rejected.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// signJWT creates a token for session sid with the configured expiry.
func (s *Server) signJWT(sid, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.JWTExpires)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":      sid,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseToken validates tokenStr and returns its session id and username.
func (s *Server) parseToken(tokenStr string) (string, string, error) {
	if tokenStr == "" {
		return "", "", errInvalidToken
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", "", errInvalidToken
	}
	sid, _ := claims["sid"].(string)
	username, _ := claims["username"].(string)
	if sid == "" || username == "" {
		return "", "", errInvalidToken
	}
	return sid, username, nil
}

// setAuthCookie writes the auth token cookie with appropriate security attributes.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, s.cookie(token, func(c *http.Cookie) { c.Expires = exp }))
}

// clearAuthCookie deletes the auth token cookie.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", func(c *http.Cookie) { c.MaxAge = -1 }))
}

func (s *Server) cookie(value string, opt func(*http.Cookie)) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.opts.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	c := &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: sameSite,
	}
	opt(c)
	return c
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request, cookieName string) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ctxClientKey is the context key type for storing the caller's client.
type ctxClientKey struct{}

// requireSession enforces a valid token naming a live session and injects its client.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, username, err := s.parseToken(bearerOrCookie(r, s.opts.CookieName))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		s.mu.Lock()
		c, ok := s.clients[sid]
		if ok && c.sess.Username() != username {
			ok = false
		}
		if ok {
			c.lastSeen = time.Now()
		}
		s.mu.Unlock()

		if !ok {
			writeError(w, http.StatusUnauthorized, "session_expired", "session expired, log in again")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxClientKey{}, c)))
	})
}

// currentClient returns the client injected by requireSession.
func currentClient(r *http.Request) *client {
	c, _ := r.Context().Value(ctxClientKey{}).(*client)
	return c
}
