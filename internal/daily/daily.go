// Package daily derives reproducible per-day draw seeds, so every player who starts a round on the
// same UTC date gets the same first candidate word.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns HMAC-SHA256(salt, YYYY-MM-DD) folded into an int64.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty for a PRNG seed
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// SeedFunc returns a function producing today's seed, or nil when salt is empty (random draws).
func SeedFunc(salt string, now func() time.Time) func() *int64 {
	if salt == "" {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return func() *int64 {
		s := Seed(now(), salt)
		return &s
	}
}
