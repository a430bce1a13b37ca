// Package config reads process configuration from the environment, after loading a .env file
// if one is present. Unset or malformed values fall back to defaults with a warning.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/engine/internal/player"
	"github.com/robalobadob/wordle/apps/engine/internal/words"
)

// MemoryDB is the DB_PATH value selecting the in-memory account store.
const MemoryDB = "memory"

// Config is the resolved configuration.
type Config struct {
	Port           string
	LogLevel       string
	DBPath         string
	WordsFile      string
	MaxGuesses     int
	WordExhaustion words.Policy
	DailySalt      string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool

	GuessRateRPS   float64
	GuessRateBurst int
	SessionIdle    time.Duration
}

// Load reads .env (if any) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("read .env")
	}
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() Config {
	policy, err := words.ParsePolicy(os.Getenv("WORD_EXHAUSTION"))
	if err != nil {
		log.Warn().Err(err).Msg("using recycle")
	}
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBPath:         getEnv("DB_PATH", "./data/wordle.db"),
		WordsFile:      os.Getenv("WORDS_FILE"),
		MaxGuesses:     getEnvInt("MAX_GUESSES", player.DefaultMaxGuesses),
		WordExhaustion: policy,
		DailySalt:      os.Getenv("DAILY_SALT"),

		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getEnvInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "wordle_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     os.Getenv("NODE_ENV") == "production",

		GuessRateRPS:   getEnvFloat("GUESS_RATE_RPS", 5),
		GuessRateBurst: getEnvInt("GUESS_RATE_BURST", 10),
		SessionIdle:    getEnvDuration("SESSION_IDLE", 30*time.Minute),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid int, using default")
		return def
	}
	return n
}

func getEnvFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", k).Str("value", v).Float64("default", def).Msg("invalid number, using default")
		return def
	}
	return f
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", k).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
		return def
	}
	return d
}
