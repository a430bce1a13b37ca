package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/engine/internal/config"
	"github.com/robalobadob/wordle/apps/engine/internal/daily"
	"github.com/robalobadob/wordle/apps/engine/internal/events"
	"github.com/robalobadob/wordle/apps/engine/internal/httpserver"
	"github.com/robalobadob/wordle/apps/engine/internal/session"
	"github.com/robalobadob/wordle/apps/engine/internal/store"
	"github.com/robalobadob/wordle/apps/engine/internal/words"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	list, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	src, err := words.NewSource(list, cfg.WordExhaustion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build word source")
	}

	var st store.Store
	if cfg.DBPath == config.MemoryDB {
		st = store.NewMemoryStore()
		log.Warn().Msg("using in-memory account store; accounts are lost on exit")
	} else {
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open account database")
		}
		defer db.Close()
		st = db
	}

	eng := session.NewEngine(context.Background(), src, st, events.NewBus(), session.Options{
		MaxGuesses: cfg.MaxGuesses,
		Seed:       daily.SeedFunc(cfg.DailySalt, nil),
	})

	srv := httpserver.New(eng, httpserver.Options{
		JWTSecret:    cfg.JWTSecret,
		JWTExpires:   time.Duration(cfg.JWTExpiresDays) * 24 * time.Hour,
		CookieName:   cfg.CookieName,
		ClientOrigin: cfg.ClientOrigin,
		Production:   cfg.Production,
		GuessRPS:     cfg.GuessRateRPS,
		GuessBurst:   cfg.GuessRateBurst,
		SessionIdle:  cfg.SessionIdle,
	})

	log.Info().Str("port", cfg.Port).Str("exhaustion", cfg.WordExhaustion.String()).
		Bool("daily", cfg.DailySalt != "").Msg("starting wordle engine")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
	}
}
