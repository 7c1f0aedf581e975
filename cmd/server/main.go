package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/vicare/internal/config"
	"github.com/iliyamo/vicare/internal/database"
	"github.com/iliyamo/vicare/internal/handler"
	"github.com/iliyamo/vicare/internal/queue"
	"github.com/iliyamo/vicare/internal/repository"
	"github.com/iliyamo/vicare/internal/router"
	"github.com/iliyamo/vicare/internal/service"
	"github.com/iliyamo/vicare/internal/session"
	"github.com/iliyamo/vicare/internal/storage"
)

func main() {
	// .env is a development convenience; in production everything comes
	// from real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate database: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		if cfg.AuthMode == config.AuthModeSession {
			// Sessions live in Redis; without it no login can work.
			log.Fatal("redis unavailable but AUTH_MODE=session requires it")
		}
		log.Print("redis unavailable; rate limiting disabled")
	}

	var sessions *session.Store
	if cfg.AuthMode == config.AuthModeSession {
		sessions = session.NewStore(rdb, time.Duration(cfg.SessionTTLMin)*time.Minute)
	}

	avatars, err := storage.NewAvatarStoreFromEnv(context.Background())
	if err != nil {
		log.Printf("avatar storage unavailable: %v", err)
		avatars = nil
	}

	users := repository.NewUserRepo(db)
	verifier := service.NewEmailVerifier(cfg.EmailVerifyKey, cfg.EmailVerifyStrict)

	h := router.Handlers{
		Auth: handler.NewAuthHandler(cfg, users, sessionManager(sessions), verifier),
		Records: handler.NewRecordHandler(
			repository.NewMedicineRepo(db),
			repository.NewVaccineRepo(db),
			repository.NewAppointmentRepo(db),
		),
		Settings: handler.NewSettingsHandler(cfg, users, repository.NewSupportRepo(db), sessionManager(sessions), avatars),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, cfg, h, sessions, users, rdb)

	// Drain support events in the background; the loop reconnects on
	// broker failures and never stops the server.
	go func() {
		if err := queue.StartSupportConsumer(); err != nil {
			log.Printf("support consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s auth=%s)", addr, cfg.Env, cfg.AuthMode)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// sessionManager keeps a typed nil *session.Store from sneaking into the
// SessionManager interface, where it would compare non-nil.
func sessionManager(s *session.Store) handler.SessionManager {
	if s == nil {
		return nil
	}
	return s
}
