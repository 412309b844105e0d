package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projecthub-dev/projecthub-backend/config"
	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/bootstrap"
	"github.com/projecthub-dev/projecthub-backend/internal/storage/avatars"
	"github.com/projecthub-dev/projecthub-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.Environment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, postgres.NewConnection(pool)); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	deps := bootstrap.RouterDeps{Config: cfg, DB: pool, Redis: rdb}

	if cfg.Firebase.CredentialsPath != "" {
		fb, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
		deps.Firebase = fb
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, accepting local tokens only")
	}

	presigner, err := avatars.NewPresigner(ctx, cfg.Storage)
	switch {
	case errors.Is(err, avatars.ErrNotConfigured):
		log.Println("AVATAR_BUCKET not set, avatar uploads disabled")
	case err != nil:
		log.Fatalf("avatars: %v", err)
	default:
		deps.Avatars = presigner
	}

	// streams end with ctx, so Shutdown does not wait on open SSE clients
	srv := bootstrap.NewServer(ctx, ":"+cfg.Server.Port, bootstrap.BuildRouter(deps))

	go func() {
		log.Printf("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
