package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projecthub-dev/projecthub-backend/config"
	"github.com/projecthub-dev/projecthub-backend/internal/bootstrap"
	"github.com/projecthub-dev/projecthub-backend/internal/maintenance"
	projectrepo "github.com/projecthub-dev/projecthub-backend/internal/projects/repository"
	"github.com/projecthub-dev/projecthub-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: 2,
		MinConns: 1,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	repo := projectrepo.NewProjectRepository(postgres.NewConnection(pool))
	scheduler := maintenance.NewScheduler(repo, cfg.Worker.PurgeSchedule, cfg.Worker.PurgeAfterDays)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "purge":
			if _, err := scheduler.RunOnce(ctx); err != nil {
				log.Fatalf("purge: %v", err)
			}
			return
		default:
			log.Fatalf("unknown command: %s (usage: worker [purge])", os.Args[1])
		}
	}

	if err := scheduler.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
}
