package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dvhalloran/cartload/internal/api"
	"github.com/dvhalloran/cartload/internal/config"
	"github.com/dvhalloran/cartload/internal/database"
	"github.com/dvhalloran/cartload/internal/queue"
	"github.com/dvhalloran/cartload/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	jobs := repository.NewJobRepository(pool)
	products := repository.NewProductRepository(pool)

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	srv, err := api.New(cfg, jobs, products, queue.NewClient(client))
	if err != nil {
		log.Fatalf("init server: %v", err)
	}
	if err := srv.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
