package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dvhalloran/cartload/internal/config"
	"github.com/dvhalloran/cartload/internal/database"
	"github.com/dvhalloran/cartload/internal/queue"
	"github.com/dvhalloran/cartload/internal/repository"
	"github.com/dvhalloran/cartload/internal/worker"
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

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency:    cfg.Concurrency,
		RetryDelayFunc: queue.RetryDelay,
	})
	processor := worker.NewProcessor(jobs, products)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Printf("worker started with concurrency %d", cfg.Concurrency)
	if err := server.Run(mux); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
