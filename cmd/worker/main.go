package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"todo-service/internal/api"
	"todo-service/internal/config"
	"todo-service/internal/events"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	cfg := config.Load()
	workerName := cfg.ServiceName + "-worker"

	api.SetupGlobalHandler(workerName, api.ParseLogLevel(cfg.LogLevel))

	if cfg.NatsURL == "" {
		log.Fatal("NATS_URL environment variable is not set")
	}

	subscriber, err := events.NewTodoSubscriber(cfg.NatsURL, events.AuditHandler(slog.Default()))
	if err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}
	defer subscriber.Close()

	log.Println("Todo event worker started, waiting for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down todo event worker...")
}
