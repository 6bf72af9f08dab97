package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"todo-service/internal/api"
	"todo-service/internal/config"
	"todo-service/internal/events"
	"todo-service/internal/repository"
	"todo-service/internal/s3"
	"todo-service/internal/service"
	"todo-service/internal/tracing"
	_ "todo-service/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	cfg := config.Load()

	api.SetupGlobalHandler(cfg.ServiceName, api.ParseLogLevel(cfg.LogLevel))

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg.DB)
		return
	}

	ctx := context.Background()

	shutdownTracer, err := tracing.InitTracerProvider(ctx, cfg.ServiceName, cfg.OtelEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	db := connectDB(cfg.DB)
	defer db.Close()

	eventPublisher := connectPublisher(cfg.NatsURL)
	defer eventPublisher.Close()

	var signer service.UploadURLSigner
	if cfg.S3.Enabled() {
		presigner, err := s3.NewFilePresigner(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to configure S3 presigner: %v", err)
		}
		signer = presigner
		slog.Info("Attachment uploads enabled", slog.String("bucket", cfg.S3.BucketName))
	} else {
		slog.Warn("S3 is not configured, attachment uploads are disabled")
	}

	userRepo := repository.NewPostgresUserRepository(db)
	todoRepo := repository.NewPostgresTodoRepository(db)
	categoryRepo := repository.NewPostgresCategoryRepository(db)

	app := api.NewApp(cfg.ServiceName, api.Services{
		Auth:  service.NewAuthService(userRepo),
		Todos: service.NewTodoService(todoRepo, categoryRepo, eventPublisher, signer),
		Admin: service.NewAdminService(userRepo, todoRepo),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		slog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Error during server shutdown: %v", err)
		}
	}()

	log.Printf("Listening %s on port %s", cfg.ServiceName, cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

func connectDB(cfg config.DBConfig) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.URL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

// connectPublisher falls back to a no-op publisher when NATS is not
// configured or unreachable; events are best effort.
func connectPublisher(natsURL string) events.EventPublisher {
	if natsURL == "" {
		slog.Warn("NATS_URL is not set, todo events will not be published")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		slog.Error("Failed to connect to NATS, todo events will not be published", slog.String("error", err.Error()))
		return events.NoopPublisher{}
	}

	log.Println("Successfully connected to NATS.")
	return publisher
}

func handleMigrations(cfg config.DBConfig) {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
