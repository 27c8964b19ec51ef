/**
 * @description
 * This is the main entry point for the request-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, the push gateway client, the message broker, repositories, the core
 * application service, the cron scheduler, and the HTTP server. It wires everything
 * together and starts the service.
 *
 * @dependencies
 * - log, log/slog, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: For loading .env files during local development.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/pushclient, pkg/rabbitmq: For external service communication.
 */

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/letspay/request-service/internal/api"
	"github.com/letspay/request-service/internal/app"
	"github.com/letspay/request-service/internal/config"
	"github.com/letspay/request-service/internal/store"
	"github.com/letspay/request-service/pkg/pushclient"
	"github.com/letspay/request-service/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting request-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer for request lifecycle events. Missing
	// broker config degrades to the no-op fallback rather than failing boot.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; lifecycle events disabled\" env=RABBITMQ_URL")
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, cfg.RequestEventQueue)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			producer = &rabbitmq.EventProducerFallback{}
		} else {
			defer eventProducer.Close()
			producer = eventProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}

	// Initialize the push gateway client. Without it, notification flows log
	// and skip dispatch but the service still runs the sweep.
	var push app.PushSender
	if strings.TrimSpace(cfg.PushGatewayURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"push gateway not configured; notifications disabled\" env=PUSH_GATEWAY_URL")
	} else {
		push = pushclient.NewClient(cfg.PushGatewayURL, cfg.PushAPIKey)
	}

	// Optional redis for notify endpoint rate limiting.
	var rateLimiter *app.RedisNotifyRateLimiter
	if cfg.NotifyRateLimitPerMinute > 0 {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; notify rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; notify rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; notify rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					rateLimiter = app.NewRedisNotifyRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	var events app.EventPublisher
	if publisher := app.NewRequestEventPublisher(producer); publisher != nil {
		events = publisher
	}
	service := app.NewService(
		repository,
		push,
		events,
		time.Duration(cfg.RequestRetentionHours)*time.Hour,
		cfg.SweepMaxBatchSize,
		cfg.AppDeepLinkURL,
	)

	// Start the cron scheduler for the recurring expiry sweep.
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	jobs := app.NewJobs(service, slogger)
	scheduler := app.NewScheduler(jobs, slogger, cfg)
	scheduler.Start()
	log.Println("level=info component=bootstrap msg=\"scheduler started\"")

	// Set up the HTTP server.
	handlers := api.NewRequestHandlers(service, rateLimiter, cfg.NotifyRateLimitPerMinute)
	router := api.RequestRoutes(handlers, cfg.InternalAPIKey)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("level=info component=bootstrap msg=\"http server listening\" port=%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=bootstrap msg=\"http server failed\" err=%v", err)
		}
	}()

	// Wait for termination signal to gracefully shut down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("level=info component=bootstrap msg=\"shutdown signal received\"")

	stopCtx := scheduler.Stop()
	<-stopCtx.Done() // Wait for in-flight jobs to finish

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=warn component=bootstrap msg=\"http server shutdown failed\" err=%v", err)
	}
	log.Println("level=info component=bootstrap msg=\"request-service stopped gracefully\"")
}
