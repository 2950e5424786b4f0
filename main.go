package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-topup/internal/auth"
	"ms-topup/internal/config"
	"ms-topup/internal/database/migrations"
	"ms-topup/internal/kafka"
	"ms-topup/internal/logger"
	"ms-topup/internal/lookup"
	"ms-topup/internal/notify"
	"ms-topup/internal/order"
	"ms-topup/internal/order/db"
	"ms-topup/internal/order/order_api"
	"ms-topup/internal/qr"
	"ms-topup/internal/sse"
	"ms-topup/internal/upload"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Could not connect to PostgreSQL: %v", err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "Connected to PostgreSQL")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	log := logger.NewLogger()
	defer log.Close()

	cfg := config.Load()

	// --- PostgreSQL ---
	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	// --- Redis (optional, lookup cache) ---
	var lookupCache lookup.Cache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Redis unavailable, lookup cache disabled: %v", err))
		} else {
			lookupCache = lookup.NewRedisCache(redisClient, cfg.Lookup.CacheTTL)
			log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s", cfg.Redis.Addr))
		}
		cancel()
	}

	// --- Kafka (optional, order event mirror) ---
	var stream notify.StreamPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		stream = producer
		log.Info("KAFKA", fmt.Sprintf("Mirroring order events to topic %s", cfg.Kafka.Topic))
	}

	// --- Core wiring ---
	hub := sse.NewRoomHub()
	telegram := notify.NewTelegramClient(cfg.Telegram, log)
	if !telegram.Enabled() {
		log.Warn("NOTIFY", "Telegram not configured, operator channel disabled")
	}
	dispatcher := notify.NewDispatcher(hub, telegram, stream, log)

	orderService := order.NewOrderService(&db.DB{Bun: bunDB}, dispatcher)

	uploads, err := upload.NewStorage(cfg.Upload.Dir, cfg.Upload.PublicPath)
	if err != nil {
		log.Fatal("UPLOAD", fmt.Sprintf("Failed to prepare uploads directory: %v", err))
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry)
	authService := auth.NewService(&auth.AdminStore{Bun: bunDB}, issuer)
	authHandler := auth.NewHandler(authService, log)

	lookupClient := lookup.NewClient(cfg.Lookup, lookupCache, log)
	lookupHandler := lookup.NewHandler(lookupClient, log)

	qrGen := qr.NewGenerator(cfg.Server.PublicBaseURL)
	orderHandler := order_api.NewHandler(orderService, uploads, qrGen, log)
	sseHandler := order_api.NewSSEHandler(hub, log)

	// --- Router ---
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	r.Post("/order", orderHandler.CreateOrder)
	r.Get("/orders", orderHandler.ListOrders)
	r.Get("/orders/{id}/qr", orderHandler.TrackingQR)
	r.Get("/events/{room}", sseHandler.HandleRoomEvents)

	r.Post("/login", authHandler.Login)
	r.Post("/register", authHandler.Register)

	r.Get("/api/validasi", lookupHandler.Validate)

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.Middleware(issuer))
		r.Get("/orders", orderHandler.ListAllOrders)
		r.Post("/orders/{id}/status", orderHandler.UpdateStatus)
	})

	r.Handle("/uploads/*", http.StripPrefix(cfg.Upload.PublicPath+"/",
		http.FileServer(http.Dir(cfg.Upload.Dir))))

	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No WriteTimeout: the /events SSE streams are long-lived.
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Top-up gateway running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received. Cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	dispatcher.Wait()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("KAFKA", fmt.Sprintf("Failed to close producer: %v", err))
		}
	}

	log.Info("SERVER", "Server exited gracefully")
}
