package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/lvcu04/fashion_shop/internal/auth"
	"github.com/lvcu04/fashion_shop/internal/cart"
	"github.com/lvcu04/fashion_shop/internal/catalog"
	"github.com/lvcu04/fashion_shop/internal/dashboard"
	"github.com/lvcu04/fashion_shop/internal/httpserver"
	"github.com/lvcu04/fashion_shop/internal/idempotency"
	"github.com/lvcu04/fashion_shop/internal/order"
	"github.com/lvcu04/fashion_shop/internal/payment"
	"github.com/lvcu04/fashion_shop/internal/review"
	"github.com/lvcu04/fashion_shop/internal/search"
	"github.com/lvcu04/fashion_shop/pkg/config"
	pkgdb "github.com/lvcu04/fashion_shop/pkg/db"
	"github.com/lvcu04/fashion_shop/pkg/events"
	"github.com/lvcu04/fashion_shop/pkg/logging"
	"github.com/lvcu04/fashion_shop/pkg/middleware/csrf"
	loggingmw "github.com/lvcu04/fashion_shop/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	cfg.MustServe()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var kafka *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka = events.NewKafkaPublisher(cfg.KafkaBrokers)
		publisher = kafka
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS not set")
	}

	var index search.Index = search.DBIndex{DB: db}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.ESConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = &search.ESIndex{Client: es, Index: cfg.ESIndex, DB: db}
	} else {
		logger.Warn("elasticsearch_disabled", "reason", "ES_URL not set, searching the database")
	}

	var idem idempotency.Store
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	} else {
		logger.Warn("idempotency_disabled", "reason", "REDIS_ADDR not set")
	}

	engine := order.NewEngine(db, publisher, cfg.ServiceName)

	var intents payment.IntentCreator
	if cfg.StripeSecretKey != "" {
		intents = payment.NewStripeIntents(cfg.StripeSecretKey)
	} else {
		logger.Warn("payments_disabled", "reason", "STRIPE_SECRET_KEY not set")
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(csrf.Middleware(csrf.Config{
		Secure:    true,
		SkipPaths: []string{"/api/v1/payments/webhook"},
	}))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &auth.Service{
			DB: db, JWTSecret: cfg.JWTAccessSecret, AccessTTL: cfg.JWTAccessTTL,
		}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &catalog.Service{
			DB: db, Search: index, Events: publisher, Source: cfg.ServiceName,
		}},
		SearchHandler: &httpserver.SearchHTTP{Index: index},
		CartHandler:   &httpserver.CartHTTP{Svc: &cart.Service{Repo: cart.GormRepo{DB: db}}},
		OrderHandler:  &httpserver.OrderHTTP{Engine: engine},
		ReviewHandler: &httpserver.ReviewHTTP{Svc: &review.Service{DB: db}},
		PaymentHandler: &httpserver.PaymentHTTP{Svc: &payment.Service{
			DB: db, Orders: engine, Intents: intents, WebhookSecret: cfg.StripeWebhookSecret,
		}},
		DashboardHandler: &httpserver.DashboardHTTP{Svc: &dashboard.Service{DB: db}},
		JWTSecret:        cfg.JWTAccessSecret,
		Idempotency:      idem,
		Ready: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	go func() {
		logger.Info("server_starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_error", "error", err)
	}
	if kafka != nil {
		if err := kafka.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
