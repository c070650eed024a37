package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hanayashop/backend/internal/cache"
	"github.com/hanayashop/backend/internal/httpserver"
	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/mykafka"
	"github.com/hanayashop/backend/internal/notify"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/internal/search"
	"github.com/hanayashop/backend/internal/service"
	"github.com/hanayashop/backend/pkg/config"
	pkgdb "github.com/hanayashop/backend/pkg/db"
	"github.com/hanayashop/backend/pkg/logging"
	loggingmw "github.com/hanayashop/backend/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty("DATABASE_URL", cfg.DatabaseURL)
	config.MustNonEmptyBytes("JWT_SECRET", cfg.JWTAccessSecret)
	config.MustNonEmptyBytes("JWT_REFRESH_SECRET", cfg.JWTRefreshSecret)

	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	r := &repo.GormRepo{DB: db}

	var events notify.Events
	if len(cfg.KafkaBrokers) > 0 {
		producer := mykafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		events = producer
	}

	notifier := &notify.Notifier{
		Repo:          r,
		Events:        events,
		Topic:         cfg.OrderTopic,
		AdminLocale:   cfg.AdminLocale,
		DefaultLocale: cfg.DefaultLocale,
	}

	redisCache := cache.New(cfg.RedisAddr, cfg.RedisPassword)
	if redisCache.Enabled() {
		defer redisCache.Close()
	} else {
		logger.Warn("redis not configured, dashboard cache disabled")
	}

	catalogSvc := &service.CatalogService{Repo: r}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("elasticsearch unavailable, falling back to sql search", "error", err)
		} else {
			catalogSvc.ES = es
		}
	}

	authSvc := &service.AuthService{Repo: r, JWTSecret: cfg.JWTAccessSecret, RefreshSecret: cfg.JWTRefreshSecret}
	cartSvc := &service.CartService{Repo: r, Notifier: notifier}
	orderSvc := &service.OrderService{Repo: r, Notifier: notifier}
	dashboardSvc := &service.DashboardService{Repo: r, Cache: redisCache}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Auth:      &httpserver.AuthHTTP{Svc: authSvc},
		Catalog:   &httpserver.CatalogHTTP{Svc: catalogSvc},
		Cart:      &httpserver.CartHTTP{Svc: cartSvc},
		Orders:    &httpserver.OrderHTTP{Svc: orderSvc},
		Admin:     &httpserver.AdminHTTP{Orders: orderSvc, Repo: r},
		Account:   &httpserver.AccountHTTP{Repo: r},
		Dashboard: httpserver.NewDashboardHTTP(dashboardSvc, cfg.LowStockThreshold),
		JWTSecret: cfg.JWTAccessSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("%s listening on %s", cfg.ServiceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Printf("%s stopped", cfg.ServiceName)
}
