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

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/baas"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/checkout"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/httpapi"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/images"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/orders"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/reconcile"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/session"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

type Config struct {
	HTTPPort         string
	RedisAddr        string
	APIBaseURL       string
	AuthBaseURL      string
	FileServiceURL   string
	ImagePlaceholder string
	RequestTimeout   time.Duration
	RemoteTimeout    time.Duration
	ShutdownTimeout  time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		APIBaseURL:       getEnv("API_BASE_URL", "https://api.example-baas.com/v1"),
		AuthBaseURL:      getEnv("AUTH_BASE_URL", "https://auth.example-baas.com/v1"),
		FileServiceURL:   getEnv("FILE_SERVICE_URL", "https://api.example-baas.com/v1/files"),
		ImagePlaceholder: getEnv("IMAGE_PLACEHOLDER", "/assets/placeholder.png"),
		RequestTimeout:   30 * time.Second,
		RemoteTimeout:    10 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	store := storage.NewRedisStore(redisClient)

	sess := session.New(store, logger)
	client := baas.NewClient(cfg.APIBaseURL, cfg.AuthBaseURL, cfg.RemoteTimeout, sess.Token, logger)
	resolver := images.NewResolver(cfg.APIBaseURL, cfg.FileServiceURL, cfg.ImagePlaceholder, logger)

	cartStore := cart.NewStore(store, logger)
	cartStore.Load(context.Background())

	backfiller := reconcile.NewBackfiller(client, logger)
	reconciler := reconcile.New(cartStore, client, store, backfiller, logger)
	history := orders.NewHistory(store, cartStore, backfiller, logger)

	checkoutFlow := checkout.New(cartStore, reconciler, history, store, logger)
	checkoutFlow.LoadDraft(context.Background())

	router := httpapi.NewRouter(
		httpapi.NewCartHandler(cartStore, client, resolver, logger),
		httpapi.NewCheckoutHandler(checkoutFlow, reconciler, resolver, logger),
		httpapi.NewOrdersHandler(history, logger),
		httpapi.NewAuthHandler(client, sess, logger),
		sess,
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront facade starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
