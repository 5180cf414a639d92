package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Nechnud/chat-app/internal/acl"
	"github.com/Nechnud/chat-app/internal/api"
	"github.com/Nechnud/chat-app/internal/auth"
	"github.com/Nechnud/chat-app/internal/config"
	"github.com/Nechnud/chat-app/internal/logger"
	"github.com/Nechnud/chat-app/internal/middleware"
	"github.com/Nechnud/chat-app/internal/repository"
	"github.com/Nechnud/chat-app/internal/service"
	"github.com/Nechnud/chat-app/internal/sse"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Auth.JWTSecret == "" || len(cfg.Auth.JWTSecret) < 32 {
		log.Fatal("auth.jwt_secret missing or shorter than 32 characters")
	}

	zlog, err := logger.New(cfg.App.Env == "development")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	gate, err := acl.Load(cfg.Auth.PolicyPath)
	if err != nil {
		zlog.Fatalw("policy load", "path", cfg.Auth.PolicyPath, "error", err)
	}

	store, err := repository.NewPostgresStore(cfg.Database.DSN)
	if err != nil {
		zlog.Fatalw("postgres init", "error", err)
	}
	defer store.Close()

	var limiter *middleware.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = middleware.NewRateLimiter(rdb, cfg.Redis.Prefix, cfg.RateLimit.Requests, cfg.RateLimitWindow)
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.TokenTTL)

	registry := sse.NewRegistry()
	dispatcher := sse.NewDispatcher(registry, zlog)

	authSvc := service.NewAuthService(store)
	userSvc := service.NewUserService(store)
	chatSvc := service.NewChatService(store, dispatcher, zlog)
	msgSvc := service.NewMessageService(store, gate, dispatcher, zlog)

	srv := api.New(cfg, zlog, gate, tokens, authSvc, userSvc, chatSvc, msgSvc, registry, dispatcher, limiter)

	errs := make(chan error, 1)
	go func() {
		zlog.Infow("server starting", "port", cfg.App.Port)
		errs <- srv.Listen()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		zlog.Fatalw("server error", "error", err)
	case s := <-sig:
		zlog.Infow("signal received", "signal", s.String())
	}

	// Closing the registry first ends every open stream so Shutdown is not
	// held up by idle subscribers.
	registry.Shutdown()
	if err := srv.Shutdown(); err != nil {
		zlog.Warnw("server shutdown", "error", err)
	}
	zlog.Info("shutting down")
}
