package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tazhibayda/account-service/internal/avatar"
	"github.com/tazhibayda/account-service/internal/config"
	api "github.com/tazhibayda/account-service/internal/http"
	"github.com/tazhibayda/account-service/internal/log"
	"github.com/tazhibayda/account-service/internal/mail"
	"github.com/tazhibayda/account-service/internal/metrics"
	"github.com/tazhibayda/account-service/internal/orders"
	"github.com/tazhibayda/account-service/internal/queue"
	"github.com/tazhibayda/account-service/internal/repo"
	"github.com/tazhibayda/account-service/internal/service"
)

func main() {
	_ = godotenv.Load() // .env if present, ok if missing in prod
	cfg := config.Load()

	logger, err := log.Init(cfg.Env == "prod")
	if err != nil {
		stdlog.Fatalf("log init: %v", err)
	}
	defer logger.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureUserIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	var limiter api.Limiter
	if cfg.RedisAddr != "" {
		rds := repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
		limiter = &repo.RateLimiter{R: rds, PerMin: cfg.RateLimitPerMin}
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		pub, err = queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
	}
	defer pub.Close()

	var sender mail.Sender = mail.LogSender{}
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	}

	if err := os.MkdirAll(cfg.TmpDir, 0o755); err != nil {
		logger.Fatal("tmp dir", zap.Error(err))
	}
	proc := avatar.New(cfg.PublicDir)
	if err := os.MkdirAll(proc.Dir(), 0o755); err != nil {
		logger.Fatal("avatars dir", zap.Error(err))
	}

	accounts := service.NewAccount(store, sender, proc, pub,
		cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour,
		cfg.BaseURL, cfg.RabbitExchange)

	ordersClient := orders.New(cfg.OrdersAPIURL, cfg.OrdersAPIKey)

	h := api.NewHandler(accounts, ordersClient, store, limiter, cfg.TmpDir)
	r := api.NewRouter(h, logger, cfg.PublicDir)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("account-service listening", zap.String("port", cfg.Port))

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
