package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"resxai/internal/app"
	"resxai/internal/config"
	"resxai/internal/events"
	"resxai/internal/ratelimit"
	"resxai/internal/realtime"
	"resxai/internal/security"
	"resxai/internal/server"
	"resxai/internal/util"
	"resxai/pkg/extract"
	"resxai/pkg/scoring"
	"resxai/pkg/storage"
	"resxai/pkg/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dataStore store.Store
	if cfg.DatabaseURL != "" {
		gs, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer gs.Close()
		dataStore = gs
	} else {
		logger.Warn("databaseURL not set, using in-memory store")
		dataStore = store.NewMemoryStore()
	}

	sessions, err := store.NewJWTSessionStore(cfg.JWTSecret, sessionTTL)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	scorer, err := scoring.NewClient(cfg.AIServiceURL,
		scoring.WithTimeout(cfg.ScoringTimeout()),
		scoring.WithDefaultJobDescription(cfg.DefaultJobDescription),
	)
	if err != nil {
		log.Fatalf("failed to init scoring client: %v", err)
	}

	files, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		log.Fatalf("failed to init upload dir: %v", err)
	}

	var archive storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		ms, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
		archive = ms
	}

	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("failed to connect to broker: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	hub := realtime.NewHub(cfg.AllowedOrigins, logger)
	defer hub.Close()
	var notifier realtime.Notifier = hub

	var registerLimiter, loginLimiter *ratelimit.FixedWindowLimiter
	var alerter *security.Alerter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		relay := realtime.NewRedisNotifier(rdb, cfg.EventsChannel, hub, logger)
		if err := relay.Start(ctx); err != nil {
			log.Fatalf("failed to subscribe to events: %v", err)
		}
		notifier = relay
		alerter = security.NewAlerter(rdb, "")
		if cfg.RegisterRateLimitPerMinute > 0 {
			registerLimiter, err = ratelimit.NewFixedWindowLimiter(rdb, "resxai:ratelimit:register", cfg.RegisterRateLimitPerMinute, time.Minute)
			if err != nil {
				log.Fatalf("failed to init register limiter: %v", err)
			}
		}
		if cfg.LoginRateLimitPerMinute > 0 {
			loginLimiter, err = ratelimit.NewFixedWindowLimiter(rdb, "resxai:ratelimit:login", cfg.LoginRateLimitPerMinute, time.Minute)
			if err != nil {
				log.Fatalf("failed to init login limiter: %v", err)
			}
		}
	} else if cfg.RegisterRateLimitPerMinute > 0 || cfg.LoginRateLimitPerMinute > 0 {
		logger.Warn("rate limits configured without redisAddr, limiting disabled")
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("invalid trusted proxies: %v", err)
	}

	appCore, err := app.New(app.Config{
		Store:                 dataStore,
		Sessions:              sessions,
		Extractor:             extract.NewPDFExtractor(logger),
		Scorer:                scorer,
		Notifier:              notifier,
		Archive:               archive,
		Events:                publisher,
		DefaultJobDescription: cfg.DefaultJobDescription,
		Logger:                logger,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:             appCore,
		Files:           files,
		Hub:             hub,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		AllowedOrigins:  cfg.AllowedOrigins,
		TrustedProxies:  trusted,
		RegisterLimiter: registerLimiter,
		LoginLimiter:    loginLimiter,
		Alerter:         alerter,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
	logger.Info("server stopped")
}
