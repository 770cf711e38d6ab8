package main

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"cerberus/internal/adapters/config"
	"cerberus/internal/adapters/errors/noop"
	"cerberus/internal/adapters/errors/sentry"
	"cerberus/internal/adapters/postgres"
	"cerberus/internal/adapters/redis"
	tgclient "cerberus/internal/adapters/telegram"
	"cerberus/internal/bot"
	"cerberus/internal/domain/session"
	"cerberus/internal/lock"
	"cerberus/internal/metrics"
	pgrepo "cerberus/internal/repository/postgres"
	redisrepo "cerberus/internal/repository/redis"
	"cerberus/pkg/errors"
	"cerberus/pkg/logger"
	"cerberus/pkg/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Register()

	store, closeStore := initStore(cfg, log)
	defer closeStore()

	tgBot, err := tgclient.NewBot(tgclient.Config{
		Token: cfg.Telegram.BotToken,
		Debug: cfg.App.Debug,
	}, log)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	dispatcher := bot.NewDispatcher(
		session.NewResolver(store),
		store,
		lock.NewController(cfg.Lock),
		tgBot,
		cfg.Auth.Password,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: newRouter(cfg, dispatcher, tgBot, log),
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown: %v", err)
	}

	if err := errorTracker.Flush(shutdownCtx); err != nil {
		log.Warnf("Failed to flush error tracker: %v", err)
	}

	log.Info("Shutdown complete")
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initStore initializes the configured session store backend
func initStore(cfg *config.Config, log *logger.Logger) (session.Store, func()) {
	switch cfg.Storage.Backend {
	case "redis":
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Info("Session store: redis")
		return redisrepo.NewSessionStore(client.Client()), func() { _ = client.Close() }

	case "postgres":
		client, err := postgres.NewClient(cfg.Postgres)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		log.Info("Session store: postgres")
		return pgrepo.NewSessionStore(client.DB()), func() { _ = client.Close() }

	default:
		log.Fatalf("Unknown storage backend %q", cfg.Storage.Backend)
		return nil, nil
	}
}

// newRouter wires the HTTP surface: webhook ingestion, webhook
// registration, liveness and metrics
func newRouter(cfg *config.Config, dispatcher *bot.Dispatcher, tgBot *tgclient.Bot, log *logger.Logger) http.Handler {
	webhook := telegram.NewWebhookHandler(func(ctx context.Context, update telegram.Update) error {
		if !update.HasMessage() {
			return nil
		}
		return dispatcher.Handle(ctx, update.Message.Chat.ID, update.Message.Text)
	}, log)

	mux := http.NewServeMux()
	mux.Handle(cfg.Telegram.WebhookPath, webhook)

	mux.HandleFunc("/set_webhook", func(w http.ResponseWriter, r *http.Request) {
		url := "https://" + cfg.Telegram.Host + cfg.Telegram.WebhookPath
		if err := tgBot.SetWebhook(r.Context(), url); err != nil {
			log.Errorf("Failed to register webhook: %v", err)
			_, _ = io.WriteString(w, "FAIL")
			return
		}
		_, _ = io.WriteString(w, "OK")
	})

	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "OK")
	})

	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, ".")
	})

	return mux
}
