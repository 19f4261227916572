package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"tradingview-telegram-relay/config"
	"tradingview-telegram-relay/internal/alert"
	"tradingview-telegram-relay/internal/database"
	"tradingview-telegram-relay/internal/metrics"
	"tradingview-telegram-relay/internal/server"
	"tradingview-telegram-relay/internal/telegram"
	"tradingview-telegram-relay/lib/translation"
)

const (
	metricsSaveInterval = 5 * time.Minute
	shutdownTimeout     = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	setupLogging(cfg)

	lang := translation.Configure(cfg.LocalesDir, cfg.Lang)
	log.Debugf("Using language %s", lang)

	if cfg.SessionSecret == "" {
		log.Warn("SESSION_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Service stopped: %v", err)
	}
	log.Info("Service stopped")
}

func setupLogging(cfg config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetLevel(log.InfoLevel)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting TradingView webhook service...")
}

func run(ctx context.Context, cfg config.Config) error {
	m := metrics.New()

	store, err := openMetricsStore(cfg.MetricsDBPath, m)
	if err != nil {
		return err
	}
	defer store.Close()

	notifier, err := telegram.NewNotifier(telegram.Config{
		Token:       cfg.TelegramBotToken,
		Recipient:   cfg.TelegramUserID,
		APIEndpoint: cfg.TelegramEndpoint,
		Timeout:     cfg.TelegramTimeout,
		Debug:       cfg.Debug,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "could not create telegram notifier")
	}
	notifier.WithObserver(m)

	if cfg.TelegramVerify {
		user, err := notifier.Verify()
		if err != nil {
			return err
		}
		log.Infof("Authorized on Telegram as @%s", user.UserName)
	}

	srv := server.New(server.Options{
		Formatter: alert.NewFormatter(alert.FormatterConfig{
			Prefix:         cfg.MessagePrefix,
			DefaultMessage: cfg.DefaultMessage,
		}),
		Sender:       notifier,
		Recorder:     m,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	servers := []*http.Server{srv.HTTPServer(cfg.Addr(), cfg.TelegramTimeout+10*time.Second)}
	if addr := cfg.MetricsAddr(); addr != "" {
		servers = append(servers, &http.Server{
			Addr:              addr,
			Handler:           m.Mux(),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	log.Infof("Service will be available at http://%s", cfg.Addr())
	log.Info("Main webhook endpoint: POST /")
	log.Info("Health check endpoint: GET /health")
	log.Info("Test endpoint: POST /test")
	if len(servers) > 1 {
		log.Infof("Launching metrics and health endpoint on %s", servers[1].Addr)
	}

	errc := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errc <- errors.Wrapf(err, "server on %s failed", s.Addr)
			}
		}(s)
	}

	if store != nil {
		go saveMetricsPeriodically(ctx, store, m)
	}

	select {
	case err = <-errc:
	case <-ctx.Done():
		log.Info("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if serr := s.Shutdown(shutdownCtx); serr != nil {
			log.Errorf("Failed to shut down server on %s: %v", s.Addr, serr)
		}
	}

	if store != nil {
		saveMetrics(store, m)
	}
	return err
}

// openMetricsStore returns nil when persistence is disabled.
func openMetricsStore(path string, m *metrics.Metrics) (*database.Store, error) {
	if path == "" {
		return nil, nil
	}
	store, err := database.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open metrics database")
	}

	samples, err := store.LoadMetrics()
	if err != nil {
		log.Errorf("Failed to load metrics from database: %v", err)
		return store, nil
	}
	m.Restore(samples)
	log.Infof("Metrics loaded from database (%d samples)", len(samples))
	return store, nil
}

func saveMetricsPeriodically(ctx context.Context, store *database.Store, m *metrics.Metrics) {
	ticker := time.NewTicker(metricsSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			saveMetrics(store, m)
		}
	}
}

func saveMetrics(store *database.Store, m *metrics.Metrics) {
	samples, err := m.Snapshot()
	if err != nil {
		log.Errorf("Failed to read metrics: %v", err)
		return
	}
	if err := store.SaveMetrics(samples); err != nil {
		log.Errorf("Failed to save metrics to database: %v", err)
		return
	}
	log.Debug("Metrics saved to database.")
}
