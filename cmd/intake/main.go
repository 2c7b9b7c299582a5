package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/dispatch"
	"tryouts-intake/internal/marketing"
	"tryouts-intake/internal/notify"
	"tryouts-intake/internal/payments"
	"tryouts-intake/internal/records"
	"tryouts-intake/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	store, err := records.New(cfg)
	if err != nil {
		log.Error("record store", "err", err)
		os.Exit(1)
	}
	log.Info("record store ready", "backend", store.Name())

	provider, err := payments.NewProvider(cfg)
	if err != nil {
		log.Error("payment provider", "err", err)
		os.Exit(1)
	}
	log.Info("payment provider ready", "provider", provider.Name())

	contacts := marketing.New(cfg)
	log.Info("marketing list ready", "client", contacts.Name())

	mailer := notify.NewMailer(cfg)
	log.Info("retry mailer ready", "mailer", mailer.Name())

	// A bad Telegram token must not take the service down; admin alerts
	// just stay off until it is fixed.
	admin, err := notify.NewAdminNotifier(cfg)
	if err != nil {
		log.Error("telegram init failed, admin alerts disabled", "err", err)
		admin = notify.DisabledAdmin{Err: err}
	}
	log.Info("admin notifier ready", "notifier", admin.Name())

	disp := dispatch.New(store, contacts, notify.NewService(mailer), admin,
		log.With("component", "dispatch"))
	srv := server.New(cfg, provider, disp, contacts, log.With("component", "http"))

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("bye")
}
