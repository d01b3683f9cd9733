package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feeportal/config"
	"feeportal/internal/database"
	"feeportal/internal/jobs"
	"feeportal/internal/logger"
	"feeportal/internal/middleware"
	"feeportal/internal/router"
	"feeportal/internal/ws"
	"feeportal/pkg/mail"
	"feeportal/pkg/payment"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.Validate(); err != nil {
		log.Fatal("config", zap.Error(err))
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	var provider payment.Provider
	if cfg.Cashfree.Enabled() {
		provider = payment.NewCashfreeProvider(cfg.Cashfree.AppID, cfg.Cashfree.Secret, cfg.Cashfree.Stage, cfg.Cashfree.APIVersion, log)
	} else {
		log.Warn("[payment] CF_APP_ID/CF_SECRET not set, using stub provider")
		provider = payment.NewStubProvider()
	}
	if cfg.Cashfree.WebhookSecret == "" {
		log.Warn("[webhook] CF_WEBHOOK_SECRET not set, signatures are not verified outside production")
	}

	var sender mail.Sender
	if cfg.Mail.Host != "" {
		sender = mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	} else {
		log.Warn("[mail] MAIL_HOST not set, mail is logged only")
		sender = mail.NewLogSender(log)
	}
	mailer, err := mail.NewMailer(sender)
	if err != nil {
		log.Fatal("mail templates", zap.Error(err))
	}

	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	defer limiter.Stop()

	app, err := router.Setup(router.Deps{
		Config:   cfg,
		Stores:   router.GormStores(db),
		Provider: provider,
		Mailer:   mailer,
		Hub:      ws.NewHub(),
		Limiter:  limiter,
		Log:      log,
	})
	if err != nil {
		log.Fatal("router", zap.Error(err))
	}

	scheduler, err := jobs.NewScheduler(cfg.Reconcile.Schedule, app.Payments, log)
	if err != nil {
		log.Fatal("reconcile schedule", zap.String("schedule", cfg.Reconcile.Schedule), zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("gateway", provider.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	scheduler.Stop(ctx)
	log.Info("server stopped")
}
