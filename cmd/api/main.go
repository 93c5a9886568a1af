package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/adapters/httpapi"
	"github.com/unique-meal/member-portal/internal/adapters/lognotifier"
	"github.com/unique-meal/member-portal/internal/adapters/smtp"
	"github.com/unique-meal/member-portal/internal/app/bookings"
	"github.com/unique-meal/member-portal/internal/app/members"
	"github.com/unique-meal/member-portal/internal/app/sessions"
	"github.com/unique-meal/member-portal/internal/bootstrap"
	"github.com/unique-meal/member-portal/internal/platform/auth/sessiontoken"
	platformclock "github.com/unique-meal/member-portal/internal/platform/clock"
	"github.com/unique-meal/member-portal/internal/platform/config"
	"github.com/unique-meal/member-portal/internal/platform/logging"
	"github.com/unique-meal/member-portal/internal/platform/password"
	notifierport "github.com/unique-meal/member-portal/internal/ports/out/notifier"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.Fatalf("dotenv: %v", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer stores.Close()

	clk := platformclock.NewSystemClock()

	var notifier notifierport.Notifier = lognotifier.New(log)
	if cfg.SMTP.Enabled() {
		notifier = smtp.New(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
		}, log)
	}

	codec, err := sessiontoken.New(cfg.Session.Secret, cfg.Session.Issuer)
	if err != nil {
		log.WithError(err).Fatal("invalid session config")
	}

	memberSvc := members.NewService(stores.Members, clk, password.NewHasher(cfg.BcryptCost), log)
	memberSvc.DefaultTier = cfg.DefaultMembershipTier
	bookingSvc := bookings.NewService(stores.Bookings, stores.Members, notifier, clk, log)
	sessionSvc := sessions.NewService(stores.Sessions, codec, clk, cfg.Session.TTL, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := httpapi.NewMetrics(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	api, err := httpapi.NewServer(memberSvc, bookingSvc, sessionSvc, log, httpapi.ServerOptions{
		Cookie: httpapi.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		Metrics: metrics,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{Gatherer: reg, Logger: log})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"backend": cfg.StorageBackend,
			"env":     cfg.Env,
		}).Info("member portal listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("listen")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
}
