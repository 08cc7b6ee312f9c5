package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dimensionexpert/volkern-booking/internal/api/router"
	"github.com/dimensionexpert/volkern-booking/internal/booking"
	appconfig "github.com/dimensionexpert/volkern-booking/internal/config"
	"github.com/dimensionexpert/volkern-booking/internal/notify"
	"github.com/dimensionexpert/volkern-booking/internal/proxy"
	"github.com/dimensionexpert/volkern-booking/internal/volkern"
	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting volkern-booking server",
		"env", cfg.Env,
		"port", cfg.Port,
		"tenant_timezone", cfg.TenantTimezone,
	)

	// The proxy is the only component holding the CRM credential.
	proxyMetrics := proxy.NewMetrics(nil)
	proxyHandler := proxy.New(cfg.VolkernBaseURL, cfg.VolkernAPIKey, proxyMetrics, logger)

	// The client goes through the proxy like any other caller, so the
	// credential stays confined to the proxy.
	proxyBase := cfg.PublicBaseURL
	if proxyBase == "" {
		proxyBase = "http://127.0.0.1:" + cfg.Port
	}
	client := volkern.NewClient(proxyBase+"/api/volkern", logger)

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("SENDGRID_API_KEY not set, booking confirmations will not be delivered")
		sender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewBookingNotifier(sender, cfg.ConsultantEmail, cfg.PublicCRMURL, logger)

	bookingService := booking.NewService(client, notifier, cfg.TenantTimezone, logger)
	bookingHandler := booking.NewHandler(bookingService, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		BookingHandler:     bookingHandler,
		Proxy:              proxyHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
