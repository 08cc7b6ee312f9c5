package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dimensionexpert/volkern-booking/internal/booking"
	httpmiddleware "github.com/dimensionexpert/volkern-booking/internal/http/middleware"
	"github.com/dimensionexpert/volkern-booking/internal/proxy"
	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *booking.Handler
	Proxy              *proxy.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Credential proxy: arbitrary trailing path, GET/POST/PATCH only.
	if cfg.Proxy != nil {
		r.Route("/api/volkern", func(r chi.Router) {
			r.Method(http.MethodGet, "/*", cfg.Proxy)
			r.Method(http.MethodPost, "/*", cfg.Proxy)
			r.Method(http.MethodPatch, "/*", cfg.Proxy)
		})
	}

	if cfg.BookingHandler != nil {
		r.Mount("/api/booking", cfg.BookingHandler.Routes())
	}

	return r
}
