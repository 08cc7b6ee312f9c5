package booking

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

const defaultDurationMinutes = 60

// Handler provides the JSON API the booking front-end calls.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a booking HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Routes returns a chi router with the booking endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/services", h.ListServices)
	r.Get("/availability", h.GetAvailability)
	r.Post("/", h.Submit)
	return r
}

// ListServices returns the bookable services.
// GET /api/booking/services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services := h.service.Services(r.Context())
	respondJSON(w, http.StatusOK, services)
}

// GetAvailability returns the resolved availability for one date.
// GET /api/booking/availability?fecha=YYYY-MM-DD&duracion=30
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	fecha := r.URL.Query().Get("fecha")
	if fecha == "" {
		fecha = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		respondError(w, http.StatusBadRequest, "fecha must be YYYY-MM-DD")
		return
	}

	duracion := defaultDurationMinutes
	if raw := r.URL.Query().Get("duracion"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "duracion must be a positive integer")
			return
		}
		duracion = v
	}

	day, err := h.service.Availability(r.Context(), fecha, duracion)
	if err != nil {
		h.logger.Error("availability lookup failed", "fecha", fecha, "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, day)
}

// Submit confirms a booking.
// POST /api/booking
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conf, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.logger.Error("booking submission failed", "email", req.Email, "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, conf)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
