// Package booking implements the visitor-facing booking flow: pick a
// service, pick an available slot, submit contact details, get a confirmed
// appointment. All state lives in the Volkern CRM; this layer is stateless
// per request.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dimensionexpert/volkern-booking/internal/notify"
	"github.com/dimensionexpert/volkern-booking/internal/timezone"
	"github.com/dimensionexpert/volkern-booking/internal/volkern"
	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

// SchedulingClient is the slice of the Volkern client the booking flow uses.
type SchedulingClient interface {
	ListServices(ctx context.Context) []volkern.Service
	GetAvailability(ctx context.Context, fecha string, duracionMinutos int, tz string) (*volkern.AvailabilityResponse, error)
	UpsertLead(ctx context.Context, lead volkern.Lead) (*volkern.Lead, error)
	CreateAppointment(ctx context.Context, appt volkern.Appointment) (*volkern.Appointment, error)
}

// Notifier dispatches post-booking emails. Implementations must be
// fire-and-forget; Submit never waits on delivery.
type Notifier interface {
	NotifyBookingConfirmed(clientEmail, clientName string, details notify.BookingDetails)
}

// Slot is one bookable instant, presented three ways: the raw floating
// string (what gets sent back on submit), the resolved absolute instant,
// and the tenant wall-clock label for display.
type Slot struct {
	FechaHora string    `json:"fechaHora"`
	Instante  time.Time `json:"instante"`
	Hora      string    `json:"hora"`
}

// DayAvailability is the availability for one date with slots resolved to
// absolute instants, so callers need no timezone logic of their own.
type DayAvailability struct {
	Fecha          string                `json:"fecha"`
	Dia            string                `json:"dia"`
	DiaActivo      bool                  `json:"diaActivo"`
	HorarioLaboral volkern.WorkingHours  `json:"horarioLaboral"`
	Slots          []Slot                `json:"slots"`
	Ocupados       volkern.OccupiedSlots `json:"ocupados"`
}

// SubmitRequest is a validated booking submission.
type SubmitRequest struct {
	ServicioID     string `json:"servicioId,omitempty"`
	ServicioNombre string `json:"servicioNombre"`
	Duracion       int    `json:"duracion"`
	FechaHora      string `json:"fechaHora"`
	Nombre         string `json:"nombre"`
	Email          string `json:"email"`
	Telefono       string `json:"telefono,omitempty"`
	Empresa        string `json:"empresa,omitempty"`
	Notas          string `json:"notas,omitempty"`
}

// Validate reports the first missing required field. Runs at the HTTP
// boundary; the flow itself assumes validated input.
func (r SubmitRequest) Validate() error {
	switch {
	case r.Nombre == "":
		return fmt.Errorf("nombre is required")
	case r.Email == "":
		return fmt.Errorf("email is required")
	case r.ServicioNombre == "":
		return fmt.Errorf("servicioNombre is required")
	case r.FechaHora == "":
		return fmt.Errorf("fechaHora is required")
	case r.Duracion <= 0:
		return fmt.Errorf("duracion must be positive")
	}
	return nil
}

// Confirmation is the result of a successful submission.
type Confirmation struct {
	Reference     string    `json:"reference"`
	LeadID        string    `json:"leadId"`
	AppointmentID string    `json:"appointmentId"`
	FechaHora     string    `json:"fechaHora"`
	Instante      time.Time `json:"instante"`
}

// Service runs the booking flow against the CRM client.
type Service struct {
	client         SchedulingClient
	notifier       Notifier
	tenantTimezone string
	logger         *logging.Logger
}

// NewService creates the booking flow service. tenantTimezone is the IANA
// zone the CRM's floating slot timestamps are anchored to.
func NewService(client SchedulingClient, notifier Notifier, tenantTimezone string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:         client,
		notifier:       notifier,
		tenantTimezone: tenantTimezone,
		logger:         logger,
	}
}

// Services lists bookable services. Never fails: the client substitutes its
// static fallback when the CRM is unreachable.
func (s *Service) Services(ctx context.Context) []volkern.Service {
	return s.client.ListServices(ctx)
}

// Availability fetches one date's availability and resolves every floating
// slot to an absolute instant plus a tenant wall-clock label. Slots whose
// timestamp cannot be resolved are dropped rather than shown with a wrong
// time.
func (s *Service) Availability(ctx context.Context, fecha string, duracionMinutos int) (*DayAvailability, error) {
	resp, err := s.client.GetAvailability(ctx, fecha, duracionMinutos, s.tenantTimezone)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(resp.Disponibles.Slots))
	for _, raw := range resp.Disponibles.Slots {
		instant, err := timezone.ResolveAbsoluteInstant(raw, s.tenantTimezone)
		if err != nil {
			s.logger.Warn("booking: dropping unresolvable slot", "slot", raw, "error", err)
			continue
		}
		hora, err := timezone.FormatWallClock(instant, s.tenantTimezone)
		if err != nil {
			s.logger.Warn("booking: dropping unformattable slot", "slot", raw, "error", err)
			continue
		}
		slots = append(slots, Slot{FechaHora: raw, Instante: instant, Hora: hora})
	}

	return &DayAvailability{
		Fecha:          resp.Fecha,
		Dia:            resp.Dia,
		DiaActivo:      resp.DiaActivo,
		HorarioLaboral: resp.HorarioLaboral,
		Slots:          slots,
		Ocupados:       resp.Ocupados,
	}, nil
}

// Submit runs the booking transaction: upsert the lead by email, create the
// appointment, then hand the confirmation emails to the notifier. Email
// delivery is detached; its failure never rolls back the appointment. No
// retries anywhere: a failed CRM call surfaces directly.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Confirmation, error) {
	lead, err := s.client.UpsertLead(ctx, volkern.Lead{
		Nombre:   req.Nombre,
		Email:    req.Email,
		Telefono: req.Telefono,
		Empresa:  req.Empresa,
		Canal:    "web",
		Notas:    req.Notas,
	})
	if err != nil {
		return nil, err
	}
	if lead.ID == "" {
		return nil, fmt.Errorf("booking: CRM returned lead without id")
	}

	appt, err := s.client.CreateAppointment(ctx, volkern.Appointment{
		LeadID:      lead.ID,
		FechaHora:   req.FechaHora,
		Tipo:        "reunion",
		Titulo:      fmt.Sprintf("Cita: %s - %s", req.ServicioNombre, req.Nombre),
		Descripcion: req.Notas,
		Duracion:    req.Duracion,
		ServicioID:  req.ServicioID,
	})
	if err != nil {
		return nil, err
	}

	instant, resolveErr := timezone.ResolveAbsoluteInstant(req.FechaHora, s.tenantTimezone)
	wallClock := req.FechaHora
	if resolveErr == nil {
		if loc, err := time.LoadLocation(s.tenantTimezone); err == nil {
			wallClock = instant.In(loc).Format("2006-01-02 15:04")
		}
	} else {
		s.logger.Warn("booking: could not resolve slot for email copy", "slot", req.FechaHora, "error", resolveErr)
	}

	if s.notifier != nil {
		s.notifier.NotifyBookingConfirmed(req.Email, req.Nombre, notify.BookingDetails{
			ServiceName:     req.ServicioNombre,
			WallClock:       wallClock,
			DurationMinutes: req.Duracion,
		})
	}

	s.logger.Info("booking confirmed",
		"lead_id", lead.ID,
		"appointment_id", appt.ID,
		"fecha_hora", req.FechaHora,
	)

	return &Confirmation{
		Reference:     uuid.NewString(),
		LeadID:        lead.ID,
		AppointmentID: appt.ID,
		FechaHora:     req.FechaHora,
		Instante:      instant,
	}, nil
}
