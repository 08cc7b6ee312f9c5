package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

// BookingDetails carries the appointment facts shown in confirmation
// emails. WallClock is the already-localized time string; no timezone
// logic happens here.
type BookingDetails struct {
	ServiceName     string
	WallClock       string
	DurationMinutes int
}

// BookingNotifier sends the two post-booking emails: a confirmation to the
// client and an alert to the consultant.
type BookingNotifier struct {
	sender          EmailSender
	consultantEmail string
	crmURL          string
	logger          *logging.Logger

	// wg tracks detached sends so tests can join them. The booking path
	// never waits on it.
	wg sync.WaitGroup
}

// NewBookingNotifier creates a booking notifier. A nil sender disables
// delivery; NotifyBookingConfirmed then does nothing.
func NewBookingNotifier(sender EmailSender, consultantEmail, crmURL string, logger *logging.Logger) *BookingNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingNotifier{
		sender:          sender,
		consultantEmail: consultantEmail,
		crmURL:          crmURL,
		logger:          logger,
	}
}

// NotifyBookingConfirmed dispatches both emails as detached tasks and
// returns immediately. Delivery is strictly best-effort: a failed send is
// logged and never reaches the caller, since the appointment already
// exists in the CRM and must not appear to fail.
func (n *BookingNotifier) NotifyBookingConfirmed(clientEmail, clientName string, details BookingDetails) {
	if n.sender == nil {
		n.logger.Warn("notify: email sender not configured, booking confirmation skipped")
		return
	}

	n.dispatch("client confirmation", EmailMessage{
		To:      clientEmail,
		ToName:  clientName,
		Subject: "Confirmación de tu Cita - Volkern",
		Body: fmt.Sprintf("¡Tu cita está confirmada, %s! Servicio: %s. Hora: %s. Duración: %d minutos.",
			clientName, details.ServiceName, details.WallClock, details.DurationMinutes),
		HTML: clientConfirmationHTML(clientName, details),
	})

	n.dispatch("consultant alert", EmailMessage{
		To:      n.consultantEmail,
		Subject: fmt.Sprintf("Nueva Cita Agendada: %s", clientName),
		Body: fmt.Sprintf("Nueva cita agendada. Cliente: %s (%s). Servicio: %s. Hora: %s.",
			clientName, clientEmail, details.ServiceName, details.WallClock),
		HTML: consultantAlertHTML(clientName, clientEmail, details, n.crmURL),
	})
}

// dispatch runs one send in its own goroutine with a fresh context: the
// originating request context may already be gone by the time the send runs.
func (n *BookingNotifier) dispatch(kind string, msg EmailMessage) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.sender.Send(context.Background(), msg); err != nil {
			n.logger.Error("notify: booking email failed", "kind", kind, "to", msg.To, "error", err)
		}
	}()
}

// Wait blocks until all detached sends have finished. Test hook only.
func (n *BookingNotifier) Wait() {
	n.wg.Wait()
}

func clientConfirmationHTML(clientName string, d BookingDetails) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #eaeaea; border-radius: 12px;">
  <h1 style="color: #000; font-size: 24px;">¡Tu cita está confirmada, %s!</h1>
  <p>Hemos agendado tu sesión exitosamente. Aquí están los detalles:</p>
  <div style="background: #f9f9f9; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <p><strong>Servicio:</strong> %s</p>
    <p><strong>Fecha y Hora:</strong> %s</p>
    <p><strong>Duración:</strong> %d minutos</p>
  </div>
  <p>Te esperamos pronto.</p>
  <hr style="border: 0; border-top: 1px solid #eaeaea; margin: 20px 0;" />
  <p style="font-size: 12px; color: #666;">Si necesitas cancelar o reprogramar, por favor contáctanos.</p>
</div>`, clientName, d.ServiceName, d.WallClock, d.DurationMinutes)
}

func consultantAlertHTML(clientName, clientEmail string, d BookingDetails, crmURL string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2>Nueva cita agendada en el calendario</h2>
  <p><strong>Cliente:</strong> %s (%s)</p>
  <p><strong>Servicio:</strong> %s</p>
  <p><strong>Fecha y Hora:</strong> %s</p>
  <hr />
  <p><a href="%s" style="color: black; text-decoration: underline;">Ver en Volkern CRM</a></p>
</div>`, clientName, clientEmail, d.ServiceName, d.WallClock, crmURL)
}
