package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

type captureSender struct {
	mu       sync.Mutex
	messages []EmailMessage
	err      error
}

func (c *captureSender) Send(ctx context.Context, msg EmailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return c.err
}

func (c *captureSender) sent() []EmailMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]EmailMessage(nil), c.messages...)
}

func TestNotifyBookingConfirmed_SendsBothEmails(t *testing.T) {
	sender := &captureSender{}
	n := NewBookingNotifier(sender, "consultant@dimensionexpert.com", "https://volkern.app", logging.Default())

	n.NotifyBookingConfirmed("a@x.com", "Ana", BookingDetails{
		ServiceName:     "Consultoría",
		WallClock:       "2026-02-20 09:00",
		DurationMinutes: 30,
	})
	n.Wait()

	msgs := sender.sent()
	if len(msgs) != 2 {
		t.Fatalf("sent %d emails, want 2", len(msgs))
	}

	var client, consultant *EmailMessage
	for i := range msgs {
		switch msgs[i].To {
		case "a@x.com":
			client = &msgs[i]
		case "consultant@dimensionexpert.com":
			consultant = &msgs[i]
		}
	}
	if client == nil || consultant == nil {
		t.Fatalf("recipients = %s, %s", msgs[0].To, msgs[1].To)
	}

	if client.Subject != "Confirmación de tu Cita - Volkern" {
		t.Errorf("client subject = %s", client.Subject)
	}
	if !strings.Contains(client.HTML, "Consultoría") || !strings.Contains(client.HTML, "2026-02-20 09:00") {
		t.Error("client email is missing appointment details")
	}
	if !strings.Contains(client.HTML, "30 minutos") {
		t.Error("client email is missing the duration")
	}

	if consultant.Subject != "Nueva Cita Agendada: Ana" {
		t.Errorf("consultant subject = %s", consultant.Subject)
	}
	if !strings.Contains(consultant.HTML, "a@x.com") {
		t.Error("consultant email is missing the client address")
	}
	if !strings.Contains(consultant.HTML, "https://volkern.app") {
		t.Error("consultant email is missing the CRM link")
	}
}

func TestNotifyBookingConfirmed_SendFailureIsSwallowed(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	n := NewBookingNotifier(sender, "consultant@dimensionexpert.com", "https://volkern.app", logging.Default())

	// Must not panic or surface the error; delivery is best-effort.
	n.NotifyBookingConfirmed("a@x.com", "Ana", BookingDetails{ServiceName: "Consultoría"})
	n.Wait()

	if len(sender.sent()) != 2 {
		t.Fatal("both sends should still have been attempted")
	}
}

func TestNotifyBookingConfirmed_NilSenderSkips(t *testing.T) {
	n := NewBookingNotifier(nil, "consultant@dimensionexpert.com", "https://volkern.app", logging.Default())
	n.NotifyBookingConfirmed("a@x.com", "Ana", BookingDetails{})
	n.Wait()
}

func TestNewSendGridSender_RequiresAPIKey(t *testing.T) {
	if s := NewSendGridSender(SendGridConfig{FromEmail: "x@y.com"}, logging.Default()); s != nil {
		t.Fatal("expected nil sender without an API key")
	}
}

func TestStubEmailSender(t *testing.T) {
	s := NewStubEmailSender(logging.Default())
	if err := s.Send(context.Background(), EmailMessage{To: "a@x.com", Subject: "hi"}); err != nil {
		t.Fatalf("stub Send() error = %v", err)
	}
}
