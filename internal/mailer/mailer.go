package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"eventease/internal/model"
)

type Config struct {
	Host     string
	Port     string
	From     string
	Password string
	NotifyTo string
}

type Mailer struct {
	cfg Config
	log *zerolog.Logger
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// SendBookingNotification mails the bookings desk about a newly created
// booking. Failures are reported to the caller but never block the request
// that produced the booking.
func (m *Mailer) SendBookingNotification(detail *model.BookingDetail) error {
	if m.cfg.NotifyTo == "" {
		m.log.Debug().Msg("no notification recipient configured, skipping e-mail")
		return nil
	}

	subject := fmt.Sprintf("New booking #%d: %s at %s", detail.ID, detail.Event.Name, detail.Venue.Name)
	body := fmt.Sprintf(
		"A booking was created.\n\nEvent: %s\nVenue: %s (%s)\nDate: %s\n",
		detail.Event.Name,
		detail.Venue.Name,
		detail.Venue.Location,
		detail.BookingDate.Format("2006-01-02 15:04"),
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, m.cfg.NotifyTo, subject, body,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.NotifyTo}, []byte(msg)); err != nil {
		m.log.Warn().Msgf("failed to send booking notification to %s: %v", m.cfg.NotifyTo, err)
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Msgf("booking notification sent to %s (booking %d)", m.cfg.NotifyTo, detail.ID)
	return nil
}
