package mailer

import (
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

// DevMailer logs instead of sending. Default in local development.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingConfirmation(toEmail, toName, serviceName string, startsAt time.Time, manageToken string) error {
	logger.Info("[DEV MAIL] Booking confirmation",
		"to", toEmail,
		"name", toName,
		"service", serviceName,
		"starts_at", startsAt.Format(time.RFC3339),
		"manage_token", manageToken,
	)
	return nil
}

func (d *DevMailer) SendBookingCanceled(toEmail, toName string, startsAt time.Time) error {
	logger.Info("[DEV MAIL] Booking canceled",
		"to", toEmail,
		"name", toName,
		"starts_at", startsAt.Format(time.RFC3339),
	)
	return nil
}

var _ Service = (*DevMailer)(nil)
