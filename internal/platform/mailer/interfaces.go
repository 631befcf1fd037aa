package mailer

import "time"

type Service interface {
	SendBookingConfirmation(toEmail, toName, serviceName string, startsAt time.Time, manageToken string) error
	SendBookingCanceled(toEmail, toName string, startsAt time.Time) error
}
