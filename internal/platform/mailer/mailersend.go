package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendBookingConfirmation(toEmail, toName, serviceName string, startsAt time.Time, manageToken string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Tu cita en Laksmi está confirmada"
	when := startsAt.Format("02/01/2006 15:04")
	html := fmt.Sprintf(`
		<h2>¡Cita reservada!</h2>
		<p>Hola %s,</p>
		<p>Hemos registrado tu cita de <strong>%s</strong> para el <strong>%s</strong>.</p>
		<p>Puedes consultar o cancelar tu cita con este código de gestión: <strong>%s</strong></p>
		<p>Te esperamos.</p>
	`, toName, serviceName, when, manageToken)

	text := fmt.Sprintf("Hola %s, tu cita de %s el %s está reservada. Código de gestión: %s",
		toName, serviceName, when, manageToken)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendBookingCanceled(toEmail, toName string, startsAt time.Time) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Tu cita en Laksmi ha sido cancelada"
	when := startsAt.Format("02/01/2006 15:04")
	html := fmt.Sprintf(`
		<h2>Cita cancelada</h2>
		<p>Hola %s,</p>
		<p>Tu cita del <strong>%s</strong> ha sido cancelada.</p>
		<p>Puedes reservar una nueva cita cuando quieras.</p>
	`, toName, when)

	text := fmt.Sprintf("Hola %s, tu cita del %s ha sido cancelada.", toName, when)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}

var _ Service = (*MailerSendClient)(nil)
