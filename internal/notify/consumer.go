package notify

import (
	"encoding/json"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/platform/mailer"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/events"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

// Consumer listens on the event bus and turns booking events into emails.
// Subscriptions use a queue group so running several instances does not
// duplicate mail.
type Consumer struct {
	bus    events.Subscriber
	mailer mailer.Service
}

func NewConsumer(bus events.Subscriber, m mailer.Service) *Consumer {
	return &Consumer{bus: bus, mailer: m}
}

func (c *Consumer) Start() error {
	if err := c.bus.QueueSubscribe(events.BookingCreated, "notify", c.onBookingCreated); err != nil {
		return err
	}
	if err := c.bus.QueueSubscribe(events.BookingCanceled, "notify", c.onBookingCanceled); err != nil {
		return err
	}
	return c.bus.QueueSubscribe(events.NotifySend, "notify", c.onNotifySend)
}

func (c *Consumer) onBookingCreated(msg *events.Message) {
	var event events.BookingCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode booking created event", "error", err)
		return
	}

	if err := c.mailer.SendBookingConfirmation(
		event.ClientEmail, event.ClientName, event.ServiceName, event.StartsAt, event.ManageToken,
	); err != nil {
		logger.Error("Failed to send booking confirmation", "error", err, "booking_id", event.BookingID)
	}
}

// onNotifySend handles ad-hoc notification requests published by other
// components, re-dispatching the known email types.
func (c *Consumer) onNotifySend(msg *events.Message) {
	var event events.NotificationEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode notification event", "error", err)
		return
	}

	switch event.Type {
	case "booking_confirmation":
		name, _ := event.Data["client_name"].(string)
		serviceName, _ := event.Data["service_name"].(string)
		token, _ := event.Data["manage_token"].(string)
		startsAt := parseEventTime(event.Data["starts_at"])
		if err := c.mailer.SendBookingConfirmation(event.Recipient, name, serviceName, startsAt, token); err != nil {
			logger.Error("Failed to send requested confirmation", "error", err, "recipient", event.Recipient)
		}
	case "booking_canceled":
		name, _ := event.Data["client_name"].(string)
		startsAt := parseEventTime(event.Data["starts_at"])
		if err := c.mailer.SendBookingCanceled(event.Recipient, name, startsAt); err != nil {
			logger.Error("Failed to send requested cancellation notice", "error", err, "recipient", event.Recipient)
		}
	default:
		logger.Warn("Unknown notification type, dropping", "type", event.Type, "recipient", event.Recipient)
	}
}

func parseEventTime(v any) time.Time {
	raw, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func (c *Consumer) onBookingCanceled(msg *events.Message) {
	var event events.BookingCanceledEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode booking canceled event", "error", err)
		return
	}

	if err := c.mailer.SendBookingCanceled(event.ClientEmail, event.ClientName, event.StartsAt); err != nil {
		logger.Error("Failed to send cancellation email", "error", err, "booking_id", event.BookingID)
	}
}
