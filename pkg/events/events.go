package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects
const (
	// Booking events
	BookingCreated   = "booking.created"
	BookingCanceled  = "booking.canceled"
	BookingCompleted = "booking.completed"

	// Loyalty events
	LoyaltyPointsAwarded  = "loyalty.points.awarded"
	LoyaltyPointsRedeemed = "loyalty.points.redeemed"

	// Purchase events
	PurchaseCreated   = "purchase.created"
	PurchaseCompleted = "purchase.completed"

	// Notification events
	NotifySend = "notify.send"
)

// Event payloads
type BookingCreatedEvent struct {
	BookingID   int64     `json:"booking_id"`
	ClientEmail string    `json:"client_email"`
	ClientName  string    `json:"client_name"`
	ServiceName string    `json:"service_name"`
	StartsAt    time.Time `json:"starts_at"`
	ManageToken string    `json:"manage_token"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookingCanceledEvent struct {
	BookingID   int64     `json:"booking_id"`
	ClientEmail string    `json:"client_email"`
	ClientName  string    `json:"client_name"`
	StartsAt    time.Time `json:"starts_at"`
	CanceledAt  time.Time `json:"canceled_at"`
}

type BookingCompletedEvent struct {
	BookingID     int64     `json:"booking_id"`
	ClientID      *int64    `json:"client_id,omitempty"`
	PointsAwarded int       `json:"points_awarded"`
	CompletedAt   time.Time `json:"completed_at"`
}

type LoyaltyPointsEvent struct {
	ClientID      int64     `json:"client_id"`
	Points        int       `json:"points"`
	Reason        string    `json:"reason"`
	ReferenceType string    `json:"reference_type,omitempty"`
	Balance       int       `json:"balance"`
	Tier          string    `json:"tier"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type PurchaseCompletedEvent struct {
	PurchaseID    int64     `json:"purchase_id"`
	ClientID      int64     `json:"client_id"`
	Amount        float64   `json:"amount"`
	PointsAwarded int       `json:"points_awarded"`
	CompletedAt   time.Time `json:"completed_at"`
}

type NotificationEvent struct {
	Type      string                 `json:"type"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Data      map[string]interface{} `json:"data"`
}
