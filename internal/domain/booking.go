package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCanceled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

type Booking struct {
	ID          int64         `json:"id"`
	ManageToken string        `json:"manage_token"`
	Status      BookingStatus `json:"status"`
	ClientID    *int64        `json:"client_id,omitempty"`
	ClientName  string        `json:"client_name"`
	ClientEmail string        `json:"client_email"`
	ClientPhone string        `json:"client_phone"`
	ServiceID   int64         `json:"service_id"`
	StartsAt    time.Time     `json:"starts_at"`
	EndsAt      time.Time     `json:"ends_at"`
	Notes       string        `json:"notes"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type BookingCreateReq struct {
	ClientID    *int64    `json:"client_id,omitempty"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	ClientPhone string    `json:"client_phone"`
	ServiceID   int64     `json:"service_id"`
	StartsAt    time.Time `json:"starts_at"`
	Notes       string    `json:"notes"`
}

type BookingCreateRes struct {
	ID          int64     `json:"id"`
	ManageToken string    `json:"manage_token"`
	Status      string    `json:"status"`
	StartsAt    time.Time `json:"starts_at"`
}

type BookingPatch struct {
	ClientName  *string        `json:"client_name,omitempty"`
	ClientPhone *string        `json:"client_phone,omitempty"`
	ServiceID   *int64         `json:"service_id,omitempty"`
	StartsAt    *time.Time     `json:"starts_at,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	Status      *BookingStatus `json:"status,omitempty"`
}

// CanCancel reports whether the booking is still cancelable.
func (b *Booking) CanCancel() bool {
	return b.Status != BookingCanceled && b.Status != BookingCompleted
}
