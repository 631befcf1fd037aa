package domain

import "time"

type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchasePaid     PurchaseStatus = "paid"
	PurchaseCanceled PurchaseStatus = "canceled"
)

type Purchase struct {
	ID              int64          `json:"id"`
	ClientID        int64          `json:"client_id"`
	ProductID       int64          `json:"product_id"`
	Quantity        int            `json:"quantity"`
	Amount          float64        `json:"amount"`
	Status          PurchaseStatus `json:"status"`
	PaymentIntentID string         `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type PurchaseCreateReq struct {
	ClientID  int64 `json:"client_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type PurchaseCreateRes struct {
	ID           int64   `json:"id"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	ClientSecret string  `json:"client_secret,omitempty"`
}
