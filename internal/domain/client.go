package domain

import "time"

type Client struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Birthday      *time.Time `json:"birthday,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	LoyaltyPoints int        `json:"loyalty_points"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ClientCreateReq struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

type ClientPatch struct {
	Name     *string    `json:"name,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Phone    *string    `json:"phone,omitempty"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}
