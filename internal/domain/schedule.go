package domain

import "time"

// DayHours is the clinic's opening schedule for one weekday, expressed in
// minutes from midnight local time. A weekday without a row is closed.
// BreakStart/BreakEnd bound the optional lunch break; both are set or neither.
type DayHours struct {
	ID         int64        `json:"id"`
	Weekday    time.Weekday `json:"weekday"`
	OpenMin    int          `json:"open_min"`
	CloseMin   int          `json:"close_min"`
	BreakStart *int         `json:"break_start,omitempty"`
	BreakEnd   *int         `json:"break_end,omitempty"`
}

// Slot is a bookable start time for a given service on a given day.
type Slot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
