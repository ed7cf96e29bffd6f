package models

import "time"

// History entry actions.
const (
	ActionOutbound  = "outbound"
	ActionDailySave = "daily_save"
)

// Appointment is a single check-in desk entry for the current day.
type Appointment struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	LicensePlate string     `json:"licensePlate"`
	IsOutbound   bool       `json:"isOutbound"`
	Timestamp    time.Time  `json:"timestamp"`
	OutboundTime *time.Time `json:"outboundTime,omitempty"`
}

// HistoryEntry is one record in the append-only per-day history log.
// An outbound entry carries the single appointment that left; a daily_save
// entry carries the entire list archived at rollover.
type HistoryEntry struct {
	Action       string        `json:"action"`
	RecordedAt   time.Time     `json:"recordedAt"`
	Appointment  *Appointment  `json:"appointment,omitempty"`
	Appointments []Appointment `json:"appointments,omitempty"`
}

// DisplaySnapshot is the derived view shown on the waiting-room screen.
// It is recomputed on demand and never persisted.
type DisplaySnapshot struct {
	Appointments []Appointment `json:"appointments"`
	TotalWaiting int           `json:"totalWaiting"`
	SystemActive bool          `json:"systemActive"`
}
