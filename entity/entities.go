package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Venue struct {
	ID       string           `json:"venue_id"`
	Name     string           `json:"name"`
	Address  string           `json:"address,omitempty"`
	Capacity int              `json:"capacity"`
	Schedule []ScheduledEvent `json:"schedule,omitempty"`
}

// ScheduledEvent marks a date as taken at a venue.
type ScheduledEvent struct {
	EventID string    `json:"event_id"`
	Date    time.Time `json:"date"`
}

type Event struct {
	ID          string            `json:"event_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Date        time.Time         `json:"date"`
	VenueID     string            `json:"venue_id"`
	Published   bool              `json:"published"`
	Categories  []*TicketCategory `json:"ticket_categories"`
}

// TicketCategory is a named class of seats for an event. Total is fixed at
// creation; Available is mutated only by the booking service while holding
// the category's lock, so it is never serialised directly. Callers read it
// through CategoryAvailability snapshots taken under the same lock.
type TicketCategory struct {
	ID        string          `json:"category_id"`
	EventID   string          `json:"event_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Total     int             `json:"total_capacity"`
	Available int             `json:"-"`
}

type CategoryAvailability struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Available  int    `json:"available_capacity"`
}
