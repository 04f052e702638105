package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	StatusReserved  TicketStatus = "reserved"
	StatusConfirmed TicketStatus = "confirmed"
	StatusCancelled TicketStatus = "cancelled"
	StatusFailed    TicketStatus = "failed"
)

// Ticket is created by a successful reservation. ExpiresAt is set on
// creation and cleared on confirmation; ConfirmedAt is set only on
// confirmation.
type Ticket struct {
	ID          string          `json:"ticket_id"`
	CategoryID  string          `json:"category_id"`
	Category    *TicketCategory `json:"-"`
	Quantity    int             `json:"seat_quantity"`
	Status      TicketStatus    `json:"status"`
	ReservedAt  time.Time       `json:"reserved_at"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	ConfirmedAt *time.Time      `json:"confirmed_at,omitempty"`
}

// ConfirmedTicket is the read-model row projected for a confirmed ticket.
type ConfirmedTicket struct {
	ID          string          `json:"ticket_id" db:"ticket_id"`
	CategoryID  string          `json:"category_id" db:"category_id"`
	Quantity    int             `json:"seat_quantity" db:"seat_quantity"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	ConfirmedAt time.Time       `json:"confirmed_at" db:"confirmed_at"`
}
