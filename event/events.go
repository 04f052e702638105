package event

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/shopspring/decimal"

	"ticketing/entity"
)

type header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func newHeader(idempotencyKey string) header {
	return header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type TicketReserved struct {
	Header     header          `json:"header"`
	TicketID   string          `json:"ticket_id"`
	EventID    string          `json:"event_id"`
	CategoryID string          `json:"category_id"`
	Quantity   int             `json:"seat_quantity"`
	Price      decimal.Decimal `json:"price"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

func NewTicketReserved(idempotencyKey string, t *entity.Ticket) TicketReserved {
	e := TicketReserved{
		Header:     newHeader(idempotencyKey),
		TicketID:   t.ID,
		EventID:    t.Category.EventID,
		CategoryID: t.CategoryID,
		Quantity:   t.Quantity,
		Price:      t.Category.Price,
	}
	if t.ExpiresAt != nil {
		e.ExpiresAt = *t.ExpiresAt
	}
	return e
}

type TicketBookingConfirmed struct {
	Header      header          `json:"header"`
	TicketID    string          `json:"ticket_id"`
	EventID     string          `json:"event_id"`
	CategoryID  string          `json:"category_id"`
	Quantity    int             `json:"seat_quantity"`
	Amount      decimal.Decimal `json:"amount"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

func NewTicketBookingConfirmed(idempotencyKey string, t *entity.Ticket, amount decimal.Decimal) TicketBookingConfirmed {
	e := TicketBookingConfirmed{
		Header:     newHeader(idempotencyKey),
		TicketID:   t.ID,
		EventID:    t.Category.EventID,
		CategoryID: t.CategoryID,
		Quantity:   t.Quantity,
		Amount:     amount,
	}
	if t.ConfirmedAt != nil {
		e.ConfirmedAt = *t.ConfirmedAt
	}
	return e
}

type TicketBookingCanceled struct {
	Header     header `json:"header"`
	TicketID   string `json:"ticket_id"`
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Quantity   int    `json:"seat_quantity"`
}

func NewTicketBookingCanceled(idempotencyKey string, t *entity.Ticket) TicketBookingCanceled {
	return TicketBookingCanceled{
		Header:     newHeader(idempotencyKey),
		TicketID:   t.ID,
		EventID:    t.Category.EventID,
		CategoryID: t.CategoryID,
		Quantity:   t.Quantity,
	}
}

// TicketReservationExpired is published both for sweeper reclaims and for
// confirm attempts that arrive after the reservation window.
type TicketReservationExpired struct {
	Header     header `json:"header"`
	TicketID   string `json:"ticket_id"`
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Quantity   int    `json:"seat_quantity"`
}

func NewTicketReservationExpired(idempotencyKey string, t *entity.Ticket) TicketReservationExpired {
	return TicketReservationExpired{
		Header:     newHeader(idempotencyKey),
		TicketID:   t.ID,
		EventID:    t.Category.EventID,
		CategoryID: t.CategoryID,
		Quantity:   t.Quantity,
	}
}
