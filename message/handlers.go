package message

import (
	"context"

	"ticketing/entity"
	"ticketing/event"
)

// TicketRepo is the confirmed-tickets read model fed from the event stream.
type TicketRepo interface {
	Add(ctx context.Context, ticket entity.ConfirmedTicket) error
	Delete(ctx context.Context, ticketID string) error
}

type MetricsRecorder interface {
	TrackMessage(eventName, status string)
}

type nopMetrics struct{}

func (nopMetrics) TrackMessage(string, string) {}

func handleStoreConfirmedTicket(repo TicketRepo) func(ctx context.Context, e *event.TicketBookingConfirmed) error {
	return func(ctx context.Context, e *event.TicketBookingConfirmed) error {
		t := entity.ConfirmedTicket{
			ID:          e.TicketID,
			CategoryID:  e.CategoryID,
			Quantity:    e.Quantity,
			Amount:      e.Amount,
			ConfirmedAt: e.ConfirmedAt,
		}
		return repo.Add(ctx, t)
	}
}

func handleRemoveCancelledTicket(repo TicketRepo) func(ctx context.Context, e *event.TicketBookingCanceled) error {
	return func(ctx context.Context, e *event.TicketBookingCanceled) error {
		return repo.Delete(ctx, e.TicketID)
	}
}
