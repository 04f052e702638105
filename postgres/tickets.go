// Package postgres holds the confirmed-tickets read model, projected from
// the event stream. The in-memory booking engine stays authoritative.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"ticketing/entity"
)

func CreateConfirmedTicketsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS confirmed_tickets (
		ticket_id UUID PRIMARY KEY,
		category_id UUID NOT NULL,
		seat_quantity INTEGER NOT NULL,
		amount NUMERIC(10, 2) NOT NULL,
		confirmed_at TIMESTAMPTZ NOT NULL
		);`)
	return err
}

type TicketRepo struct {
	db *sqlx.DB
}

func NewTicketRepo(db *sqlx.DB) TicketRepo {
	return TicketRepo{
		db: db,
	}
}

// Add is idempotent: re-delivered confirmation events insert once.
func (r TicketRepo) Add(ctx context.Context, ticket entity.ConfirmedTicket) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO confirmed_tickets
		(ticket_id, category_id, seat_quantity, amount, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticket_id) DO NOTHING;`,
		ticket.ID, ticket.CategoryID, ticket.Quantity, ticket.Amount, ticket.ConfirmedAt)
	return err
}

func (r TicketRepo) Delete(ctx context.Context, ticketID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM confirmed_tickets WHERE ticket_id = $1", ticketID)
	if err != nil {
		return fmt.Errorf("executing delete query: %w", err)
	}
	return nil
}

func (r TicketRepo) List(ctx context.Context) ([]entity.ConfirmedTicket, error) {
	var tickets []entity.ConfirmedTicket
	err := r.db.SelectContext(ctx, &tickets, `SELECT
		ticket_id, category_id, seat_quantity, amount, confirmed_at
		FROM confirmed_tickets`)
	if err != nil {
		return nil, fmt.Errorf("selecting confirmed tickets: %w", err)
	}
	return tickets, nil
}
