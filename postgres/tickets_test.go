package postgres_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ticketing/entity"
	"ticketing/postgres"
)

var db *sqlx.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		log.Println("POSTGRES_URL not set, skipping postgres tests")
		os.Exit(0)
	}

	var err error
	db, err = sqlx.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to db: %s", err)
	}

	if err := postgres.CreateConfirmedTicketsTable(context.Background(), db); err != nil {
		log.Fatalf("failed to create confirmed tickets table: %s", err)
	}

	code := m.Run()

	if err := db.Close(); err != nil {
		log.Fatalf("failed to close db connection: %s", err)
	}

	os.Exit(code)
}

func TestTicketRepoAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ticket := entity.ConfirmedTicket{
		ID:          uuid.NewString(),
		CategoryID:  uuid.NewString(),
		Quantity:    2,
		Amount:      decimal.NewFromInt(100),
		ConfirmedAt: time.Now().UTC(),
	}
	r := postgres.NewTicketRepo(db)
	require.NoError(t, r.Add(ctx, ticket))
	require.NoError(t, r.Add(ctx, ticket))

	tickets, err := r.List(ctx)
	require.NoError(t, err)
	var matching []entity.ConfirmedTicket
	for _, c := range tickets {
		if c.ID == ticket.ID {
			matching = append(matching, c)
		}
	}
	require.Len(t, matching, 1)
}

func TestTicketRepoDelete(t *testing.T) {
	ctx := context.Background()
	ticket := entity.ConfirmedTicket{
		ID:          uuid.NewString(),
		CategoryID:  uuid.NewString(),
		Quantity:    1,
		Amount:      decimal.NewFromInt(50),
		ConfirmedAt: time.Now().UTC(),
	}
	r := postgres.NewTicketRepo(db)
	require.NoError(t, r.Add(ctx, ticket))
	require.NoError(t, r.Delete(ctx, ticket.ID))

	tickets, err := r.List(ctx)
	require.NoError(t, err)
	for _, c := range tickets {
		require.NotEqual(t, ticket.ID, c.ID)
	}
}
