package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing/booking"
	"ticketing/entity"
	"ticketing/service"
)

type approveAllGateway struct{}

func (approveAllGateway) Charge(context.Context, decimal.Decimal, booking.ChargeDetails) (bool, error) {
	return true, nil
}

type inMemoryTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]entity.ConfirmedTicket
}

func newInMemoryTicketRepo() *inMemoryTicketRepo {
	return &inMemoryTicketRepo{tickets: map[string]entity.ConfirmedTicket{}}
}

func (r *inMemoryTicketRepo) Add(_ context.Context, ticket entity.ConfirmedTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *inMemoryTicketRepo) Delete(_ context.Context, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tickets, ticketID)
	return nil
}

func (r *inMemoryTicketRepo) List(context.Context) ([]entity.ConfirmedTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tickets := make([]entity.ConfirmedTicket, 0, len(r.tickets))
	for _, t := range r.tickets {
		tickets = append(tickets, t)
	}
	return tickets, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func doJSON(t *testing.T, method, url string, body any) envelope {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Less(t, res.StatusCode, 300, "unexpected status %d", res.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	require.True(t, env.Success)
	return env
}

func TestServiceComponent(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	wmLogger := watermill.NopLogger{}

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	repo := newInMemoryTicketRepo()

	svc, err := service.New(service.Config{
		BindAddr:      "127.0.0.1:0",
		SweepInterval: 50 * time.Millisecond,
	}, service.Deps{
		Logger:          logger,
		WatermillLogger: wmLogger,
		Publisher:       pubsub,
		SubscriberConstructor: func(string) (wmmessage.Subscriber, error) {
			return pubsub, nil
		},
		PaymentGateway: approveAllGateway{},
		TicketRepo:     repo,
		TicketLister:   repo,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return svc.HTTPAddr() != nil
	}, 5*time.Second, 10*time.Millisecond, "HTTP server did not start")
	baseURL := "http://" + svc.HTTPAddr().String()

	env := doJSON(t, http.MethodPost, baseURL+"/venues", map[string]any{
		"name":     "Opera House",
		"capacity": 10,
	})
	var venue struct {
		ID string `json:"venue_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &venue))

	env = doJSON(t, http.MethodPost, baseURL+"/events", map[string]any{
		"name":     "Gala",
		"date":     time.Date(2026, 12, 31, 20, 0, 0, 0, time.UTC),
		"venue_id": venue.ID,
		"ticket_categories": []map[string]any{
			{"name": "standard", "price": "120", "capacity": 10},
		},
	})
	var event struct {
		ID         string `json:"event_id"`
		Categories []struct {
			ID string `json:"category_id"`
		} `json:"ticket_categories"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &event))
	require.Len(t, event.Categories, 1)

	env = doJSON(t, http.MethodPost, baseURL+"/reservations", map[string]any{
		"event_id":      event.ID,
		"category_id":   event.Categories[0].ID,
		"seat_quantity": 2,
	})
	var ticket struct {
		ID string `json:"ticket_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ticket))

	doJSON(t, http.MethodPost, fmt.Sprintf("%s/reservations/%s/confirm", baseURL, ticket.ID), nil)

	// The confirmation event flows through the router into the read model.
	assert.EventuallyWithT(t, func(ct *assert.CollectT) {
		res, err := http.Get(baseURL + "/tickets")
		require.NoError(ct, err)
		defer res.Body.Close()

		var env envelope
		require.NoError(ct, json.NewDecoder(res.Body).Decode(&env))

		var tickets []entity.ConfirmedTicket
		require.NoError(ct, json.Unmarshal(env.Data, &tickets))
		require.Len(ct, tickets, 1)
		assert.Equal(ct, ticket.ID, tickets[0].ID)
		assert.True(ct, tickets[0].Amount.Equal(decimal.NewFromInt(240)))
	}, 5*time.Second, 20*time.Millisecond)

	env = doJSON(t, http.MethodGet, fmt.Sprintf("%s/events/%s/availability", baseURL, event.ID), nil)
	var availability []struct {
		Available int `json:"available_capacity"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &availability))
	require.Len(t, availability, 1)
	assert.Equal(t, 8, availability[0].Available)

	doJSON(t, http.MethodPost, fmt.Sprintf("%s/tickets/%s/cancel", baseURL, ticket.ID), nil)

	assert.EventuallyWithT(t, func(ct *assert.CollectT) {
		tickets, err := repo.List(context.Background())
		require.NoError(ct, err)
		assert.Empty(ct, tickets)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not shut down")
	}
}
