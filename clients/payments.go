// Package clients holds outbound gateway clients.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ticketing/booking"
	"ticketing/message"
)

// PaymentsClient charges cards through the payments gateway.
type PaymentsClient struct {
	address string
	client  *http.Client
}

func NewPaymentsClient(gatewayAddress string) *PaymentsClient {
	return &PaymentsClient{
		address: gatewayAddress,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chargeRequest struct {
	TicketID   string `json:"ticket_id"`
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Quantity   int    `json:"quantity"`
	Amount     string `json:"amount"`
}

type chargeResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

func (c *PaymentsClient) Charge(ctx context.Context, amount decimal.Decimal, details booking.ChargeDetails) (bool, error) {
	body, err := json.Marshal(chargeRequest{
		TicketID:   details.TicketID,
		EventID:    details.EventID,
		CategoryID: details.CategoryID,
		Quantity:   details.Quantity,
		Amount:     amount.String(),
	})
	if err != nil {
		return false, fmt.Errorf("marshalling charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address+"/charges", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("creating charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Correlation-ID", message.CorrelationIDFromContext(ctx))

	res, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("sending charge request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusPaymentRequired:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var charge chargeResponse
	if err := json.NewDecoder(res.Body).Decode(&charge); err != nil {
		return false, fmt.Errorf("decoding charge response: %w", err)
	}

	return charge.Approved, nil
}

// StubPayments approves every charge after a short fixed delay. It stands in
// when no gateway address is configured.
type StubPayments struct {
	logger *logrus.Logger
}

func NewStubPayments(logger *logrus.Logger) StubPayments {
	return StubPayments{logger: logger}
}

func (s StubPayments) Charge(ctx context.Context, amount decimal.Decimal, details booking.ChargeDetails) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(50 * time.Millisecond):
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id": details.TicketID,
		"amount":    amount.String(),
	}).Info("Stub payment approved")
	return true, nil
}
