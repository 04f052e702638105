// Package booking implements the reservation lifecycle: Reserve holds seats
// against a ticket category for a limited window, Confirm charges payment
// and makes the booking permanent, Cancel releases a confirmed booking, and
// the sweeper reclaims reservations nobody confirmed in time.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ticketing/cache"
	"ticketing/clock"
	"ticketing/entity"
	"ticketing/event"
	"ticketing/inventory"
)

const defaultReservationWindow = 15 * time.Minute

type CategoryDirectory interface {
	ResolveCategory(eventID, categoryID string) (*entity.TicketCategory, error)
	EventCategories(eventID string) ([]*entity.TicketCategory, error)
}

type ChargeDetails struct {
	TicketID   string
	EventID    string
	CategoryID string
	Quantity   int
}

// PaymentGateway is called without holding any category lock; it may be
// slow. Approved is a regular outcome, as is a decline; an error means the
// charge could not be attempted.
type PaymentGateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, details ChargeDetails) (approved bool, err error)
}

type Publisher interface {
	Publish(ctx context.Context, event any) error
}

type Service struct {
	directory CategoryDirectory
	payments  PaymentGateway
	publisher Publisher
	logger    *logrus.Logger

	pending   *cache.Cache[string, *entity.Ticket]
	confirmed *cache.Cache[string, *entity.Ticket]
	locks     *inventory.Registry
	clock     clock.Clock
	window    time.Duration
}

type Option func(*Service)

// WithReservationWindow overrides how long a reservation holds its seats
// before forfeiting them.
func WithReservationWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func NewService(directory CategoryDirectory, payments PaymentGateway, publisher Publisher, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		directory: directory,
		payments:  payments,
		publisher: publisher,
		logger:    logger,
		locks:     inventory.NewRegistry(),
		clock:     clock.NewSystem(),
		window:    defaultReservationWindow,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pending = cache.New(cache.WithClock[string, *entity.Ticket](s.clock))
	s.confirmed = cache.New(cache.WithClock[string, *entity.Ticket](s.clock))

	return s
}

// Reserve debits the category's capacity and holds it for the reservation
// window. The capacity check and debit are atomic per category.
func (s *Service) Reserve(ctx context.Context, eventID, categoryID string, quantity int) (_ *entity.Ticket, err error) {
	defer s.recovered("reserve", &err)

	if quantity <= 0 {
		return nil, entity.ErrInvalidQuantity
	}

	category, err := s.directory.ResolveCategory(eventID, categoryID)
	if err != nil {
		return nil, err
	}

	live, err := s.debit(category, quantity)
	if err != nil {
		return nil, err
	}

	// The live entry is already claimable by Confirm, so everything after
	// the debit works on a snapshot.
	ticket := snapshotTicket(live)

	s.publish(ctx, event.NewTicketReserved(ticket.ID, ticket))
	s.logger.WithFields(logrus.Fields{
		"ticket_id":   ticket.ID,
		"category_id": category.ID,
		"quantity":    quantity,
	}).Info("Ticket reserved")

	return ticket, nil
}

// Confirm claims the pending ticket, charges payment and makes the booking
// permanent. The claim removes the ticket from the pending cache before the
// payment call, so concurrent confirms of the same ticket cannot both
// succeed; the losers see ErrTicketNotFound.
func (s *Service) Confirm(ctx context.Context, ticketID string) (_ *entity.Ticket, err error) {
	defer s.recovered("confirm", &err)

	ticket, ok := s.pending.Take(ticketID)
	if !ok {
		return nil, entity.ErrTicketNotFound
	}

	now := s.clock.Now()
	if ticket.ExpiresAt != nil && now.After(*ticket.ExpiresAt) {
		s.fail(ticket)
		s.publish(ctx, event.NewTicketReservationExpired(ticket.ID, ticket))
		s.logger.WithField("ticket_id", ticket.ID).Warn("Reservation expired before confirmation")
		return nil, entity.ErrReservationExpired
	}

	amount := ticket.Category.Price.Mul(decimal.NewFromInt(int64(ticket.Quantity)))
	details := ChargeDetails{
		TicketID:   ticket.ID,
		EventID:    ticket.Category.EventID,
		CategoryID: ticket.CategoryID,
		Quantity:   ticket.Quantity,
	}

	approved, err := s.payments.Charge(ctx, amount, details)
	if err != nil {
		s.fail(ticket)
		return nil, fmt.Errorf("charging payment: %w", err)
	}
	if !approved {
		s.fail(ticket)
		s.logger.WithField("ticket_id", ticket.ID).Warn("Payment declined")
		return nil, entity.ErrPaymentDeclined
	}

	confirmedAt := s.clock.Now()
	ticket.Status = entity.StatusConfirmed
	ticket.ExpiresAt = nil
	ticket.ConfirmedAt = &confirmedAt
	s.confirmed.Set(ticket.ID, ticket, 0)

	s.publish(ctx, event.NewTicketBookingConfirmed(ticket.ID, ticket, amount))
	s.logger.WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"amount":    amount.String(),
	}).Info("Ticket confirmed")

	return snapshotTicket(ticket), nil
}

// Cancel releases a confirmed booking and re-credits its seats. Pending
// reservations cannot be cancelled; they lapse via the reservation window.
func (s *Service) Cancel(ctx context.Context, ticketID string) (_ *entity.Ticket, err error) {
	defer s.recovered("cancel", &err)

	ticket, ok := s.confirmed.Take(ticketID)
	if !ok {
		return nil, entity.ErrTicketNotFound
	}

	s.credit(ticket)
	ticket.Status = entity.StatusCancelled

	s.publish(ctx, event.NewTicketBookingCanceled(ticket.ID, ticket))
	s.logger.WithField("ticket_id", ticket.ID).Info("Ticket cancelled")

	return snapshotTicket(ticket), nil
}

// Availability snapshots the remaining capacity of every category of an
// event. Each counter is read under its category lock.
func (s *Service) Availability(eventID string) (_ []entity.CategoryAvailability, err error) {
	defer s.recovered("availability", &err)

	categories, err := s.directory.EventCategories(eventID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, entity.ErrNoCategoriesDefined
	}

	availability := make([]entity.CategoryAvailability, 0, len(categories))
	for _, c := range categories {
		lock := s.locks.Get(c.ID)
		lock.Lock()
		available := c.Available
		lock.Unlock()

		availability = append(availability, entity.CategoryAvailability{
			CategoryID: c.ID,
			Name:       c.Name,
			Available:  available,
		})
	}

	return availability, nil
}

// PendingCount reports how many reservations await confirmation.
func (s *Service) PendingCount() int {
	return s.pending.Len()
}

// ConfirmedCount reports how many confirmed bookings are held.
func (s *Service) ConfirmedCount() int {
	return s.confirmed.Len()
}

// SweepExpired reclaims every reservation past its window, crediting the
// seats back exactly once. A failure on one entry never stops the sweep.
func (s *Service) SweepExpired(ctx context.Context) int {
	reclaimed := 0
	for _, ticket := range s.pending.ExpiredValues() {
		if s.reclaim(ctx, ticket) {
			reclaimed++
		}
	}
	return reclaimed
}

func (s *Service) reclaim(ctx context.Context, ticket *entity.Ticket) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"ticket_id": ticket.ID,
				"panic":     r,
			}).Error("Failed to reclaim expired reservation")
			ok = false
		}
	}()

	// The removal is the claim: a concurrent Confirm that already took the
	// ticket wins, and this entry is skipped.
	if !s.pending.Remove(ticket.ID) {
		return false
	}

	s.fail(ticket)
	s.publish(ctx, event.NewTicketReservationExpired(ticket.ID, ticket))
	s.logger.WithField("ticket_id", ticket.ID).Info("Expired reservation reclaimed")

	return true
}

// fail credits the ticket's seats back under the category lock and marks it
// failed. Callers must hold the ticket exclusively (post-claim).
func (s *Service) fail(ticket *entity.Ticket) {
	s.credit(ticket)
	ticket.Status = entity.StatusFailed
}

// debit atomically checks and takes quantity seats from the category. The
// lock is released by defer so a panic inside the critical section cannot
// leave the category locked.
func (s *Service) debit(category *entity.TicketCategory, quantity int) (*entity.Ticket, error) {
	lock := s.locks.Get(category.ID)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock.Now()
	if category.Available < quantity {
		return nil, entity.ErrInsufficientCapacity
	}
	category.Available -= quantity

	expiresAt := now.Add(s.window)
	ticket := &entity.Ticket{
		ID:         uuid.NewString(),
		CategoryID: category.ID,
		Category:   category,
		Quantity:   quantity,
		Status:     entity.StatusReserved,
		ReservedAt: now,
		ExpiresAt:  &expiresAt,
	}
	s.pending.Set(ticket.ID, ticket, s.window)
	return ticket, nil
}

// snapshotTicket copies a ticket for callers outside the service, so they
// can serialise it while the sweeper or a later operation mutates the live
// entry.
func snapshotTicket(t *entity.Ticket) *entity.Ticket {
	out := *t
	if t.ExpiresAt != nil {
		expiresAt := *t.ExpiresAt
		out.ExpiresAt = &expiresAt
	}
	if t.ConfirmedAt != nil {
		confirmedAt := *t.ConfirmedAt
		out.ConfirmedAt = &confirmedAt
	}
	return &out
}

func (s *Service) credit(ticket *entity.Ticket) {
	lock := s.locks.Get(ticket.CategoryID)
	lock.Lock()
	defer lock.Unlock()
	ticket.Category.Available += ticket.Quantity
}

func (s *Service) publish(ctx context.Context, e any) {
	if s.publisher == nil {
		return
	}
	// The state transition is already committed; a publish failure must not
	// fail the operation.
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WithError(err).Warn("Failed to publish event")
	}
}

func (s *Service) recovered(operation string, err *error) {
	if r := recover(); r != nil {
		s.logger.WithFields(logrus.Fields{
			"operation": operation,
			"panic":     r,
		}).Error("Unexpected fault")
		*err = entity.ErrInternal
	}
}
