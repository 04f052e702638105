// Package directory is the venue and event catalogue. It owns the CRUD side
// of the system and resolves ticket categories for the booking service. The
// stores are internally synchronised. CRUD reads return copies so callers
// can serialise them without holding any lock; only ResolveCategory and
// EventCategories hand out the live categories, whose capacity counters are
// mutated elsewhere under the per-category inventory locks.
package directory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ticketing/entity"
)

type Directory struct {
	mu     sync.RWMutex
	venues map[string]*entity.Venue
	events map[string]*entity.Event
}

func New() *Directory {
	return &Directory{
		venues: make(map[string]*entity.Venue),
		events: make(map[string]*entity.Event),
	}
}

type VenueInput struct {
	Name     string
	Address  string
	Capacity int
}

func (d *Directory) CreateVenue(in VenueInput) (*entity.Venue, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: venue name is required", entity.ErrInvalidInput)
	}
	if in.Capacity <= 0 {
		return nil, fmt.Errorf("%w: venue capacity must be greater than zero", entity.ErrInvalidInput)
	}

	v := &entity.Venue{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Address:  in.Address,
		Capacity: in.Capacity,
	}

	out := copyVenue(v)

	d.mu.Lock()
	d.venues[v.ID] = v
	d.mu.Unlock()

	return out, nil
}

func (d *Directory) GetVenue(venueID string) (*entity.Venue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.venues[venueID]
	if !ok {
		return nil, entity.ErrVenueNotFound
	}
	return copyVenue(v), nil
}

func (d *Directory) ListVenues() []*entity.Venue {
	d.mu.RLock()
	defer d.mu.RUnlock()

	venues := make([]*entity.Venue, 0, len(d.venues))
	for _, v := range d.venues {
		venues = append(venues, copyVenue(v))
	}
	return venues
}

type VenueUpdate struct {
	Name     *string
	Address  *string
	Capacity *int
}

func (d *Directory) UpdateVenue(venueID string, in VenueUpdate) (*entity.Venue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.venues[venueID]
	if !ok {
		return nil, entity.ErrVenueNotFound
	}

	if in.Name != nil {
		v.Name = *in.Name
	}
	if in.Address != nil {
		v.Address = *in.Address
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return nil, fmt.Errorf("%w: venue capacity must be greater than zero", entity.ErrInvalidInput)
		}
		v.Capacity = *in.Capacity
	}

	return copyVenue(v), nil
}

type CategoryInput struct {
	Name     string
	Price    decimal.Decimal
	Capacity int
}

type EventInput struct {
	Name        string
	Description string
	Date        time.Time
	VenueID     string
	Categories  []CategoryInput
}

func (d *Directory) CreateEvent(in EventInput) (*entity.Event, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: event name is required", entity.ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	venue, ok := d.venues[in.VenueID]
	if !ok {
		return nil, entity.ErrVenueNotFound
	}

	if sumCapacity(in.Categories) > venue.Capacity {
		return nil, entity.ErrVenueCapacityExceeded
	}
	for _, scheduled := range venue.Schedule {
		if scheduled.Date.Equal(in.Date) {
			return nil, entity.ErrVenueDateConflict
		}
	}

	e := &entity.Event{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		VenueID:     in.VenueID,
	}
	e.Categories = newCategories(e.ID, in.Categories)

	venue.Schedule = append(venue.Schedule, entity.ScheduledEvent{EventID: e.ID, Date: e.Date})
	d.events[e.ID] = e

	return copyEvent(e), nil
}

func (d *Directory) GetEvent(eventID string) (*entity.Event, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	return copyEvent(e), nil
}

func (d *Directory) ListEvents() []*entity.Event {
	d.mu.RLock()
	defer d.mu.RUnlock()

	events := make([]*entity.Event, 0, len(d.events))
	for _, e := range d.events {
		events = append(events, copyEvent(e))
	}
	return events
}

type EventUpdate struct {
	Name        *string
	Description *string
	Date        *time.Time
	Categories  []CategoryInput
}

func (d *Directory) UpdateEvent(eventID string, in EventUpdate) (*entity.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	if e.Published {
		return nil, entity.ErrEventPublished
	}

	venue := d.venues[e.VenueID]

	if in.Date != nil && !in.Date.Equal(e.Date) {
		for _, scheduled := range venue.Schedule {
			if scheduled.EventID != e.ID && scheduled.Date.Equal(*in.Date) {
				return nil, entity.ErrVenueDateConflict
			}
		}
		for i := range venue.Schedule {
			if venue.Schedule[i].EventID == e.ID {
				venue.Schedule[i].Date = *in.Date
			}
		}
		e.Date = *in.Date
	}

	if in.Name != nil {
		e.Name = *in.Name
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if len(in.Categories) > 0 {
		if sumCapacity(in.Categories) > venue.Capacity {
			return nil, entity.ErrVenueCapacityExceeded
		}
		e.Categories = newCategories(e.ID, in.Categories)
	}

	return copyEvent(e), nil
}

func (d *Directory) PublishEvent(eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.events[eventID]
	if !ok {
		return entity.ErrEventNotFound
	}
	if e.Published {
		return entity.ErrEventPublished
	}

	e.Published = true
	return nil
}

// SetCategories replaces the ticket categories of an unpublished event.
// Once the event is published and tickets are sold against a category, its
// total capacity is fixed; callers must not reconfigure it.
func (d *Directory) SetCategories(eventID string, categories []CategoryInput) (*entity.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	if e.Published {
		return nil, entity.ErrEventPublished
	}

	venue := d.venues[e.VenueID]
	if sumCapacity(categories) > venue.Capacity {
		return nil, entity.ErrVenueCapacityExceeded
	}

	e.Categories = newCategories(e.ID, categories)
	return copyEvent(e), nil
}

// ResolveCategory is the lookup the booking service reserves against.
func (d *Directory) ResolveCategory(eventID, categoryID string) (*entity.TicketCategory, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	for _, c := range e.Categories {
		if c.ID == categoryID {
			return c, nil
		}
	}
	return nil, entity.ErrCategoryNotFound
}

// EventCategories returns the categories of an event for availability reads.
func (d *Directory) EventCategories(eventID string) ([]*entity.TicketCategory, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}

	categories := make([]*entity.TicketCategory, len(e.Categories))
	copy(categories, e.Categories)
	return categories, nil
}

func copyVenue(v *entity.Venue) *entity.Venue {
	out := *v
	out.Schedule = append([]entity.ScheduledEvent(nil), v.Schedule...)
	return &out
}

// copyEvent snapshots an event under d.mu. Available is deliberately not
// copied: it is guarded by the category's inventory lock, not by d.mu, and
// is reported through availability snapshots instead.
func copyEvent(e *entity.Event) *entity.Event {
	out := *e
	out.Categories = make([]*entity.TicketCategory, 0, len(e.Categories))
	for _, c := range e.Categories {
		out.Categories = append(out.Categories, &entity.TicketCategory{
			ID:      c.ID,
			EventID: c.EventID,
			Name:    c.Name,
			Price:   c.Price,
			Total:   c.Total,
		})
	}
	return &out
}

func newCategories(eventID string, in []CategoryInput) []*entity.TicketCategory {
	categories := make([]*entity.TicketCategory, 0, len(in))
	for _, c := range in {
		categories = append(categories, &entity.TicketCategory{
			ID:        uuid.NewString(),
			EventID:   eventID,
			Name:      c.Name,
			Price:     c.Price,
			Total:     c.Capacity,
			Available: c.Capacity,
		})
	}
	return categories
}

func sumCapacity(in []CategoryInput) int {
	total := 0
	for _, c := range in {
		total += c.Capacity
	}
	return total
}
