package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"ticketing/directory"
	"ticketing/entity"
)

type BookingService interface {
	Reserve(ctx context.Context, eventID, categoryID string, quantity int) (*entity.Ticket, error)
	Confirm(ctx context.Context, ticketID string) (*entity.Ticket, error)
	Cancel(ctx context.Context, ticketID string) (*entity.Ticket, error)
	Availability(eventID string) ([]entity.CategoryAvailability, error)
}

type Directory interface {
	CreateVenue(in directory.VenueInput) (*entity.Venue, error)
	GetVenue(venueID string) (*entity.Venue, error)
	ListVenues() []*entity.Venue
	UpdateVenue(venueID string, in directory.VenueUpdate) (*entity.Venue, error)
	CreateEvent(in directory.EventInput) (*entity.Event, error)
	GetEvent(eventID string) (*entity.Event, error)
	ListEvents() []*entity.Event
	UpdateEvent(eventID string, in directory.EventUpdate) (*entity.Event, error)
	PublishEvent(eventID string) error
	SetCategories(eventID string, categories []directory.CategoryInput) (*entity.Event, error)
}

type TicketLister interface {
	List(ctx context.Context) ([]entity.ConfirmedTicket, error)
}

type OperationTracker interface {
	TrackOperation(operation, status string)
}

// response is the envelope every endpoint returns.
type response struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type handler struct {
	bookings  BookingService
	directory Directory
	tickets   TicketLister
	metrics   OperationTracker
}

func (h handler) respond(c echo.Context, code int, data any) error {
	return c.JSON(code, response{Success: true, Data: data})
}

func (h handler) respondError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), response{Success: false, Errors: []string{err.Error()}})
}

func (h handler) track(operation string, err error) {
	if h.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.metrics.TrackOperation(operation, status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrVenueNotFound),
		errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrCategoryNotFound),
		errors.Is(err, entity.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrNoCategoriesDefined),
		errors.Is(err, entity.ErrVenueCapacityExceeded),
		errors.Is(err, entity.ErrVenueDateConflict):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrInsufficientCapacity),
		errors.Is(err, entity.ErrEventPublished):
		return http.StatusConflict
	case errors.Is(err, entity.ErrReservationExpired):
		return http.StatusGone
	case errors.Is(err, entity.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

type venueRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
}

func (h handler) CreateVenue(c echo.Context) error {
	var req venueRequest
	if err := c.Bind(&req); err != nil {
		return h.respondError(c, errors.New("failed to parse request"))
	}

	venue, err := h.directory.CreateVenue(directory.VenueInput{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusCreated, venue)
}

func (h handler) GetVenue(c echo.Context) error {
	venue, err := h.directory.GetVenue(c.Param("venueID"))
	if err != nil {
		return h.respondError(c, err)
	}
	return h.respond(c, http.StatusOK, venue)
}

func (h handler) ListVenues(c echo.Context) error {
	return h.respond(c, http.StatusOK, h.directory.ListVenues())
}

type venueUpdateRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Capacity *int    `json:"capacity"`
}

func (h handler) UpdateVenue(c echo.Context) error {
	var req venueUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.respondError(c, errors.New("failed to parse request"))
	}

	venue, err := h.directory.UpdateVenue(c.Param("venueID"), directory.VenueUpdate{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusOK, venue)
}

type categoryRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Capacity int             `json:"capacity"`
}

type eventRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	VenueID     string            `json:"venue_id"`
	Categories  []categoryRequest `json:"ticket_categories"`
}

func (h handler) CreateEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return h.respondError(c, errors.New("failed to parse request"))
	}

	event, err := h.directory.CreateEvent(directory.EventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		VenueID:     req.VenueID,
		Categories:  categoryInputs(req.Categories),
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusCreated, event)
}

func (h handler) GetEvent(c echo.Context) error {
	event, err := h.directory.GetEvent(c.Param("eventID"))
	if err != nil {
		return h.respondError(c, err)
	}
	return h.respond(c, http.StatusOK, event)
}

func (h handler) ListEvents(c echo.Context) error {
	return h.respond(c, http.StatusOK, h.directory.ListEvents())
}

type eventUpdateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

func (h handler) UpdateEvent(c echo.Context) error {
	var req eventUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.respondError(c, errors.New("failed to parse request"))
	}

	event, err := h.directory.UpdateEvent(c.Param("eventID"), directory.EventUpdate{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusOK, event)
}

func (h handler) PublishEvent(c echo.Context) error {
	if err := h.directory.PublishEvent(c.Param("eventID")); err != nil {
		return h.respondError(c, err)
	}
	return h.respond(c, http.StatusOK, nil)
}

type categoriesRequest struct {
	Categories []categoryRequest `json:"ticket_categories"`
}

func (h handler) SetCategories(c echo.Context) error {
	var req categoriesRequest
	if err := c.Bind(&req); err != nil {
		return h.respondError(c, errors.New("failed to parse request"))
	}

	event, err := h.directory.SetCategories(c.Param("eventID"), categoryInputs(req.Categories))
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusOK, event)
}

func (h handler) GetAvailability(c echo.Context) error {
	availability, err := h.bookings.Availability(c.Param("eventID"))
	if err != nil {
		return h.respondError(c, err)
	}
	return h.respond(c, http.StatusOK, availability)
}

type reservationRequest struct {
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Quantity   int    `json:"seat_quantity"`
}

func (h handler) CreateReservation(c echo.Context) error {
	var req reservationRequest
	if err := c.Bind(&req); err != nil {
		return h.respondError(c, errors.New("failed to parse request"))
	}

	ticket, err := h.bookings.Reserve(c.Request().Context(), req.EventID, req.CategoryID, req.Quantity)
	h.track("reserve", err)
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusCreated, ticket)
}

func (h handler) ConfirmReservation(c echo.Context) error {
	ticket, err := h.bookings.Confirm(c.Request().Context(), c.Param("ticketID"))
	h.track("confirm", err)
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusOK, ticket)
}

func (h handler) CancelTicket(c echo.Context) error {
	ticket, err := h.bookings.Cancel(c.Request().Context(), c.Param("ticketID"))
	h.track("cancel", err)
	if err != nil {
		return h.respondError(c, err)
	}

	return h.respond(c, http.StatusOK, ticket)
}

func (h handler) ListTickets(c echo.Context) error {
	tickets, err := h.tickets.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return h.respond(c, http.StatusOK, tickets)
}

func categoryInputs(in []categoryRequest) []directory.CategoryInput {
	categories := make([]directory.CategoryInput, 0, len(in))
	for _, c := range in {
		categories = append(categories, directory.CategoryInput{
			Name:     c.Name,
			Price:    c.Price,
			Capacity: c.Capacity,
		})
	}
	return categories
}
