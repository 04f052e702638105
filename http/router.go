package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticketing/message"
)

var ErrServerClosed = http.ErrServerClosed

const headerKeyCorrelationID = "Correlation-ID"

type RouterDeps struct {
	Bookings  BookingService
	Directory Directory
	Metrics   OperationTracker
	Tickets   TicketLister
}

func NewRouter(deps RouterDeps) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Use(echomiddleware.Recover())
	server.Use(correlationIDMiddleware)

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := handler{
		bookings:  deps.Bookings,
		directory: deps.Directory,
		tickets:   deps.Tickets,
		metrics:   deps.Metrics,
	}

	server.POST("/venues", h.CreateVenue)
	server.GET("/venues", h.ListVenues)
	server.GET("/venues/:venueID", h.GetVenue)
	server.PATCH("/venues/:venueID", h.UpdateVenue)

	server.POST("/events", h.CreateEvent)
	server.GET("/events", h.ListEvents)
	server.GET("/events/:eventID", h.GetEvent)
	server.PATCH("/events/:eventID", h.UpdateEvent)
	server.POST("/events/:eventID/publish", h.PublishEvent)
	server.PUT("/events/:eventID/ticket-categories", h.SetCategories)
	server.GET("/events/:eventID/availability", h.GetAvailability)

	server.POST("/reservations", h.CreateReservation)
	server.POST("/reservations/:ticketID/confirm", h.ConfirmReservation)
	server.POST("/tickets/:ticketID/cancel", h.CancelTicket)

	if deps.Tickets != nil {
		server.GET("/tickets", h.ListTickets)
	}

	return server
}

func correlationIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		correlationID := c.Request().Header.Get(headerKeyCorrelationID)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := message.ContextWithCorrelationID(c.Request().Context(), correlationID)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(headerKeyCorrelationID, correlationID)

		return next(c)
	}
}
