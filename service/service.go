// Package service assembles the booking engine and runs its long-lived
// parts: the message router, the HTTP server, the expiry sweeper and the
// metrics collector.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ticketing/booking"
	"ticketing/directory"
	"ticketing/http"
	"ticketing/message"
	"ticketing/monitoring"
)

type Config struct {
	BindAddr          string
	ReservationWindow time.Duration
	SweepInterval     time.Duration
}

type Deps struct {
	Logger                *logrus.Logger
	WatermillLogger       watermill.LoggerAdapter
	Publisher             wmmessage.Publisher
	SubscriberConstructor message.SubscriberConstructor
	PaymentGateway        booking.PaymentGateway
	TicketRepo            message.TicketRepo
	TicketLister          http.TicketLister
}

type Service struct {
	logger     *logrus.Logger
	msgRouter  *message.Router
	httpRouter *echo.Echo
	sweeper    *booking.Sweeper
	monitor    *monitoring.Monitor
	bookings   *booking.Service
	bindAddr   string
}

func New(cfg Config, deps Deps) (*Service, error) {
	publisher := message.CorrelationPublisherDecorator{Publisher: deps.Publisher}

	bus, err := message.NewBus(publisher, deps.WatermillLogger)
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	monitor := monitoring.New()

	dir := directory.New()

	var bookingOpts []booking.Option
	if cfg.ReservationWindow > 0 {
		bookingOpts = append(bookingOpts, booking.WithReservationWindow(cfg.ReservationWindow))
	}
	bookings := booking.NewService(dir, deps.PaymentGateway, bus, deps.Logger, bookingOpts...)

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Logger:                deps.WatermillLogger,
		Metrics:               monitor,
		SubscriberConstructor: deps.SubscriberConstructor,
		TicketRepo:            deps.TicketRepo,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	httpRouter := http.NewRouter(http.RouterDeps{
		Bookings:  bookings,
		Directory: dir,
		Metrics:   monitor,
		Tickets:   deps.TicketLister,
	})

	return &Service{
		logger:     deps.Logger,
		msgRouter:  msgRouter,
		httpRouter: httpRouter,
		sweeper:    booking.NewSweeper(bookings, cfg.SweepInterval, deps.Logger),
		monitor:    monitor,
		bookings:   bookings,
		bindAddr:   cfg.BindAddr,
	}, nil
}

// HTTPAddr reports the bound listener address, nil until the HTTP server
// has started.
func (s *Service) HTTPAddr() net.Addr {
	return s.httpRouter.ListenerAddr()
}

func (s *Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		s.logger.Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.bindAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		s.sweeper.Run(runCtx)
		return nil
	})

	g.Go(func() error {
		s.monitor.Collect(runCtx, s.bookings)
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	s.logger.Info("Shutdown complete.")

	return nil
}
