package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"ticketing/booking"
	"ticketing/clients"
	"ticketing/message"
	"ticketing/postgres"
	"ticketing/service"
)

func main() {
	logger := logrus.New()
	wmLogger := watermill.NewStdLogger(false, false)

	if err := run(logger, wmLogger); err != nil {
		logger.WithError(err).Fatal("failed to run")
	}
}

func run(logger *logrus.Logger, wmLogger watermill.LoggerAdapter) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var gateway booking.PaymentGateway
	if addr := os.Getenv("GATEWAY_ADDR"); addr != "" {
		gateway = clients.NewPaymentsClient(addr)
	} else {
		logger.Info("GATEWAY_ADDR not set, approving all payments")
		gateway = clients.NewStubPayments(logger)
	}

	var publisher wmmessage.Publisher
	var subscriberConstructor message.SubscriberConstructor

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.WithError(err).Error("failed to close redis connection")
			}
		}()

		redisPublisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: rdb,
		}, wmLogger)
		if err != nil {
			return fmt.Errorf("creating redis publisher: %w", err)
		}

		publisher = redisPublisher
		subscriberConstructor = func(handlerName string) (wmmessage.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        rdb,
				ConsumerGroup: "ticketing." + handlerName,
			}, wmLogger)
		}
	} else {
		pubsub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		publisher = pubsub
		subscriberConstructor = func(string) (wmmessage.Subscriber, error) {
			return pubsub, nil
		}
	}

	deps := service.Deps{
		Logger:                logger,
		WatermillLogger:       wmLogger,
		Publisher:             publisher,
		SubscriberConstructor: subscriberConstructor,
		PaymentGateway:        gateway,
	}

	if dsn := os.Getenv("POSTGRES_URL"); dsn != "" {
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Error("failed to close db connection")
			}
		}()

		if err := postgres.CreateConfirmedTicketsTable(ctx, db); err != nil {
			return fmt.Errorf("creating confirmed tickets table: %w", err)
		}

		repo := postgres.NewTicketRepo(db)
		deps.TicketRepo = repo
		deps.TicketLister = repo
	}

	window, err := durationFromEnv("RESERVATION_WINDOW")
	if err != nil {
		return err
	}
	sweepInterval, err := durationFromEnv("SWEEP_INTERVAL")
	if err != nil {
		return err
	}

	cfg := service.Config{
		BindAddr:          getEnvOrDefault("BIND_ADDR", ":8080"),
		ReservationWindow: window,
		SweepInterval:     sweepInterval,
	}

	svc, err := service.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	return svc.Run(ctx)
}

func durationFromEnv(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
