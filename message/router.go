package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SubscriberConstructor builds a subscriber per handler, so every handler
// gets its own consumer group.
type SubscriberConstructor func(handlerName string) (message.Subscriber, error)

type RouterDeps struct {
	Logger                watermill.LoggerAdapter
	Metrics               MetricsRecorder
	SubscriberConstructor SubscriberConstructor
	TicketRepo            TicketRepo
}

type Router struct {
	*message.Router
}

func NewRouter(deps RouterDeps) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	addMiddlewares(router, deps.Logger, metrics)

	config := cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return deps.SubscriberConstructor(params.HandlerName)
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
		Logger: deps.Logger,
	}

	ep, err := cqrs.NewEventProcessorWithConfig(router, config)
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	// The read model is optional; without it the router still runs the
	// middleware chain for metrics and logging.
	var handlers []cqrs.EventHandler
	if deps.TicketRepo != nil {
		handlers = append(handlers,
			cqrs.NewEventHandler("store-confirmed-ticket", handleStoreConfirmedTicket(deps.TicketRepo)),
			cqrs.NewEventHandler("remove-cancelled-ticket", handleRemoveCancelledTicket(deps.TicketRepo)),
		)
	}

	if len(handlers) > 0 {
		if err := ep.AddHandlers(handlers...); err != nil {
			return nil, fmt.Errorf("adding handlers: %w", err)
		}
	}

	return &Router{router}, nil
}
