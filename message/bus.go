// Package message wires the event bus and the event-driven handlers.
package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Bus publishes domain events, one topic per event name.
type Bus struct {
	*cqrs.EventBus
}

func NewBus(publisher message.Publisher, logger watermill.LoggerAdapter) (*Bus, error) {
	eventBus, err := cqrs.NewEventBusWithConfig(publisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	return &Bus{eventBus}, nil
}
