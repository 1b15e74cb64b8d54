package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/destination-organizer/internal/infrastructure/resilience"
)

// Connection-level failures clear up once the client reconnects.
var reconnectable = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
}

func classifyNATSError(err error) resilience.ErrorClassification {
	return resilience.Classify(err, func(err error) (resilience.ErrorClassification, bool) {
		for _, target := range reconnectable {
			if errors.Is(err, target) {
				return resilience.Transient, true
			}
		}
		return resilience.Fatal, true
	})
}
