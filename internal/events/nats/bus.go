package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/saminkc999/coinledger/internal/events"
)

var _ events.Bus = (*Bus)(nil)

type Bus struct {
	nc *nats.Conn
}

// Connect dials url. The connection reconnects on its own; publishes made
// while disconnected are buffered by the client.
func Connect(url string) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.Name("coinledger"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	return NewBus(nc), nil
}

func NewBus(nc *nats.Conn) *Bus {
	return &Bus{nc: nc}
}

func (b *Bus) Publish(topic string, data []byte) error {
	return b.nc.Publish(topic, data)
}

// Close flushes pending messages and closes the connection.
func (b *Bus) Close() error {
	return b.nc.Drain()
}
