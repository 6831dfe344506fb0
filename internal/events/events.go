// Package events publishes ledger and roster changes after they are durable.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	TopicPaymentRecorded    = "payments.recorded"
	TopicPaymentsReset      = "payments.reset"
	TopicTotalsRecalculated = "totals.recalculated"
	TopicGameAdded          = "games.added"
	TopicGameUpdated        = "games.updated"
	TopicGameRemoved        = "games.removed"
)

// Bus delivers an encoded event to subscribers of topic.
type Bus interface {
	Publish(topic string, data []byte) error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(string, []byte) error { return nil }

// Emit encodes payload as JSON and publishes it. Failures are logged only:
// the change being announced is already persisted.
func Emit(bus Bus, topic string, payload any) {
	if bus == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("encode event", "topic", topic, "error", err)
		return
	}

	err = bus.Publish(topic, data)
	if err != nil {
		slog.Warn("publish event", "topic", topic, "error", err)
	}
}

// Message is one captured publication.
type Message struct {
	Topic string
	Data  []byte
}

// Recorder keeps every published event in memory. Tests use it to assert
// what a service announced.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Publish(topic string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.msgs = append(r.msgs, Message{Topic: topic, Data: append([]byte(nil), data...)})

	return nil
}

// Messages returns a copy of everything published so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Message(nil), r.msgs...)
}

// Topics returns the published topics in order.
func (r *Recorder) Topics() []string {
	msgs := r.Messages()
	out := make([]string, 0, len(msgs))

	for _, m := range msgs {
		out = append(out, m.Topic)
	}

	return out
}
