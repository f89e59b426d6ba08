// AngelaMos | 2026
// memory.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type Message struct {
	RoutingKey string
	Body       []byte
}

// MemoryPublisher records published events in order.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// FailWith makes every later Publish return err.
func (m *MemoryPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", routingKey, err)
	}

	m.messages = append(m.messages, Message{RoutingKey: routingKey, Body: body})
	return nil
}

func (m *MemoryPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

func (m *MemoryPublisher) Keys() []string {
	msgs := m.Messages()
	keys := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		keys = append(keys, msg.RoutingKey)
	}
	return keys
}

func (m *MemoryPublisher) Close() error { return nil }
