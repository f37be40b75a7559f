package main

import (
	"context"
	"fmt"
	"sync"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/luxehome-backend/pkg/outbox"
)

// orderSender keeps one ordered publisher per topic for the life of the
// process.
type orderSender struct {
	client pubSubClient

	mu         sync.Mutex
	publishers map[string]*gcppubsub.Publisher
}

func newOrderSender(client pubSubClient) *orderSender {
	return &orderSender{client: client, publishers: map[string]*gcppubsub.Publisher{}}
}

func (s *orderSender) publisher(topic string) *gcppubsub.Publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.publishers[topic]; ok {
		return p
	}
	p := s.client.Publisher(topic)
	if p == nil {
		return nil
	}
	p.EnableMessageOrdering = true
	s.publishers[topic] = p
	return p
}

func (s *orderSender) Send(ctx context.Context, topic string, msg *gcppubsub.Message) error {
	p := s.publisher(topic)
	if p == nil {
		return outbox.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}
	if _, err := p.Publish(ctx, msg).Get(ctx); err != nil {
		// A failed publish pauses its ordering key until resumed.
		if msg.OrderingKey != "" {
			p.ResumePublish(msg.OrderingKey)
		}
		return err
	}
	return nil
}

// Stop flushes and releases every publisher.
func (s *orderSender) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for topic, p := range s.publishers {
		p.Stop()
		delete(s.publishers, topic)
	}
}
