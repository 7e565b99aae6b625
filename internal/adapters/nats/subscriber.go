package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/benfen/radarmap/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeOverlayUpdates delivers created and mutated overlays to handler.
func (s *Subscriber) SubscribeOverlayUpdates(ctx context.Context, handler func(ctx context.Context, overlay *domain.Overlay) error) error {
	sub, err := s.js.Subscribe("radar.overlay.updated.>", func(msg *nats.Msg) {
		var overlay domain.Overlay
		if err := json.Unmarshal(msg.Data, &overlay); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &overlay); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("overlay-update-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeOverlayDeletes delivers IDs of removed overlays to handler.
func (s *Subscriber) SubscribeOverlayDeletes(ctx context.Context, handler func(ctx context.Context, id string) error) error {
	sub, err := s.js.Subscribe("radar.overlay.deleted.>", func(msg *nats.Msg) {
		if err := handler(ctx, string(msg.Data)); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("overlay-delete-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
