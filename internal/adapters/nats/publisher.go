package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/pkg/metrics"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	cfg := nats.StreamConfig{
		Name:      "RADAR_OVERLAYS",
		Subjects:  []string{"radar.overlay.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishOverlayUpdated announces a created or mutated overlay document.
func (p *Publisher) PublishOverlayUpdated(ctx context.Context, overlay *domain.Overlay) error {
	data, err := json.Marshal(overlay)
	if err != nil {
		return err
	}
	if _, err = p.js.Publish("radar.overlay.updated."+overlay.ID, data); err != nil {
		return err
	}
	metrics.OverlayEventsPublished.WithLabelValues("updated").Inc()
	return nil
}

// PublishOverlayDeleted announces an overlay removal.
func (p *Publisher) PublishOverlayDeleted(ctx context.Context, id string) error {
	if _, err := p.js.Publish("radar.overlay.deleted."+id, []byte(id)); err != nil {
		return err
	}
	metrics.OverlayEventsPublished.WithLabelValues("deleted").Inc()
	return nil
}

// PublishBroadcast fans a pre-serialized frame out to every live map client.
// Plain core NATS, no persistence: a frame a client misses is superseded by
// the next one anyway.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("radar.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
