package http

import (
	"github.com/nats-io/nats.go"

	"github.com/benfen/radarmap/internal/adapters/postgres"
	"github.com/benfen/radarmap/internal/adapters/valkey"
	"github.com/benfen/radarmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Overlays *usecases.OverlayService
	Renders  *usecases.RenderService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
