package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	errNotConfigured = errors.New("not configured")
	errDisconnected  = errors.New("disconnected")
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

type readinessProbe struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

// readinessProbes lists the backends the service depends on. Only the
// database is required; a missing cache or broker degrades, not fails.
func readinessProbes(deps *Dependencies) []readinessProbe {
	probes := []readinessProbe{
		{name: "database", required: true, check: func(ctx context.Context) error {
			if deps.DB == nil {
				return errNotConfigured
			}
			return deps.DB.Ping(ctx)
		}},
	}

	if deps.NATS != nil {
		probes = append(probes, readinessProbe{name: "nats", required: true, check: func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}})
	}

	if deps.Cache != nil {
		probes = append(probes, readinessProbe{name: "cache", required: true, check: func(ctx context.Context) error {
			return deps.Cache.Ping(ctx)
		}})
	}

	return probes
}

// ReadyHandler runs every readiness probe and reports 503 if a required
// backend is down.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	probes := readinessProbes(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for _, p := range probes {
			if err := p.check(ctx); err != nil {
				checks[p.name] = err.Error()
				if p.required {
					ready = false
				}
				continue
			}
			checks[p.name] = "ok"
		}

		status, code := "ready", fiber.StatusOK
		if !ready {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
