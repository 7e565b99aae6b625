package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/benfen/radarmap/internal/adapters/postgres"
	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/core/usecases"
)

// overlayRequest is the write payload shared by create and the sector patch.
type overlayRequest struct {
	Name   string          `json:"name"`
	Center domain.GeoPoint `json:"center"`
	Sector domain.Sector   `json:"sector"`
	Style  *domain.Style   `json:"style"`
}

// OverlayStats holds row counts for the stats endpoint.
type OverlayStats struct {
	Overlays   int    `json:"overlays"`
	LastChange string `json:"last_change,omitempty"`
}

// OverlayStatsHandler returns aggregate counts from the overlays table.
func OverlayStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats OverlayStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM overlays),
				COALESCE((SELECT max(updated_at)::text FROM overlays), '')
		`)
		if err := row.Scan(&stats.Overlays, &stats.LastChange); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// CreateOverlayHandler persists a new overlay.
func CreateOverlayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req overlayRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return errBadRequest(c, "name is required")
		}

		overlay, err := deps.Overlays.Create(c.Context(), req.Name, req.Center, req.Sector, req.Style)
		if err != nil {
			return errUnprocessable(c, err.Error())
		}

		c.Set("Location", "/v1/overlays/"+overlay.ID)
		return c.Status(201).JSON(overlay)
	}
}

// ListOverlaysHandler returns a page of overlays.
func ListOverlaysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)

		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		overlays, total, err := deps.Overlays.List(c.Context(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: overlays, Pagination: pg})
	}
}

// NearbyOverlaysHandler returns overlays whose center is within a radius of
// a point.
func NearbyOverlaysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 5000)
		limit := c.QueryInt("limit", 50)

		if radius <= 0 || radius > 500000 {
			return errBadRequest(c, "radius must be between 1 and 500000 meters")
		}

		overlays, err := deps.Overlays.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(overlays)
	}
}

// GetOverlayHandler returns a single overlay by ID.
func GetOverlayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "overlay id is required")
		}
		overlay, err := deps.Overlays.GetByID(c.Context(), id)
		if err != nil {
			if errors.Is(err, postgres.ErrNotFound) {
				return errNotFound(c, "overlay not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(overlay)
	}
}

// MoveOverlayHandler relocates an overlay's geographic center.
func MoveOverlayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var req struct {
			Center domain.GeoPoint `json:"center"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		overlay, err := deps.Overlays.Move(c.Context(), id, req.Center)
		if err != nil {
			return mutationError(c, err)
		}
		return c.JSON(overlay)
	}
}

// UpdateSectorHandler replaces an overlay's geodesic descriptor.
func UpdateSectorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var req struct {
			Sector domain.Sector `json:"sector"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		overlay, err := deps.Overlays.UpdateSector(c.Context(), id, req.Sector)
		if err != nil {
			return mutationError(c, err)
		}
		return c.JSON(overlay)
	}
}

// UpdateStyleHandler replaces an overlay's presentation style.
func UpdateStyleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var req struct {
			Style domain.Style `json:"style"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		overlay, err := deps.Overlays.UpdateStyle(c.Context(), id, req.Style)
		if err != nil {
			return mutationError(c, err)
		}
		return c.JSON(overlay)
	}
}

// DeleteOverlayHandler removes an overlay.
func DeleteOverlayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Overlays.Delete(c.Context(), id); err != nil {
			return mutationError(c, err)
		}
		return c.SendStatus(204)
	}
}

// RenderOverlayHandler computes the sector path for one overlay under the
// viewport described by the query parameters.
func RenderOverlayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if c.Query("zoom") == "" {
			return errBadRequest(c, "zoom is required")
		}

		req := usecases.RenderRequest{
			Zoom:      c.QueryFloat("zoom", 0),
			CRS:       c.Query("crs", "EPSG:3857"),
			OriginX:   c.QueryFloat("origin_x", 0),
			OriginY:   c.QueryFloat("origin_y", 0),
			Tolerance: c.QueryFloat("tolerance", 0),
		}

		res, err := deps.Renders.Render(c.Context(), id, req)
		if err != nil {
			if errors.Is(err, postgres.ErrNotFound) {
				return errNotFound(c, "overlay not found")
			}
			return errBadRequest(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(res)
	}
}

// mutationError maps service failures on write paths to a response.
func mutationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, postgres.ErrNotFound) {
		return errNotFound(c, "overlay not found")
	}
	return errUnprocessable(c, err.Error())
}
