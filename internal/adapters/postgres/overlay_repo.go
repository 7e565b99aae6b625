package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/pkg/geospatial"
)

// ErrNotFound is returned when no overlay matches the given ID.
var ErrNotFound = errors.New("overlay not found")

const overlayColumns = `
	id, name,
	ST_Y(center::geometry) as lat,
	ST_X(center::geometry) as lon,
	inner_radius, outer_radius, start_angle, end_angle,
	style, created_at, updated_at`

// OverlayRepo implements ports.OverlayRepository with pgx.
type OverlayRepo struct {
	db *DB
}

// NewOverlayRepo creates a new OverlayRepo.
func NewOverlayRepo(db *DB) *OverlayRepo {
	return &OverlayRepo{db: db}
}

// Create inserts a new overlay and backfills its timestamps.
func (r *OverlayRepo) Create(ctx context.Context, o *domain.Overlay) error {
	style, err := json.Marshal(o.Style)
	if err != nil {
		return fmt.Errorf("marshal style: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO overlays (id, name, center, inner_radius, outer_radius, start_angle, end_angle, style)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, o.ID, o.Name, o.Center.Lon, o.Center.Lat,
		o.Sector.InnerRadius, o.Sector.OuterRadius,
		o.Sector.StartAngle, o.Sector.EndAngle, style,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return err
}

// GetByID returns an overlay by UUID.
func (r *OverlayRepo) GetByID(ctx context.Context, id string) (*domain.Overlay, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+overlayColumns+` FROM overlays WHERE id = $1`, id)
	return scanOverlay(row)
}

// List returns a page of overlays, newest first, with the total count.
func (r *OverlayRepo) List(ctx context.Context, limit, offset int) ([]domain.Overlay, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM overlays`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+overlayColumns+`
		FROM overlays
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	overlays, err := collectOverlays(rows)
	return overlays, total, err
}

// FindNearby returns candidate overlays near a point, nearest first. The
// box hits the gist index; callers confirm with an exact distance check.
func (r *OverlayRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Overlay, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+overlayColumns+`
		FROM overlays
		WHERE center && ST_MakeEnvelope($3, $4, $5, $6, 4326)
		ORDER BY ST_Distance(center, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		LIMIT $7
	`, lon, lat, minLon, minLat, maxLon, maxLat, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOverlays(rows)
}

// Move updates the overlay's center and returns the updated row.
func (r *OverlayRepo) Move(ctx context.Context, id string, center domain.GeoPoint) (*domain.Overlay, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE overlays
		SET center = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, updated_at = now()
		WHERE id = $1
		RETURNING `+overlayColumns,
		id, center.Lon, center.Lat)
	return scanOverlay(row)
}

// UpdateSector replaces the geodesic descriptor and returns the updated row.
func (r *OverlayRepo) UpdateSector(ctx context.Context, id string, sector domain.Sector) (*domain.Overlay, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE overlays
		SET inner_radius = $2, outer_radius = $3, start_angle = $4, end_angle = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+overlayColumns,
		id, sector.InnerRadius, sector.OuterRadius, sector.StartAngle, sector.EndAngle)
	return scanOverlay(row)
}

// UpdateStyle replaces the style document and returns the updated row.
func (r *OverlayRepo) UpdateStyle(ctx context.Context, id string, style domain.Style) (*domain.Overlay, error) {
	data, err := json.Marshal(style)
	if err != nil {
		return nil, fmt.Errorf("marshal style: %w", err)
	}

	row := r.db.Pool.QueryRow(ctx, `
		UPDATE overlays
		SET style = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+overlayColumns,
		id, data)
	return scanOverlay(row)
}

// Delete removes the overlay.
func (r *OverlayRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM overlays WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOverlay(row pgx.Row) (*domain.Overlay, error) {
	var o domain.Overlay
	var style []byte
	err := row.Scan(
		&o.ID, &o.Name,
		&o.Center.Lat, &o.Center.Lon,
		&o.Sector.InnerRadius, &o.Sector.OuterRadius,
		&o.Sector.StartAngle, &o.Sector.EndAngle,
		&style, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(style, &o.Style); err != nil {
		return nil, fmt.Errorf("unmarshal style: %w", err)
	}
	return &o, nil
}

func collectOverlays(rows pgx.Rows) ([]domain.Overlay, error) {
	var overlays []domain.Overlay
	for rows.Next() {
		o, err := scanOverlay(rows)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, *o)
	}
	return overlays, rows.Err()
}
