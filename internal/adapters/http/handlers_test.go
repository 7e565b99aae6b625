package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/benfen/radarmap/internal/adapters/http"
	"github.com/benfen/radarmap/internal/adapters/postgres"
	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/core/usecases"
)

// ---- Mock repository ----

type mockOverlayRepo struct {
	createFn       func(ctx context.Context, overlay *domain.Overlay) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Overlay, error)
	listFn         func(ctx context.Context, limit, offset int) ([]domain.Overlay, int, error)
	findNearbyFn   func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Overlay, error)
	moveFn         func(ctx context.Context, id string, center domain.GeoPoint) (*domain.Overlay, error)
	updateSectorFn func(ctx context.Context, id string, sector domain.Sector) (*domain.Overlay, error)
	updateStyleFn  func(ctx context.Context, id string, style domain.Style) (*domain.Overlay, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (m *mockOverlayRepo) Create(ctx context.Context, overlay *domain.Overlay) error {
	if m.createFn != nil {
		return m.createFn(ctx, overlay)
	}
	return nil
}
func (m *mockOverlayRepo) GetByID(ctx context.Context, id string) (*domain.Overlay, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockOverlayRepo) List(ctx context.Context, limit, offset int) ([]domain.Overlay, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, 0, nil
}
func (m *mockOverlayRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Overlay, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}
func (m *mockOverlayRepo) Move(ctx context.Context, id string, center domain.GeoPoint) (*domain.Overlay, error) {
	if m.moveFn != nil {
		return m.moveFn(ctx, id, center)
	}
	return nil, nil
}
func (m *mockOverlayRepo) UpdateSector(ctx context.Context, id string, sector domain.Sector) (*domain.Overlay, error) {
	if m.updateSectorFn != nil {
		return m.updateSectorFn(ctx, id, sector)
	}
	return nil, nil
}
func (m *mockOverlayRepo) UpdateStyle(ctx context.Context, id string, style domain.Style) (*domain.Overlay, error) {
	if m.updateStyleFn != nil {
		return m.updateStyleFn(ctx, id, style)
	}
	return nil, nil
}
func (m *mockOverlayRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// ---- Helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New()
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(repo *mockOverlayRepo) *handler.Dependencies {
	overlays := usecases.NewOverlayService(repo, nil, nil)
	return &handler.Dependencies{
		Overlays: overlays,
		Renders:  usecases.NewRenderService(overlays, nil, 0, 0),
	}
}

func sampleOverlay(id string) *domain.Overlay {
	return &domain.Overlay{
		ID:     id,
		Name:   "harbor-scan",
		Center: domain.GeoPoint{Lat: 50.5, Lon: 30.5},
		Sector: domain.Sector{InnerRadius: 100, OuterRadius: 200, StartAngle: 0, EndAngle: 4},
		Style:  domain.DefaultStyle(),
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Overlay CRUD tests ----

func TestCreateOverlay_Success(t *testing.T) {
	var saved *domain.Overlay
	deps := makeDeps(&mockOverlayRepo{
		createFn: func(ctx context.Context, o *domain.Overlay) error {
			saved = o
			return nil
		},
	})
	app := setupApp(deps)

	body := `{"name":"harbor-scan","center":{"lat":50.5,"lon":30.5},"sector":{"inner_radius":100,"outer_radius":200,"start_angle":0,"end_angle":4}}`
	req := httptest.NewRequest("POST", "/v1/overlays", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if saved == nil || saved.Name != "harbor-scan" {
		t.Error("overlay was not persisted")
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/v1/overlays/") {
		t.Errorf("expected Location header, got %q", loc)
	}
}

func TestCreateOverlay_MissingName(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	body := `{"center":{"lat":50.5,"lon":30.5},"sector":{"outer_radius":200}}`
	req := httptest.NewRequest("POST", "/v1/overlays", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateOverlay_NegativeRadius(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	body := `{"name":"bad","center":{"lat":50.5,"lon":30.5},"sector":{"inner_radius":-1,"outer_radius":200}}`
	req := httptest.NewRequest("POST", "/v1/overlays", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "unprocessable" {
		t.Errorf("expected code unprocessable, got %s", apiErr.Code)
	}
}

func TestListOverlays_Pagination(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		listFn: func(ctx context.Context, limit, offset int) ([]domain.Overlay, int, error) {
			page := make([]domain.Overlay, 2)
			for i := range page {
				page[i] = *sampleOverlay(fmt.Sprintf("o%d", offset+i))
			}
			return page, 5, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/overlays?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Overlay `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 overlays in page, got %d", len(result.Data))
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %q", link)
	}
}

func TestGetOverlay_NotFound(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			return nil, postgres.ErrNotFound
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/overlays/nope", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetOverlay_RepoFailure(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			return nil, fmt.Errorf("connection refused")
		},
	})
	app := setupApp(deps)

	// A backend outage is not a missing overlay.
	req := httptest.NewRequest("GET", "/v1/overlays/abc", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestNearbyOverlays_RequiresCoords(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	req := httptest.NewRequest("GET", "/v1/overlays/nearby?radius=1000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNearbyOverlays_EquatorIsValid(t *testing.T) {
	called := false
	deps := makeDeps(&mockOverlayRepo{
		findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Overlay, error) {
			called = true
			if lat != 0 || lon != 0 {
				t.Errorf("expected 0,0 passed through, got %v,%v", lat, lon)
			}
			return nil, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/overlays/nearby?lat=0&lon=0&radius=1000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !called {
		t.Error("repo was not called")
	}
}

func TestMoveOverlay_Success(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		moveFn: func(ctx context.Context, id string, center domain.GeoPoint) (*domain.Overlay, error) {
			o := sampleOverlay(id)
			o.Center = center
			return o, nil
		},
	})
	app := setupApp(deps)

	body := `{"center":{"lat":51.0,"lon":31.0}}`
	req := httptest.NewRequest("PATCH", "/v1/overlays/o1/center", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var o domain.Overlay
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		t.Fatal(err)
	}
	if o.Center.Lat != 51.0 {
		t.Errorf("expected moved center, got %+v", o.Center)
	}
}

func TestUpdateSector_InvalidRadius(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	body := `{"sector":{"inner_radius":-5,"outer_radius":10}}`
	req := httptest.NewRequest("PATCH", "/v1/overlays/o1/sector", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestDeleteOverlay_NoContent(t *testing.T) {
	deleted := ""
	deps := makeDeps(&mockOverlayRepo{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("DELETE", "/v1/overlays/o1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if deleted != "o1" {
		t.Errorf("expected o1 deleted, got %q", deleted)
	}
}

// ---- Render endpoint tests ----

func TestRenderOverlay_Success(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			return sampleOverlay(id), nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/overlays/o1/render?zoom=13&crs=EPSG:3857", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var res domain.RenderResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.OverlayID != "o1" {
		t.Errorf("expected overlay o1, got %s", res.OverlayID)
	}
	if !strings.HasPrefix(res.Path, "M ") {
		t.Errorf("expected path to start with M, got %q", res.Path)
	}
	if strings.Count(res.Path, "A ") != 2 {
		t.Errorf("expected exactly two arcs, got %q", res.Path)
	}
	if res.OuterRadiusPx <= res.InnerRadiusPx {
		t.Errorf("outer %d should exceed inner %d", res.OuterRadiusPx, res.InnerRadiusPx)
	}
}

func TestRenderOverlay_MissingZoom(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	req := httptest.NewRequest("GET", "/v1/overlays/o1/render", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRenderOverlay_FlatCRS(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			o := sampleOverlay(id)
			o.Sector = domain.Sector{InnerRadius: 1, OuterRadius: 2, StartAngle: 0, EndAngle: 3}
			return o, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/overlays/o1/render?zoom=4&crs=flat", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res domain.RenderResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	// 2 plane units at zoom 4 is 32 pixels.
	if res.OuterRadiusPx != 32 {
		t.Errorf("expected 32px outer radius, got %d", res.OuterRadiusPx)
	}
	if res.CRS != "flat" {
		t.Errorf("expected flat, got %s", res.CRS)
	}
}

// ---- Health and middleware tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
}

func TestReady_NoDatabase(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a database, got %d", resp.StatusCode)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps(&mockOverlayRepo{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := resp.Header.Get("X-API-Version"); got == "" {
		t.Error("expected X-API-Version header")
	}
}

func TestETag_NotModified(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			o := sampleOverlay(id)
			o.CreatedAt = time.Unix(1700000000, 0).UTC()
			o.UpdatedAt = o.CreatedAt
			return o, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/overlays/o1", nil)
	resp, _ := app.Test(req, -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req2 := httptest.NewRequest("GET", "/v1/overlays/o1", nil)
	req2.Header.Set("If-None-Match", etag)
	resp2, _ := app.Test(req2, -1)
	if resp2.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp2.StatusCode)
	}
}

// ---- GraphQL tests ----

func TestGraphQL_Overlay(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			return sampleOverlay(id), nil
		},
	})
	app := setupApp(deps)

	body := `{"query":"{ overlay(id: \"o1\") { id name center { lat lon } } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Overlay struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Center struct {
					Lat float64 `json:"lat"`
				} `json:"center"`
			} `json:"overlay"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if result.Data.Overlay.ID != "o1" || result.Data.Overlay.Center.Lat != 50.5 {
		t.Errorf("unexpected overlay: %+v", result.Data.Overlay)
	}
}

func TestGraphQL_Render(t *testing.T) {
	deps := makeDeps(&mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			return sampleOverlay(id), nil
		},
	})
	app := setupApp(deps)

	body := `{"query":"{ render(id: \"o1\", zoom: 13) { path outer_radius_px } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Render struct {
				Path          string `json:"path"`
				OuterRadiusPx int    `json:"outer_radius_px"`
			} `json:"render"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if !strings.HasPrefix(result.Data.Render.Path, "M ") {
		t.Errorf("expected path, got %q", result.Data.Render.Path)
	}
	if result.Data.Render.OuterRadiusPx < 1 {
		t.Errorf("expected positive outer radius, got %d", result.Data.Render.OuterRadiusPx)
	}
}
