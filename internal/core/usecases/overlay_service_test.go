package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/core/usecases"
)

// --- Mock OverlayRepository ---

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

// --- Mock EventPublisher ---

type mockPublisher struct {
	updated []string
	deleted []string
}

func (m *mockPublisher) PublishOverlayUpdated(ctx context.Context, overlay *domain.Overlay) error {
	m.updated = append(m.updated, overlay.ID)
	return nil
}

func (m *mockPublisher) PublishOverlayDeleted(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }

// --- Mock EventSubscriber ---

type mockSubscriber struct {
	updateHandler func(ctx context.Context, overlay *domain.Overlay) error
	deleteHandler func(ctx context.Context, id string) error
}

func (m *mockSubscriber) SubscribeOverlayUpdates(ctx context.Context, handler func(ctx context.Context, overlay *domain.Overlay) error) error {
	m.updateHandler = handler
	return nil
}

func (m *mockSubscriber) SubscribeOverlayDeletes(ctx context.Context, handler func(ctx context.Context, id string) error) error {
	m.deleteHandler = handler
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	store   map[string][]byte
	deleted []string
	ttls    []int
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	m.ttls = append(m.ttls, ttlSeconds)
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.store, key)
	return nil
}

// --- Tests ---

func TestOverlayService_Create(t *testing.T) {
	var saved *domain.Overlay
	repo := &mockOverlayRepo{
		createFn: func(ctx context.Context, overlay *domain.Overlay) error {
			saved = overlay
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewOverlayService(repo, nil, pub)

	overlay, err := svc.Create(context.Background(),
		"north-sweep",
		domain.GeoPoint{Lat: 50.5, Lon: 30.5},
		domain.Sector{InnerRadius: 100, OuterRadius: 200, StartAngle: 0, EndAngle: 1.5},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overlay.ID == "" {
		t.Error("expected a generated ID")
	}
	if saved == nil || saved.ID != overlay.ID {
		t.Error("overlay was not persisted")
	}
	if overlay.Style.FillOpacity != 0.2 {
		t.Errorf("expected default style, got fillOpacity %v", overlay.Style.FillOpacity)
	}
	if len(pub.updated) != 1 || pub.updated[0] != overlay.ID {
		t.Errorf("expected one updated event for %s, got %v", overlay.ID, pub.updated)
	}
}

func TestOverlayService_Create_NegativeRadius(t *testing.T) {
	svc := usecases.NewOverlayService(&mockOverlayRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), "bad",
		domain.GeoPoint{Lat: 50, Lon: 30},
		domain.Sector{InnerRadius: -1, OuterRadius: 200},
		nil,
	)
	if err == nil {
		t.Error("expected error for negative radius")
	}
}

func TestOverlayService_Create_ZeroRadiiAllowed(t *testing.T) {
	svc := usecases.NewOverlayService(&mockOverlayRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), "point",
		domain.GeoPoint{Lat: 50, Lon: 30},
		domain.Sector{InnerRadius: 0, OuterRadius: 0},
		nil,
	)
	if err != nil {
		t.Errorf("zero radii should be accepted: %v", err)
	}
}

func TestOverlayService_Create_InvalidCenter(t *testing.T) {
	svc := usecases.NewOverlayService(&mockOverlayRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), "off-earth",
		domain.GeoPoint{Lat: 91, Lon: 30},
		domain.Sector{OuterRadius: 200},
		nil,
	)
	if err == nil {
		t.Error("expected error for latitude beyond 90")
	}
}

func TestOverlayService_GetByID_CacheAside(t *testing.T) {
	calls := 0
	repo := &mockOverlayRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Overlay, error) {
			calls++
			return &domain.Overlay{ID: id, Name: "cached-once"}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewOverlayService(repo, cache, nil)

	for i := 0; i < 3; i++ {
		o, err := svc.GetByID(context.Background(), "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Name != "cached-once" {
			t.Fatalf("expected cached-once, got %s", o.Name)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repo call, got %d", calls)
	}
}

func TestOverlayService_List_ClampLimit(t *testing.T) {
	repo := &mockOverlayRepo{
		listFn: func(ctx context.Context, limit, offset int) ([]domain.Overlay, int, error) {
			if limit != 100 {
				t.Errorf("expected limit clamped to 100, got %d", limit)
			}
			if offset != 0 {
				t.Errorf("expected offset clamped to 0, got %d", offset)
			}
			return nil, 0, nil
		},
	}
	svc := usecases.NewOverlayService(repo, nil, nil)
	_, _, _ = svc.List(context.Background(), 999, -5)
}

func TestOverlayService_FindNearby_ExactDistanceFilter(t *testing.T) {
	repo := &mockOverlayRepo{
		findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Overlay, error) {
			// Box prefilter returns a corner point the circle excludes.
			return []domain.Overlay{
				{ID: "in", Center: domain.GeoPoint{Lat: 50.0, Lon: 30.001}},
				{ID: "corner", Center: domain.GeoPoint{Lat: 50.008, Lon: 30.012}},
			}, nil
		},
	}
	svc := usecases.NewOverlayService(repo, nil, nil)

	found, err := svc.FindNearby(context.Background(), 50.0, 30.0, 500, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].ID != "in" {
		t.Fatalf("expected only the in-circle overlay, got %v", found)
	}
}

func TestOverlayService_Move_InvalidatesAndPublishes(t *testing.T) {
	repo := &mockOverlayRepo{
		moveFn: func(ctx context.Context, id string, center domain.GeoPoint) (*domain.Overlay, error) {
			return &domain.Overlay{ID: id, Center: center}, nil
		},
	}
	cache := newMockCache()
	pub := &mockPublisher{}
	svc := usecases.NewOverlayService(repo, cache, pub)

	_, err := svc.Move(context.Background(), "abc", domain.GeoPoint{Lat: 51, Lon: 31})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != "overlay:id:abc" {
		t.Errorf("expected cache invalidation for overlay:id:abc, got %v", cache.deleted)
	}
	if len(pub.updated) != 1 {
		t.Errorf("expected one updated event, got %d", len(pub.updated))
	}
}

func TestOverlayService_SubscribeInvalidations(t *testing.T) {
	cache := newMockCache()
	cache.store["overlay:id:remote-1"] = []byte(`{"id":"remote-1"}`)
	cache.store["overlay:id:remote-2"] = []byte(`{"id":"remote-2"}`)
	svc := usecases.NewOverlayService(&mockOverlayRepo{}, cache, nil)

	sub := &mockSubscriber{}
	if err := svc.SubscribeInvalidations(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.updateHandler == nil || sub.deleteHandler == nil {
		t.Fatal("expected both event handlers registered")
	}

	// An update event from a peer instance drops its cached entry.
	if err := sub.updateHandler(context.Background(), &domain.Overlay{ID: "remote-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.store["overlay:id:remote-1"]; ok {
		t.Error("expected cached overlay dropped after update event")
	}

	// So does a delete event.
	if err := sub.deleteHandler(context.Background(), "remote-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.store["overlay:id:remote-2"]; ok {
		t.Error("expected cached overlay dropped after delete event")
	}
}

func TestOverlayService_Delete_PublishesDeletion(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewOverlayService(&mockOverlayRepo{}, nil, pub)

	if err := svc.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.deleted) != 1 || pub.deleted[0] != "gone" {
		t.Errorf("expected deleted event for gone, got %v", pub.deleted)
	}
}

func TestOverlayService_Delete_RepoError(t *testing.T) {
	repo := &mockOverlayRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return errors.New("not found")
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewOverlayService(repo, nil, pub)

	if err := svc.Delete(context.Background(), "missing"); err == nil {
		t.Error("expected error to propagate")
	}
	if len(pub.deleted) != 0 {
		t.Error("no event should be published on failure")
	}
}
