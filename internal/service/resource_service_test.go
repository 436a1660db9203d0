package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/internal/repository/memory"
	"disaster-locator-bot/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointFeature(lon, lat float64, props map[string]interface{}) dto.GeoJSONFeature {
	coords, _ := json.Marshal([]float64{lon, lat})
	return dto.GeoJSONFeature{
		Type:       "Feature",
		Geometry:   &dto.GeoJSONGeometry{Type: "Point", Coordinates: coords},
		Properties: props,
	}
}

func TestResourceServiceImportSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewResourceRepository()
	svc := NewResourceService(repo, nil, logger.NewNopLogger())

	polygon := dto.GeoJSONFeature{
		Type: "Feature",
		Geometry: &dto.GeoJSONGeometry{
			Type:        "Polygon",
			Coordinates: json.RawMessage(`[[[36.16, 36.20, 0], [36.17, 36.21, 0], [36.16, 36.20, 0]]]`),
		},
		Properties: map[string]interface{}{"name": "Stad"},
	}

	fc := dto.GeoJSONFeatureCollection{
		Type: "FeatureCollection",
		Features: []dto.GeoJSONFeature{
			pointFeature(29.0, 41.0, map[string]interface{}{"name": "A"}),
			{Type: "Feature"},
			pointFeature(500, 41.0, nil),
			polygon,
		},
	}

	summary, err := svc.Import(ctx, "eczaneler", fc)
	require.NoError(t, err)
	assert.Equal(t, &dto.ImportSummary{Collection: "eczaneler", Imported: 2, Skipped: 2}, summary)

	count, err := repo.CountByCollection(ctx, "eczaneler")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	res, err := svc.Nearest(ctx, dto.NearestResourceRequest{Collection: "eczaneler", Lat: 36.2, Lon: 36.16})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "Stad", res.Results[0].Properties["name"])
	assert.InDelta(t, 0, res.Results[0].DistanceKm, 0.001)
}

func TestResourceServiceNearestLimits(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewResourceRepository()
	svc := NewResourceService(repo, nil, logger.NewNopLogger())

	features := make([]dto.GeoJSONFeature, 0, 30)
	for i := 0; i < 30; i++ {
		features = append(features, pointFeature(29.0+float64(i)*0.01, 41.0, nil))
	}
	_, err := svc.Import(ctx, "kanbagisi", dto.GeoJSONFeatureCollection{Features: features})
	require.NoError(t, err)

	tests := []struct {
		k    int
		want int
	}{
		{k: 0, want: DefaultNearestLimit},
		{k: 3, want: 3},
		{k: 100, want: MaxNearestLimit},
	}
	for _, tt := range tests {
		res, err := svc.Nearest(ctx, dto.NearestResourceRequest{Collection: "kanbagisi", Lat: 41, Lon: 29, K: tt.k})
		require.NoError(t, err)
		assert.Len(t, res.Results, tt.want)
	}

	_, err = svc.Nearest(ctx, dto.NearestResourceRequest{Collection: "kanbagisi", Lat: 95, Lon: 29})
	assert.Error(t, err)
}

type fakeUnitOfWork struct {
	resources contract.ResourceRepository
	began     bool
	committed bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { u.began = true; return nil }
func (u *fakeUnitOfWork) Commit() error { u.committed = true; return nil }
func (u *fakeUnitOfWork) Rollback() error { return nil }
func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository {
	return memory.NewSessionRepository(0)
}
func (u *fakeUnitOfWork) ResourceRepository() contract.ResourceRepository { return u.resources }

type fakeFactory struct{ uow *fakeUnitOfWork }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func TestResourceServiceImportUsesUnitOfWork(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewResourceRepository()
	uow := &fakeUnitOfWork{resources: repo}
	svc := NewResourceService(repo, &fakeFactory{uow: uow}, logger.NewNopLogger())

	summary, err := svc.Import(ctx, "alanlar", dto.GeoJSONFeatureCollection{
		Features: []dto.GeoJSONFeature{pointFeature(36.16, 36.2, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.True(t, uow.began)
	assert.True(t, uow.committed)

	_, err = svc.Import(ctx, "", dto.GeoJSONFeatureCollection{})
	assert.Error(t, err)
}

type failingReplace struct {
	*memory.ResourceRepository
}

func (r failingReplace) ReplaceCollection(ctx context.Context, collection string, features []*entity.GeoFeature) error {
	return errors.New("disk full")
}

func TestResourceServiceImportFailureSkipsCommit(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewResourceRepository()
	uow := &fakeUnitOfWork{resources: failingReplace{repo}}
	svc := NewResourceService(repo, &fakeFactory{uow: uow}, logger.NewNopLogger())

	_, err := svc.Import(ctx, "alanlar", dto.GeoJSONFeatureCollection{
		Features: []dto.GeoJSONFeature{pointFeature(36.16, 36.2, nil)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrResourceStoreUnavailable)
	assert.True(t, uow.began)
	assert.False(t, uow.committed)
}

func TestHealthServiceReportsDegraded(t *testing.T) {
	svc := NewHealthService("bot-1", map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})

	res := svc.Check(context.Background())
	assert.Equal(t, "degraded", res.Status)
	assert.Equal(t, "bot-1", res.Instance)
	assert.Equal(t, "up", res.Checks["database"])
	assert.Equal(t, "down: connection refused", res.Checks["redis"])

	ok := NewHealthService("bot-1", nil).Check(context.Background())
	assert.Equal(t, "ok", ok.Status)
}
