package memory

import (
	"context"
	"sort"
	"sync"

	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/pkg/geo"
)

// ResourceRepository ranks features in memory with the same haversine model
// as the SQL query. Fine for the small per-region datasets the bot serves.
type ResourceRepository struct {
	mu          sync.RWMutex
	collections map[string][]entity.GeoFeature
}

var _ contract.ResourceRepository = (*ResourceRepository)(nil)

func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{collections: make(map[string][]entity.GeoFeature)}
}

func (r *ResourceRepository) Nearest(ctx context.Context, collection string, origin geo.Point, k int) ([]*entity.GeoFeature, error) {
	if k <= 0 {
		return []*entity.GeoFeature{}, nil
	}

	r.mu.RLock()
	candidates := make([]*entity.GeoFeature, 0, len(r.collections[collection]))
	for _, f := range r.collections[collection] {
		if f.FeatureType != entity.FeatureTypeFeature {
			continue
		}
		c := f
		c.DistanceMeters = geo.DistanceMeters(origin, f.Location)
		candidates = append(candidates, &c)
	}
	r.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (r *ResourceRepository) ReplaceCollection(ctx context.Context, collection string, features []*entity.GeoFeature) error {
	copied := make([]entity.GeoFeature, 0, len(features))
	for _, f := range features {
		c := *f
		c.Collection = collection
		c.DistanceMeters = 0
		copied = append(copied, c)
	}

	r.mu.Lock()
	r.collections[collection] = copied
	r.mu.Unlock()
	return nil
}

func (r *ResourceRepository) CountByCollection(ctx context.Context, collection string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.collections[collection])), nil
}
