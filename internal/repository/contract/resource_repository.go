package contract

import (
	"context"

	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/pkg/geo"
)

type ResourceRepository interface {
	// Nearest returns at most k features of type "Feature" from the collection,
	// ordered by ascending great-circle distance with DistanceMeters set.
	Nearest(ctx context.Context, collection string, origin geo.Point, k int) ([]*entity.GeoFeature, error)
	ReplaceCollection(ctx context.Context, collection string, features []*entity.GeoFeature) error
	CountByCollection(ctx context.Context, collection string) (int64, error)
}
