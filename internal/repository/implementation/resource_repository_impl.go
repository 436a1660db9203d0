package implementation

import (
	"context"
	"fmt"

	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/mapper"
	"disaster-locator-bot/internal/model"
	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/internal/repository/specification"
	"disaster-locator-bot/pkg/geo"

	"gorm.io/gorm"
)

const importBatchSize = 500

type ResourceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeatureMapper
}

func NewResourceRepository(db *gorm.DB) contract.ResourceRepository {
	return &ResourceRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeatureMapper(),
	}
}

func (r *ResourceRepositoryImpl) Nearest(ctx context.Context, collection string, origin geo.Point, k int) ([]*entity.GeoFeature, error) {
	if k <= 0 {
		return []*entity.GeoFeature{}, nil
	}

	var models []*model.ResourceFeature
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.ResourceFeature{}),
		specification.NearestTo{Origin: origin},
		specification.InCollection(collection),
		specification.FeatureTypeIs(entity.FeatureTypeFeature),
		specification.Limit{Rows: k},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrResourceStoreUnavailable, err)
	}

	entities := make([]*entity.GeoFeature, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// ReplaceCollection swaps the whole dataset. Run it inside a unit of work so
// readers never see a half-imported collection.
func (r *ResourceRepositoryImpl) ReplaceCollection(ctx context.Context, collection string, features []*entity.GeoFeature) error {
	db := r.db.WithContext(ctx)
	if err := specification.InCollection(collection).Apply(db).Delete(&model.ResourceFeature{}).Error; err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrResourceStoreUnavailable, err)
	}
	if len(features) == 0 {
		return nil
	}

	models := make([]*model.ResourceFeature, 0, len(features))
	for _, f := range features {
		m := r.mapper.ToModel(f)
		m.Collection = collection
		models = append(models, m)
	}
	if err := db.CreateInBatches(models, importBatchSize).Error; err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrResourceStoreUnavailable, err)
	}
	return nil
}

func (r *ResourceRepositoryImpl) CountByCollection(ctx context.Context, collection string) (int64, error) {
	var count int64
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.ResourceFeature{}),
		specification.InCollection(collection),
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", apperror.ErrResourceStoreUnavailable, err)
	}
	return count, nil
}
