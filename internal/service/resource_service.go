package service

import (
	"context"
	"errors"
	"fmt"

	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/mapper"
	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/internal/repository/unitofwork"
	"disaster-locator-bot/pkg/geo"
)

const (
	DefaultNearestLimit = 5
	MaxNearestLimit     = 20
)

type IResourceService interface {
	Nearest(ctx context.Context, req dto.NearestResourceRequest) (*dto.NearestResourceResponse, error)
	// Import replaces a whole collection with the features of fc. Malformed
	// features are skipped and counted.
	Import(ctx context.Context, collection string, fc dto.GeoJSONFeatureCollection) (*dto.ImportSummary, error)
}

type resourceService struct {
	resources  contract.ResourceRepository
	uowFactory unitofwork.RepositoryFactory
	features   *mapper.FeatureMapper
	logger     logger.ILogger
}

// NewResourceService imports through a unit of work when uowFactory is set,
// otherwise straight into resources.
func NewResourceService(resources contract.ResourceRepository, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IResourceService {
	return &resourceService{
		resources:  resources,
		uowFactory: uowFactory,
		features:   mapper.NewFeatureMapper(),
		logger:     log,
	}
}

func (s *resourceService) Nearest(ctx context.Context, req dto.NearestResourceRequest) (*dto.NearestResourceResponse, error) {
	origin, err := geo.NewPoint(req.Lat, req.Lon)
	if err != nil {
		return nil, err
	}

	k := req.K
	if k <= 0 {
		k = DefaultNearestLimit
	}
	if k > MaxNearestLimit {
		k = MaxNearestLimit
	}

	features, err := s.resources.Nearest(ctx, req.Collection, origin, k)
	if err != nil {
		return nil, err
	}

	res := &dto.NearestResourceResponse{
		Collection: req.Collection,
		Results:    make([]dto.NearestResourceItem, 0, len(features)),
	}
	for _, f := range features {
		res.Results = append(res.Results, dto.NearestResourceItem{
			Id:          f.Id.String(),
			Latitude:    f.Location.Latitude,
			Longitude:   f.Location.Longitude,
			CategoryTag: f.CategoryTag,
			DistanceKm:  f.DistanceMeters / 1000,
			Properties:  f.Properties,
		})
	}
	return res, nil
}

func (s *resourceService) Import(ctx context.Context, collection string, fc dto.GeoJSONFeatureCollection) (*dto.ImportSummary, error) {
	if collection == "" {
		return nil, errors.New("collection name is required")
	}

	summary := &dto.ImportSummary{Collection: collection}
	features := make([]*entity.GeoFeature, 0, len(fc.Features))
	for i, raw := range fc.Features {
		f, err := s.features.FromGeoJSON(collection, raw)
		if err != nil {
			summary.Skipped++
			s.logger.Warn("ResourceService", "Skipping malformed feature", map[string]interface{}{
				"collection": collection,
				"index":      i,
				"error":      err.Error(),
			})
			continue
		}
		features = append(features, f)
	}

	if err := s.replace(ctx, collection, features); err != nil {
		s.logger.Error("ResourceService", "Import failed", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		return nil, err
	}

	summary.Imported = len(features)
	s.logger.Info("ResourceService", "Collection imported", map[string]interface{}{
		"collection": collection,
		"imported":   summary.Imported,
		"skipped":    summary.Skipped,
	})
	return summary, nil
}

func (s *resourceService) replace(ctx context.Context, collection string, features []*entity.GeoFeature) error {
	if s.uowFactory == nil {
		return s.resources.ReplaceCollection(ctx, collection, features)
	}

	err := unitofwork.Run(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		return uow.ResourceRepository().ReplaceCollection(ctx, collection, features)
	})
	if err != nil && !errors.Is(err, apperror.ErrResourceStoreUnavailable) {
		return fmt.Errorf("%w: import transaction: %v", apperror.ErrResourceStoreUnavailable, err)
	}
	return err
}
