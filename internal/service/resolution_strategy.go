package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"disaster-locator-bot/internal/config"
	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/pkg/geo"
	"disaster-locator-bot/pkg/locator"
)

// IResolutionStrategy resolves a submitted location into ranked entries.
type IResolutionStrategy interface {
	Resolve(ctx context.Context, origin geo.Point) ([]entity.ResolutionEntry, error)
}

// NewStrategyRegistry maps every armed strategy onto its resolver.
func NewStrategyRegistry(
	resources contract.ResourceRepository,
	gateway locator.Gateway,
	collections config.CollectionConfig,
	loc *time.Location,
) map[entity.ArmedStrategy]IResolutionStrategy {
	return map[entity.ArmedStrategy]IResolutionStrategy{
		entity.StrategyAssemblyPoints: &assemblyPointStrategy{gateway: gateway, limit: constant.AssemblyPointLimit},
		entity.StrategyShelterNetwork: &shelterNetworkStrategy{
			nearest: nearestQuery{repo: resources, collection: collections.ShelterNetwork, limit: constant.ShelterNetworkLimit},
		},
		entity.StrategyBloodDonation: &bloodDonationStrategy{
			nearest: nearestQuery{repo: resources, collection: collections.BloodDonation, limit: constant.BloodDonationLimit},
			loc:     loc,
		},
		entity.StrategyPharmacies: &pharmacyStrategy{
			nearest: nearestQuery{repo: resources, collection: collections.Pharmacies, limit: constant.PharmacyLimit},
		},
	}
}

// nearestQuery is the shared resource store lookup of the geo strategies.
type nearestQuery struct {
	repo       contract.ResourceRepository
	collection string
	limit      int
}

func (q nearestQuery) run(ctx context.Context, origin geo.Point) ([]*entity.GeoFeature, error) {
	features, err := q.repo.Nearest(ctx, q.collection, origin, q.limit)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: collection %s", apperror.ErrNoResultsFound, q.collection)
	}
	return features, nil
}

func distanceKm(f *entity.GeoFeature) *float64 {
	km := f.DistanceMeters / 1000
	return &km
}

// Assembly points come from the external locator gateway.
type assemblyPointStrategy struct {
	gateway locator.Gateway
	limit   int
}

func (s *assemblyPointStrategy) Resolve(ctx context.Context, origin geo.Point) ([]entity.ResolutionEntry, error) {
	areas, err := s.gateway.Locate(ctx, origin)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.ResolutionEntry, 0, len(areas))
	for _, a := range areas {
		km := geo.DistanceKm(origin, a.Location)
		entries = append(entries, entity.ResolutionEntry{
			Location:   a.Location,
			Name:       a.Name,
			Address:    a.Address(),
			DistanceKm: &km,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return *entries[i].DistanceKm < *entries[j].DistanceKm
	})
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries, nil
}

// Shelter network points carry a map style tag; unknown tags are dropped.
type shelterNetworkStrategy struct {
	nearest nearestQuery
}

func (s *shelterNetworkStrategy) Resolve(ctx context.Context, origin geo.Point) ([]entity.ResolutionEntry, error) {
	features, err := s.nearest.run(ctx, origin)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.ResolutionEntry, 0, len(features))
	for _, f := range features {
		label, ok := constant.ShelterCategoryLabels[f.CategoryTag]
		if !ok {
			continue
		}
		address := "Ahbap: " + label
		if desc := f.Field("description"); desc != "" {
			address += " / " + desc
		}
		entries = append(entries, entity.ResolutionEntry{
			Location:   f.Location,
			Name:       f.FieldOr("name", constant.Placeholder),
			Address:    address,
			DistanceKm: distanceKm(f),
		})
	}
	return entries, nil
}

type bloodDonationStrategy struct {
	nearest nearestQuery
	loc     *time.Location
}

func (s *bloodDonationStrategy) Resolve(ctx context.Context, origin geo.Point) ([]entity.ResolutionEntry, error) {
	features, err := s.nearest.run(ctx, origin)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.ResolutionEntry, 0, len(features))
	for _, f := range features {
		entries = append(entries, entity.ResolutionEntry{
			Location:   f.Location,
			Name:       f.FieldOr("ekipAdi", constant.Placeholder),
			Address:    f.FieldOr("adres", constant.Placeholder),
			DistanceKm: distanceKm(f),
			Detail:     s.detail(f),
		})
	}
	return entries, nil
}

func (s *bloodDonationStrategy) detail(f *entity.GeoFeature) string {
	var b strings.Builder
	b.WriteString("*Kan Bağış Noktası Bilgileri*\r\n\r\n")
	b.WriteString("İletişim Telefon No: " + f.FieldOr("telefon", constant.Placeholder) + "\r\n")
	b.WriteString("Başlama Saati: " + ClockTime(f.Properties["baslangicSaati"], s.loc) + "\r\n")
	b.WriteString("Ara Saati: " + ClockTime(f.Properties["araBaslangicSaati"], s.loc) + "-" + ClockTime(f.Properties["araBitisSaati"], s.loc) + "\r\n")
	b.WriteString("Bitiş Saati: " + ClockTime(f.Properties["bitisSaati"], s.loc))
	return b.String()
}

// Pharmacy datasets keep the pharmacy name in "description" and the place
// in "name"; the pin follows that.
type pharmacyStrategy struct {
	nearest nearestQuery
}

func (s *pharmacyStrategy) Resolve(ctx context.Context, origin geo.Point) ([]entity.ResolutionEntry, error) {
	features, err := s.nearest.run(ctx, origin)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.ResolutionEntry, 0, len(features))
	for _, f := range features {
		entries = append(entries, entity.ResolutionEntry{
			Location:   f.Location,
			Name:       f.FieldOr("description", constant.Placeholder),
			Address:    f.FieldOr("name", constant.Placeholder),
			DistanceKm: distanceKm(f),
		})
	}
	return entries, nil
}

var clockLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ClockTime renders a timestamp property as 24h HH:MM in loc. Strings in
// common ISO layouts and epoch milliseconds are understood; anything else
// renders as the placeholder. Layouts without a zone are read as loc.
func ClockTime(v interface{}, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	switch t := v.(type) {
	case string:
		raw := strings.TrimSpace(t)
		for _, layout := range clockLayouts {
			if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
				return parsed.In(loc).Format("15:04")
			}
		}
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).In(loc).Format("15:04")
		}
	case float64:
		if t > 0 {
			return time.UnixMilli(int64(t)).In(loc).Format("15:04")
		}
	}
	return constant.Placeholder
}
