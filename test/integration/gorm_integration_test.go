package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/model"
	"disaster-locator-bot/internal/repository/unitofwork"
	"disaster-locator-bot/pkg/database"
	"disaster-locator-bot/pkg/geo"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err, "Failed to connect to DB")
	require.NoError(t, gormDB.AutoMigrate(&model.ChatSession{}, &model.ResourceFeature{}))
	return gormDB
}

func TestSessionRepositoryAgainstPostgres(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	sessions := uow.SessionRepository()

	userId := "integration-" + uuid.NewString()
	t.Cleanup(func() { db.Where("user_id = ?", userId).Delete(&model.ChatSession{}) })

	s, err := sessions.FindByUserId(ctx, userId)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, created, err := sessions.CreateIfAbsent(ctx, userId)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.StrategyNone, s.ArmedStrategy)

	_, created, err = sessions.CreateIfAbsent(ctx, userId)
	require.NoError(t, err)
	assert.False(t, created)

	s, err = sessions.Upsert(ctx, userId, entity.StrategyPharmacies)
	require.NoError(t, err)
	assert.Equal(t, entity.StrategyPharmacies, s.ArmedStrategy)

	_, created, err = sessions.CreateIfAbsent(ctx, userId)
	require.NoError(t, err)
	assert.False(t, created)

	s, err = sessions.FindByUserId(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, entity.StrategyPharmacies, s.ArmedStrategy, "greeting must not disarm")
}

func TestResourceRepositoryAgainstPostgres(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	collection := "it-" + uuid.NewString()[:8]
	t.Cleanup(func() { db.Where("collection = ?", collection).Delete(&model.ResourceFeature{}) })

	feature := func(name string, lat, lon float64) *entity.GeoFeature {
		return &entity.GeoFeature{
			Id:          uuid.New(),
			FeatureType: entity.FeatureTypeFeature,
			Location:    geo.Point{Latitude: lat, Longitude: lon},
			Properties:  map[string]interface{}{"name": name},
		}
	}
	other := feature("not-a-feature", 41.0, 29.0)
	other.FeatureType = "FeatureCollection"

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.ResourceRepository().ReplaceCollection(ctx, collection, []*entity.GeoFeature{
		feature("far", 41.5, 29.5),
		feature("near", 41.001, 29.001),
		feature("mid", 41.05, 29.05),
		other,
	}))
	require.NoError(t, uow.Commit())

	resources := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).ResourceRepository()
	count, err := resources.CountByCollection(ctx, collection)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	origin := geo.Point{Latitude: 41.0, Longitude: 29.0}
	got, err := resources.Nearest(ctx, collection, origin, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].Field("name"))
	assert.Equal(t, "mid", got[1].Field("name"))
	assert.Equal(t, "far", got[2].Field("name"))
	for _, f := range got {
		assert.InDelta(t, geo.DistanceMeters(origin, f.Location), f.DistanceMeters, 1.0)
	}
}
