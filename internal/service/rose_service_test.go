package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/rose-backend-go/internal/database"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
	"github.com/jengzang/rose-backend-go/internal/geometry"
	"github.com/jengzang/rose-backend-go/internal/models"
	"github.com/jengzang/rose-backend-go/internal/repository"
)

func openService(t *testing.T, db *sqlx.DB) *RoseService {
	t.Helper()
	svc, err := NewRoseService(context.Background(),
		repository.NewDatasetRepository(db),
		repository.NewGeometryRepository(db),
		geometry.DefaultConfig(),
	)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestServiceReloadsStoredState(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "rose.db")})
	require.NoError(t, err)
	defer db.Close()

	first := openService(t, db)
	created, err := first.CreateDataset(ctx, models.CreateDatasetRequest{
		Name: "bedding", Comments: "dip directions", Text: "10, 20; 30", Axial: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, created.Values)

	cfg := first.Geometry()
	cfg.HollowCoreSize = 0.25
	cfg.SectorSize = 20
	_, err = first.UpdateGeometry(ctx, cfg)
	require.NoError(t, err)

	second := openService(t, db)
	got, err := second.GetDataset(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bedding", got.Name)
	assert.True(t, got.Axial)
	assert.Equal(t, []float64{10, 20, 30}, got.Values)

	reloaded := second.Geometry()
	assert.Equal(t, 0.25, reloaded.HollowCoreSize)
	assert.Equal(t, 20.0, reloaded.SectorSize)
	assert.Equal(t, 18, reloaded.SectorCount)

	ds, err := second.Document().Dataset(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "dip directions", ds.Comment())
}

func TestServiceRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "rose.db")})
	require.NoError(t, err)
	defer db.Close()
	svc := openService(t, db)

	_, err = svc.CreateDataset(ctx, models.CreateDatasetRequest{Name: "  "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)

	created, err := svc.CreateDataset(ctx, models.CreateDatasetRequest{Name: "a", Values: []float64{1}})
	require.NoError(t, err)

	_, err = svc.AppendValues(ctx, created.ID, models.AppendValuesRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)

	_, err = svc.AppendValues(ctx, "missing", models.AppendValuesRequest{Values: []float64{1}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Radius(nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)

	before := svc.Geometry()
	bad := before
	bad.RelativeSize = 0
	_, err = svc.UpdateGeometry(ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)
	assert.Equal(t, before, svc.Geometry())
}

func TestRingsCarryRadii(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "rose.db")})
	require.NoError(t, err)
	defer db.Close()
	svc := openService(t, db)

	rings, err := svc.Rings(5)
	require.NoError(t, err)
	require.Len(t, rings.Radii, len(rings.Values))
	last := rings.Values[len(rings.Values)-1]
	if last == float64(svc.Geometry().MaxCount) {
		assert.InDelta(t, svc.Document().Geometry().OuterRadius(), rings.Radii[len(rings.Radii)-1], 1e-9)
	}
}

func TestConcurrentAppendsKeepStoredOrder(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "rose.db")})
	require.NoError(t, err)
	defer db.Close()
	svc := openService(t, db)

	created, err := svc.CreateDataset(ctx, models.CreateDatasetRequest{Name: "joints"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			_, err := svc.AppendValues(ctx, created.ID, models.AppendValuesRequest{Values: []float64{v, v + 0.5}})
			errs <- err
		}(float64(i * 10))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := svc.datasetRepo.Values(ctx, created.ID)
	require.NoError(t, err)
	ds, err := svc.Document().Dataset(created.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 32)
	assert.Equal(t, stored, ds.Values())
}
