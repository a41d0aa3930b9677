package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/rose-backend-go/internal/database"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
	"github.com/jengzang/rose-backend-go/internal/models"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{Path: filepath.Join(t.TempDir(), "rose.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatasetLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepository(openTestDB(t))

	ds := &models.Dataset{ID: "ds-1", Name: "Joints", Comments: "north wall", Axial: true}
	require.NoError(t, repo.Create(ctx, ds, []float64{10, 20, 30}))

	got, err := repo.GetByID(ctx, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, "Joints", got.Name)
	assert.Equal(t, "north wall", got.Comments)
	assert.True(t, got.Axial)
	assert.Equal(t, 3, got.Count)

	require.NoError(t, repo.AppendValues(ctx, "ds-1", []float64{40, 50}))
	values, err := repo.Values(ctx, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, values)

	require.NoError(t, repo.SetAxial(ctx, "ds-1", false))
	got, err = repo.GetByID(ctx, "ds-1")
	require.NoError(t, err)
	assert.False(t, got.Axial)

	require.NoError(t, repo.Delete(ctx, "ds-1"))
	_, err = repo.GetByID(ctx, "ds-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	values, err = repo.Values(ctx, "ds-1")
	require.NoError(t, err)
	assert.Empty(t, values, "values are deleted with the dataset")
}

func TestDatasetListKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Dataset{ID: "b", Name: "second"}, nil))
	require.NoError(t, repo.Create(ctx, &models.Dataset{ID: "a", Name: "third"}, []float64{1}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, 0, list[0].Count)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, 1, list[1].Count)
}

func TestLargeAppendIsBatched(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepository(openTestDB(t))

	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i % 360)
	}
	require.NoError(t, repo.Create(ctx, &models.Dataset{ID: "big", Name: "big"}, values))

	got, err := repo.Values(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestMissingDataset(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepository(openTestDB(t))

	assert.ErrorIs(t, repo.AppendValues(ctx, "nope", []float64{1}), apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.SetAxial(ctx, "nope", true), apperrors.ErrNotFound)
}

func TestReadColumn(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewDatasetRepository(db)

	_, err := db.Exec(`CREATE TABLE "field data" (strike REAL, dip REAL, note TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "field data" (strike, dip, note) VALUES
		(10, 45, 'a'), (200, 20, 'b'), (NULL, 80, 'c'), (355, 60, 'd')`)
	require.NoError(t, err)

	values, err := repo.ReadColumn(ctx, "field data", "strike", "")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 200, 355}, values)

	values, err = repo.ReadColumn(ctx, "field data", "strike", "dip > 30")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 355}, values)

	_, err = repo.ReadColumn(ctx, "field data", "azimuth", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.ReadColumn(ctx, "nowhere", "strike", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.ReadColumn(ctx, "_values", "VALUE", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)

	_, err = repo.ReadColumn(ctx, "field data", "strike", "no_such_column = 1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)

	// string literals may mention reserved names
	values, err = repo.ReadColumn(ctx, "field data", "strike", "note != '_values; --'")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 200, 355}, values)
}

func TestReadColumnPredicateCannotReachInternalTables(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	// one connection, so the import and the later write share it
	db.SetMaxOpenConns(1)
	repo := NewDatasetRepository(db)

	_, err := db.Exec(`CREATE TABLE joints (strike REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO joints (strike) VALUES (10), (20)`)
	require.NoError(t, err)

	for _, p := range []string{
		"strike IN (SELECT VALUE FROM _values)",
		`EXISTS (SELECT 1 FROM "_datasets")`,
		"EXISTS (SELECT 1 FROM [_geometryController])",
		"EXISTS (SELECT 1 FROM main._values)",
		"EXISTS (SELECT 1 FROM sqlite_master)",
		"EXISTS (SELECT 1 FROM migrations)",
		"1 = 1; DROP TABLE joints",
		"1 = 1 -- trailing",
		"1 = 1 /* block */",
		"note = 'open",
	} {
		_, err := repo.ReadColumn(ctx, "joints", "strike", p)
		assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration, p)
	}

	_, err = repo.ReadColumn(ctx, "sqlite_master", "name", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)

	values, err := repo.ReadColumn(ctx, "joints", "strike", "strike > 15")
	require.NoError(t, err)
	assert.Equal(t, []float64{20}, values)

	// the pooled connection is writable again after an import
	_, err = db.Exec(`INSERT INTO joints (strike) VALUES (30)`)
	require.NoError(t, err)
}

func TestGeometrySaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewGeometryRepository(openTestDB(t))

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	row := &models.GeometryController{
		IsEqualArea: true, MaxCount: 12, MaxPercent: 25,
		HollowCoreSize: 0.1, SectorSize: 15, SectorCount: 24, RelativeSize: 0.8,
	}
	require.NoError(t, repo.Save(ctx, row))

	row.IsPercent = true
	row.StartingAngle = 7.5
	require.NoError(t, repo.Save(ctx, row))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, *row, *got)
}
