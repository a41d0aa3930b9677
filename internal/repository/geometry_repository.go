package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
	"github.com/jengzang/rose-backend-go/internal/models"
)

// GeometryRepository stores the plot configuration
type GeometryRepository struct {
	db *sqlx.DB
}

// NewGeometryRepository creates a new geometry repository
func NewGeometryRepository(db *sqlx.DB) *GeometryRepository {
	return &GeometryRepository{db: db}
}

// Load returns the saved configuration, or NotFound when none was saved
func (r *GeometryRepository) Load(ctx context.Context) (*models.GeometryController, error) {
	var row models.GeometryController
	err := r.db.GetContext(ctx, &row, `
		SELECT _id, IS_EQUAL_AREA, IS_PERCENT, MAX_COUNT, MAX_PERCENT, HOLLOW_CORE_SIZE,
			SECTOR_SIZE, STARTING_ANGLE, SECTOR_COUNT, RELATIVE_SIZE
		FROM _geometryController WHERE _id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("geometry", "1")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load geometry: %w", err)
	}
	return &row, nil
}

// Save writes the configuration, replacing any previous one
func (r *GeometryRepository) Save(ctx context.Context, row *models.GeometryController) error {
	row.ID = 1
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO _geometryController (_id, IS_EQUAL_AREA, IS_PERCENT, MAX_COUNT, MAX_PERCENT,
			HOLLOW_CORE_SIZE, SECTOR_SIZE, STARTING_ANGLE, SECTOR_COUNT, RELATIVE_SIZE)
		VALUES (:_id, :IS_EQUAL_AREA, :IS_PERCENT, :MAX_COUNT, :MAX_PERCENT,
			:HOLLOW_CORE_SIZE, :SECTOR_SIZE, :STARTING_ANGLE, :SECTOR_COUNT, :RELATIVE_SIZE)
		ON CONFLICT(_id) DO UPDATE SET
			IS_EQUAL_AREA = excluded.IS_EQUAL_AREA,
			IS_PERCENT = excluded.IS_PERCENT,
			MAX_COUNT = excluded.MAX_COUNT,
			MAX_PERCENT = excluded.MAX_PERCENT,
			HOLLOW_CORE_SIZE = excluded.HOLLOW_CORE_SIZE,
			SECTOR_SIZE = excluded.SECTOR_SIZE,
			STARTING_ANGLE = excluded.STARTING_ANGLE,
			SECTOR_COUNT = excluded.SECTOR_COUNT,
			RELATIVE_SIZE = excluded.RELATIVE_SIZE
	`, row)
	if err != nil {
		return fmt.Errorf("failed to save geometry: %w", err)
	}
	return nil
}
