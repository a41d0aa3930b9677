package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/rose-backend-go/internal/circstat"
	"github.com/jengzang/rose-backend-go/internal/dataset"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
	"github.com/jengzang/rose-backend-go/internal/geometry"
	"github.com/jengzang/rose-backend-go/internal/models"
	"github.com/jengzang/rose-backend-go/internal/report"
	"github.com/jengzang/rose-backend-go/internal/repository"
	"github.com/jengzang/rose-backend-go/internal/rose"
)

// loadConcurrency bounds parallel value reads at startup
const loadConcurrency = 4

// RoseService keeps the stored datasets and geometry in a live document
type RoseService struct {
	datasetRepo  *repository.DatasetRepository
	geometryRepo *repository.GeometryRepository
	doc          *rose.Document
	log          *zap.SugaredLogger

	// appends holds one *sync.Mutex per dataset id so storage and memory
	// see appends in the same order
	appends sync.Map
}

// NewRoseService loads the stored geometry and datasets into a document.
// defaults is used when no geometry has been saved yet.
func NewRoseService(ctx context.Context, datasetRepo *repository.DatasetRepository, geometryRepo *repository.GeometryRepository, defaults geometry.Config) (*RoseService, error) {
	cfg := defaults
	row, err := geometryRepo.Load(ctx)
	switch {
	case err == nil:
		cfg = configFromRow(row)
	case errors.Is(err, apperrors.ErrNotFound):
		if err := geometryRepo.Save(ctx, rowFromConfig(cfg)); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	doc, err := rose.NewDocumentWithGeometry(cfg, geometry.DefaultBounds())
	if err != nil {
		return nil, fmt.Errorf("stored geometry is invalid: %w", err)
	}
	// scale follows the data only when asked to; the stored maxima win
	doc.SetAutoScale(false)

	s := &RoseService{
		datasetRepo:  datasetRepo,
		geometryRepo: geometryRepo,
		doc:          doc,
		log:          zap.S().Named("rose"),
	}

	rows, err := datasetRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, r := range rows {
		g.Go(func() error {
			v, err := datasetRepo.Values(gctx, r.ID)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if _, err := s.plot(r, values[i]); err != nil {
			return nil, fmt.Errorf("failed to load dataset %s: %w", r.ID, err)
		}
	}
	s.log.Infow("document loaded", "datasets", len(rows))
	return s, nil
}

// Close releases the document
func (s *RoseService) Close() {
	s.doc.Close()
}

// Document exposes the live document
func (s *RoseService) Document() *rose.Document {
	return s.doc
}

func (s *RoseService) plot(r models.Dataset, values []float64) (*dataset.Dataset, error) {
	ds, err := dataset.Restore(r.ID, r.Name, values)
	if err != nil {
		return nil, err
	}
	ds.SetComment(r.Comments)
	ds.SetProvenance(dataset.Provenance{Table: r.Table, Column: r.Column, Predicate: r.Predicate})
	if _, err := s.doc.AddDataset(ds, r.Axial); err != nil {
		return nil, err
	}
	return ds, nil
}

// ListDatasets returns every stored dataset without observations
func (s *RoseService) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	return s.datasetRepo.List(ctx)
}

// GetDataset returns a dataset with its observations
func (s *RoseService) GetDataset(ctx context.Context, id string) (*models.DatasetDetail, error) {
	row, err := s.datasetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ds, err := s.doc.Dataset(id)
	if err != nil {
		return nil, err
	}
	return &models.DatasetDetail{Dataset: *row, Values: ds.Values()}, nil
}

// CreateDataset stores and plots a new dataset
func (s *RoseService) CreateDataset(ctx context.Context, req models.CreateDatasetRequest) (*models.DatasetDetail, error) {
	values, err := valuesOf(req.Values, req.Text)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, models.Dataset{
		Name:     strings.TrimSpace(req.Name),
		Comments: req.Comments,
		Axial:    req.Axial,
	}, values)
}

// ImportDataset creates a dataset from a numeric column of another table
func (s *RoseService) ImportDataset(ctx context.Context, req models.ImportDatasetRequest) (*models.DatasetDetail, error) {
	values, err := s.datasetRepo.ReadColumn(ctx, req.Table, req.Column, req.Predicate)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, models.Dataset{
		Name:      strings.TrimSpace(req.Name),
		Table:     req.Table,
		Column:    req.Column,
		Predicate: req.Predicate,
		Comments:  req.Comments,
		Axial:     req.Axial,
	}, values)
}

func (s *RoseService) create(ctx context.Context, row models.Dataset, values []float64) (*models.DatasetDetail, error) {
	if row.Name == "" {
		return nil, apperrors.InvalidConfiguration("dataset name is empty")
	}
	ds, err := dataset.New(row.Name, values)
	if err != nil {
		return nil, err
	}
	row.ID = ds.ID()

	if err := s.datasetRepo.Create(ctx, &row, values); err != nil {
		return nil, err
	}
	if _, err := s.plot(row, values); err != nil {
		return nil, err
	}
	s.log.Infow("dataset created", "id", row.ID, "name", row.Name, "count", len(values))
	return s.GetDataset(ctx, row.ID)
}

// AppendValues adds observations to a dataset. Nothing is stored if any
// value is invalid.
func (s *RoseService) AppendValues(ctx context.Context, id string, req models.AppendValuesRequest) (*models.DatasetDetail, error) {
	values, err := valuesOf(req.Values, req.Text)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, apperrors.InvalidConfiguration("no values to append")
	}
	ds, err := s.doc.Dataset(id)
	if err != nil {
		return nil, err
	}
	if err := dataset.CheckValues(values); err != nil {
		return nil, err
	}

	unlock := s.lockAppends(id)
	if err := s.datasetRepo.AppendValues(ctx, id, values); err != nil {
		unlock()
		return nil, err
	}
	err = ds.Append(values...)
	unlock()
	if err != nil {
		return nil, err
	}
	return s.GetDataset(ctx, id)
}

func (s *RoseService) lockAppends(id string) func() {
	v, _ := s.appends.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// SetAxial switches a dataset between directional and axial treatment
func (s *RoseService) SetAxial(ctx context.Context, id string, axial bool) error {
	if _, err := s.doc.Layer(id); err != nil {
		return err
	}
	if err := s.datasetRepo.SetAxial(ctx, id, axial); err != nil {
		return err
	}
	return s.doc.SetAxial(id, axial)
}

// DeleteDataset removes a dataset from storage and from the plot
func (s *RoseService) DeleteDataset(ctx context.Context, id string) error {
	if err := s.datasetRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.doc.RemoveDataset(id); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	s.appends.Delete(id)
	s.log.Infow("dataset deleted", "id", id)
	return nil
}

// Statistics returns the statistics report of a dataset. A non-nil axial
// overrides the dataset's own treatment for this call only.
func (s *RoseService) Statistics(id string, axial *bool) ([]circstat.Statistic, error) {
	if axial == nil {
		return s.doc.Statistics(id)
	}
	ds, err := s.doc.Dataset(id)
	if err != nil {
		return nil, err
	}
	params := s.doc.Geometry().Config().Params(*axial)
	return circstat.New(ds).CurrentStatistics(params, *axial)
}

// Histogram returns a dataset's sector tallies under the current geometry
func (s *RoseService) Histogram(id string) (circstat.Histogram, error) {
	return s.doc.Histogram(id)
}

// Uniformity tests a dataset's sector counts against a uniform spread
func (s *RoseService) Uniformity(id string) (circstat.ChiSquared, error) {
	h, err := s.doc.Histogram(id)
	if err != nil {
		return circstat.ChiSquared{}, err
	}
	return circstat.ChiSquaredOf(h)
}

// Report renders the statistics description of a dataset
func (s *RoseService) Report(id string, format report.Format) ([]byte, error) {
	ds, err := s.doc.Dataset(id)
	if err != nil {
		return nil, err
	}
	stats, err := s.doc.Statistics(id)
	if err != nil {
		return nil, err
	}
	h, err := s.doc.Histogram(id)
	if err != nil {
		return nil, err
	}
	return report.Render(report.Input{
		Name:       ds.Name(),
		Comment:    ds.Comment(),
		Provenance: ds.Provenance(),
		Statistics: stats,
		Histogram:  &h,
	}, format)
}

// Geometry returns the current plot configuration
func (s *RoseService) Geometry() geometry.Config {
	return s.doc.Geometry().Config()
}

// UpdateGeometry validates, applies and stores a new configuration
func (s *RoseService) UpdateGeometry(ctx context.Context, cfg geometry.Config) (geometry.Config, error) {
	model := s.doc.Geometry()
	old := model.Config()
	// a changed size or count drives the other one
	switch {
	case cfg.SectorSize != old.SectorSize && cfg.SectorCount == old.SectorCount:
		cfg.SectorCount = 0
	case cfg.SectorCount != old.SectorCount && cfg.SectorSize == old.SectorSize && cfg.SectorCount > 0:
		cfg.SectorSize = 360 / float64(cfg.SectorCount)
	}
	if err := model.Configure(cfg); err != nil {
		return geometry.Config{}, err
	}
	next := model.Config()
	if err := s.geometryRepo.Save(ctx, rowFromConfig(next)); err != nil {
		// keep memory and storage in step
		if rbErr := model.Configure(old); rbErr != nil {
			s.log.Errorw("failed to restore geometry", "error", rbErr)
		}
		return geometry.Config{}, err
	}
	return next, nil
}

// Rescale fits the maximum count and percent to the plotted data and
// stores the result
func (s *RoseService) Rescale(ctx context.Context) (geometry.Config, error) {
	if err := s.doc.Rescale(); err != nil {
		return geometry.Config{}, err
	}
	cfg := s.doc.Geometry().Config()
	if err := s.geometryRepo.Save(ctx, rowFromConfig(cfg)); err != nil {
		return geometry.Config{}, err
	}
	return cfg, nil
}

// Radius maps a count or percent onto the plot. Exactly one of count and
// percent is expected.
func (s *RoseService) Radius(count *int, percent *float64) (*models.RadiusResponse, error) {
	model := s.doc.Geometry()
	var (
		rel float64
		r   float64
		err error
	)
	switch {
	case count != nil:
		r, err = model.RadiusForCount(*count)
		rel = float64(*count) / float64(model.GeometryMaxCount())
	case percent != nil:
		r, err = model.RadiusForPercent(*percent)
		rel = *percent / model.GeometryMaxPercent()
	default:
		return nil, apperrors.InvalidConfiguration("count or percent is required")
	}
	if err != nil {
		return nil, err
	}
	return &models.RadiusResponse{
		Radius:       r,
		Unrestricted: model.UnrestrictedRadiusForRelativePercent(rel),
		NoCore:       model.UnrestrictedRadiusForRelativePercentNoCore(rel),
		Outer:        model.OuterRadius(),
		HollowCore:   model.RadiusForHollowCore(),
	}, nil
}

// Spoke reports whether an angle lies on a sector boundary
func (s *RoseService) Spoke(angle float64) models.SpokeResponse {
	return models.SpokeResponse{Angle: angle, Valid: s.doc.Geometry().AngleIsValidForSpoke(angle)}
}

// Position maps a drawing-space point to plot terms
func (s *RoseService) Position(x, y float64) (geometry.Position, error) {
	return s.doc.Geometry().RelativePosition(r2.Point{X: x, Y: y})
}

// Rings returns grid ring values and their radii
func (s *RoseService) Rings(maxRings int) (*models.RingsResponse, error) {
	model := s.doc.Geometry()
	values, err := model.RingValues(maxRings)
	if err != nil {
		return nil, err
	}
	percent := model.Config().IsPercent
	radii := make([]float64, len(values))
	for i, v := range values {
		var r float64
		if percent {
			r, err = model.RadiusForPercent(v)
		} else {
			r, err = model.RadiusForCount(int(v))
		}
		if err != nil {
			return nil, err
		}
		radii[i] = r
	}
	return &models.RingsResponse{Values: values, Radii: radii}, nil
}

func valuesOf(values []float64, text string) ([]float64, error) {
	if len(values) > 0 || strings.TrimSpace(text) == "" {
		return values, nil
	}
	return dataset.ParseValues(bytes.NewBufferString(text))
}

func configFromRow(r *models.GeometryController) geometry.Config {
	return geometry.Config{
		IsEqualArea:    r.IsEqualArea,
		IsPercent:      r.IsPercent,
		MaxCount:       r.MaxCount,
		MaxPercent:     r.MaxPercent,
		HollowCoreSize: r.HollowCoreSize,
		SectorSize:     r.SectorSize,
		StartingAngle:  r.StartingAngle,
		SectorCount:    r.SectorCount,
		RelativeSize:   r.RelativeSize,
	}
}

func rowFromConfig(c geometry.Config) *models.GeometryController {
	return &models.GeometryController{
		IsEqualArea:    c.IsEqualArea,
		IsPercent:      c.IsPercent,
		MaxCount:       c.MaxCount,
		MaxPercent:     c.MaxPercent,
		HollowCoreSize: c.HollowCoreSize,
		SectorSize:     c.SectorSize,
		StartingAngle:  c.StartingAngle,
		SectorCount:    c.SectorCount,
		RelativeSize:   c.RelativeSize,
	}
}
