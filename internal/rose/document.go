// Package rose ties datasets to one plot. A Document owns the plot's bus
// and geometry model, keeps its layers in drawing order and caches the
// statistics each layer reports under the current sector layout.
package rose

import (
	"sync"

	"github.com/golang/geo/r2"

	"github.com/jengzang/rose-backend-go/internal/circstat"
	"github.com/jengzang/rose-backend-go/internal/dataset"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
	"github.com/jengzang/rose-backend-go/internal/geometry"
	"github.com/jengzang/rose-backend-go/internal/notify"
)

// Document is one rose diagram and the datasets plotted on it.
type Document struct {
	mu        sync.RWMutex
	bus       *notify.Bus
	geometry  *geometry.Model
	layers    []*Layer
	autoScale bool

	// gen is bumped on every invalidation so a result computed against a
	// stale layout is never stored.
	gen        uint64
	statistics map[string][]circstat.Statistic
	histograms map[string]circstat.Histogram

	unsubscribe []func()
}

// NewDocument creates a document with the default geometry.
func NewDocument() *Document {
	doc, err := NewDocumentWithGeometry(geometry.DefaultConfig(), geometry.DefaultBounds())
	if err != nil {
		// defaults are valid
		panic(err)
	}
	return doc
}

// NewDocumentWithGeometry creates a document from a stored geometry
// configuration.
func NewDocumentWithGeometry(cfg geometry.Config, bounds r2.Rect) (*Document, error) {
	bus := notify.NewBus()
	model, err := geometry.NewModelWithConfig(bus, cfg, bounds)
	if err != nil {
		return nil, err
	}

	d := &Document{
		bus:        bus,
		geometry:   model,
		autoScale:  true,
		statistics: make(map[string][]circstat.Statistic),
		histograms: make(map[string]circstat.Histogram),
	}
	d.unsubscribe = []func(){
		bus.Subscribe(notify.GeometrySectorsChanged, func(notify.Event) { d.invalidateAll() }),
		bus.Subscribe(notify.GeometryChanged, func(notify.Event) { d.invalidateAll() }),
		bus.Subscribe(notify.StatisticsChanged, d.datasetChanged),
	}
	return d, nil
}

// Close detaches the document from its bus and its datasets.
func (d *Document) Close() {
	d.mu.Lock()
	unsubscribe := d.unsubscribe
	d.unsubscribe = nil
	layers := d.layers
	d.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
	for _, l := range layers {
		l.dataset.Attach(nil)
	}
}

// Bus is the change bus shared by the geometry model and every dataset.
func (d *Document) Bus() *notify.Bus {
	return d.bus
}

// Geometry is the plot's geometry model.
func (d *Document) Geometry() *geometry.Model {
	return d.geometry
}

// SetAutoScale controls whether dataset changes recompute the geometry
// maxima. It is on by default.
func (d *Document) SetAutoScale(on bool) {
	d.mu.Lock()
	d.autoScale = on
	d.mu.Unlock()
}

// AddDataset plots ds as a new top layer. Axial layers are binned and
// summarized bidirectionally.
func (d *Document) AddDataset(ds *dataset.Dataset, axial bool) (*Layer, error) {
	d.mu.Lock()
	for _, l := range d.layers {
		if l.dataset.ID() == ds.ID() {
			d.mu.Unlock()
			return nil, apperrors.InvalidConfiguration("dataset %s is already plotted", ds.ID())
		}
	}
	l := &Layer{doc: d, dataset: ds, axial: axial}
	d.layers = append(d.layers, l)
	autoScale := d.autoScale
	d.mu.Unlock()

	ds.Attach(d.bus)
	d.geometry.AddScaleSource(l)
	if autoScale {
		if err := d.Rescale(); err != nil {
			return l, err
		}
	}
	return l, nil
}

// RemoveDataset takes a dataset off the plot.
func (d *Document) RemoveDataset(id string) error {
	d.mu.Lock()
	idx := d.indexOf(id)
	if idx < 0 {
		d.mu.Unlock()
		return apperrors.NotFound("dataset", id)
	}
	l := d.layers[idx]
	d.layers = append(d.layers[:idx:idx], d.layers[idx+1:]...)
	delete(d.statistics, id)
	delete(d.histograms, id)
	autoScale := d.autoScale
	d.mu.Unlock()

	l.dataset.Attach(nil)
	d.geometry.RemoveScaleSource(l)
	if autoScale {
		return d.Rescale()
	}
	return nil
}

// Layer returns the layer plotting dataset id.
func (d *Document) Layer(id string) (*Layer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.indexOf(id)
	if idx < 0 {
		return nil, apperrors.NotFound("dataset", id)
	}
	return d.layers[idx], nil
}

// Dataset returns the dataset with the given ID.
func (d *Document) Dataset(id string) (*dataset.Dataset, error) {
	l, err := d.Layer(id)
	if err != nil {
		return nil, err
	}
	return l.dataset, nil
}

// Layers returns the layers in drawing order, bottom first.
func (d *Document) Layers() []*Layer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Layer(nil), d.layers...)
}

// SetAxial switches a layer between directional and axial treatment.
func (d *Document) SetAxial(id string, axial bool) error {
	d.mu.Lock()
	idx := d.indexOf(id)
	if idx < 0 {
		d.mu.Unlock()
		return apperrors.NotFound("dataset", id)
	}
	l := d.layers[idx]
	if l.axial == axial {
		d.mu.Unlock()
		return nil
	}
	l.axial = axial
	d.invalidateLocked(id)
	autoScale := d.autoScale
	d.mu.Unlock()

	if autoScale {
		return d.Rescale()
	}
	return nil
}

// Statistics returns the statistics report for dataset id under the
// current sector layout.
func (d *Document) Statistics(id string) ([]circstat.Statistic, error) {
	d.mu.RLock()
	if cached, ok := d.statistics[id]; ok {
		d.mu.RUnlock()
		return cached, nil
	}
	idx := d.indexOf(id)
	if idx < 0 {
		d.mu.RUnlock()
		return nil, apperrors.NotFound("dataset", id)
	}
	l := d.layers[idx]
	axial := l.axial
	gen := d.gen
	d.mu.RUnlock()

	params := d.geometry.Config().Params(axial)
	stats, err := circstat.New(l.dataset).CurrentStatistics(params, axial)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.gen == gen {
		d.statistics[id] = stats
	}
	d.mu.Unlock()
	return stats, nil
}

// Histogram returns the sector histogram for dataset id under the current
// sector layout. Axial layers are tallied bidirectionally.
func (d *Document) Histogram(id string) (circstat.Histogram, error) {
	d.mu.RLock()
	if cached, ok := d.histograms[id]; ok {
		d.mu.RUnlock()
		return cached, nil
	}
	idx := d.indexOf(id)
	if idx < 0 {
		d.mu.RUnlock()
		return circstat.Histogram{}, apperrors.NotFound("dataset", id)
	}
	l := d.layers[idx]
	axial := l.axial
	gen := d.gen
	d.mu.RUnlock()

	params := d.geometry.Config().Params(axial)
	h, err := circstat.New(l.dataset).SectorHistogram(params)
	if err != nil {
		return circstat.Histogram{}, err
	}

	d.mu.Lock()
	if d.gen == gen {
		d.histograms[id] = h
	}
	d.mu.Unlock()
	return h, nil
}

// Rescale recomputes the geometry's max count and max percent from the
// plotted layers.
func (d *Document) Rescale() error {
	if _, err := d.geometry.CalculateGeometryMaxCount(); err != nil {
		return err
	}
	_, err := d.geometry.CalculateGeometryMaxPercent()
	return err
}

func (d *Document) datasetChanged(e notify.Event) {
	d.mu.Lock()
	if d.indexOf(e.Source) < 0 {
		d.mu.Unlock()
		return
	}
	d.invalidateLocked(e.Source)
	autoScale := d.autoScale
	d.mu.Unlock()

	if autoScale {
		// listeners cannot return errors; a failed rescale leaves the
		// previous maxima in place
		_ = d.Rescale()
	}
}

func (d *Document) invalidateAll() {
	d.mu.Lock()
	d.gen++
	clear(d.statistics)
	clear(d.histograms)
	d.mu.Unlock()
}

func (d *Document) invalidateLocked(id string) {
	d.gen++
	delete(d.statistics, id)
	delete(d.histograms, id)
}

func (d *Document) indexOf(id string) int {
	for i, l := range d.layers {
		if l.dataset.ID() == id {
			return i
		}
	}
	return -1
}
