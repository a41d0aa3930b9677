// Package geometry maps counts, percentages and angles onto the polar plot.
//
// A Model owns one plot's configuration. Mutations validate first, then
// publish on the plot's bus synchronously, after the model's lock is
// released, so listeners may read the model.
package geometry

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"

	"github.com/jengzang/rose-backend-go/internal/notify"
)

// ScaleSource is a layer that knows the largest count and percentage it
// will plot under the current sector layout.
type ScaleSource interface {
	MaxCount() int
	MaxPercent() float64
}

// Model is the geometry controller of one plot.
type Model struct {
	mu      sync.RWMutex
	cfg     Config
	bounds  r2.Rect
	circle  r2.Rect
	bus     *notify.Bus
	sources []ScaleSource
}

// NewModel creates a model with the default configuration and bounds.
func NewModel(bus *notify.Bus) *Model {
	m, err := NewModelWithConfig(bus, DefaultConfig(), DefaultBounds())
	if err != nil {
		// defaults are valid
		panic(err)
	}
	return m
}

// NewModelWithConfig creates a model from a stored configuration.
func NewModelWithConfig(bus *notify.Bus, cfg Config, bounds r2.Rect) (*Model, error) {
	cfg = cfg.withDerivedCount()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validBounds(bounds); err != nil {
		return nil, err
	}
	return &Model{
		cfg:    cfg,
		bounds: bounds,
		circle: circleRect(bounds, cfg.RelativeSize),
		bus:    bus,
	}, nil
}

// Config returns a copy of the configuration.
func (m *Model) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Bounds returns the drawing area.
func (m *Model) Bounds() r2.Rect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bounds
}

// CircleRect is the square the outer circle is inscribed in.
func (m *Model) CircleRect() r2.Rect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.circle
}

// Configure replaces the whole configuration at once. A zero SectorCount is
// derived from SectorSize. GeometryChanged is always published.
func (m *Model) Configure(cfg Config) error {
	cfg = cfg.withDerivedCount()
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	old := m.cfg
	m.cfg = cfg
	m.circle = circleRect(m.bounds, cfg.RelativeSize)
	m.mu.Unlock()

	m.publish(old, cfg, true)
	return nil
}

func (m *Model) SetEqualArea(v bool) error {
	return m.update(func(c *Config) { c.IsEqualArea = v })
}

func (m *Model) SetPercent(v bool) error {
	return m.update(func(c *Config) { c.IsPercent = v })
}

func (m *Model) SetMaxCount(v int) error {
	return m.update(func(c *Config) { c.MaxCount = v })
}

func (m *Model) SetMaxPercent(v float64) error {
	return m.update(func(c *Config) { c.MaxPercent = v })
}

func (m *Model) SetHollowCoreSize(v float64) error {
	return m.update(func(c *Config) { c.HollowCoreSize = v })
}

func (m *Model) SetStartingAngle(v float64) error {
	return m.update(func(c *Config) { c.StartingAngle = v })
}

func (m *Model) SetRelativeSize(v float64) error {
	return m.update(func(c *Config) { c.RelativeSize = v })
}

// SetSectorSize changes the sector width and derives the sector count.
func (m *Model) SetSectorSize(size float64) error {
	return m.update(func(c *Config) {
		c.SectorSize = size
		c.SectorCount = 0
	})
}

// SetSectorCount divides the circle into n equal sectors.
func (m *Model) SetSectorCount(n int) error {
	return m.update(func(c *Config) {
		if n <= 0 {
			// rejected by Validate through the size
			c.SectorSize = 0
			return
		}
		c.SectorSize = 360 / float64(n)
		c.SectorCount = n
	})
}

// SetBounds moves the drawing area, e.g. when the view is resized.
func (m *Model) SetBounds(bounds r2.Rect) error {
	if err := validBounds(bounds); err != nil {
		return err
	}
	m.mu.Lock()
	changed := bounds != m.bounds
	m.bounds = bounds
	m.circle = circleRect(bounds, m.cfg.RelativeSize)
	cfg := m.cfg
	m.mu.Unlock()

	if changed {
		m.publish(cfg, cfg, true)
	}
	return nil
}

func (m *Model) update(mutate func(*Config)) error {
	m.mu.Lock()
	old := m.cfg
	next := old
	mutate(&next)
	next = next.withDerivedCount()
	if err := next.Validate(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.cfg = next
	m.circle = circleRect(m.bounds, next.RelativeSize)
	m.mu.Unlock()

	m.publish(old, next, false)
	return nil
}

// publish sends the events implied by a change from old to next. A change
// that only flips the percent scale sends GeometryPercentChanged alone.
func (m *Model) publish(old, next Config, force bool) {
	percent := old.IsPercent != next.IsPercent
	sectors := old.sectorsDiffer(next)

	rest := old
	rest.IsPercent = next.IsPercent
	other := rest != next

	if percent {
		m.bus.Publish(notify.Event{Kind: notify.GeometryPercentChanged})
	}
	if sectors {
		m.bus.Publish(notify.Event{Kind: notify.GeometrySectorsChanged})
	}
	if force || other {
		m.bus.Publish(notify.Event{Kind: notify.GeometryChanged})
	}
}

// circleRect centers a square of side min(w,h)·relative in bounds.
func circleRect(bounds r2.Rect, relative float64) r2.Rect {
	size := bounds.Size()
	side := math.Min(size.X, size.Y) * relative
	return r2.RectFromCenterSize(bounds.Center(), r2.Point{X: side, Y: side})
}
