package geometry

import (
	"github.com/aclements/go-moremath/scale"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// AddScaleSource registers a layer for CalculateGeometryMaxCount and
// CalculateGeometryMaxPercent.
func (m *Model) AddScaleSource(s ScaleSource) {
	m.mu.Lock()
	m.sources = append(m.sources, s)
	m.mu.Unlock()
}

// RemoveScaleSource unregisters a layer.
func (m *Model) RemoveScaleSource(s ScaleSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, src := range m.sources {
		if src == s {
			m.sources = append(m.sources[:i:i], m.sources[i+1:]...)
			return
		}
	}
}

func (m *Model) scaleSources() []ScaleSource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ScaleSource(nil), m.sources...)
}

// GeometryMaxCount is the count drawn at the outer circle.
func (m *Model) GeometryMaxCount() int {
	return m.Config().MaxCount
}

// GeometryMaxPercent is the percentage drawn at the outer circle.
func (m *Model) GeometryMaxPercent() float64 {
	return m.Config().MaxPercent
}

// CalculateGeometryMaxCount sets MaxCount to the largest count any
// registered layer reports. Nothing changes when no layer has data.
func (m *Model) CalculateGeometryMaxCount() (int, error) {
	max := 0
	for _, s := range m.scaleSources() {
		if c := s.MaxCount(); c > max {
			max = c
		}
	}
	if max <= 0 {
		return m.GeometryMaxCount(), nil
	}
	if err := m.SetMaxCount(max); err != nil {
		return 0, err
	}
	return max, nil
}

// CalculateGeometryMaxPercent sets MaxPercent to the largest percentage
// any registered layer reports. Nothing changes when no layer has data.
func (m *Model) CalculateGeometryMaxPercent() (float64, error) {
	max := 0.0
	for _, s := range m.scaleSources() {
		if p := s.MaxPercent(); p > max {
			max = p
		}
	}
	if max <= 0 {
		return m.GeometryMaxPercent(), nil
	}
	if err := m.SetMaxPercent(max); err != nil {
		return 0, err
	}
	return max, nil
}

// RingValues returns evenly spaced values for grid rings on the current
// scale, at most maxRings of them, ending at or below the scale maximum.
// Count scales only get whole-number rings.
func (m *Model) RingValues(maxRings int) ([]float64, error) {
	if maxRings < 1 {
		return nil, apperrors.InvalidConfiguration("ring count %d must be positive", maxRings)
	}
	cfg := m.Config()
	max := cfg.MaxPercent
	if !cfg.IsPercent {
		max = float64(cfg.MaxCount)
	}
	if max <= 0 {
		return nil, apperrors.DegenerateGeometry("scale maximum is zero")
	}

	s := scale.Linear{Min: 0, Max: max, Base: 10}
	// the tick at 0 is the center and is not a ring
	opts := scale.TickOptions{Max: maxRings + 1}
	if !cfg.IsPercent {
		// counts are whole numbers, so keep the tick spacing at or
		// above 1
		opts.MinLevel, opts.MaxLevel = 0, 1000
	}
	major, _ := s.Ticks(opts)

	var rings []float64
	for _, t := range major {
		if t > 0 && t <= max {
			rings = append(rings, t)
		}
	}
	if len(rings) == 0 {
		rings = []float64{max}
	}
	return rings, nil
}
