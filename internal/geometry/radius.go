package geometry

import (
	"math"

	"github.com/golang/geo/r2"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// disc is a snapshot of the values every radius computation needs.
type disc struct {
	center    r2.Point
	outer     float64
	hollow    float64
	equalArea bool
}

func (m *Model) disc() disc {
	m.mu.RLock()
	defer m.mu.RUnlock()
	outer := math.Min(m.circle.X.Length(), m.circle.Y.Length()) / 2
	return disc{
		center:    m.circle.Center(),
		outer:     outer,
		hollow:    outer * m.cfg.HollowCoreSize,
		equalArea: m.cfg.IsEqualArea,
	}
}

// radius maps a relative value onto [hollow, outer]. With equal area the
// annulus area, not the radius, is proportional to p.
func (d disc) radius(p float64) float64 {
	span := d.outer - d.hollow
	if d.equalArea {
		return d.hollow + span*math.Sqrt(p)
	}
	return d.hollow + span*p
}

// fraction inverts radius. Radii inside the core map to 0; radii outside
// the outer circle map above 1.
func (d disc) fraction(r float64) (float64, error) {
	span := d.outer - d.hollow
	if span <= 0 {
		return 0, apperrors.DegenerateGeometry("outer radius %v does not exceed core radius %v", d.outer, d.hollow)
	}
	t := (r - d.hollow) / span
	if t < 0 {
		t = 0
	}
	if d.equalArea {
		return t * t, nil
	}
	return t, nil
}

func nonNegative(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return p
}

// OuterRadius is the radius of the outermost circle.
func (m *Model) OuterRadius() float64 {
	return m.disc().outer
}

// Center is the plot origin in drawing coordinates.
func (m *Model) Center() r2.Point {
	return m.disc().center
}

// RadiusForHollowCore is the radius where the value mapping begins.
func (m *Model) RadiusForHollowCore() float64 {
	return m.disc().hollow
}

// RadiusForRelativePercent maps p, clamped to [0,1], between the core and
// the outer circle.
func (m *Model) RadiusForRelativePercent(p float64) float64 {
	return m.disc().radius(math.Min(nonNegative(p), 1))
}

// UnrestrictedRadiusForRelativePercent maps p without the upper clamp so
// overflow markers can be drawn beyond the outer circle.
func (m *Model) UnrestrictedRadiusForRelativePercent(p float64) float64 {
	return m.disc().radius(nonNegative(p))
}

// UnrestrictedRadiusForRelativePercentNoCore maps p from the center,
// ignoring the hollow core, without the upper clamp. Used for drawing the
// core layer itself.
func (m *Model) UnrestrictedRadiusForRelativePercentNoCore(p float64) float64 {
	d := m.disc()
	d.hollow = 0
	return d.radius(nonNegative(p))
}

// RadiusForCount maps count/MaxCount through RadiusForRelativePercent.
func (m *Model) RadiusForCount(count int) (float64, error) {
	max := m.GeometryMaxCount()
	if max == 0 {
		return 0, apperrors.DegenerateGeometry("max count is zero")
	}
	return m.RadiusForRelativePercent(float64(count) / float64(max)), nil
}

// RadiusForPercent maps percent/MaxPercent through RadiusForRelativePercent.
func (m *Model) RadiusForPercent(percent float64) (float64, error) {
	max := m.GeometryMaxPercent()
	if max == 0 {
		return 0, apperrors.DegenerateGeometry("max percent is zero")
	}
	return m.RadiusForRelativePercent(percent / max), nil
}

// RadiusForValue picks the count or percent mapping from the current
// scale mode.
func (m *Model) RadiusForValue(count int, percent float64) (float64, error) {
	if m.Config().IsPercent {
		return m.RadiusForPercent(percent)
	}
	return m.RadiusForCount(count)
}

func squareAround(center r2.Point, r float64) r2.Rect {
	return r2.RectFromCenterSize(center, r2.Point{X: 2 * r, Y: 2 * r})
}

// CircleRectForCount bounds the circle drawn for count.
func (m *Model) CircleRectForCount(count int) (r2.Rect, error) {
	r, err := m.RadiusForCount(count)
	if err != nil {
		return r2.EmptyRect(), err
	}
	return squareAround(m.Center(), r), nil
}

// CircleRectForPercent bounds the circle drawn for percent.
func (m *Model) CircleRectForPercent(percent float64) (r2.Rect, error) {
	r, err := m.RadiusForPercent(percent)
	if err != nil {
		return r2.EmptyRect(), err
	}
	return squareAround(m.Center(), r), nil
}

// CircleRectForGeometryPercent bounds the circle for a relative value in
// [0,1].
func (m *Model) CircleRectForGeometryPercent(p float64) r2.Rect {
	d := m.disc()
	return squareAround(d.center, d.radius(math.Min(nonNegative(p), 1)))
}

// CircleRectForHollowCore bounds the hollow core.
func (m *Model) CircleRectForHollowCore() r2.Rect {
	d := m.disc()
	return squareAround(d.center, d.hollow)
}
