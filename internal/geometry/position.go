package geometry

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/jengzang/rose-backend-go/internal/angle"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

const spokeTolerance = 1e-9

// AngleIsValidForSpoke reports whether angle falls on a sector boundary of
// the current layout.
func (m *Model) AngleIsValidForSpoke(a float64) bool {
	cfg := m.Config()
	d, err := angle.Normalize(a - cfg.StartingAngle)
	if err != nil {
		return false
	}
	rem := math.Mod(d, cfg.SectorSize)
	return rem < spokeTolerance || cfg.SectorSize-rem < spokeTolerance
}

// Position is a drawing-space point expressed in plot terms.
type Position struct {
	// Radius is the distance from the plot center in drawing units.
	Radius float64 `json:"radius"`
	// Fraction is the relative value the radius maps back to: 0 at or
	// inside the core, 1 on the outer circle.
	Fraction float64 `json:"fraction"`
	// Angle is the bearing from the center, clockwise from up, in [0,360).
	Angle float64 `json:"angle"`
}

// PointForRelativePercent is the drawing-space point at relative value p
// along the spoke at angle degrees.
func (m *Model) PointForRelativePercent(p, degrees float64) r2.Point {
	d := m.disc()
	r := d.radius(math.Min(nonNegative(p), 1))
	return d.center.Add(angle.Rotate(r2.Point{X: 0, Y: r}, degrees))
}

// RelativePosition maps a drawing-space point back to plot terms. It is
// the inverse of PointForRelativePercent.
func (m *Model) RelativePosition(p r2.Point) (Position, error) {
	if !finite(p.X) || !finite(p.Y) {
		return Position{}, apperrors.OutOfRangeAngle(math.NaN())
	}
	d := m.disc()
	offset := p.Sub(d.center)
	r := offset.Norm()

	f, err := d.fraction(r)
	if err != nil {
		return Position{}, err
	}
	return Position{
		Radius:   r,
		Fraction: f,
		Angle:    angle.Bearing(offset),
	}, nil
}
