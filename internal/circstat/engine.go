// Package circstat computes directional statistics and sector histograms
// over angular observations given in degrees.
//
// The engine is stateless: every call snapshots the source's values and
// recomputes. Sector layout (start angle, sector size, direction mode) is
// always supplied by the caller, usually read from the geometry model.
package circstat

import (
	"math"

	"github.com/jengzang/rose-backend-go/internal/angle"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// Source supplies observations in degrees.
type Source interface {
	Values() []float64
}

// Values adapts a plain slice to Source.
type Values []float64

func (v Values) Values() []float64 { return v }

// Params is the sector layout a histogram or chi-squared test is computed
// against.
type Params struct {
	StartAngle    float64 `json:"start_angle"`
	SectorSize    float64 `json:"sector_size"`
	BiDirectional bool    `json:"bidirectional"`
}

// Validate reports a sector layout the engine cannot bin against.
func (p Params) Validate() error {
	if math.IsNaN(p.SectorSize) || math.IsInf(p.SectorSize, 0) || p.SectorSize <= 0 {
		return apperrors.InvalidConfiguration("sector size %v must be a positive number of degrees", p.SectorSize)
	}
	if math.IsNaN(p.StartAngle) || math.IsInf(p.StartAngle, 0) {
		return apperrors.OutOfRangeAngle(p.StartAngle)
	}
	return nil
}

// SectorCount is ceil(360/SectorSize).
func (p Params) SectorCount() int {
	return SectorCount(p.SectorSize)
}

// SectorCount returns the number of sectors needed to cover the circle.
// When size does not divide 360 the last sector is narrower.
func SectorCount(size float64) int {
	if size <= 0 {
		return 0
	}
	n := 360 / size
	// 360/size can land a hair above an integer for sizes like 0.1
	if r := math.Round(n); math.Abs(n-r) < 1e-9 {
		return int(r)
	}
	return int(math.Ceil(n))
}

// Engine computes statistics over a Source.
type Engine struct {
	src Source
}

// New creates an engine reading from src.
func New(src Source) *Engine {
	return &Engine{src: src}
}

// N returns the current number of observations.
func (e *Engine) N() int {
	return len(e.src.Values())
}

// normalized returns the observations reduced to [0,360).
func normalized(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		n, err := angle.Normalize(v)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// inArc reports whether v (in [0,360)) lies in the half-open arc that
// starts at lo and spans width degrees clockwise.
func inArc(v, lo, width float64) bool {
	if width <= 0 {
		return false
	}
	if width >= 360 {
		return true
	}
	start, err := angle.Normalize(lo)
	if err != nil {
		return false
	}
	d := v - start
	if d < 0 {
		d += 360
	}
	return d < width
}
