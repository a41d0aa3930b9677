package geometry

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/jengzang/rose-backend-go/internal/circstat"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// Config is the polar plot configuration. Percent values (MaxPercent) are
// on a 0-100 scale, matching circstat.Histogram.Percents.
type Config struct {
	IsEqualArea    bool    `json:"is_equal_area"`
	IsPercent      bool    `json:"is_percent"`
	MaxCount       int     `json:"max_count"`
	MaxPercent     float64 `json:"max_percent"`
	HollowCoreSize float64 `json:"hollow_core_size"`
	SectorSize     float64 `json:"sector_size"`
	StartingAngle  float64 `json:"starting_angle"`
	SectorCount    int     `json:"sector_count"`
	RelativeSize   float64 `json:"relative_size"`
}

// DefaultConfig returns the settings a new plot starts with.
func DefaultConfig() Config {
	return Config{
		IsEqualArea:    true,
		IsPercent:      false,
		MaxCount:       10,
		MaxPercent:     30,
		HollowCoreSize: 0,
		SectorSize:     10,
		StartingAngle:  0,
		SectorCount:    36,
		RelativeSize:   0.9,
	}
}

// DefaultBounds is the drawing area a new plot starts with.
func DefaultBounds() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 500, Y: 500})
}

// withDerivedCount fills SectorCount from SectorSize when it is zero.
func (c Config) withDerivedCount() Config {
	if c.SectorCount == 0 {
		c.SectorCount = circstat.SectorCount(c.SectorSize)
	}
	return c
}

// Validate checks every invariant and never adjusts a value.
func (c Config) Validate() error {
	if !finite(c.HollowCoreSize) || c.HollowCoreSize < 0 || c.HollowCoreSize >= 1 {
		return apperrors.InvalidConfiguration("hollow core size %v outside [0,1)", c.HollowCoreSize)
	}
	if !finite(c.SectorSize) || c.SectorSize <= 0 || c.SectorSize > 360 {
		return apperrors.InvalidConfiguration("sector size %v outside (0,360]", c.SectorSize)
	}
	if want := circstat.SectorCount(c.SectorSize); c.SectorCount != 0 && c.SectorCount != want {
		return apperrors.InvalidConfiguration("sector count %d incompatible with sector size %v (want %d)", c.SectorCount, c.SectorSize, want)
	}
	if !finite(c.StartingAngle) {
		return apperrors.OutOfRangeAngle(c.StartingAngle)
	}
	if c.MaxCount < 0 {
		return apperrors.InvalidConfiguration("max count %d is negative", c.MaxCount)
	}
	if !finite(c.MaxPercent) || c.MaxPercent < 0 {
		return apperrors.InvalidConfiguration("max percent %v is negative", c.MaxPercent)
	}
	if !finite(c.RelativeSize) || c.RelativeSize <= 0 || c.RelativeSize > 1 {
		return apperrors.InvalidConfiguration("relative size %v outside (0,1]", c.RelativeSize)
	}
	return nil
}

// Params returns the sector layout for the statistics engine.
func (c Config) Params(biDir bool) circstat.Params {
	return circstat.Params{
		StartAngle:    c.StartingAngle,
		SectorSize:    c.SectorSize,
		BiDirectional: biDir,
	}
}

func (c Config) sectorsDiffer(o Config) bool {
	return c.SectorSize != o.SectorSize || c.SectorCount != o.SectorCount || c.StartingAngle != o.StartingAngle
}

func validBounds(r r2.Rect) error {
	size := r.Size()
	if r.IsEmpty() || !finite(size.X) || !finite(size.Y) || size.X <= 0 || size.Y <= 0 {
		return apperrors.InvalidConfiguration("drawing bounds %v have no area", r)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
