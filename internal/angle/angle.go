// Package angle holds the trigonometric helpers shared by the statistics
// engine and the geometry model.
//
// Angles follow the geologic convention: 0° points up (north, +Y in a y-up
// drawing space) and angles increase clockwise.
package angle

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// RadiansFromDegrees converts degrees to radians
func RadiansFromDegrees(degrees float64) float64 {
	return (s1.Angle(degrees) * s1.Degree).Radians()
}

// DegreesFromRadians converts radians to degrees
func DegreesFromRadians(radians float64) float64 {
	return s1.Angle(radians).Degrees()
}

// Rotate rotates p about the origin by degrees, clockwise.
// Rotating the up vector (0, r) by θ yields (r·sinθ, r·cosθ).
func Rotate(p r2.Point, degrees float64) r2.Point {
	rad := RadiansFromDegrees(degrees)
	sin, cos := math.Sincos(rad)
	return r2.Point{
		X: p.X*cos + p.Y*sin,
		Y: -p.X*sin + p.Y*cos,
	}
}

// Bearing returns the clockwise angle from up to p in [0,360).
// It is the inverse of Rotate applied to the up vector.
// The origin has bearing 0.
func Bearing(p r2.Point) float64 {
	if p.X == 0 && p.Y == 0 {
		return 0
	}
	return wrap(DegreesFromRadians(math.Atan2(p.X, p.Y)), 360)
}

// Normalize reduces degrees into [0,360).
func Normalize(degrees float64) (float64, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0, apperrors.OutOfRangeAngle(degrees)
	}
	return wrap(degrees, 360), nil
}

// NormalizeAxial reduces degrees into [0,180), treating opposite
// directions as the same axis.
func NormalizeAxial(degrees float64) (float64, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0, apperrors.OutOfRangeAngle(degrees)
	}
	return wrap(degrees, 180), nil
}

// Difference returns the signed smallest difference b-a in [-180,180].
func Difference(a, b float64) float64 {
	diff := math.Mod(b-a, 360)
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return diff
}

func wrap(v, period float64) float64 {
	v = math.Mod(v, period)
	if v < 0 {
		v += period
	}
	// -tiny + period rounds to period
	if v >= period {
		v = 0
	}
	return v
}
