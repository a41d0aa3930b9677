package angle

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

const eps = 1e-9

func TestDegreesRadiansConversion(t *testing.T) {
	assert.InDelta(t, math.Pi, RadiansFromDegrees(180), eps)
	assert.InDelta(t, math.Pi/2, RadiansFromDegrees(90), eps)
	assert.InDelta(t, 270.0, DegreesFromRadians(3*math.Pi/2), eps)
	assert.InDelta(t, 33.3, DegreesFromRadians(RadiansFromDegrees(33.3)), eps)
}

func TestRotateUsesClockwiseFromUp(t *testing.T) {
	up := r2.Point{X: 0, Y: 1}
	tests := []struct {
		degrees float64
		want    r2.Point
	}{
		{0, r2.Point{X: 0, Y: 1}},
		{90, r2.Point{X: 1, Y: 0}},
		{180, r2.Point{X: 0, Y: -1}},
		{270, r2.Point{X: -1, Y: 0}},
		{45, r2.Point{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}},
	}
	for _, tt := range tests {
		got := Rotate(up, tt.degrees)
		assert.InDelta(t, tt.want.X, got.X, eps, "x at %v°", tt.degrees)
		assert.InDelta(t, tt.want.Y, got.Y, eps, "y at %v°", tt.degrees)
	}
}

func TestBearingInvertsRotate(t *testing.T) {
	for deg := 0.0; deg < 360; deg += 7.5 {
		p := Rotate(r2.Point{X: 0, Y: 3}, deg)
		assert.InDelta(t, deg, Bearing(p), 1e-7, "bearing at %v°", deg)
	}
	assert.Equal(t, 0.0, Bearing(r2.Point{}))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{725, 5},
		{-720, 0},
		{359.5, 359.5},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, eps, "normalize %v", tt.in)
	}

	got, err := NormalizeAxial(270)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, got, eps)
}

func TestNormalizeRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Normalize(v)
		assert.True(t, stderrors.Is(err, apperrors.ErrOutOfRangeAngle))
		_, err = NormalizeAxial(v)
		assert.True(t, stderrors.Is(err, apperrors.ErrOutOfRangeAngle))
	}
}

func TestDifference(t *testing.T) {
	assert.InDelta(t, 20.0, Difference(350, 10), eps)
	assert.InDelta(t, -20.0, Difference(10, 350), eps)
	assert.InDelta(t, 180.0, math.Abs(Difference(0, 180)), eps)
}
