package circstat

import (
	"math"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jengzang/rose-backend-go/internal/angle"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// Kappa regime boundaries for the von Mises concentration approximation.
const (
	kappaLowerBound = 0.53
	kappaUpperBound = 0.85
)

// RayleighZ returns n·rbar², the Rayleigh test statistic for uniformity
// against a unimodal alternative.
func RayleighZ(rbar float64, n int) (float64, error) {
	if n <= 0 {
		return 0, apperrors.EmptySample("Rayleigh's Z")
	}
	return float64(n) * rbar * rbar, nil
}

// Kappa estimates the von Mises concentration parameter from the mean
// resultant length. rbar at or above 1 gives +Inf, at or below 0 gives 0.
func Kappa(rbar float64) float64 {
	switch {
	case rbar <= 0:
		return 0
	case rbar >= 1:
		return math.Inf(1)
	case rbar < kappaLowerBound:
		return kappaLow(rbar)
	case rbar < kappaUpperBound:
		return kappaMid(rbar)
	default:
		return kappaHigh(rbar)
	}
}

func kappaLow(r float64) float64 {
	return 2*r + r*r*r + 5*math.Pow(r, 5)/6
}

func kappaMid(r float64) float64 {
	return -0.4 + 1.39*r + 0.43/(1-r)
}

func kappaHigh(r float64) float64 {
	return 1 / (r*r*r - 4*r*r + 3*r)
}

// AngularStandardError returns the standard error of the mean direction in
// degrees, 1/sqrt(n·rbar·kappa) radians.
func AngularStandardError(n int, rbar, kappa float64) (float64, error) {
	if n <= 0 {
		return 0, apperrors.EmptySample("angular standard error")
	}
	product := float64(n) * rbar * kappa
	if math.IsNaN(product) || math.IsInf(product, 0) || product <= 0 {
		return 0, apperrors.Computation("n·R-bar·kappa = %v", product)
	}
	se := angle.DegreesFromRadians(1 / math.Sqrt(product))
	if math.IsNaN(se) || math.IsInf(se, 0) {
		return 0, apperrors.Computation("standard error = %v", se)
	}
	return se, nil
}

// Interval is a two-sided confidence interval around a mean direction.
type Interval struct {
	Level     float64 `json:"level"`
	HalfWidth float64 `json:"half_width"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
}

// ConfidenceInterval returns mean ± z·se with z taken from the standard
// normal for the given two-sided level, e.g. 0.95.
func ConfidenceInterval(mean, se, level float64) (Interval, error) {
	if !(level > 0 && level < 1) {
		return Interval{}, apperrors.InvalidConfiguration("confidence level %v outside (0,1)", level)
	}
	if math.IsNaN(se) || math.IsInf(se, 0) || se < 0 {
		return Interval{}, apperrors.Computation("standard error = %v", se)
	}
	z := mstats.StdNormal.InvCDF(1 - (1-level)/2)
	half := z * se
	lower, err := angle.Normalize(mean - half)
	if err != nil {
		return Interval{}, err
	}
	upper, err := angle.Normalize(mean + half)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Level: level, HalfWidth: half, Lower: lower, Upper: upper}, nil
}

// ChiSquared is a goodness-of-fit test of sector counts against a uniform
// distribution.
type ChiSquared struct {
	Value            float64 `json:"value"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	Expected         float64 `json:"expected"`
	// PValue is the upper tail probability of Value under the null
	PValue float64 `json:"p_value"`
}

// Statistic returns the test value as a named statistic.
func (c ChiSquared) Statistic() Statistic {
	return Float(NameChiSquared, c.Value)
}

// ChiSquared compares observed sector counts with the uniform expectation
// Total/sectorCount.
func (e *Engine) ChiSquared(p Params) (ChiSquared, error) {
	h, err := e.SectorHistogram(p)
	if err != nil {
		return ChiSquared{}, err
	}
	return ChiSquaredOf(h)
}

// ChiSquaredOf runs the uniformity test over an existing histogram
func ChiSquaredOf(h Histogram) (ChiSquared, error) {
	if h.N == 0 {
		return ChiSquared{}, apperrors.EmptySample("chi-squared")
	}
	sectors := len(h.Counts)
	expected := float64(h.Total()) / float64(sectors)

	value := 0.0
	for _, c := range h.Counts {
		d := float64(c) - expected
		value += d * d / expected
	}
	c := ChiSquared{
		Value:            value,
		DegreesOfFreedom: sectors - 1,
		Expected:         expected,
		PValue:           1,
	}
	if c.DegreesOfFreedom > 0 {
		c.PValue = distuv.ChiSquared{K: float64(c.DegreesOfFreedom)}.Survival(value)
	}
	return c, nil
}

// StandardDeviation is the population standard deviation of values about
// the supplied mean. Fewer than two values give 0.
func StandardDeviation(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	squares := make(stats.Float64Data, len(values))
	for i, v := range values {
		d := v - mean
		squares[i] = d * d
	}
	variance, err := stats.Mean(squares)
	if err != nil {
		return 0
	}
	return math.Sqrt(variance)
}
