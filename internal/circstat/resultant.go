package circstat

import (
	"math"

	"github.com/jengzang/rose-backend-go/internal/angle"
	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// Resultant is the vector sum of unit vectors at each observation.
// SumX is the sum of cosines (north component) and SumY the sum of sines
// (east component), so Direction is a clockwise bearing from north.
type Resultant struct {
	N             int     `json:"n"`
	SumX          float64 `json:"sum_x"`
	SumY          float64 `json:"sum_y"`
	R             float64 `json:"r"`
	RBar          float64 `json:"r_bar"`
	Direction     float64 `json:"mean_direction"`
	BiDirectional bool    `json:"bidirectional"`
}

// CircularVariance is 1 - RBar.
func (r Resultant) CircularVariance() float64 {
	return 1 - r.RBar
}

// MeanDirectionAndLength sums unit vectors at every observation. For axial
// data each angle is reduced mod 180 and doubled before summing, and the
// resulting mean direction is halved into [0,180).
func (e *Engine) MeanDirectionAndLength(biDir bool) (Resultant, error) {
	values := e.src.Values()
	if len(values) == 0 {
		return Resultant{}, apperrors.EmptySample("mean direction")
	}

	res := Resultant{BiDirectional: biDir}
	for _, v := range values {
		a, err := angle.Normalize(v)
		if err != nil {
			return Resultant{}, err
		}
		if biDir {
			a = math.Mod(a, 180) * 2
		}
		sin, cos := math.Sincos(angle.RadiansFromDegrees(a))
		res.SumX += cos
		res.SumY += sin
		res.N++
	}

	res.R = math.Hypot(res.SumX, res.SumY)
	res.RBar = res.R / float64(res.N)

	dir, err := angle.Normalize(angle.DegreesFromRadians(math.Atan2(res.SumY, res.SumX)))
	if err != nil {
		return Resultant{}, err
	}
	if biDir {
		dir /= 2
	}
	res.Direction = dir
	return res, nil
}
