package circstat

import (
	"math"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// CurrentStatistics assembles the ordered statistics report. The
// unidirectional block is always present; axial adds the bidirectional
// block. Histogram-based entries use p's start angle and sector size.
func (e *Engine) CurrentStatistics(p Params, axial bool) ([]Statistic, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := e.N()
	if n == 0 {
		return nil, apperrors.EmptySample("statistics")
	}

	out := []Statistic{Int(NameN, n)}

	uni, err := e.block(p, false)
	if err != nil {
		return nil, err
	}
	out = append(out, uni...)

	if axial {
		bi, err := e.block(p, true)
		if err != nil {
			return nil, err
		}
		out = append(out, bi...)
	}
	return out, nil
}

func (e *Engine) block(p Params, biDir bool) ([]Statistic, error) {
	header, section := NameUnidirectional, SectionUnidirectional
	if biDir {
		header, section = NameBidirectional, SectionBidirectional
	}

	res, err := e.MeanDirectionAndLength(biDir)
	if err != nil {
		return nil, err
	}
	n := float64(res.N)

	z, err := RayleighZ(res.RBar, res.N)
	if err != nil {
		return nil, err
	}
	kappa := Kappa(res.RBar)

	list := []Statistic{
		Empty(header),
		Float(NameXVector, res.SumX),
		Float(NameXVectorStandard, res.SumX/n),
		Float(NameYVector, res.SumY),
		Float(NameYVectorStandard, res.SumY/n),
		Float(NameResultantLength, res.R),
		Float(NameMeanResultantLength, res.RBar),
		Float(NameMeanDirection, res.Direction),
		Float(NameCircularVariance, res.CircularVariance()),
		Float(NameRayleighZ, z),
	}

	if math.IsInf(kappa, 0) {
		list = append(list, Empty(NameKappa))
	} else {
		list = append(list, Float(NameKappa, kappa))
	}

	se, seErr := AngularStandardError(res.N, res.RBar, kappa)
	if seErr != nil {
		list = append(list, Empty(NameAngularStandardError), Empty(NameConfidence95), Empty(NameConfidence99))
	} else {
		list = append(list, Float(NameAngularStandardError, se))
		for _, c := range []struct {
			name  string
			level float64
		}{{NameConfidence95, 0.95}, {NameConfidence99, 0.99}} {
			ci, err := ConfidenceInterval(res.Direction, se, c.level)
			if err != nil {
				list = append(list, Empty(c.name))
				continue
			}
			list = append(list, Float(c.name, ci.HalfWidth))
		}
	}

	bp := p
	bp.BiDirectional = biDir
	chi, err := e.ChiSquared(bp)
	if err != nil {
		return nil, err
	}
	list = append(list, chi.Statistic(), Int(NameChiSquaredFreedom, chi.DegreesOfFreedom))

	for i := range list {
		list[i] = list[i].in(section)
	}
	return list, nil
}
