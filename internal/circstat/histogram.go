package circstat

import (
	"math"

	"github.com/montanaflynn/stats"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// Histogram holds per-sector tallies. In bidirectional mode each
// observation is tallied twice, once at its angle and once at the
// antipode, so Total is 2N.
type Histogram struct {
	Params
	N        int       `json:"n"`
	Counts   []int     `json:"counts"`
	Percents []float64 `json:"percents"`
}

// Total returns the sum of all sector counts.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// SectorStart returns the start angle of sector i in [0,360).
func (h Histogram) SectorStart(i int) float64 {
	s := math.Mod(h.StartAngle+float64(i)*h.SectorSize, 360)
	if s < 0 {
		s += 360
	}
	return s
}

// MaxCount returns the largest sector count.
func (h Histogram) MaxCount() int {
	max := 0
	for _, c := range h.Counts {
		if c > max {
			max = c
		}
	}
	return max
}

// MaxPercent returns the largest sector percentage.
func (h Histogram) MaxPercent() float64 {
	max := 0.0
	for _, p := range h.Percents {
		if p > max {
			max = p
		}
	}
	return max
}

// ValueCountInRange counts observations in [angle1, angle2) after
// normalization to [0,360). The range may wrap through 0°, either as
// (350, 370) or as (350, 10). With biDir the
// antipodal range [angle1+180, angle2+180) is counted as well.
func (e *Engine) ValueCountInRange(angle1, angle2 float64, biDir bool) int {
	values := normalized(e.src.Values())
	width := angle2 - angle1
	if width < 0 {
		width += 360
	}

	count := 0
	for _, v := range values {
		if inArc(v, angle1, width) {
			count++
		}
		if biDir && inArc(v, angle1+180, width) {
			count++
		}
	}
	return count
}

// SectorHistogram partitions the circle into ceil(360/SectorSize) sectors
// starting at StartAngle and assigns every observation to exactly one.
// Bidirectional mode also assigns each observation's antipode, doubling the
// tally; this matches the legacy rose behavior and is intentional.
func (e *Engine) SectorHistogram(p Params) (Histogram, error) {
	if err := p.Validate(); err != nil {
		return Histogram{}, err
	}
	values := normalized(e.src.Values())
	sectors := p.SectorCount()

	h := Histogram{
		Params:   p,
		N:        len(values),
		Counts:   make([]int, sectors),
		Percents: make([]float64, sectors),
	}
	for _, v := range values {
		h.Counts[sectorIndex(v, p.StartAngle, p.SectorSize, sectors)]++
		if p.BiDirectional {
			h.Counts[sectorIndex(math.Mod(v+180, 360), p.StartAngle, p.SectorSize, sectors)]++
		}
	}

	if total := h.Total(); total > 0 {
		for i, c := range h.Counts {
			h.Percents[i] = float64(c) / float64(total) * 100
		}
	}
	return h, nil
}

func sectorIndex(v, start, size float64, sectors int) int {
	d := math.Mod(v-start, 360)
	if d < 0 {
		d += 360
	}
	i := int(math.Floor(d / size))
	if i >= sectors {
		i = sectors - 1
	}
	return i
}

// SectorSummary describes the distribution of counts across sectors.
type SectorSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Max    float64 `json:"max"`
}

// Summarize returns linear statistics over the sector counts.
func (h Histogram) Summarize() (SectorSummary, error) {
	if h.N == 0 {
		return SectorSummary{}, apperrors.EmptySample("sector summary")
	}
	counts := make(stats.Float64Data, len(h.Counts))
	for i, c := range h.Counts {
		counts[i] = float64(c)
	}

	mean, err := stats.Mean(counts)
	if err != nil {
		return SectorSummary{}, apperrors.Computation("sector mean: %v", err)
	}
	sd, err := stats.StandardDeviationPopulation(counts)
	if err != nil {
		return SectorSummary{}, apperrors.Computation("sector deviation: %v", err)
	}
	max, err := stats.Max(counts)
	if err != nil {
		return SectorSummary{}, apperrors.Computation("sector max: %v", err)
	}
	return SectorSummary{Mean: mean, StdDev: sd, Max: max}, nil
}
