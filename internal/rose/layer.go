package rose

import "github.com/jengzang/rose-backend-go/internal/dataset"

// Layer is one dataset as drawn on a document.
type Layer struct {
	doc     *Document
	dataset *dataset.Dataset
	axial   bool
}

// Dataset is the plotted dataset.
func (l *Layer) Dataset() *dataset.Dataset {
	return l.dataset
}

// Axial reports whether the layer treats its observations as axes.
func (l *Layer) Axial() bool {
	l.doc.mu.RLock()
	defer l.doc.mu.RUnlock()
	return l.axial
}

// MaxCount is the largest sector count of the layer's histogram, or 0 when
// the layer cannot be binned.
func (l *Layer) MaxCount() int {
	h, err := l.doc.Histogram(l.dataset.ID())
	if err != nil {
		return 0
	}
	return h.MaxCount()
}

// MaxPercent is the largest sector percentage of the layer's histogram.
func (l *Layer) MaxPercent() float64 {
	h, err := l.doc.Histogram(l.dataset.ID())
	if err != nil {
		return 0
	}
	return h.MaxPercent()
}
