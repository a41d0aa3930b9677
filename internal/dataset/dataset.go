package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
	"github.com/jengzang/rose-backend-go/internal/notify"
)

// Provenance records where a dataset's values were read from. It is only
// persisted, never used by the statistics.
type Provenance struct {
	Table     string `json:"table,omitempty"`
	Column    string `json:"column,omitempty"`
	Predicate string `json:"predicate,omitempty"`
}

// Dataset is an ordered collection of angular observations in degrees.
// Values are stored as given; normalization happens when they are consumed.
type Dataset struct {
	mu         sync.RWMutex
	id         string
	name       string
	comment    string
	provenance Provenance
	values     []float64
	revision   uint64
	bus        *notify.Bus
}

// New creates a dataset with a fresh ID.
func New(name string, values []float64) (*Dataset, error) {
	return Restore(uuid.NewString(), name, values)
}

// Restore creates a dataset with a known ID, e.g. when loading from storage.
func Restore(id, name string, values []float64) (*Dataset, error) {
	if err := checkFinite(values); err != nil {
		return nil, err
	}
	return &Dataset{
		id:     id,
		name:   name,
		values: append([]float64(nil), values...),
	}, nil
}

// Attach makes the dataset publish StatisticsChanged on bus after every
// mutation. A nil bus detaches it.
func (d *Dataset) Attach(bus *notify.Bus) {
	d.mu.Lock()
	d.bus = bus
	d.mu.Unlock()
}

func (d *Dataset) ID() string { return d.id }

func (d *Dataset) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

func (d *Dataset) SetName(name string) {
	d.mu.Lock()
	d.name = name
	d.mu.Unlock()
}

func (d *Dataset) Comment() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.comment
}

func (d *Dataset) SetComment(comment string) {
	d.mu.Lock()
	d.comment = comment
	d.mu.Unlock()
}

func (d *Dataset) Provenance() Provenance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.provenance
}

func (d *Dataset) SetProvenance(p Provenance) {
	d.mu.Lock()
	d.provenance = p
	d.mu.Unlock()
}

// Values returns a copy of the observations in insertion order.
func (d *Dataset) Values() []float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]float64(nil), d.values...)
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.values)
}

// Revision increases on every mutation of the observations.
func (d *Dataset) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Append adds observations to the end. Non-finite values reject the whole
// batch.
func (d *Dataset) Append(values ...float64) error {
	if err := checkFinite(values); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	d.mu.Lock()
	d.values = append(d.values, values...)
	d.mutated()
	return nil
}

// Truncate keeps the first n observations.
func (d *Dataset) Truncate(n int) error {
	d.mu.Lock()
	if n < 0 || n > len(d.values) {
		size := len(d.values)
		d.mu.Unlock()
		return apperrors.InvalidConfiguration("truncate to %d outside [0,%d]", n, size)
	}
	if n == len(d.values) {
		d.mu.Unlock()
		return nil
	}
	d.values = d.values[:n:n]
	d.mutated()
	return nil
}

// AppendFromReader parses numbers separated by whitespace, commas or
// semicolons and appends them. Nothing is appended if any token fails to
// parse.
func (d *Dataset) AppendFromReader(r io.Reader) (int, error) {
	values, err := ParseValues(r)
	if err != nil {
		return 0, err
	}
	if err := d.Append(values...); err != nil {
		return 0, err
	}
	return len(values), nil
}

// mutated must be called with d.mu held for writing; it releases the lock
// before notifying.
func (d *Dataset) mutated() {
	d.revision++
	bus := d.bus
	d.mu.Unlock()
	bus.Publish(notify.Event{Kind: notify.StatisticsChanged, Source: d.id})
}

// MaxLineBytes bounds a single line of input to ParseValues.
const MaxLineBytes = 16 << 20

// ParseValues reads a list of numbers from r.
func ParseValues(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	scanner.Split(bufio.ScanLines)

	var values []float64
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.FieldsFunc(scanner.Text(), func(c rune) bool {
			return unicode.IsSpace(c) || c == ',' || c == ';'
		})
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, apperrors.InvalidConfiguration("line %d: invalid value %q", line, f)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, apperrors.InvalidConfiguration("line %d: longer than %d bytes", line+1, MaxLineBytes)
		}
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	if err := checkFinite(values); err != nil {
		return nil, err
	}
	return values, nil
}

// CheckValues rejects non-finite observations.
func CheckValues(values []float64) error {
	return checkFinite(values)
}

func checkFinite(values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.OutOfRangeAngle(v)
		}
	}
	return nil
}
