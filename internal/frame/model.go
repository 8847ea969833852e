package frame

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linnemanlabs/defectscope/internal/defect"
)

// Particle property names exchanged with the host pipeline.
const (
	PropCoordination   = "Coordination"
	PropCentrosymmetry = "Centrosymmetry"
	PropStructureType  = "Structure Type"
	PropDefectType     = "Defect Type"
	PropColor          = "Color"
)

var (
	// ErrMissingProperty means the host did not supply one of the input properties.
	ErrMissingProperty = errors.New("missing particle property")

	// ErrLengthMismatch means the input properties disagree on the atom count.
	ErrLengthMismatch = errors.New("particle property lengths differ")

	// ErrTooManyAtoms means the frame exceeds the configured atom limit.
	ErrTooManyAtoms = errors.New("frame exceeds atom limit")
)

// Frame is one simulation frame as columns of per-atom properties. Index i of
// every column describes the same atom. A nil column is a missing property; an
// empty one is a frame with no atoms.
type Frame struct {
	Index          int
	Coordination   []int
	Centrosymmetry []float64
	StructureType  []int
}

// Atoms returns the number of atoms in the frame, taken from the coordination column.
func (f *Frame) Atoms() int {
	return len(f.Coordination)
}

// Signal returns the structural signals of atom i.
func (f *Frame) Signal(i int) defect.AtomSignal {
	return defect.AtomSignal{
		Coordination:   f.Coordination[i],
		Centrosymmetry: f.Centrosymmetry[i],
		Structure:      defect.StructureType(f.StructureType[i]),
	}
}

// Check reports host precondition violations: a missing property or columns of
// different lengths.
func (f *Frame) Check() error {
	switch {
	case f.Coordination == nil:
		return fmt.Errorf("%w: %q", ErrMissingProperty, PropCoordination)
	case f.Centrosymmetry == nil:
		return fmt.Errorf("%w: %q", ErrMissingProperty, PropCentrosymmetry)
	case f.StructureType == nil:
		return fmt.Errorf("%w: %q", ErrMissingProperty, PropStructureType)
	}
	n := len(f.Coordination)
	if len(f.Centrosymmetry) != n || len(f.StructureType) != n {
		return fmt.Errorf("%w: %s=%d %s=%d %s=%d", ErrLengthMismatch,
			PropCoordination, n,
			PropCentrosymmetry, len(f.Centrosymmetry),
			PropStructureType, len(f.StructureType))
	}
	return nil
}

// Counts is a per-label atom histogram indexed by defect.Label.
type Counts [defect.NumLabels]int

// Total returns the number of atoms counted.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// DefectFraction is the share of atoms not labelled Bulk, 0 for an empty frame.
func (c Counts) DefectFraction() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(total-c[defect.Bulk]) / float64(total)
}

// MarshalJSON encodes the histogram as an object keyed by label name.
func (c Counts) MarshalJSON() ([]byte, error) {
	m := make(map[defect.Label]int, defect.NumLabels)
	for i, v := range c {
		m[defect.Label(i)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by label name.
func (c *Counts) UnmarshalJSON(b []byte) error {
	var m map[defect.Label]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*c = Counts{}
	for l, v := range m {
		c[l] = v
	}
	return nil
}

// Summary is what survives a classified frame: the histogram and timing. The
// per-atom labels are returned to the host and never stored.
type Summary struct {
	ID        string    `json:"id"`
	Frame     int       `json:"frame"`
	Atoms     int       `json:"atoms"`
	Counts    Counts    `json:"counts"`
	Duration  float64   `json:"duration_seconds"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is a classified frame. Labels[i] and Colors[i] belong to input atom i.
type Result struct {
	Summary
	Labels []defect.Label
	Colors []defect.Color
}

// DefectTypes returns the label codes in the form of the host's Defect Type property.
func (r *Result) DefectTypes() []int {
	out := make([]int, len(r.Labels))
	for i, l := range r.Labels {
		out[i] = int(l)
	}
	return out
}

// ColorProperty returns the colours in the form of the host's Color property.
func (r *Result) ColorProperty() [][3]float64 {
	out := make([][3]float64, len(r.Colors))
	for i, c := range r.Colors {
		out[i] = c.RGB()
	}
	return out
}
