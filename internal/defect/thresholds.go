package defect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Band is a centrosymmetry range. Band edges are inclusive below and exclusive
// above, so every non-negative value falls in exactly one band.
type Band int

const (
	BandInvalid Band = iota
	BandLow
	BandModerate
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandModerate:
		return "moderate"
	case BandHigh:
		return "high"
	default:
		return "invalid"
	}
}

// Thresholds are the material calibration constants of the decision table.
// Deficits are measured as BulkCoordination minus the atom's coordination.
type Thresholds struct {
	BulkCoordination      int             `yaml:"bulk_coordination"`
	LowCSPMax             float64         `yaml:"low_csp_max"`
	HighCSPMin            float64         `yaml:"high_csp_min"`
	VacancyMinDeficit     int             `yaml:"vacancy_min_deficit"`
	VacancyMaxDeficit     int             `yaml:"vacancy_max_deficit"`
	SurfaceMinDeficit     int             `yaml:"surface_min_deficit"`
	BCCStructure          StructureType   `yaml:"bcc_structure"`
	TwinStructures        []StructureType `yaml:"twin_structures"`
	PlanarFaultStructures []StructureType `yaml:"planar_fault_structures"`
}

// DefaultThresholds returns the calibration for BCC tungsten.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BulkCoordination:      8,
		LowCSPMax:             0.5,
		HighCSPMin:            4.0,
		VacancyMinDeficit:     1,
		VacancyMaxDeficit:     2,
		SurfaceMinDeficit:     2,
		BCCStructure:          StructureBCC,
		TwinStructures:        []StructureType{StructureHCP},
		PlanarFaultStructures: []StructureType{StructureFCC},
	}
}

// Band places a centrosymmetry value in its band. Negative and NaN values are
// BandInvalid.
func (t Thresholds) Band(csp float64) Band {
	switch {
	case math.IsNaN(csp) || csp < 0:
		return BandInvalid
	case csp < t.LowCSPMax:
		return BandLow
	case csp < t.HighCSPMin:
		return BandModerate
	default:
		return BandHigh
	}
}

// Validate checks that the thresholds describe a consistent decision table.
func (t Thresholds) Validate() error {
	var errs []error

	if t.BulkCoordination <= 0 {
		errs = append(errs, fmt.Errorf("bulk_coordination %d must be positive", t.BulkCoordination))
	}

	if math.IsNaN(t.LowCSPMax) || math.IsNaN(t.HighCSPMin) || t.LowCSPMax <= 0 || t.HighCSPMin <= t.LowCSPMax || math.IsInf(t.HighCSPMin, 0) {
		errs = append(errs, fmt.Errorf("centrosymmetry bands must satisfy 0 < low_csp_max (%g) < high_csp_min (%g)", t.LowCSPMax, t.HighCSPMin))
	}

	if t.VacancyMinDeficit < 1 || t.VacancyMaxDeficit < t.VacancyMinDeficit {
		errs = append(errs, fmt.Errorf("vacancy deficits must satisfy 1 <= min (%d) <= max (%d)", t.VacancyMinDeficit, t.VacancyMaxDeficit))
	}

	if t.SurfaceMinDeficit <= t.VacancyMinDeficit {
		errs = append(errs, fmt.Errorf("surface_min_deficit %d must exceed vacancy_min_deficit %d", t.SurfaceMinDeficit, t.VacancyMinDeficit))
	}

	if len(t.TwinStructures) == 0 {
		errs = append(errs, errors.New("twin_structures must not be empty"))
	}
	if len(t.PlanarFaultStructures) == 0 {
		errs = append(errs, errors.New("planar_fault_structures must not be empty"))
	}
	if slices.Contains(t.TwinStructures, t.BCCStructure) {
		errs = append(errs, fmt.Errorf("twin_structures must not contain the bcc structure %d", int(t.BCCStructure)))
	}
	if slices.Contains(t.PlanarFaultStructures, t.BCCStructure) {
		errs = append(errs, fmt.Errorf("planar_fault_structures must not contain the bcc structure %d", int(t.BCCStructure)))
	}
	for _, s := range t.TwinStructures {
		if slices.Contains(t.PlanarFaultStructures, s) {
			errs = append(errs, fmt.Errorf("structure %d is both a twin and a planar fault pattern", int(s)))
		}
	}

	return errors.Join(errs...)
}

// ParseThresholds decodes a YAML calibration on top of DefaultThresholds, so a
// file only needs to name the constants it changes. Unknown keys are rejected.
func ParseThresholds(data []byte) (Thresholds, error) {
	t := DefaultThresholds()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Thresholds{}, fmt.Errorf("parse calibration: %w", err)
	}

	if err := t.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("invalid calibration: %w", err)
	}
	return t, nil
}

// LoadThresholds reads a YAML calibration file. An empty path yields the
// defaults.
func LoadThresholds(path string) (Thresholds, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return Thresholds{}, fmt.Errorf("read calibration %s: %w", path, err)
	}
	t, err := ParseThresholds(data)
	if err != nil {
		return Thresholds{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
