package defect

import (
	"fmt"
	"slices"
)

// Rule names reported in Result.Rule.
const (
	RuleBulk        = "bulk"
	RuleSurface     = "surface"
	RuleVacancy     = "vacancy"
	RuleDislocation = "dislocation"
	RuleTwin        = "twin"
	RulePlanarFault = "planar_fault"
	RuleFallback    = "fallback"
)

// Result is the classification of one atom for the current frame.
type Result struct {
	Label Label
	Color Color
	Rule  string
}

type rule struct {
	name  string
	label Label
	match func(c *Classifier, s AtomSignal, band Band) bool
}

// rules is evaluated top to bottom and the first match wins. Signal ranges
// overlap (a deficit of two satisfies both surface and vacancy), so the order
// decides the outcome and must not change.
var rules = [...]rule{
	{RuleBulk, Bulk, (*Classifier).isBulk},
	{RuleSurface, Surface, (*Classifier).isSurface},
	{RuleVacancy, Vacancy, (*Classifier).isVacancy},
	{RuleDislocation, Dislocation, (*Classifier).isDislocation},
	{RuleTwin, Twin, (*Classifier).isTwin},
	{RulePlanarFault, PlanarFault, (*Classifier).isPlanarFault},
}

// Classifier evaluates the defect decision table. It holds only immutable
// calibration and is safe for concurrent use.
type Classifier struct {
	t Thresholds
}

// New validates t and returns a Classifier using it.
func New(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("defect: %w", err)
	}
	t.TwinStructures = slices.Clone(t.TwinStructures)
	t.PlanarFaultStructures = slices.Clone(t.PlanarFaultStructures)
	return &Classifier{t: t}, nil
}

// Default returns a Classifier calibrated with DefaultThresholds.
func Default() *Classifier {
	c, err := New(DefaultThresholds())
	if err != nil {
		panic(err)
	}
	return c
}

// Thresholds returns a copy of the calibration in use.
func (c *Classifier) Thresholds() Thresholds {
	t := c.t
	t.TwinStructures = slices.Clone(t.TwinStructures)
	t.PlanarFaultStructures = slices.Clone(t.PlanarFaultStructures)
	return t
}

// Classify labels one atom and resolves its colour. It never fails: signals
// outside their domain (negative coordination, negative or NaN
// centrosymmetry, unknown structure codes) end up Unidentified.
func (c *Classifier) Classify(s AtomSignal) Result {
	label, name := c.decide(s)
	return Result{Label: label, Color: ColorOf(label), Rule: name}
}

// Label is Classify without the colour lookup.
func (c *Classifier) Label(s AtomSignal) Label {
	label, _ := c.decide(s)
	return label
}

func (c *Classifier) decide(s AtomSignal) (Label, string) {
	band := c.t.Band(s.Centrosymmetry)
	if s.Coordination < 0 || band == BandInvalid {
		return Unidentified, RuleFallback
	}
	for i := range rules {
		if rules[i].match(c, s, band) {
			return rules[i].label, rules[i].name
		}
	}
	return Unidentified, RuleFallback
}

func (c *Classifier) deficit(s AtomSignal) int {
	return c.t.BulkCoordination - s.Coordination
}

func (c *Classifier) isBulk(s AtomSignal, band Band) bool {
	return s.Coordination == c.t.BulkCoordination && band == BandLow && s.Structure == c.t.BCCStructure
}

func (c *Classifier) isSurface(s AtomSignal, _ Band) bool {
	return c.deficit(s) >= c.t.SurfaceMinDeficit
}

func (c *Classifier) isVacancy(s AtomSignal, band Band) bool {
	d := c.deficit(s)
	return d >= c.t.VacancyMinDeficit && d <= c.t.VacancyMaxDeficit && band == BandModerate
}

func (c *Classifier) isDislocation(s AtomSignal, band Band) bool {
	return band == BandHigh && s.Structure != c.t.BCCStructure
}

func (c *Classifier) isTwin(s AtomSignal, band Band) bool {
	return band == BandModerate && slices.Contains(c.t.TwinStructures, s.Structure)
}

func (c *Classifier) isPlanarFault(s AtomSignal, _ Band) bool {
	return slices.Contains(c.t.PlanarFaultStructures, s.Structure)
}
