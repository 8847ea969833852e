package defect

import (
	"fmt"
	"strings"
)

// Label is the defect category assigned to a single atom. The numeric values
// are the codes written to the host's "Defect Type" particle property.
type Label int

const (
	Bulk Label = iota
	Surface
	Vacancy
	Dislocation
	Twin
	PlanarFault
	Unidentified
)

// NumLabels is the size of the label set.
const NumLabels = int(Unidentified) + 1

var labelNames = [NumLabels]string{
	Bulk:         "bulk",
	Surface:      "surface",
	Vacancy:      "vacancy",
	Dislocation:  "dislocation",
	Twin:         "twin",
	PlanarFault:  "planar_fault",
	Unidentified: "unidentified",
}

// Labels returns every label in code order.
func Labels() []Label {
	out := make([]Label, NumLabels)
	for i := range out {
		out[i] = Label(i)
	}
	return out
}

// Valid reports whether l is one of the defined labels.
func (l Label) Valid() bool {
	return l >= Bulk && l <= Unidentified
}

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return labelNames[l]
}

// ParseLabel maps a label name back to its Label. Matching ignores case.
func ParseLabel(s string) (Label, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range labelNames {
		if n == name {
			return Label(i), nil
		}
	}
	return Unidentified, fmt.Errorf("unknown defect label %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid defect label %d", int(l))
	}
	return []byte(labelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(b []byte) error {
	v, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
