package defect

import "fmt"

// StructureType is the per-atom code produced by the host's adaptive common
// neighbor analysis. Codes outside the enumeration are treated as unknown.
type StructureType int

const (
	StructureOther StructureType = 0
	StructureFCC   StructureType = 1
	StructureHCP   StructureType = 2
	StructureBCC   StructureType = 3
	StructureICO   StructureType = 4
)

func (s StructureType) String() string {
	switch s {
	case StructureOther:
		return "other"
	case StructureFCC:
		return "fcc"
	case StructureHCP:
		return "hcp"
	case StructureBCC:
		return "bcc"
	case StructureICO:
		return "ico"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// AtomSignal holds the structural signals of one atom for one frame.
type AtomSignal struct {
	Coordination   int           `json:"coordination"`
	Centrosymmetry float64       `json:"centrosymmetry"`
	Structure      StructureType `json:"structure_type"`
}
