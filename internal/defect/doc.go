// Package defect classifies atoms of a body-centered-cubic lattice into a fixed
// set of defect categories from three per-atom structural signals: coordination
// number, centrosymmetry parameter and common-neighbor-analysis structure type.
//
// Classification is a pure function of one atom's signals. Rules are evaluated
// in a fixed priority order and the first match wins; an atom no rule claims is
// labelled Unidentified. Colours for visualization live in a separate lookup
// table so the decision and its presentation can be tested independently.
package defect
