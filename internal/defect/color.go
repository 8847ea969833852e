package defect

import (
	"fmt"
	"math"
)

// Color is an RGB triple with components in [0, 1], the form the host's
// "Color" particle property expects.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// RGB returns the colour as a three element array.
func (c Color) RGB() [3]float64 {
	return [3]float64{c.R, c.G, c.B}
}

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Swatch is one row of the colour map.
type Swatch struct {
	Label Label
	Name  string
	Color Color
}

var palette = [NumLabels]Swatch{
	Bulk:         {Bulk, "gray", Color{0.8, 0.8, 0.8}},
	Surface:      {Surface, "blue", Color{0.0, 0.0, 1.0}},
	Vacancy:      {Vacancy, "red", Color{1.0, 0.0, 0.0}},
	Dislocation:  {Dislocation, "green", Color{0.0, 1.0, 0.0}},
	Twin:         {Twin, "yellow", Color{1.0, 1.0, 0.0}},
	PlanarFault:  {PlanarFault, "orange", Color{1.0, 0.5, 0.0}},
	Unidentified: {Unidentified, "dark gray", Color{0.5, 0.5, 0.5}},
}

// ColorOf returns the visualization colour for l. Labels outside the defined
// set get the Unidentified colour.
func ColorOf(l Label) Color {
	if !l.Valid() {
		return palette[Unidentified].Color
	}
	return palette[l].Color
}

// Palette returns a copy of the full colour map in label order.
func Palette() []Swatch {
	out := make([]Swatch, NumLabels)
	copy(out, palette[:])
	return out
}
