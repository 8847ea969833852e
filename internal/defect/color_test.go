package defect

import (
	"math"
	"testing"
)

func TestColorOf_Total(t *testing.T) {
	t.Parallel()

	seen := make(map[Color]Label)
	for _, l := range Labels() {
		c := ColorOf(l)
		if prev, dup := seen[c]; dup {
			t.Errorf("%v and %v share colour %+v", prev, l, c)
		}
		seen[c] = l
		for _, v := range c.RGB() {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Errorf("%v colour %+v has component outside [0,1]", l, c)
			}
		}
	}

	if got := ColorOf(Label(99)); got != ColorOf(Unidentified) {
		t.Errorf("ColorOf(99) = %+v, want unidentified colour", got)
	}
}

func TestColor_Hex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		l    Label
		want string
	}{
		{Bulk, "#cccccc"},
		{Surface, "#0000ff"},
		{Vacancy, "#ff0000"},
		{Dislocation, "#00ff00"},
		{Twin, "#ffff00"},
		{PlanarFault, "#ff8000"},
		{Unidentified, "#808080"},
	}
	for _, tt := range tests {
		if got := ColorOf(tt.l).Hex(); got != tt.want {
			t.Errorf("ColorOf(%v).Hex() = %q, want %q", tt.l, got, tt.want)
		}
	}

	if got := (Color{R: -1, G: 2, B: math.NaN()}).Hex(); got != "#00ff00" {
		t.Errorf("clamped Hex() = %q, want #00ff00", got)
	}
}

func TestPalette_IsCopy(t *testing.T) {
	t.Parallel()

	p := Palette()
	if len(p) != NumLabels {
		t.Fatalf("len(Palette()) = %d, want %d", len(p), NumLabels)
	}
	for i, sw := range p {
		if sw.Label != Label(i) {
			t.Errorf("Palette()[%d].Label = %v", i, sw.Label)
		}
		if sw.Name == "" {
			t.Errorf("Palette()[%d] has no name", i)
		}
	}

	p[Bulk].Color = Color{}
	if ColorOf(Bulk) != (Color{0.8, 0.8, 0.8}) {
		t.Error("mutating Palette() result changed the colour map")
	}
}
