package defect

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDefaultThresholds_Valid(t *testing.T) {
	t.Parallel()

	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("DefaultThresholds().Validate() = %v", err)
	}
}

func TestThresholds_Band(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()

	tests := []struct {
		csp  float64
		want Band
	}{
		{0, BandLow},
		{0.25, BandLow},
		{0.5, BandModerate},
		{3.999, BandModerate},
		{4.0, BandHigh},
		{1e9, BandHigh},
		{math.Inf(1), BandHigh},
		{-1e-12, BandInvalid},
		{math.Inf(-1), BandInvalid},
		{math.NaN(), BandInvalid},
	}

	for _, tt := range tests {
		if got := th.Band(tt.csp); got != tt.want {
			t.Errorf("Band(%g) = %v, want %v", tt.csp, got, tt.want)
		}
	}
}

func TestThresholds_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Thresholds)
		errSubstr string
	}{
		{"zero bulk coordination", func(th *Thresholds) { th.BulkCoordination = 0 }, "bulk_coordination"},
		{"zero low edge", func(th *Thresholds) { th.LowCSPMax = 0 }, "centrosymmetry bands"},
		{"inverted bands", func(th *Thresholds) { th.HighCSPMin = 0.1 }, "centrosymmetry bands"},
		{"nan band edge", func(th *Thresholds) { th.LowCSPMax = math.NaN() }, "centrosymmetry bands"},
		{"infinite high edge", func(th *Thresholds) { th.HighCSPMin = math.Inf(1) }, "centrosymmetry bands"},
		{"zero vacancy deficit", func(th *Thresholds) { th.VacancyMinDeficit = 0 }, "vacancy deficits"},
		{"inverted vacancy deficits", func(th *Thresholds) { th.VacancyMaxDeficit = 0 }, "vacancy deficits"},
		{"surface not above vacancy", func(th *Thresholds) { th.SurfaceMinDeficit = 1 }, "surface_min_deficit"},
		{"no twin codes", func(th *Thresholds) { th.TwinStructures = nil }, "twin_structures must not be empty"},
		{"no planar codes", func(th *Thresholds) { th.PlanarFaultStructures = nil }, "planar_fault_structures must not be empty"},
		{"bcc as twin", func(th *Thresholds) { th.TwinStructures = []StructureType{StructureBCC} }, "twin_structures must not contain"},
		{"bcc as planar fault", func(th *Thresholds) { th.PlanarFaultStructures = []StructureType{StructureBCC} }, "planar_fault_structures must not contain"},
		{"shared pattern", func(th *Thresholds) {
			th.PlanarFaultStructures = []StructureType{StructureFCC, StructureHCP}
		}, "both a twin and a planar fault"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			th := DefaultThresholds()
			tt.mutate(&th)
			err := th.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q missing substring %q", err, tt.errSubstr)
			}
		})
	}
}

func TestParseThresholds(t *testing.T) {
	t.Parallel()

	t.Run("empty document keeps defaults", func(t *testing.T) {
		t.Parallel()
		got, err := ParseThresholds(nil)
		if err != nil {
			t.Fatalf("ParseThresholds(nil): %v", err)
		}
		want := DefaultThresholds()
		if got.BulkCoordination != want.BulkCoordination || got.LowCSPMax != want.LowCSPMax || got.HighCSPMin != want.HighCSPMin {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("partial override", func(t *testing.T) {
		t.Parallel()
		doc := "# molybdenum\nlow_csp_max: 0.7\ntwin_structures: [2, 4]\n"
		got, err := ParseThresholds([]byte(doc))
		if err != nil {
			t.Fatalf("ParseThresholds: %v", err)
		}
		if got.LowCSPMax != 0.7 {
			t.Errorf("LowCSPMax = %g, want 0.7", got.LowCSPMax)
		}
		if !slices.Equal(got.TwinStructures, []StructureType{StructureHCP, StructureICO}) {
			t.Errorf("TwinStructures = %v, want [hcp ico]", got.TwinStructures)
		}
		if got.HighCSPMin != 4.0 {
			t.Errorf("HighCSPMin = %g, want default 4.0", got.HighCSPMin)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseThresholds([]byte("low_csp_maxx: 0.7\n")); err == nil {
			t.Fatal("expected error for unknown key")
		}
	})

	t.Run("inconsistent values", func(t *testing.T) {
		t.Parallel()
		_, err := ParseThresholds([]byte("low_csp_max: 5\nhigh_csp_min: 4\n"))
		if err == nil || !strings.Contains(err.Error(), "invalid calibration") {
			t.Fatalf("err = %v, want invalid calibration", err)
		}
	})
}

func TestLoadThresholds(t *testing.T) {
	t.Parallel()

	got, err := LoadThresholds("")
	if err != nil {
		t.Fatalf("LoadThresholds(\"\"): %v", err)
	}
	if got.BulkCoordination != 8 {
		t.Errorf("BulkCoordination = %d, want 8", got.BulkCoordination)
	}

	path := filepath.Join(t.TempDir(), "calibration.yaml")
	if err := os.WriteFile(path, []byte("surface_min_deficit: 3\nvacancy_max_deficit: 3\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = LoadThresholds(path)
	if err != nil {
		t.Fatalf("LoadThresholds(%s): %v", path, err)
	}
	if got.SurfaceMinDeficit != 3 || got.VacancyMaxDeficit != 3 {
		t.Errorf("deficits = %d/%d, want 3/3", got.SurfaceMinDeficit, got.VacancyMaxDeficit)
	}

	if _, err := LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
