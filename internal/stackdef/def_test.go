package stackdef

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validDef() *Definition {
	return &Definition{
		Name: "test process",
		Bulk: BulkDef{ThicknessUm: 300, EpsilonRel: 11.9, ResistivityOhmCm: 20},
		Oxides: []OxideDef{
			{ThicknessUm: 1, EpsilonRel: 4},
			{ThicknessKA: 10, EpsilonRel: 3.7, LossTangent: 0.002},
		},
		Metals: []MetalDef{
			{Name: "ME1", Interface: 1, ThicknessKA: 2, SheetMohmSq: 100, Extend: "up"},
			{Name: "ME2", Interface: 2, ThicknessKA: 3, SheetMohmSq: 50, Extend: "down"},
		},
		Vias: []ViaDef{
			{Name: "VI1", Bottom: "ME1", Top: "ME2", ResistanceMohm: 2000, WidthUm: 0.2, SpacingUm: 0.2},
		},
	}
}

func TestLoadExample(t *testing.T) {
	def, err := Load(filepath.Join("testdata", "cmos6.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if def.Name != "six-metal CMOS example" {
		t.Errorf("name = %q", def.Name)
	}
	if len(def.Oxides) != 14 || len(def.Metals) != 7 || len(def.Vias) != 6 {
		t.Fatalf("got %d oxides, %d metals, %d vias", len(def.Oxides), len(def.Metals), len(def.Vias))
	}
	want := MetalDef{Name: "ME1", Interface: 2, ThicknessKA: 2.0, SheetMohmSq: 120, Extend: "down"}
	if diff := cmp.Diff(want, def.Metals[1]); diff != "" {
		t.Errorf("ME1 definition mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	def := validDef()
	path := filepath.Join(t.TempDir(), "stack.json")
	if err := def.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(def, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr string
	}{
		{"valid", func(d *Definition) {}, ""},
		{"no bulk thickness", func(d *Definition) { d.Bulk.ThicknessUm = 0 }, "bulk thickness"},
		{"no oxides", func(d *Definition) { d.Oxides = nil }, "oxide layer"},
		{"both thicknesses", func(d *Definition) { d.Oxides[0].ThicknessKA = 5 }, "exactly one"},
		{"no thickness", func(d *Definition) { d.Oxides[0].ThicknessUm = 0 }, "exactly one"},
		{"bad permittivity", func(d *Definition) { d.Oxides[1].EpsilonRel = 0 }, "permittivity"},
		{"duplicate metal", func(d *Definition) { d.Metals[1].Name = "ME1" }, "duplicate metal"},
		{"interface out of range", func(d *Definition) { d.Metals[0].Interface = 3 }, "out of range"},
		{"bad direction", func(d *Definition) { d.Metals[0].Extend = "sideways" }, "extend direction"},
		{"via name clashes with metal", func(d *Definition) { d.Vias[0].Name = "ME1" }, "duplicate via"},
		{"via to unknown metal", func(d *Definition) { d.Vias[0].Top = "ME9" }, "unknown metal"},
		{"via to via", func(d *Definition) {
			d.Vias = append(d.Vias, ViaDef{Name: "VI2", Bottom: "ME1", Top: "VI1", ResistanceMohm: 1, WidthUm: 0.2})
		}, "unknown metal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDef()
			tt.mutate(def)
			err := def.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildExample(t *testing.T) {
	def, err := Load(filepath.Join("testdata", "cmos6.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := def.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.OxideCount() != 14 || len(s.Metals()) != 7 || len(s.Vias()) != 6 {
		t.Fatalf("got %d oxides, %d metals, %d vias", s.OxideCount(), len(s.Metals()), len(s.Vias()))
	}
	// Oxide thicknesses sum to 41.3 kA.
	if h := s.Height(); math.Abs(h-4.13e-6) > 1e-15 {
		t.Errorf("height %g, want 4.13e-6", h)
	}
	// Bulk resistivity 20 Ohm*cm = 0.2 Ohm*m.
	if rho := s.Bulk().Resistivity; math.Abs(rho-0.2) > 1e-12 {
		t.Errorf("bulk resistivity %g, want 0.2", rho)
	}
}

func TestBuildAndSimplifyExample(t *testing.T) {
	def, err := Load(filepath.Join("testdata", "cmos6.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := def.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, name := range []string{"PO1", "ME1", "ME2", "ME3", "ME4"} {
		if err := s.RemoveMetalLayerByName(name); err != nil {
			t.Fatalf("remove %s: %v", name, err)
		}
	}
	height := s.Height()
	if err := s.Simplify(); err != nil {
		t.Fatalf("simplify: %v", err)
	}
	// ME5 and ME6 remain: bulk top, two boundaries each, stack top.
	if s.InterfaceCount() != 6 {
		t.Fatalf("interface count %d, want 6", s.InterfaceCount())
	}
	if math.Abs(s.Height()-height) > 1e-15 {
		t.Errorf("height changed %g -> %g", height, s.Height())
	}
	if !s.IsStandard() {
		t.Error("stack not standard after simplify")
	}
}
