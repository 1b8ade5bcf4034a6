package stack

import (
	"errors"
	"math"
	"testing"
)

func testBulk() BulkLayer {
	return BulkLayer{Thickness: 300e-6, EpsilonRel: 11.9, Resistivity: 0.2}
}

// stackWithOxides builds a stack with one oxide layer per thickness (in
// meters), all with permittivity 4 and zero loss.
func stackWithOxides(thicknesses ...float64) *Stack {
	s := New(testBulk())
	for _, th := range thicknesses {
		s.AddOxideLayerOnTop(OxideLayer{Thickness: th, EpsilonRel: 4})
	}
	return s
}

func TestInterfaceCountInvariant(t *testing.T) {
	s := New(testBulk())
	if s.InterfaceCount() != 1 || s.OxideCount() != 0 {
		t.Fatalf("new stack: got %d interfaces, %d oxides", s.InterfaceCount(), s.OxideCount())
	}
	for i := 1; i <= 5; i++ {
		s.AddOxideLayerOnTop(OxideLayer{Thickness: 1e-6, EpsilonRel: 4})
		if s.InterfaceCount() != s.OxideCount()+1 {
			t.Fatalf("after %d layers: %d interfaces for %d oxides", i, s.InterfaceCount(), s.OxideCount())
		}
	}
}

func TestInterfacePositions(t *testing.T) {
	s := stackWithOxides(1e-6, 2e-6, 3e-6)
	want := []float64{0, 1e-6, 3e-6, 6e-6}
	for i, w := range want {
		if got := s.InterfacePosition(i); math.Abs(got-w) > 1e-18 {
			t.Errorf("interface %d: position %g, want %g", i, got, w)
		}
	}
	// Positions must be strictly increasing bottom to top.
	for i := 1; i < s.InterfaceCount(); i++ {
		if s.InterfacePosition(i) <= s.InterfacePosition(i-1) {
			t.Errorf("positions not increasing at interface %d", i)
		}
	}
	if h := s.Height(); math.Abs(h-6e-6) > 1e-18 {
		t.Errorf("height %g, want 6e-6", h)
	}
}

func TestInterfaceByPosition(t *testing.T) {
	s := stackWithOxides(1e-6, 2e-6)
	if idx, ok := s.InterfaceByPosition(1e-6); !ok || idx != 1 {
		t.Fatalf("lookup at 1e-6: got %d, %v", idx, ok)
	}
	// Within tolerance.
	if idx, ok := s.InterfaceByPosition(1e-6 + 5e-16); !ok || idx != 1 {
		t.Fatalf("lookup within tolerance: got %d, %v", idx, ok)
	}
	if _, ok := s.InterfaceByPosition(0.5e-6); ok {
		t.Fatal("lookup mid-layer should not find an interface")
	}
}

func TestAddMetalLayer(t *testing.T) {
	s := stackWithOxides(1e-6, 1e-6)
	m := NewMetalLayer("ME1", 0.3e-6, 0.1, Up)
	if err := s.AddMetalLayer(m, 1); err != nil {
		t.Fatalf("add metal: %v", err)
	}
	if got := s.MetalAt(1); got != m {
		t.Fatal("MetalAt(1) did not return the added metal")
	}
	if got, ok := s.MetalLayerByName("ME1"); !ok || got != m {
		t.Fatal("lookup by name failed")
	}
	bottom, top := s.MetalInterfaces(m)
	if bottom != 1 || top != -1 {
		t.Fatalf("interfaces = (%d, %d), want (1, -1)", bottom, top)
	}
}

func TestAddMetalLayerErrors(t *testing.T) {
	s := stackWithOxides(1e-6, 1e-6)
	if err := s.AddMetalLayer(NewMetalLayer("ME1", 0.3e-6, 0.1, Up), 7); !errors.Is(err, ErrInterfaceOutOfRange) {
		t.Fatalf("out of range: got %v", err)
	}
	if err := s.AddMetalLayer(NewMetalLayer("ME1", 0.3e-6, 0.1, Up), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddMetalLayer(NewMetalLayer("ME1", 0.3e-6, 0.1, Up), 2); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate name: got %v", err)
	}
	if err := s.AddMetalLayer(NewMetalLayer("ME2", 0.3e-6, 0.1, Up), 1); !errors.Is(err, ErrInterfaceOccupied) {
		t.Fatalf("occupied interface: got %v", err)
	}
	m, _ := s.MetalLayerByName("ME1")
	if err := s.AddMetalLayer(m, 2); !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("reattach: got %v", err)
	}
}

func TestAddViaOrderIndependent(t *testing.T) {
	build := func(first, second string) *Via {
		s := stackWithOxides(1e-6, 1e-6)
		if err := s.AddMetalLayer(NewMetalLayer("ME1", 0.2e-6, 0.1, Up), 1); err != nil {
			t.Fatal(err)
		}
		if err := s.AddMetalLayer(NewMetalLayer("ME2", 0.2e-6, 0.1, Up), 2); err != nil {
			t.Fatal(err)
		}
		v := NewVia("VI1", 2, 0.2e-6, 0.2e-6)
		if err := s.AddVia(v, first, second); err != nil {
			t.Fatal(err)
		}
		return v
	}
	a := build("ME1", "ME2")
	b := build("ME2", "ME1")
	if a.BottomMetal() != "ME1" || a.TopMetal() != "ME2" {
		t.Fatalf("a: bottom %q top %q", a.BottomMetal(), a.TopMetal())
	}
	if b.BottomMetal() != a.BottomMetal() || b.TopMetal() != a.TopMetal() {
		t.Fatalf("assignment depends on argument order: %q/%q vs %q/%q",
			a.BottomMetal(), a.TopMetal(), b.BottomMetal(), b.TopMetal())
	}
}

func TestAddViaErrors(t *testing.T) {
	s := stackWithOxides(1e-6, 1e-6)
	if err := s.AddMetalLayer(NewMetalLayer("ME1", 0.2e-6, 0.1, Up), 1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddVia(NewVia("VI1", 2, 0.2e-6, 0), "ME1", "ME1"); !errors.Is(err, ErrSameMetal) {
		t.Fatalf("same metal: got %v", err)
	}
	if err := s.AddVia(NewVia("VI1", 2, 0.2e-6, 0), "ME1", "ME9"); !errors.Is(err, ErrMetalNotFound) {
		t.Fatalf("unknown metal: got %v", err)
	}
}

func TestRemoveMetalLayerCascadesVias(t *testing.T) {
	s := stackWithOxides(1e-6, 1e-6, 1e-6)
	for i, name := range []string{"ME1", "ME2", "ME3"} {
		if err := s.AddMetalLayer(NewMetalLayer(name, 0.2e-6, 0.1, Up), i+1); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddVia(NewVia("VI1", 2, 0.2e-6, 0), "ME1", "ME2"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddVia(NewVia("VI2", 2, 0.2e-6, 0), "ME2", "ME3"); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveMetalLayerByName("ME2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.MetalLayerByName("ME2"); ok {
		t.Fatal("ME2 still present")
	}
	// Both vias referenced ME2 and must be gone.
	for _, name := range []string{"VI1", "VI2"} {
		if _, ok := s.ViaByName(name); ok {
			t.Errorf("via %s still present", name)
		}
	}
	// The interface ME2 occupied is free again.
	if m := s.MetalAt(2); m != nil {
		t.Fatalf("interface 2 still has metal %s", m.Name)
	}
	if err := s.RemoveMetalLayerByName("ME2"); !errors.Is(err, ErrMetalNotFound) {
		t.Fatalf("second remove: got %v", err)
	}
}

func TestRemoveViaByName(t *testing.T) {
	s := stackWithOxides(1e-6, 1e-6)
	if err := s.AddMetalLayer(NewMetalLayer("ME1", 0.2e-6, 0.1, Up), 1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMetalLayer(NewMetalLayer("ME2", 0.2e-6, 0.1, Up), 2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddVia(NewVia("VI1", 2, 0.2e-6, 0), "ME1", "ME2"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveViaByName("VI1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.ViaByName("VI1"); ok {
		t.Fatal("VI1 still present")
	}
	// The metals stay.
	if _, ok := s.MetalLayerByName("ME1"); !ok {
		t.Fatal("removing a via removed its metal")
	}
	if err := s.RemoveViaByName("VI1"); !errors.Is(err, ErrViaNotFound) {
		t.Fatalf("second remove: got %v", err)
	}
}

func TestMetalsBottomToTop(t *testing.T) {
	s := stackWithOxides(1e-6, 1e-6, 1e-6)
	// Insert out of order; sorting must go by position.
	if err := s.AddMetalLayer(NewMetalLayer("ME3", 0.2e-6, 0.1, Up), 3); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMetalLayer(NewMetalLayer("ME1", 0.2e-6, 0.1, Up), 1); err != nil {
		t.Fatal(err)
	}
	got := s.MetalsBottomToTop()
	if len(got) != 2 || got[0].Name != "ME1" || got[1].Name != "ME3" {
		t.Fatalf("wrong order: %v, %v", got[0].Name, got[1].Name)
	}
}
