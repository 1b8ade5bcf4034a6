package stack

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
)

// positionTolerance is the absolute tolerance, in meters, used when
// matching interfaces by vertical position.
const positionTolerance = 1e-15

// Stack is a substrate stack: one bulk layer, an ordered sequence of oxide
// layers with N+1 interfaces, and the metals and vias attached to them.
//
// Oxide layers and interfaces live in append-only arenas addressed by
// stable handles; the bottom-to-top order is kept in two parallel index
// slices, so interface k always sits directly below oxide k and directly
// above oxide k-1 (the bulk for k == 0). Mutations are destructive and
// validated up front: a failed call leaves the stack unchanged.
type Stack struct {
	bulk   BulkLayer
	layers []layerEntry
	ifaces []ifaceEntry
	order  []InterfaceRef // interfaces bottom to top, len == len(oxides)+1
	oxides []LayerRef     // oxide layers bottom to top
	metals []*MetalLayer  // insertion order
	vias   []*Via         // insertion order
}

// New creates a stack consisting of the bulk layer and the single
// interface at its top (position 0).
func New(bulk BulkLayer) *Stack {
	s := &Stack{bulk: bulk}
	s.order = append(s.order, s.newInterface())
	return s
}

func (s *Stack) newInterface() InterfaceRef {
	s.ifaces = append(s.ifaces, ifaceEntry{})
	return InterfaceRef(len(s.ifaces) - 1)
}

func (s *Stack) newOxide(ox OxideLayer) LayerRef {
	s.layers = append(s.layers, layerEntry{ox: ox})
	return LayerRef(len(s.layers) - 1)
}

// oxideAt returns the oxide layer at bottom-to-top index k.
func (s *Stack) oxideAt(k int) OxideLayer {
	return s.layers[s.oxides[k]].ox
}

// orderIndex returns the bottom-to-top index of an interface handle, or -1
// if the interface is no longer part of the stack.
func (s *Stack) orderIndex(ref InterfaceRef) int {
	for i, r := range s.order {
		if r == ref {
			return i
		}
	}
	return -1
}

// Bulk returns the bulk layer.
func (s *Stack) Bulk() BulkLayer { return s.bulk }

// OxideCount returns the number of oxide layers.
func (s *Stack) OxideCount() int { return len(s.oxides) }

// InterfaceCount returns the number of interfaces. This is always one more
// than the number of oxide layers.
func (s *Stack) InterfaceCount() int { return len(s.order) }

// Oxide returns a copy of the oxide layer at bottom-to-top index k.
func (s *Stack) Oxide(k int) OxideLayer { return s.oxideAt(k) }

// Height returns the total height of the oxide stack in meters.
func (s *Stack) Height() float64 {
	var h float64
	for k := range s.oxides {
		h += s.oxideAt(k).Thickness
	}
	return h
}

// InterfacePosition returns the absolute vertical position of interface i
// in meters, with 0 at the top of the bulk layer.
func (s *Stack) InterfacePosition(i int) float64 {
	var pos float64
	for k := 0; k < i; k++ {
		pos += s.oxideAt(k).Thickness
	}
	return pos
}

// refPosition returns the position of an interface handle.
func (s *Stack) refPosition(ref InterfaceRef) float64 {
	return s.InterfacePosition(s.orderIndex(ref))
}

// InterfaceByPosition returns the index of the interface at the given
// absolute position, within a tolerance of 1e-15 m.
func (s *Stack) InterfaceByPosition(pos float64) (int, bool) {
	cur := 0.0
	for i := range s.order {
		if i > 0 {
			cur += s.oxideAt(i - 1).Thickness
		}
		if scalar.EqualWithinAbs(cur, pos, positionTolerance) {
			return i, true
		}
	}
	return -1, false
}

// AddOxideLayerOnTop appends an oxide layer to the top of the stack,
// closing the current top interface and creating a new one above.
func (s *Stack) AddOxideLayerOnTop(ox OxideLayer) {
	s.oxides = append(s.oxides, s.newOxide(ox))
	s.order = append(s.order, s.newInterface())
}

// AddMetalLayer attaches a metal layer at the interface with the given
// bottom-to-top index. Down metals hang from the interface, Up metals grow
// from it; the opposite boundary is resolved later by Standardize.
func (s *Stack) AddMetalLayer(m *MetalLayer, interfaceIndex int) error {
	if interfaceIndex < 0 || interfaceIndex >= len(s.order) {
		return fmt.Errorf("add metal %q at interface %d: %w", m.Name, interfaceIndex, ErrInterfaceOutOfRange)
	}
	if m.attached() {
		return fmt.Errorf("add metal %q: %w", m.Name, ErrAlreadyAttached)
	}
	if _, ok := s.MetalLayerByName(m.Name); ok {
		return fmt.Errorf("add metal %q: %w", m.Name, ErrDuplicateName)
	}
	ref := s.order[interfaceIndex]
	if s.ifaces[ref].metal != "" {
		return fmt.Errorf("add metal %q at interface %d: %w", m.Name, interfaceIndex, ErrInterfaceOccupied)
	}
	s.ifaces[ref].metal = m.Name
	if m.Direction == Down {
		m.top = ref
	} else {
		m.bottom = ref
	}
	s.metals = append(s.metals, m)
	return nil
}

// MetalLayerByName returns the metal layer with the given name.
func (s *Stack) MetalLayerByName(name string) (*MetalLayer, bool) {
	for _, m := range s.metals {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// RemoveMetalLayerByName detaches the named metal from its interfaces and
// removes it, along with every via that references it.
func (s *Stack) RemoveMetalLayerByName(name string) error {
	m, ok := s.MetalLayerByName(name)
	if !ok {
		return fmt.Errorf("remove metal %q: %w", name, ErrMetalNotFound)
	}
	for _, ref := range []InterfaceRef{m.bottom, m.top} {
		if ref != NoRef && s.ifaces[ref].metal == name {
			s.ifaces[ref].metal = ""
		}
	}
	kept := s.vias[:0]
	for _, v := range s.vias {
		if v.bottomMetal != name && v.topMetal != name {
			kept = append(kept, v)
		}
	}
	s.vias = kept
	for i, ml := range s.metals {
		if ml == m {
			s.metals = append(s.metals[:i], s.metals[i+1:]...)
			break
		}
	}
	m.bottom, m.top = NoRef, NoRef
	return nil
}

// AddVia connects a via between the two named metals. Which metal becomes
// the via's top and which its bottom is decided by their vertical
// positions, not by argument order.
func (s *Stack) AddVia(v *Via, metal1, metal2 string) error {
	if metal1 == metal2 {
		return fmt.Errorf("add via %q: %w", v.Name, ErrSameMetal)
	}
	m1, ok := s.MetalLayerByName(metal1)
	if !ok {
		return fmt.Errorf("add via %q: metal %q: %w", v.Name, metal1, ErrMetalNotFound)
	}
	m2, ok := s.MetalLayerByName(metal2)
	if !ok {
		return fmt.Errorf("add via %q: metal %q: %w", v.Name, metal2, ErrMetalNotFound)
	}
	if _, ok := s.ViaByName(v.Name); ok {
		return fmt.Errorf("add via %q: %w", v.Name, ErrDuplicateName)
	}
	if s.refPosition(m1.attachment()) > s.refPosition(m2.attachment()) {
		v.topMetal, v.bottomMetal = m1.Name, m2.Name
	} else {
		v.topMetal, v.bottomMetal = m2.Name, m1.Name
	}
	s.vias = append(s.vias, v)
	return nil
}

// RemoveViaByName removes the named via. The connected metals are left in
// place.
func (s *Stack) RemoveViaByName(name string) error {
	for i, v := range s.vias {
		if v.Name == name {
			s.vias = append(s.vias[:i], s.vias[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove via %q: %w", name, ErrViaNotFound)
}

// ViaByName returns the via with the given name.
func (s *Stack) ViaByName(name string) (*Via, bool) {
	for _, v := range s.vias {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// ViaByTopMetal returns the via whose top metal has the given name.
func (s *Stack) ViaByTopMetal(name string) (*Via, bool) {
	for _, v := range s.vias {
		if v.topMetal == name {
			return v, true
		}
	}
	return nil, false
}

// ViaByBottomMetal returns the via whose bottom metal has the given name.
func (s *Stack) ViaByBottomMetal(name string) (*Via, bool) {
	for _, v := range s.vias {
		if v.bottomMetal == name {
			return v, true
		}
	}
	return nil, false
}

// Metals returns the metal layers in insertion order.
func (s *Stack) Metals() []*MetalLayer {
	out := make([]*MetalLayer, len(s.metals))
	copy(out, s.metals)
	return out
}

// MetalsBottomToTop returns the metal layers sorted by the position of
// their attachment interface, lowest first.
func (s *Stack) MetalsBottomToTop() []*MetalLayer {
	out := s.Metals()
	sort.SliceStable(out, func(i, j int) bool {
		return s.refPosition(out[i].attachment()) < s.refPosition(out[j].attachment())
	})
	return out
}

// Vias returns the vias in insertion order.
func (s *Stack) Vias() []*Via {
	out := make([]*Via, len(s.vias))
	copy(out, s.vias)
	return out
}

// MetalAt returns the metal attached at the interface with the given
// bottom-to-top index, or nil if the interface carries none.
func (s *Stack) MetalAt(interfaceIndex int) *MetalLayer {
	name := s.ifaces[s.order[interfaceIndex]].metal
	if name == "" {
		return nil
	}
	m, _ := s.MetalLayerByName(name)
	return m
}

// MetalInterfaces returns the bottom-to-top indices of a metal's boundary
// interfaces. An unset boundary is reported as -1.
func (s *Stack) MetalInterfaces(m *MetalLayer) (bottom, top int) {
	bottom, top = -1, -1
	if m.bottom != NoRef {
		bottom = s.orderIndex(m.bottom)
	}
	if m.top != NoRef {
		top = s.orderIndex(m.top)
	}
	return bottom, top
}

// ViaHeight returns the vertical gap in meters between the effective top
// face of the via's bottom metal and the effective bottom face of its top
// metal. A zero height means the metals stack directly; a negative height
// means they overlap and is reported as ErrMetalOverlap.
func (s *Stack) ViaHeight(v *Via) (float64, error) {
	bm, ok := s.MetalLayerByName(v.bottomMetal)
	if !ok {
		return 0, fmt.Errorf("via %q: bottom metal %q: %w", v.Name, v.bottomMetal, ErrMetalNotFound)
	}
	tm, ok := s.MetalLayerByName(v.topMetal)
	if !ok {
		return 0, fmt.Errorf("via %q: top metal %q: %w", v.Name, v.topMetal, ErrMetalNotFound)
	}

	var topOfBottom float64
	if bm.Direction == Up {
		topOfBottom = s.refPosition(bm.bottom) + bm.Thickness
	} else {
		topOfBottom = s.refPosition(bm.top)
	}
	var bottomOfTop float64
	if tm.Direction == Down {
		bottomOfTop = s.refPosition(tm.top) - tm.Thickness
	} else {
		bottomOfTop = s.refPosition(tm.bottom)
	}

	h := bottomOfTop - topOfBottom
	if h < 0 {
		return h, fmt.Errorf("via %q between %q and %q: %w", v.Name, v.bottomMetal, v.topMetal, ErrMetalOverlap)
	}
	return h, nil
}

// ViaResistivity returns the equivalent resistivity of the via rectangle
// in Ohm*m, derived from the via resistance, footprint and fill factor.
func (s *Stack) ViaResistivity(v *Via) (float64, error) {
	h, err := s.ViaHeight(v)
	if err != nil {
		return 0, err
	}
	return v.Resistance * v.Width * v.Width / h / v.Fill(), nil
}

// ViaConductivity returns the equivalent conductivity of the via in S/m.
func (s *Stack) ViaConductivity(v *Via) (float64, error) {
	rho, err := s.ViaResistivity(v)
	if err != nil {
		return 0, err
	}
	return 1.0 / rho, nil
}
