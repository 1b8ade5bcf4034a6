package stack

import "fmt"

// MergeOxideLayers combines the contiguous run of oxide layers with
// bottom-to-top indices first..last (inclusive) into a single equivalent
// layer. The run's boundary interfaces are reused; interior interfaces and
// layers are discarded. Interior interfaces must carry no metal and must
// not be a boundary of any metal. The run is validated completely before
// the stack is modified.
//
// The combined permittivity is the thickness-weighted harmonic mean (the
// series-capacitor model of stacked dielectrics); the combined loss
// tangent is the thickness-weighted arithmetic mean.
func (s *Stack) MergeOxideLayers(first, last int) error {
	if first < 0 || last >= len(s.oxides) || last-first < 1 {
		return fmt.Errorf("merge oxides %d..%d: %w", first, last, ErrBadMergeRun)
	}
	for k := first + 1; k <= last; k++ {
		ref := s.order[k]
		if s.ifaces[ref].metal != "" {
			return fmt.Errorf("merge oxides %d..%d: interface %d has metal %q: %w",
				first, last, k, s.ifaces[ref].metal, ErrInterfaceOccupied)
		}
		for _, m := range s.metals {
			if m.bottom == ref || m.top == ref {
				return fmt.Errorf("merge oxides %d..%d: interface %d bounds metal %q: %w",
					first, last, k, m.Name, ErrMetalBoundary)
			}
		}
	}

	var thickness, epsSeries, lossSum float64
	for k := first; k <= last; k++ {
		ox := s.oxideAt(k)
		thickness += ox.Thickness
		epsSeries += ox.Thickness / ox.EpsilonRel
		lossSum += ox.Thickness * ox.LossTangent
	}
	merged := s.newOxide(OxideLayer{
		Thickness:   thickness,
		EpsilonRel:  thickness / epsSeries,
		LossTangent: lossSum / thickness,
	})

	for k := first; k <= last; k++ {
		s.layers[s.oxides[k]].dead = true
	}
	for k := first + 1; k <= last; k++ {
		s.ifaces[s.order[k]].dead = true
	}
	s.oxides[first] = merged
	s.oxides = append(s.oxides[:first+1], s.oxides[last+1:]...)
	s.order = append(s.order[:first+1], s.order[last+1:]...)
	return nil
}

// Simplify reduces the oxide stack to the minimum number of interfaces
// needed to attach the metal layers: one interface per metal boundary plus
// the bottom and top of the stack. The stack is standardized first if
// needed. Simplify is idempotent.
func (s *Stack) Simplify() error {
	if !s.IsStandard() {
		if err := s.Standardize(); err != nil {
			return err
		}
	}

	metals := s.MetalsBottomToTop()
	// Overlapping metal spans cannot be reduced to one interface per
	// boundary; reject them before any merge is applied.
	for i := 1; i < len(metals); i++ {
		if s.refPosition(metals[i].bottom) < s.refPosition(metals[i-1].top) {
			return fmt.Errorf("simplify: metals %q and %q: %w",
				metals[i-1].Name, metals[i].Name, ErrMetalOverlap)
		}
	}

	next := 0 // lowest oxide index not yet processed
	for _, m := range metals {
		// Merge the run strictly below the metal's bottom boundary.
		if kb := s.orderIndex(m.bottom); kb-1 > next {
			if err := s.MergeOxideLayers(next, kb-1); err != nil {
				return err
			}
		}
		// Merge the run strictly inside the metal's span, keeping both
		// boundary interfaces intact.
		kb := s.orderIndex(m.bottom)
		if kt := s.orderIndex(m.top); kt-1 > kb {
			if err := s.MergeOxideLayers(kb, kt-1); err != nil {
				return err
			}
		}
		next = s.orderIndex(m.top)
	}
	// Merge what remains up to the top of the stack.
	if last := len(s.oxides) - 1; last > next {
		if err := s.MergeOxideLayers(next, last); err != nil {
			return err
		}
	}
	return nil
}
