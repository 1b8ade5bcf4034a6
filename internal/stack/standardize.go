package stack

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
)

// IsStandard reports whether every metal owns both of its boundary
// interfaces and extends up.
func (s *Stack) IsStandard() bool {
	for _, m := range s.metals {
		if !m.Standardized() {
			return false
		}
	}
	return true
}

// Standardize brings the stack into canonical form: every metal gets an
// interface at both of its boundaries (splitting oxide layers where
// needed) and all Down metals are converted to Up. The whole operation is
// validated before any layer is touched; on error the stack is unchanged.
func (s *Stack) Standardize() error {
	if err := s.validateStandardize(); err != nil {
		return err
	}

	// Resolve the missing boundary of each metal, creating interfaces
	// where none exists at the computed position.
	for _, m := range s.metals {
		switch {
		case m.top != NoRef && m.bottom == NoRef:
			pos := s.refPosition(m.top) - m.Thickness
			m.bottom = s.interfaceAtOrSplit(pos)
		case m.bottom != NoRef && m.top == NoRef:
			pos := s.refPosition(m.bottom) + m.Thickness
			m.top = s.interfaceAtOrSplit(pos)
		}
	}

	// Move every Down metal's attachment from its top interface to its
	// bottom interface.
	for _, m := range s.metals {
		if m.Direction == Down {
			s.ifaces[m.top].metal = ""
			s.ifaces[m.bottom].metal = m.Name
			m.Direction = Up
		}
	}
	return nil
}

// validateStandardize checks that every missing metal boundary can be
// created or attached. Splitting only ever adds interfaces and moves no
// existing one, so validating against the current geometry is sound.
func (s *Stack) validateStandardize() error {
	// Positions claimed as attachment points by Down metals; a second
	// claim at the same position is a conflict.
	var claimed []float64
	for _, m := range s.metals {
		if !m.attached() {
			return fmt.Errorf("standardize: metal %q: %w", m.Name, ErrNotAttached)
		}
		if m.bottom != NoRef && m.top != NoRef {
			continue
		}
		var missing float64
		if m.Direction == Down {
			missing = s.refPosition(m.top) - m.Thickness
		} else {
			missing = s.refPosition(m.bottom) + m.Thickness
		}
		if idx, ok := s.InterfaceByPosition(missing); ok {
			// An existing interface will be reused. For a Down metal it
			// becomes the attachment point, so it must be free.
			if m.Direction == Down && s.ifaces[s.order[idx]].metal != "" {
				return fmt.Errorf("standardize: metal %q bottom at %g m: %w", m.Name, missing, ErrInterfaceOccupied)
			}
		} else if !s.straddled(missing) {
			return fmt.Errorf("standardize: metal %q boundary at %g m: %w", m.Name, missing, ErrNoStraddlingLayer)
		}
		if m.Direction == Down {
			for _, p := range claimed {
				if scalar.EqualWithinAbs(p, missing, positionTolerance) {
					return fmt.Errorf("standardize: metal %q bottom at %g m: %w", m.Name, missing, ErrInterfaceOccupied)
				}
			}
			claimed = append(claimed, missing)
		}
	}
	return nil
}

// straddled reports whether some oxide layer strictly contains the given
// position.
func (s *Stack) straddled(pos float64) bool {
	bottom := 0.0
	for k := range s.oxides {
		top := bottom + s.oxideAt(k).Thickness
		if pos > bottom && pos < top {
			return true
		}
		bottom = top
	}
	return false
}

// interfaceAtOrSplit returns the interface at pos, splitting the oxide
// layer straddling pos when no interface exists there. Callers must have
// validated that one of the two will succeed.
func (s *Stack) interfaceAtOrSplit(pos float64) InterfaceRef {
	if idx, ok := s.InterfaceByPosition(pos); ok {
		return s.order[idx]
	}
	ref, _ := s.splitAt(pos)
	return ref
}

// SplitOxideLayer splits the oxide layer straddling the given absolute
// position into two layers with identical dielectric properties, inserting
// a new interface between them. It returns the bottom-to-top index of the
// new interface. Positions at an existing boundary or outside the oxide
// stack yield ErrNoStraddlingLayer.
func (s *Stack) SplitOxideLayer(pos float64) (int, error) {
	ref, err := s.splitAt(pos)
	if err != nil {
		return -1, err
	}
	return s.orderIndex(ref), nil
}

func (s *Stack) splitAt(pos float64) (InterfaceRef, error) {
	bottom := 0.0
	for k := range s.oxides {
		ox := s.oxideAt(k)
		top := bottom + ox.Thickness
		if pos > bottom && pos < top {
			// Shrink the straddling layer to end at pos and stack a new
			// layer with the same properties above it. The layer is
			// homogeneous, so only thickness is apportioned.
			s.layers[s.oxides[k]].ox.Thickness = pos - bottom
			upper := s.newOxide(OxideLayer{
				Thickness:   top - pos,
				EpsilonRel:  ox.EpsilonRel,
				LossTangent: ox.LossTangent,
			})
			ref := s.newInterface()

			s.oxides = append(s.oxides, 0)
			copy(s.oxides[k+2:], s.oxides[k+1:])
			s.oxides[k+1] = upper

			s.order = append(s.order, 0)
			copy(s.order[k+2:], s.order[k+1:])
			s.order[k+1] = ref
			return ref, nil
		}
		bottom = top
	}
	return NoRef, fmt.Errorf("split at %g m: %w", pos, ErrNoStraddlingLayer)
}
