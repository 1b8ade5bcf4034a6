// Package export writes standardized substrate stacks out as simulator
// technology files: ADS Momentum substrate definitions (.slm) and Sonnet
// project technology files (.son). Both formats are fixed-token and
// line-oriented; field order, padding and units are reproduced exactly as
// the simulators expect them. Lengths in file bodies are micrometers,
// conductivities Siemens/m.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"stackup/internal/stack"
	"stackup/pkg/units"
)

// WriteMomentumSubstrate writes the stack as an ADS Momentum substrate
// file named filename + ".slm". The stack is standardized first if needed.
// With infiniteGroundPlane the substrate is terminated below by an ideal
// ground instead of an open-air layer.
func WriteMomentumSubstrate(s *stack.Stack, filename string, infiniteGroundPlane bool) error {
	f, err := os.Create(filename + ".slm")
	if err != nil {
		return fmt.Errorf("write momentum substrate: %w", err)
	}
	if err := Momentum(s, f, infiniteGroundPlane); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Momentum writes the Momentum substrate definition to w.
func Momentum(s *stack.Stack, w io.Writer, infiniteGroundPlane bool) error {
	if !s.IsStandard() {
		if err := s.Standardize(); err != nil {
			return err
		}
	}
	lines, err := momentumLines(s, infiniteGroundPlane)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// momentumLines emits one record per oxide layer, walking the stack top to
// bottom. An oxide whose bottom interface hosts a metal is thinned by the
// metal thickness; the metal itself (and any via whose top lands on it)
// becomes a separate MET pseudo-layer record appended after the substrate
// records. The "metal above" and "via inside" flags of each record
// describe the previous record's boundary, so their state is carried
// forward by one iteration.
func momentumLines(s *stack.Stack, infiniteGroundPlane bool) ([]string, error) {
	const um = units.UM
	bulk := s.Bulk()
	n := s.OxideCount()

	// Top coordinate of the emitted stack, measured from the bottom of the
	// bulk. Metals are emitted as zero-thickness pseudo-layers, so their
	// thicknesses are taken out of the oxide total.
	y := bulk.Thickness + s.Height()
	for _, m := range s.Metals() {
		y -= m.Thickness
	}

	lines := []string{
		"VERSION 100",
		"UNIT um",
		"SUBNAME",
		"TOP 0 0 0 0",
	}
	if infiniteGroundPlane {
		lines = append(lines, "BOTTOM 1 1 0 0")
	} else {
		lines = append(lines, "BOTTOM 1 0 0 0")
	}
	lines = append(lines, fmt.Sprintf("SUB0 TOP 1 1 0 0 1 0 -1 %g %g 1 0 3", y/um, y/um))

	var metalLines []string
	metalNumber := 1
	lastMetalAbove, lastViaInside := 1, 0
	for i := n - 1; i >= 0; i-- {
		ox := s.Oxide(i)
		thickness := ox.Thickness
		metalAbove, viaInside := 1, 0
		// Interface i is the bottom interface of oxide i.
		if m := s.MetalAt(i); m != nil {
			thickness -= m.Thickness
			metalAbove = 2
			coord := y - (ox.Thickness - m.Thickness)
			metalLines = append(metalLines,
				fmt.Sprintf("MET%-3d %-10s %-12s 1 2 3 %-16s 0 Siemens/m Siemens/m 1 %-6s um",
					metalNumber, m.Name, fmt.Sprintf("%g", coord/um),
					fmt.Sprintf("%g", m.Conductivity()), fmt.Sprintf("%g", m.Thickness/um)))
			metalNumber++
			if v, ok := s.ViaByTopMetal(m.Name); ok {
				viaInside = 1
				sigma, err := s.ViaConductivity(v)
				if err != nil {
					return nil, err
				}
				metalLines = append(metalLines,
					fmt.Sprintf("MET%-3d %-10s %-12s 0 4 3 %-16s 0 Siemens/m Siemens/m 0 %-6s um",
						metalNumber, v.Name, fmt.Sprintf("%g", coord/um),
						fmt.Sprintf("%g", sigma), "0"))
				metalNumber++
			}
		}

		lines = append(lines, fmt.Sprintf("SUB%d ox%d 1 %g %g 0 1 0 %g %g %g %d %d 3",
			n-i, i+1, ox.EpsilonRel, ox.LossTangent,
			thickness/um, (y-thickness)/um, y/um, lastMetalAbove, lastViaInside))
		y -= thickness
		lastMetalAbove, lastViaInside = metalAbove, viaInside
	}

	lines = append(lines, fmt.Sprintf("SUB%d bulk 2 %g %g 0 1 0 %g %g %g %d 0 3",
		n+1, bulk.EpsilonRel, 1/bulk.Resistivity,
		bulk.Thickness/um, 0.0, y/um, lastMetalAbove))
	if !infiniteGroundPlane {
		lines = append(lines, fmt.Sprintf("SUB%d AIR 1 1 0 0 1 0 -1 0 0 1 0 3", n+2))
	}
	return append(lines, metalLines...), nil
}
