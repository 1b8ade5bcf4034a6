// Package stackdef provides declarative substrate stack definitions and
// their persistence. A definition is a JSON document listing the bulk
// layer, the oxide layers bottom to top, and the metals and vias to
// attach; Build turns a validated definition into a live stack.
package stackdef

import (
	"encoding/json"
	"fmt"
	"os"

	"stackup/internal/stack"
	"stackup/pkg/units"
)

// BulkDef describes the bulk layer.
type BulkDef struct {
	ThicknessUm      float64 `json:"thickness_um"`       // Bulk thickness
	EpsilonRel       float64 `json:"epsilon_rel"`        // Relative permittivity
	ResistivityOhmCm float64 `json:"resistivity_ohm_cm"` // Bulk resistivity
	LossTangent      float64 `json:"loss_tangent"`       // Dielectric loss tangent
}

// OxideDef describes one oxide layer. Thickness is given in exactly one of
// micrometers or kiloAngstroms, whichever the design kit uses.
type OxideDef struct {
	ThicknessUm float64 `json:"thickness_um,omitempty"`
	ThicknessKA float64 `json:"thickness_ka,omitempty"`
	EpsilonRel  float64 `json:"epsilon_rel"`
	LossTangent float64 `json:"loss_tangent"`
}

// thickness returns the layer thickness in meters.
func (o *OxideDef) thickness() float64 {
	return o.ThicknessUm*units.UM + o.ThicknessKA*units.KA
}

// MetalDef describes a metal layer and the interface it attaches at.
type MetalDef struct {
	Name        string  `json:"name"`
	Interface   int     `json:"interface"` // Bottom-to-top interface index
	ThicknessUm float64 `json:"thickness_um,omitempty"`
	ThicknessKA float64 `json:"thickness_ka,omitempty"`
	SheetMohmSq float64 `json:"sheet_mohm_sq"` // Sheet resistance
	Extend      string  `json:"extend"`        // "up" or "down"
}

func (m *MetalDef) thickness() float64 {
	return m.ThicknessUm*units.UM + m.ThicknessKA*units.KA
}

func (m *MetalDef) direction() (stack.Direction, error) {
	switch m.Extend {
	case "up":
		return stack.Up, nil
	case "down":
		return stack.Down, nil
	default:
		return stack.Up, fmt.Errorf("metal %q: unknown extend direction %q", m.Name, m.Extend)
	}
}

// ViaDef describes a via array between two metals.
type ViaDef struct {
	Name           string  `json:"name"`
	Bottom         string  `json:"bottom"` // Metal name
	Top            string  `json:"top"`    // Metal name
	ResistanceMohm float64 `json:"resistance_mohm"`
	WidthUm        float64 `json:"width_um"`
	SpacingUm      float64 `json:"spacing_um,omitempty"`
}

// Definition is a complete substrate stack definition.
type Definition struct {
	Name   string     `json:"name"`
	Bulk   BulkDef    `json:"bulk"`
	Oxides []OxideDef `json:"oxides"` // Bottom to top
	Metals []MetalDef `json:"metals,omitempty"`
	Vias   []ViaDef   `json:"vias,omitempty"`
}

// Load reads and validates a stack definition from a JSON file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse stack definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stack definition: %w", err)
	}
	return &def, nil
}

// Save writes the definition to a JSON file.
func (d *Definition) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the definition for structural problems before any stack
// is built.
func (d *Definition) Validate() error {
	if d.Bulk.ThicknessUm <= 0 {
		return fmt.Errorf("bulk thickness must be positive")
	}
	if d.Bulk.EpsilonRel <= 0 {
		return fmt.Errorf("bulk permittivity must be positive")
	}
	if d.Bulk.ResistivityOhmCm <= 0 {
		return fmt.Errorf("bulk resistivity must be positive")
	}
	if len(d.Oxides) == 0 {
		return fmt.Errorf("at least one oxide layer is required")
	}
	for i, ox := range d.Oxides {
		if (ox.ThicknessUm > 0) == (ox.ThicknessKA > 0) {
			return fmt.Errorf("oxide %d: exactly one of thickness_um and thickness_ka is required", i)
		}
		if ox.EpsilonRel <= 0 {
			return fmt.Errorf("oxide %d: permittivity must be positive", i)
		}
		if ox.LossTangent < 0 {
			return fmt.Errorf("oxide %d: loss tangent must not be negative", i)
		}
	}
	names := make(map[string]bool)
	metals := make(map[string]bool)
	for _, m := range d.Metals {
		if m.Name == "" {
			return fmt.Errorf("metal name is required")
		}
		if names[m.Name] {
			return fmt.Errorf("duplicate metal name %q", m.Name)
		}
		names[m.Name] = true
		metals[m.Name] = true
		if m.Interface < 0 || m.Interface > len(d.Oxides) {
			return fmt.Errorf("metal %q: interface %d out of range", m.Name, m.Interface)
		}
		if (m.ThicknessUm > 0) == (m.ThicknessKA > 0) {
			return fmt.Errorf("metal %q: exactly one of thickness_um and thickness_ka is required", m.Name)
		}
		if m.SheetMohmSq <= 0 {
			return fmt.Errorf("metal %q: sheet resistance must be positive", m.Name)
		}
		if _, err := m.direction(); err != nil {
			return err
		}
	}
	for _, v := range d.Vias {
		if v.Name == "" {
			return fmt.Errorf("via name is required")
		}
		if names[v.Name] {
			return fmt.Errorf("duplicate via name %q", v.Name)
		}
		names[v.Name] = true
		if !metals[v.Bottom] || !metals[v.Top] {
			return fmt.Errorf("via %q: unknown metal %q or %q", v.Name, v.Bottom, v.Top)
		}
		if v.ResistanceMohm <= 0 {
			return fmt.Errorf("via %q: resistance must be positive", v.Name)
		}
		if v.WidthUm <= 0 {
			return fmt.Errorf("via %q: width must be positive", v.Name)
		}
		if v.SpacingUm < 0 {
			return fmt.Errorf("via %q: spacing must not be negative", v.Name)
		}
	}
	return nil
}

// Build constructs a substrate stack from the definition.
func (d *Definition) Build() (*stack.Stack, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	s := stack.New(stack.BulkLayer{
		Thickness:   d.Bulk.ThicknessUm * units.UM,
		EpsilonRel:  d.Bulk.EpsilonRel,
		Resistivity: d.Bulk.ResistivityOhmCm * units.OhmCm,
		LossTangent: d.Bulk.LossTangent,
	})
	for _, ox := range d.Oxides {
		s.AddOxideLayerOnTop(stack.OxideLayer{
			Thickness:   ox.thickness(),
			EpsilonRel:  ox.EpsilonRel,
			LossTangent: ox.LossTangent,
		})
	}
	for _, m := range d.Metals {
		dir, err := m.direction()
		if err != nil {
			return nil, err
		}
		metal := stack.NewMetalLayer(m.Name, m.thickness(), m.SheetMohmSq*units.MOhmSq, dir)
		if err := s.AddMetalLayer(metal, m.Interface); err != nil {
			return nil, err
		}
	}
	for _, v := range d.Vias {
		via := stack.NewVia(v.Name, v.ResistanceMohm*units.MOhm, v.WidthUm*units.UM, v.SpacingUm*units.UM)
		if err := s.AddVia(via, v.Bottom, v.Top); err != nil {
			return nil, err
		}
	}
	return s, nil
}
