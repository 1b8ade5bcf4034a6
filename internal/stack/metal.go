package stack

// Direction indicates which way a metal layer's thickness grows from its
// attachment interface.
type Direction int

const (
	// Up extends the metal upward from its bottom interface.
	Up Direction = iota
	// Down extends the metal downward from its top interface.
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// MetalLayer is a conductive layer attached to the stack at one interface.
// Before standardization only the interface on the attachment side is set;
// Standardize fills in the opposite one and flips Down metals to Up.
type MetalLayer struct {
	Name            string
	Thickness       float64 // m
	SheetResistance float64 // Ohm/sq
	Direction       Direction

	bottom InterfaceRef
	top    InterfaceRef
}

// NewMetalLayer creates an unattached metal layer.
func NewMetalLayer(name string, thickness, sheetResistance float64, dir Direction) *MetalLayer {
	return &MetalLayer{
		Name:            name,
		Thickness:       thickness,
		SheetResistance: sheetResistance,
		Direction:       dir,
		bottom:          NoRef,
		top:             NoRef,
	}
}

// Resistivity returns the metal's bulk resistivity in Ohm*m.
func (m *MetalLayer) Resistivity() float64 {
	return m.SheetResistance * m.Thickness
}

// Conductivity returns the metal's conductivity in S/m.
func (m *MetalLayer) Conductivity() float64 {
	return 1.0 / m.Resistivity()
}

// Standardized reports whether both boundary interfaces are set and the
// metal extends up.
func (m *MetalLayer) Standardized() bool {
	return m.bottom != NoRef && m.top != NoRef && m.Direction == Up
}

// attached reports whether the metal is attached to a stack.
func (m *MetalLayer) attached() bool {
	return m.bottom != NoRef || m.top != NoRef
}

// attachment returns the interface the metal was attached at: the bottom
// one for Up metals, the top one for Down metals. Valid before and after
// standardization.
func (m *MetalLayer) attachment() InterfaceRef {
	if m.bottom != NoRef {
		return m.bottom
	}
	return m.top
}
