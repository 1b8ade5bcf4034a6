package stack

// Via is a vertical connector between two metal layers. A via drawn for
// simulation is a single solid rectangle standing in for an array of
// discrete vias; Width and Spacing describe the array so the equivalent
// resistivity can be derived.
type Via struct {
	Name       string
	Resistance float64 // Ohm
	Width      float64 // m
	Spacing    float64 // m, center-to-center gap in the via array (0 = solid)

	bottomMetal string
	topMetal    string
}

// NewVia creates an unattached via.
func NewVia(name string, resistance, width, spacing float64) *Via {
	return &Via{
		Name:       name,
		Resistance: resistance,
		Width:      width,
		Spacing:    spacing,
	}
}

// Fill returns the fraction of the via array's footprint that is actually
// conductive: effective via area over total array area.
func (v *Via) Fill() float64 {
	pitch := v.Width + v.Spacing
	return v.Width * v.Width / (pitch * pitch)
}

// BottomMetal returns the name of the lower connected metal. Assigned by
// Stack.AddVia from the metals' vertical positions, not argument order.
func (v *Via) BottomMetal() string { return v.bottomMetal }

// TopMetal returns the name of the upper connected metal.
func (v *Via) TopMetal() string { return v.topMetal }
