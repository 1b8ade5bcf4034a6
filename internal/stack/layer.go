// Package stack models a planar semiconductor substrate stack: a bulk
// layer, a bottom-to-top sequence of oxide layers separated by interfaces,
// metal layers attached at interfaces, and vias connecting metals. It
// implements the transformations needed to prepare the stack for
// electromagnetic simulation: standardization, oxide splitting, and
// merge-based simplification.
package stack

// BulkLayer is the single base layer of a substrate stack.
// All values are base SI: meters for thickness, Ohm*m for resistivity.
type BulkLayer struct {
	Thickness   float64 // m
	EpsilonRel  float64 // relative permittivity
	Resistivity float64 // Ohm*m
	LossTangent float64 // dimensionless
}

// OxideLayer is a dielectric layer above the bulk.
type OxideLayer struct {
	Thickness   float64 // m
	EpsilonRel  float64 // relative permittivity
	LossTangent float64 // dimensionless
}

// LayerRef is a stable handle into the stack's oxide layer arena. Handles
// stay valid across split and merge operations; layers removed by a merge
// are marked dead in the arena, never reused.
type LayerRef int

// InterfaceRef is a stable handle into the stack's interface arena.
type InterfaceRef int

// NoRef marks an unset layer or interface handle.
const NoRef = -1

// layerEntry is an oxide layer arena slot.
type layerEntry struct {
	ox   OxideLayer
	dead bool
}

// ifaceEntry is an interface arena slot. The layers below and above an
// interface are implied by its position in the stack order: interface k
// sits above oxide k-1 (or the bulk for k == 0) and below oxide k.
type ifaceEntry struct {
	metal string // name of the attached metal, "" if none
	dead  bool
}
