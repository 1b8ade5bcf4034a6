// Package units provides unit multiplier constants for substrate stack
// definitions. All quantities are stored internally in base SI units
// (meters, Ohm*m, Ohm/sq, Ohm); callers multiply values by the constant
// for the unit they are working in.
package units

// Length units, in meters.
const (
	M  = 1.0     // meter
	MM = 1e-3    // millimeter
	UM = 1e-6    // micrometer
	A  = 1e-10   // Angstrom
	KA = 1e3 * A // kiloAngstrom
)

// Resistivity units, in Ohm*m.
const (
	OhmM  = 1.0
	OhmCm = 1e-2
)

// Conductivity units, in Siemens/m.
const (
	SPerM = 1.0
)

// Sheet resistance units, in Ohm/square.
const (
	OhmSq  = 1.0
	MOhmSq = 1e-3
)

// Resistance units, in Ohm.
const (
	Ohm  = 1.0
	MOhm = 1e-3
)
