// Package render draws labeled substrate stack diagrams. The diagram
// shows every oxide layer shaded by permittivity, interface numbers and
// positions, and the attached metals and vias with their derived
// electrical properties. Rendering consumes only the stack's read
// accessors; all layout settings travel in an explicit Options value.
package render

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Options configures diagram layout. Zero values are not usable; start
// from DefaultOptions.
type Options struct {
	PageWidth  vg.Length // Width of the output page
	PageHeight vg.Length // Height of a single page
	Pages      int       // Number of pages the stack is stretched across
	Margin     vg.Length // Vertical padding above and below the stack
	FontSize   vg.Length

	MetalColor color.Color
	ViaColor   color.Color
}

// DefaultOptions returns A4-based defaults: a diagram three pages tall
// rendered as one continuous page.
func DefaultOptions() Options {
	return Options{
		PageWidth:  210 * vg.Millimeter,
		PageHeight: 297 * vg.Millimeter,
		Pages:      3,
		Margin:     15 * vg.Millimeter,
		FontSize:   10,
		MetalColor: color.RGBA{R: 0x80, G: 0xcc, B: 0xff, A: 0xff},
		ViaColor:   color.RGBA{R: 0xcc, G: 0xcc, B: 0xff, A: 0xff},
	}
}
