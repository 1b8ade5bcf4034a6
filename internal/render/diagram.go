package render

import (
	"fmt"
	"image/color"
	"io"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"stackup/internal/stack"
	"stackup/pkg/units"
)

// Horizontal layout of the diagram, measured from the left edge of the
// oxide boxes. Mirrors the layout of the classic stackup sheets.
const (
	boxLeft         = 25 * vg.Millimeter
	boxWidth        = 160 * vg.Millimeter
	thicknessColumn = 95 * vg.Millimeter
	epsColumn       = 135 * vg.Millimeter
	tickLength      = 7 * vg.Millimeter
	labelGap        = 2 * vg.Millimeter
	metalOffset     = 15 * vg.Millimeter
	metalWidth      = 60 * vg.Millimeter
	viaWidth        = 40 * vg.Millimeter
)

var fontCache = font.NewCache(liberation.Collection())

// Renderer draws one substrate stack.
type Renderer struct {
	s    *stack.Stack
	opts Options
}

// New creates a renderer for the given stack.
func New(s *stack.Stack, opts Options) *Renderer {
	return &Renderer{s: s, opts: opts}
}

// WritePDF renders the diagram as a single tall PDF page.
func (r *Renderer) WritePDF(w io.Writer) error {
	c := vgpdf.New(r.opts.PageWidth, r.pageHeight())
	if err := r.draw(c); err != nil {
		return err
	}
	_, err := c.WriteTo(w)
	return err
}

// WritePNG renders the diagram as a PNG image.
func (r *Renderer) WritePNG(w io.Writer) error {
	c := vgimg.New(r.opts.PageWidth, r.pageHeight())
	if err := r.draw(c); err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: c}
	_, err := png.WriteTo(w)
	return err
}

func (r *Renderer) pageHeight() vg.Length {
	return vg.Length(r.opts.Pages) * r.opts.PageHeight
}

// draw renders the whole diagram onto a vg canvas. The canvas origin is
// the bottom-left corner, so the stack is drawn bottom up as-is.
func (r *Renderer) draw(c vg.Canvas) error {
	opts := r.opts
	regular := fontCache.Lookup(font.Font{Typeface: "Liberation", Variant: "Serif"}, opts.FontSize)
	bold := fontCache.Lookup(font.Font{
		Typeface: "Liberation", Variant: "Serif", Weight: xfont.WeightBold,
	}, opts.FontSize)

	height := r.s.Height()
	if height <= 0 {
		return fmt.Errorf("render: stack has no oxide layers")
	}
	// Vertical scale: canvas length per meter of stack.
	factor := (r.pageHeight() - 2*opts.Margin) / vg.Length(height)

	c.Translate(vg.Point{X: boxLeft, Y: opts.Margin})
	c.SetLineWidth(0.3 * vg.Millimeter)

	total := r.s.InterfaceCount() - 1
	for k := 0; k < r.s.OxideCount(); k++ {
		ox := r.s.Oxide(k)
		y := vg.Length(r.s.InterfacePosition(k)) * factor
		h := vg.Length(ox.Thickness) * factor

		// Oxide box, shaded darker with increasing permittivity.
		shade := 1.0 - ox.EpsilonRel/20.0
		if shade < 0 {
			shade = 0
		}
		g := uint8(shade * 0xff)
		fillRect(c, 0, y, boxWidth, h, color.Gray{Y: g})
		strokeRect(c, 0, y, boxWidth, h)

		c.SetColor(color.Black)
		mid := y + h/2 - opts.FontSize/2
		c.FillString(regular, vg.Point{X: thicknessColumn, Y: mid},
			fmt.Sprintf("d = %g um (%g kA)", ox.Thickness/units.UM, ox.Thickness/units.KA))
		c.FillString(regular, vg.Point{X: epsColumn, Y: mid},
			fmt.Sprintf("eps_r = %g", ox.EpsilonRel))

		r.drawInterface(c, regular, k, total, y)
	}
	top := vg.Length(r.s.InterfacePosition(total)) * factor
	r.drawInterface(c, regular, total, total, top)

	for _, m := range r.s.Metals() {
		if err := r.drawMetal(c, regular, bold, m, factor); err != nil {
			return err
		}
	}
	return nil
}

// drawInterface draws the boundary tick with the interface number counted
// from the bottom, the number counted from the top, and the absolute
// position on the right.
func (r *Renderer) drawInterface(c vg.Canvas, face font.Face, k, total int, y vg.Length) {
	c.SetColor(color.Black)
	line(c, -tickLength, y, 0, y)
	ty := y - r.opts.FontSize/2
	rightString(c, face, -tickLength-labelGap, ty, fmt.Sprintf("%d", k))
	rightString(c, face, -tickLength-8*vg.Millimeter-labelGap, ty, fmt.Sprintf("%d", total-k))

	line(c, boxWidth, y, boxWidth+tickLength/2, y)
	c.FillString(face, vg.Point{X: boxWidth + tickLength/2 + labelGap, Y: ty},
		fmt.Sprintf("%g um", r.s.InterfacePosition(k)/units.UM))
}

// drawMetal draws one metal box with its property labels and, when the
// metal is the bottom end of a via, the via box above it.
func (r *Renderer) drawMetal(c vg.Canvas, regular, bold font.Face, m *stack.MetalLayer, factor vg.Length) error {
	bottom, top := r.s.MetalInterfaces(m)
	var y, h vg.Length
	if m.Direction == stack.Down {
		// Not yet standardized: the metal hangs below its top interface.
		yTop := vg.Length(r.s.InterfacePosition(top)) * factor
		h = vg.Length(m.Thickness) * factor
		y = yTop - h
	} else {
		y = vg.Length(r.s.InterfacePosition(bottom)) * factor
		h = vg.Length(m.Thickness) * factor
	}

	fillRect(c, metalOffset, y, metalWidth, h, r.opts.MetalColor)
	strokeRect(c, metalOffset, y, metalWidth, h)

	text := []string{
		m.Name,
		fmt.Sprintf("d = %g um (%g kA)", m.Thickness/units.UM, m.Thickness/units.KA),
		fmt.Sprintf("sigma = %.3g S/m", m.Conductivity()),
		fmt.Sprintf("Rsheet = %g mOhm/square", m.SheetResistance/units.MOhmSq),
	}
	r.labelBlock(c, regular, bold, metalOffset+metalWidth/2, y+h/2, text)

	if v, ok := r.s.ViaByBottomMetal(m.Name); ok {
		if err := r.drawVia(c, regular, bold, v, y+h, factor); err != nil {
			return err
		}
	}
	return nil
}

// drawVia draws the via box sitting on top of its bottom metal.
func (r *Renderer) drawVia(c vg.Canvas, regular, bold font.Face, v *stack.Via, y vg.Length, factor vg.Length) error {
	height, err := r.s.ViaHeight(v)
	if err != nil {
		return err
	}
	sigma, err := r.s.ViaConductivity(v)
	if err != nil {
		return err
	}
	h := vg.Length(height) * factor
	x := metalOffset + (metalWidth-viaWidth)/2
	fillRect(c, x, y, viaWidth, h, r.opts.ViaColor)
	strokeRect(c, x, y, viaWidth, h)

	text := []string{
		v.Name,
		fmt.Sprintf("h = %g um (%g kA)", height/units.UM, height/units.KA),
		fmt.Sprintf("sigma_eq = %.3g S/m", sigma),
		fmt.Sprintf("R = %g Ohm", v.Resistance),
		fmt.Sprintf("via fill = %g %%", v.Fill()*100),
	}
	r.labelBlock(c, regular, bold, metalOffset+metalWidth/2, y+h/2, text)
	return nil
}

// labelBlock draws a vertically centered block of text lines, first line
// bold.
func (r *Renderer) labelBlock(c vg.Canvas, regular, bold font.Face, cx, cy vg.Length, lines []string) {
	c.SetColor(color.Black)
	y := cy + vg.Length(len(lines)/2)*r.opts.FontSize - r.opts.FontSize/2
	for i, s := range lines {
		face := regular
		if i == 0 {
			face = bold
		}
		centeredString(c, face, cx, y, s)
		y -= r.opts.FontSize
	}
}

func fillRect(c vg.Canvas, x, y, w, h vg.Length, col color.Color) {
	c.SetColor(col)
	c.Fill(rectPath(x, y, w, h))
}

func strokeRect(c vg.Canvas, x, y, w, h vg.Length) {
	c.SetColor(color.Black)
	c.Stroke(rectPath(x, y, w, h))
}

func rectPath(x, y, w, h vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: x, Y: y})
	p.Line(vg.Point{X: x + w, Y: y})
	p.Line(vg.Point{X: x + w, Y: y + h})
	p.Line(vg.Point{X: x, Y: y + h})
	p.Close()
	return p
}

func line(c vg.Canvas, x0, y0, x1, y1 vg.Length) {
	var p vg.Path
	p.Move(vg.Point{X: x0, Y: y0})
	p.Line(vg.Point{X: x1, Y: y1})
	c.Stroke(p)
}

// stringWidth estimates the rendered width of s. An estimate keeps label
// alignment independent of the text shaper.
func stringWidth(face font.Face, s string) vg.Length {
	return face.Font.Size * vg.Length(len(s)) * 0.5
}

func rightString(c vg.Canvas, face font.Face, x, y vg.Length, s string) {
	c.FillString(face, vg.Point{X: x - stringWidth(face, s), Y: y}, s)
}

func centeredString(c vg.Canvas, face font.Face, x, y vg.Length, s string) {
	c.FillString(face, vg.Point{X: x - stringWidth(face, s)/2, Y: y}, s)
}
