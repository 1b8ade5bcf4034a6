package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"stackup/internal/stack"
)

// Preview renders a quick raster view of the stack into an RGBA image of
// the given size: oxide bands shaded by permittivity, metal and via boxes,
// and name labels. It trades the diagram's full annotation for speed and
// zero font setup.
func Preview(s *stack.Stack, width, height int, opts Options) (*image.RGBA, error) {
	total := s.Height()
	if total <= 0 {
		return nil, fmt.Errorf("render: stack has no oxide layers")
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	boxW := width * 3 / 4
	// Pixels per meter; y is flipped so the stack grows upward.
	scale := float64(height) / total
	yPix := func(pos float64) int { return height - int(pos*scale) }

	for k := 0; k < s.OxideCount(); k++ {
		ox := s.Oxide(k)
		shade := 1.0 - ox.EpsilonRel/20.0
		if shade < 0 {
			shade = 0
		}
		g := uint8(shade * 0xff)
		bottom := s.InterfacePosition(k)
		fillBox(img, 0, yPix(bottom+ox.Thickness), boxW, yPix(bottom), color.Gray{Y: g})
		label(img, boxW/2, (yPix(bottom)+yPix(bottom+ox.Thickness))/2,
			fmt.Sprintf("eps %g", ox.EpsilonRel))
	}

	for _, m := range s.Metals() {
		bottomIdx, topIdx := s.MetalInterfaces(m)
		var y0 float64
		if m.Direction == stack.Down {
			y0 = s.InterfacePosition(topIdx) - m.Thickness
		} else {
			y0 = s.InterfacePosition(bottomIdx)
		}
		x0 := boxW / 8
		fillBox(img, x0, yPix(y0+m.Thickness), boxW/2, yPix(y0), opts.MetalColor)
		label(img, x0+boxW/4, (yPix(y0)+yPix(y0+m.Thickness))/2, m.Name)

		if v, ok := s.ViaByBottomMetal(m.Name); ok {
			h, err := s.ViaHeight(v)
			if err != nil {
				return nil, err
			}
			vy := y0 + m.Thickness
			fillBox(img, x0+boxW/8, yPix(vy+h), boxW/4, yPix(vy), opts.ViaColor)
			label(img, x0+boxW/4, (yPix(vy)+yPix(vy+h))/2, v.Name)
		}
	}
	return img, nil
}

// WritePreviewPNG renders a preview and encodes it as PNG.
func WritePreviewPNG(s *stack.Stack, width, height int, opts Options, w io.Writer) error {
	img, err := Preview(s, width, height, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// fillBox fills the rectangle spanning (x0,y0)-(x1,y1) and draws a 1px
// outline.
func fillBox(img *image.RGBA, x0, y0, x1, y1 int, col color.Color) {
	r := image.Rect(x0, y0, x1, y1).Intersect(img.Bounds())
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Src)
	outline := image.NewUniform(color.Black)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), outline, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), outline, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), outline, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), outline, image.Point{}, draw.Src)
}

// label draws centered text at the given pixel position.
func label(img *image.RGBA, cx, cy int, s string) {
	face := basicfont.Face7x13
	w := len(s) * face.Advance
	d := &xfont.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(cx-w/2, cy+face.Height/2),
	}
	d.DrawString(s)
}
