package preview

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// fill paints the whole image with one color.
func fill(img *image.NRGBA, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := (y - b.Min.Y) * img.Stride
		for x := b.Min.X; x < b.Max.X; x++ {
			i := off + (x-b.Min.X)*4
			img.Pix[i] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
}

// drawLine strokes a straight segment with a square brush of the given
// radius. Out-of-bounds pixels are clipped per sample.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 float64, c color.NRGBA, radius int) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		brush(img, int(x0+dx*t+0.5), int(y0+dy*t+0.5), radius, c)
	}
}

// drawDot stamps a filled square of the given radius.
func drawDot(img *image.NRGBA, x, y float64, radius int, c color.NRGBA) {
	brush(img, int(x+0.5), int(y+0.5), radius, c)
}

func brush(img *image.NRGBA, x, y, radius int, c color.NRGBA) {
	b := img.Bounds()
	for by := y - radius; by <= y+radius; by++ {
		if by < b.Min.Y || by >= b.Max.Y {
			continue
		}
		for bx := x - radius; bx <= x+radius; bx++ {
			if bx < b.Min.X || bx >= b.Max.X {
				continue
			}
			i := (by-b.Min.Y)*img.Stride + (bx-b.Min.X)*4
			img.Pix[i] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
}

// downsample scales the supersampled frame down to the target size with
// CatmullRom filtering. Frames are fully opaque so no premultiply pass
// is needed.
func downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
