// Package preview renders avatar stills for the /ws/preview stream and
// the poseinfo tool. It draws a stick-figure view of the rig rather
// than the skinned mesh; bodies own the real rendering, the preview is
// a monitoring aid.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mirrorstage/go-avatar/pkg/rig"
	"github.com/mirrorstage/go-avatar/pkg/scene"
	"github.com/mirrorstage/go-avatar/pkg/vrm"
)

const (
	supersample = 2
	marginPx    = 16 // per supersampled axis, like the logical margin
)

var background = color.NRGBA{R: 24, G: 26, B: 32, A: 255}

// Renderer draws preview frames at the logical resolution. It reads
// lighting state on every frame so runtime adjustments show up
// immediately.
type Renderer struct {
	lights *scene.Lighting
}

// NewRenderer creates a renderer bound to the given lighting state.
func NewRenderer(lights *scene.Lighting) *Renderer {
	return &Renderer{lights: lights}
}

// Render draws one preview frame for the asset. spin is the current
// placeholder rotation and is ignored for other kinds.
func (r *Renderer) Render(asset *vrm.Asset, spin float64) *image.NRGBA {
	w, h := scene.LogicalWidth, scene.LogicalHeight
	rw, rh := w*supersample, h*supersample

	img := image.NewNRGBA(image.Rect(0, 0, rw, rh))
	fill(img, background)

	shade := shadeColor(r.lights.State())

	switch asset.Kind {
	case vrm.KindRigged:
		drawSkeleton(img, asset.Rig, shade)
	case vrm.KindMesh:
		drawCard(img, shade)
	case vrm.KindPlaceholder:
		drawSpinBox(img, spin, shade)
	}

	out := downsample(img, w, h)
	drawLabel(out, fmt.Sprintf("%s (%s)", asset.Name, asset.Kind), shade)
	return out
}

// drawLabel writes the model tag into the bottom-left corner. Drawn
// after downsampling so the glyphs stay crisp.
func drawLabel(img *image.NRGBA, s string, c color.NRGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, img.Bounds().Dy()-4),
	}
	d.DrawString(s)
}

// shadeColor maps the effective light levels onto the stroke color.
// Ambient keeps the figure visible even at lighting scale zero.
func shadeColor(ls scene.LightState) color.NRGBA {
	level := 0.15 + 0.55*ls.Directional + 0.45*ls.Ambient
	if level > 1 {
		level = 1
	}
	if level < 0 {
		level = 0
	}
	v := uint8(level * 255)
	return color.NRGBA{R: v, G: v, B: uint8(math.Min(float64(v)+12, 255)), A: 255}
}

// drawSkeleton projects the rig's joint positions orthographically and
// strokes a segment from each joint to its nearest joint ancestor.
func drawSkeleton(img *image.NRGBA, rg *rig.Rig, c color.NRGBA) {
	bones := rg.Bones()
	if len(bones) == 0 {
		return
	}

	positions := rg.WorldPositions()
	nodes := rg.Nodes()

	jointNodes := make(map[int]bool, len(bones))
	for _, b := range bones {
		j, _ := rg.Joint(b)
		jointNodes[j.Node] = true
	}

	// Frame on the joint bounding box, mostly the vertical span.
	minV := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for n := range jointNodes {
		p := positions[n]
		for k := 0; k < 3; k++ {
			if p[k] < minV[k] {
				minV[k] = p[k]
			}
			if p[k] > maxV[k] {
				maxV[k] = p[k]
			}
		}
	}

	center := minV.Add(maxV).Mul(0.5)
	spanX := maxV.X() - minV.X()
	spanY := maxV.Y() - minV.Y()
	if spanX < 0.001 {
		spanX = 0.001
	}
	if spanY < 0.001 {
		spanY = 0.001
	}

	b := img.Bounds()
	margin := float64(marginPx * supersample)
	scaleX := (float64(b.Dx()) - 2*margin) / spanX
	scaleY := (float64(b.Dy()) - 2*margin) / spanY
	scale := math.Min(scaleX, scaleY)

	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2
	project := func(p mgl64.Vec3) (float64, float64) {
		return cx + (p.X()-center.X())*scale, cy - (p.Y()-center.Y())*scale
	}

	// Stroke each joint to its nearest joint ancestor.
	for n := range jointNodes {
		parent := nodes[n].Parent
		for parent >= 0 && parent < len(nodes) && !jointNodes[parent] {
			parent = nodes[parent].Parent
		}
		if parent < 0 || parent >= len(nodes) {
			continue
		}
		x0, y0 := project(positions[n])
		x1, y1 := project(positions[parent])
		drawLine(img, x0, y0, x1, y1, c, supersample)
	}

	// Mark the joints themselves.
	for n := range jointNodes {
		x, y := project(positions[n])
		drawDot(img, x, y, 2*supersample, c)
	}
}

// drawCard draws the static stand-in for mesh-only models: a card
// outline with crossed diagonals.
func drawCard(img *image.NRGBA, c color.NRGBA) {
	b := img.Bounds()
	w := float64(b.Dx()) * 0.6
	h := float64(b.Dy()) * 0.4
	x0 := (float64(b.Dx()) - w) / 2
	y0 := (float64(b.Dy()) - h) / 2
	x1, y1 := x0+w, y0+h

	drawLine(img, x0, y0, x1, y0, c, supersample)
	drawLine(img, x1, y0, x1, y1, c, supersample)
	drawLine(img, x1, y1, x0, y1, c, supersample)
	drawLine(img, x0, y1, x0, y0, c, supersample)
	drawLine(img, x0, y0, x1, y1, c, supersample)
	drawLine(img, x1, y0, x0, y1, c, supersample)
}

// cube edge list as vertex index pairs. Vertices are the corners of a
// unit cube in binary order (bit 0 = x, bit 1 = y, bit 2 = z).
var cubeEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// drawSpinBox draws the placeholder: a wireframe cube rotating about
// the vertical axis by the given angle.
func drawSpinBox(img *image.NRGBA, spin float64, c color.NRGBA) {
	b := img.Bounds()
	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2
	s := 0.35 * math.Min(float64(b.Dx()), float64(b.Dy()))

	sin, cos := math.Sincos(spin)

	var px, py [8]float64
	for i := 0; i < 8; i++ {
		x := float64(i&1)*2 - 1
		y := float64(i>>1&1)*2 - 1
		z := float64(i>>2&1)*2 - 1

		rx := x*cos + z*sin
		rz := -x*sin + z*cos

		px[i] = cx + rx*s*0.5
		py[i] = cy - y*s*0.5 + rz*s*0.15
	}

	for _, e := range cubeEdges {
		drawLine(img, px[e[0]], py[e[0]], px[e[1]], py[e[1]], c, supersample)
	}
}
