package preview

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirrorstage/go-avatar/pkg/rig"
	"github.com/mirrorstage/go-avatar/pkg/scene"
	"github.com/mirrorstage/go-avatar/pkg/vrm"
)

func testLighting() *scene.Lighting {
	return scene.NewLighting(0.95, 0.55, 0.25)
}

// threeJointAsset builds a minimal hips-spine-head rig.
func threeJointAsset() *vrm.Asset {
	nodes := []rig.Node{
		{Name: "hips", Parent: -1, Rest: mgl64.QuatIdent()},
		{Name: "spine", Parent: 0, Translation: mgl64.Vec3{0, 0.3, 0}, Rest: mgl64.QuatIdent()},
		{Name: "head", Parent: 1, Translation: mgl64.Vec3{0, 0.5, 0}, Rest: mgl64.QuatIdent()},
	}
	humanoid := map[rig.BoneName]int{
		rig.BoneHips:  0,
		rig.BoneSpine: 1,
		rig.BoneHead:  2,
	}
	return &vrm.Asset{Kind: vrm.KindRigged, Name: "test", Rig: rig.New(nodes, humanoid)}
}

func TestRenderer_OutputDimensions(t *testing.T) {
	r := NewRenderer(testLighting())

	for _, asset := range []*vrm.Asset{
		threeJointAsset(),
		{Kind: vrm.KindMesh, Name: "mesh"},
		{Kind: vrm.KindPlaceholder, Name: "none"},
	} {
		img := r.Render(asset, 0.7)
		b := img.Bounds()
		if b.Dx() != scene.LogicalWidth || b.Dy() != scene.LogicalHeight {
			t.Errorf("kind %v: got %dx%d, want %dx%d",
				asset.Kind, b.Dx(), b.Dy(), scene.LogicalWidth, scene.LogicalHeight)
		}
	}
}

func TestRenderer_SkeletonDrawsSomething(t *testing.T) {
	r := NewRenderer(testLighting())
	img := r.Render(threeJointAsset(), 0)

	changed := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != background.R || img.Pix[i+1] != background.G || img.Pix[i+2] != background.B {
			changed++
		}
	}
	if changed == 0 {
		t.Error("expected skeleton strokes to modify the frame")
	}
}

func TestRenderer_LightScaleDimsStroke(t *testing.T) {
	bright := testLighting()
	dim := testLighting()
	dim.SetScale(0)

	cBright := shadeColor(bright.State())
	cDim := shadeColor(dim.State())
	if cDim.R >= cBright.R {
		t.Errorf("expected dimmer stroke at scale 0: %d vs %d", cDim.R, cBright.R)
	}
	if cDim.R == 0 {
		t.Error("expected ambient floor to keep the stroke visible at scale 0")
	}
}

func TestRenderer_PlaceholderSpinMovesBox(t *testing.T) {
	r := NewRenderer(testLighting())
	a := &vrm.Asset{Kind: vrm.KindPlaceholder, Name: "none"}

	f0 := r.Render(a, 0)
	f1 := r.Render(a, 0.8)
	if bytes.Equal(f0.Pix, f1.Pix) {
		t.Error("expected different frames for different spin angles")
	}
}

func TestRenderer_LabelStampsModelTag(t *testing.T) {
	r := NewRenderer(testLighting())
	img := r.Render(&vrm.Asset{Kind: vrm.KindMesh, Name: "prop"}, 0)

	// The card is centered; only the label touches the bottom strip.
	b := img.Bounds()
	changed := 0
	for y := b.Dy() - 16; y < b.Dy(); y++ {
		for x := 0; x < 120; x++ {
			c := img.NRGBAAt(x, y)
			if c.R != background.R || c.G != background.G || c.B != background.B {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Error("expected label glyphs in the bottom-left corner")
	}
}

func TestEncodeWebP_Magic(t *testing.T) {
	r := NewRenderer(testLighting())
	img := r.Render(&vrm.Asset{Kind: vrm.KindPlaceholder, Name: "none"}, 0)

	data, err := EncodeWebP(img)
	if err != nil {
		t.Fatalf("EncodeWebP failed: %v", err)
	}
	if len(data) < 12 {
		t.Fatalf("webp too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("bad container magic: %q %q", data[0:4], data[8:12])
	}
}
