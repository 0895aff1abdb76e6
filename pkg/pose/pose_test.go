package pose

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mirrorstage/go-avatar/pkg/rig"
)

const samplePose = `{
	"boneDefinitions": {
		"J_Bip_C_Hips": {"x": 0.1, "y": 0.2, "z": 0.3, "w": 0.9},
		"J_Bip_C_Head": {"x": 0, "y": 0, "z": 0, "w": 1},
		"J_Bip_L_UpperArm": {"x": -0.05, "y": 0.0, "z": 0.6, "w": 0.8},
		"J_Sec_Hair1_01": {"x": 0.4, "y": 0.4, "z": 0.4, "w": 0.4}
	}
}`

func quatEq(a, b mgl64.Quat, tol float64) bool {
	return math.Abs(a.W-b.W) <= tol &&
		math.Abs(a.V.X()-b.V.X()) <= tol &&
		math.Abs(a.V.Y()-b.V.Y()) <= tol &&
		math.Abs(a.V.Z()-b.V.Z()) <= tol
}

func TestConvertOrientation(t *testing.T) {
	q := mgl64.Quat{W: 0.9, V: mgl64.Vec3{0.1, 0.2, 0.3}}
	got := ConvertOrientation(q)

	want := mgl64.Quat{W: 0.9, V: mgl64.Vec3{-0.1, -0.2, 0.3}}
	if !quatEq(got, want, 0) {
		t.Errorf("ConvertOrientation() = %+v, want %+v", got, want)
	}
}

func TestConvertOrientationInvolution(t *testing.T) {
	quats := []mgl64.Quat{
		mgl64.QuatIdent(),
		{W: 0.7, V: mgl64.Vec3{0.1, -0.5, 0.2}},
		{W: -0.3, V: mgl64.Vec3{0.9, 0.1, -0.1}},
	}

	for _, q := range quats {
		if got := ConvertOrientation(ConvertOrientation(q)); !quatEq(got, q, 0) {
			t.Errorf("double conversion of %+v gives %+v", q, got)
		}
	}
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(samplePose), "sample")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if s.Name != "sample" {
		t.Errorf("Name = %q, want %q", s.Name, "sample")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (accessory bones skipped)", s.Len())
	}

	hips, ok := s.Get(rig.BoneHips)
	if !ok {
		t.Fatal("hips missing")
	}
	want := mgl64.Quat{W: 0.9, V: mgl64.Vec3{-0.1, -0.2, 0.3}}
	if !quatEq(hips, want, 1e-12) {
		t.Errorf("hips = %+v, want converted %+v", hips, want)
	}

	if _, ok := s.Get(rig.BoneName("J_Sec_Hair1_01")); ok {
		t.Error("accessory bone should not be mapped")
	}
}

func TestParseWithoutBoneDefinitions(t *testing.T) {
	s, err := Parse([]byte(`{}`), "empty")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse([]byte("definitely not json"), "bad"); err == nil {
		t.Error("Parse() should fail on malformed input")
	}
}

func TestSynthesizeFingers(t *testing.T) {
	s := NewSnapshot("hands")
	SynthesizeFingers(s)

	if s.Len() != 30 {
		t.Fatalf("Len() = %d, want 30 finger bones", s.Len())
	}

	// Left fingers curl negative about Z.
	left, _ := s.Get(rig.BoneLeftIndexProximal)
	if !quatEq(left, rig.EulerToQuat(mgl64.Vec3{0, 0, -0.30}), 1e-12) {
		t.Errorf("left index proximal = %+v", left)
	}

	// Right hand mirrors the sign.
	right, _ := s.Get(rig.BoneRightIndexProximal)
	if !quatEq(right, rig.EulerToQuat(mgl64.Vec3{0, 0, 0.30}), 1e-12) {
		t.Errorf("right index proximal = %+v", right)
	}

	// Thumbs curl about Y.
	thumb, _ := s.Get(rig.BoneLeftThumbMetacarpal)
	if !quatEq(thumb, rig.EulerToQuat(mgl64.Vec3{0, -0.20, 0}), 1e-12) {
		t.Errorf("left thumb metacarpal = %+v", thumb)
	}
}

func TestSynthesizeFingersReplacesExisting(t *testing.T) {
	s := NewSnapshot("hands")
	s.Set(rig.BoneLeftIndexDistal, mgl64.QuatRotate(1.5, mgl64.Vec3{1, 0, 0}))

	SynthesizeFingers(s)
	got, _ := s.Get(rig.BoneLeftIndexDistal)
	if !quatEq(got, rig.EulerToQuat(mgl64.Vec3{0, 0, -0.20}), 1e-12) {
		t.Errorf("stale finger data survived: %+v", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wave.json")
	if err := os.WriteFile(path, []byte(samplePose), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Name != "wave" {
		t.Errorf("Name = %q, want %q", s.Name, "wave")
	}
	if s.Source != path {
		t.Errorf("Source = %q, want %q", s.Source, path)
	}
	// 3 mapped bones plus 30 synthesized fingers.
	if s.Len() != 33 {
		t.Errorf("Len() = %d, want 33", s.Len())
	}
}

func TestLoadEmptySource(t *testing.T) {
	if _, err := Load(context.Background(), ""); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Load(\"\") error = %v, want ErrEmptySource", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), "/does/not/exist.json"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePose))
	}))
	defer srv.Close()

	s, err := Load(context.Background(), srv.URL+"/poses/bow.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Name != "bow" {
		t.Errorf("Name = %q, want %q", s.Name, "bow")
	}
}

func TestLoadURLServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := Load(context.Background(), srv.URL+"/bad.json"); err == nil {
		t.Error("Load() should surface HTTP errors")
	}
}

func TestNameFrom(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"poses/wave.json", "wave"},
		{"/abs/path/bow.json", "bow"},
		{"http://example.com/poses/stand.json?v=2", "stand"},
		{"http://example.com/poses/sit.json#frag", "sit"},
		{"noext", "noext"},
		{"double.pose.json", "double.pose"},
		{"", "pose"},
	}

	for _, tt := range tests {
		if got := nameFrom(tt.source); got != tt.want {
			t.Errorf("nameFrom(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestSnapshotBonesCanonicalOrder(t *testing.T) {
	s := NewSnapshot("ordered")
	s.Set(rig.BoneHead, mgl64.QuatIdent())
	s.Set(rig.BoneHips, mgl64.QuatIdent())
	s.Set(rig.BoneNeck, mgl64.QuatIdent())

	want := []rig.BoneName{rig.BoneHips, rig.BoneNeck, rig.BoneHead}
	got := s.Bones()
	if len(got) != len(want) {
		t.Fatalf("Bones() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bones()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSnapshotClone(t *testing.T) {
	s := NewSnapshot("orig")
	s.Set(rig.BoneHips, mgl64.QuatIdent())

	c := s.Clone()
	c.Set(rig.BoneHips, mgl64.QuatRotate(1, mgl64.Vec3{0, 1, 0}))

	orig, _ := s.Get(rig.BoneHips)
	if !quatEq(orig, mgl64.QuatIdent(), 0) {
		t.Error("mutating a clone changed the original")
	}
}
