package motion

import (
	"math"
	"testing"
)

const frameDt = 1.0 / 60

func TestIdleDeltasBounded(t *testing.T) {
	p := DefaultParams()
	limit := MaxStep(frameDt, p) + 1e-12

	for i := 0; i < 10000; i++ {
		d := IdleDeltas(float64(i)*frameDt, frameDt, p)
		for name, v := range map[string]float64{
			"chest":      d.ChestPitch,
			"upperChest": d.UpperChestPitch,
			"spineYaw":   d.SpineYaw,
			"spineRoll":  d.SpineRoll,
			"hipsYaw":    d.HipsYaw,
			"hipsRoll":   d.HipsRoll,
		} {
			if math.Abs(v) > limit {
				t.Fatalf("t=%d %s delta %v exceeds MaxStep %v", i, name, v, limit)
			}
		}
	}
}

func TestIdleDeltasPeriodic(t *testing.T) {
	p := DefaultParams()
	breathPeriod := 2 * math.Pi / p.BreathingSpeed
	swayPeriod := 2 * math.Pi / p.SwaySpeed

	const tol = 1e-9
	check := func(t *testing.T, name string, a, b float64) {
		t.Helper()
		if math.Abs(a-b) > tol {
			t.Errorf("%s not periodic: %v vs %v one period later", name, a, b)
		}
	}

	for _, t0 := range []float64{0, 0.37, 2.5, 41.3} {
		a := IdleDeltas(t0, frameDt, p)

		breath := IdleDeltas(t0+breathPeriod, frameDt, p)
		check(t, "chest", a.ChestPitch, breath.ChestPitch)
		check(t, "upperChest", a.UpperChestPitch, breath.UpperChestPitch)

		sway := IdleDeltas(t0+swayPeriod, frameDt, p)
		check(t, "spineYaw", a.SpineYaw, sway.SpineYaw)
		check(t, "hipsYaw", a.HipsYaw, sway.HipsYaw)

		// The roll oscillators run at scaled rates, so their periods
		// scale inversely.
		spineRoll := IdleDeltas(t0+swayPeriod/spineRollRate, frameDt, p)
		check(t, "spineRoll", a.SpineRoll, spineRoll.SpineRoll)
		hipsRoll := IdleDeltas(t0+swayPeriod/hipsRollRate, frameDt, p)
		check(t, "hipsRoll", a.HipsRoll, hipsRoll.HipsRoll)
	}
}

func TestIdleDeltasScaleWithDt(t *testing.T) {
	p := DefaultParams()
	a := IdleDeltas(1.5, frameDt, p)
	b := IdleDeltas(1.5, 2*frameDt, p)

	if math.Abs(b.ChestPitch-2*a.ChestPitch) > 1e-12 {
		t.Errorf("doubling dt should double the delta: %v vs %v", a.ChestPitch, b.ChestPitch)
	}
}

func TestIdleDeltasZeroAtZeroIntensity(t *testing.T) {
	d := IdleDeltas(3.2, frameDt, DefaultParams().Scaled(0))
	if d.ChestPitch != 0 || d.SpineYaw != 0 || d.HipsRoll != 0 {
		t.Errorf("zero intensity should produce zero deltas, got %+v", d)
	}
}

func TestParamsScaled(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		wantBI float64
	}{
		{"double", 2, 2 * DefaultBreathingIntensity},
		{"half", 0.5, 0.5 * DefaultBreathingIntensity},
		{"negative clamps to zero", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams().Scaled(tt.factor)
			if math.Abs(p.BreathingIntensity-tt.wantBI) > 1e-12 {
				t.Errorf("BreathingIntensity = %v, want %v", p.BreathingIntensity, tt.wantBI)
			}
			if p.BreathingSpeed != DefaultBreathingSpeed {
				t.Errorf("Scaled must not touch speeds, got %v", p.BreathingSpeed)
			}
		})
	}
}

func TestPointerTarget(t *testing.T) {
	tests := []struct {
		name      string
		px, py    float64
		wantPitch float64
		wantYaw   float64
	}{
		{"center", 0, 0, -0.1, 0},
		{"full right", 1, 0, -0.1, 0.3},
		{"full up", 0, 1, -0.3, 0},
		{"full down", 0, -1, 0.1, 0},
		{"corner", -1, -1, 0.1, -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pitch, yaw := PointerTarget(tt.px, tt.py)
			if math.Abs(pitch-tt.wantPitch) > 1e-12 {
				t.Errorf("pitch = %v, want %v", pitch, tt.wantPitch)
			}
			if math.Abs(yaw-tt.wantYaw) > 1e-12 {
				t.Errorf("yaw = %v, want %v", yaw, tt.wantYaw)
			}
		})
	}
}

func TestLerpConvergesMonotonically(t *testing.T) {
	current, target := 0.0, 1.0
	prev := current
	for i := 0; i < 200; i++ {
		current = Lerp(current, target, HeadSmoothing)
		if current <= prev {
			t.Fatalf("step %d: lerp went backwards (%v -> %v)", i, prev, current)
		}
		if current > target {
			t.Fatalf("step %d: lerp overshot target (%v)", i, current)
		}
		prev = current
	}
	if math.Abs(current-target) > 0.01 {
		t.Errorf("after 200 steps current = %v, want near %v", current, target)
	}
}

func TestLerpFixedPoint(t *testing.T) {
	if got := Lerp(0.42, 0.42, HeadSmoothing); got != 0.42 {
		t.Errorf("Lerp at target = %v, want 0.42", got)
	}
}

func TestEyeGaze(t *testing.T) {
	pitch, yaw := EyeGaze(0, 0)
	if pitch != 0 || yaw != 0 {
		t.Errorf("centered gaze = (%v, %v), want (0, 0)", pitch, yaw)
	}

	_, yawRight := EyeGaze(1, 0)
	if yawRight <= 0 {
		t.Errorf("gaze right yaw = %v, want > 0", yawRight)
	}
	if yawRight > 0.2 {
		t.Errorf("gaze yaw = %v, expected small angle for a far plane", yawRight)
	}

	pitchUp, _ := EyeGaze(0, 1)
	if pitchUp >= 0 {
		t.Errorf("gaze up pitch = %v, want < 0", pitchUp)
	}

	// Symmetry.
	pitchDown, _ := EyeGaze(0, -1)
	if math.Abs(pitchDown+pitchUp) > 1e-12 {
		t.Errorf("gaze pitch not symmetric: up %v down %v", pitchUp, pitchDown)
	}
}

func TestHeadBobStaysSmall(t *testing.T) {
	for i := 0; i < 1000; i++ {
		tm := float64(i) * 0.1
		pitch, yaw := HeadBob(tm)
		if math.Abs(pitch) > headBobPitchAmp || math.Abs(yaw) > headBobYawAmp {
			t.Fatalf("head bob at t=%v out of envelope: (%v, %v)", tm, pitch, yaw)
		}
		if neck := NeckBob(tm); math.Abs(neck) > neckBobPitchAmp {
			t.Fatalf("neck bob at t=%v out of envelope: %v", tm, neck)
		}
	}
}

func TestOffsetAdd(t *testing.T) {
	a := Offset{Pitch: 0.1, Yaw: -0.2, Roll: 0.05}
	b := Offset{Pitch: 0.02, Yaw: 0.2, Roll: -0.1}

	sum := a.Add(b)
	want := Offset{Pitch: 0.12, Yaw: 0, Roll: -0.05}
	if math.Abs(sum.Pitch-want.Pitch) > 1e-12 ||
		math.Abs(sum.Yaw-want.Yaw) > 1e-12 ||
		math.Abs(sum.Roll-want.Roll) > 1e-12 {
		t.Errorf("Add() = %+v, want %+v", sum, want)
	}
}

func TestOffsetClamp(t *testing.T) {
	limit := Offset{Pitch: 0.1, Yaw: 0.2, Roll: 0.05}

	tests := []struct {
		name string
		in   Offset
		want Offset
	}{
		{"inside", Offset{0.05, -0.1, 0.01}, Offset{0.05, -0.1, 0.01}},
		{"over", Offset{1, 1, 1}, Offset{0.1, 0.2, 0.05}},
		{"under", Offset{-1, -1, -1}, Offset{-0.1, -0.2, -0.05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(limit); got != tt.want {
				t.Errorf("Clamp() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOffsetClampNegativeLimit(t *testing.T) {
	got := Offset{Pitch: 0.5}.Clamp(Offset{Pitch: -0.1})
	if got.Pitch != 0.1 {
		t.Errorf("negative limit should clamp by magnitude, got %v", got.Pitch)
	}
}

func TestOffsetIsZero(t *testing.T) {
	if !(Offset{}).IsZero() {
		t.Error("zero offset should report IsZero")
	}
	if (Offset{Yaw: 1e-9}).IsZero() {
		t.Error("nonzero offset should not report IsZero")
	}
}
