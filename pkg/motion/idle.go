package motion

import "math"

// Relative gains, phase offsets and rate ratios of the secondary idle
// oscillators, tuned against the primary chest breathing and spine sway.
const (
	upperChestGain  = 0.6
	upperChestPhase = 0.5

	spineYawGain  = 0.8
	spineRollGain = 0.6
	spineRollRate = 1.2

	hipsYawGain   = 0.4
	hipsYawPhase  = 0.8
	hipsRollGain  = 0.3
	hipsRollRate  = 0.8
)

// IdleDelta is one frame's additive rotation deltas in radians. Fields
// name the joint and local axis they accumulate onto.
type IdleDelta struct {
	ChestPitch      float64
	UpperChestPitch float64
	SpineYaw        float64
	SpineRoll       float64
	HipsYaw         float64
	HipsRoll        float64
}

// IdleDeltas evaluates the breathing and sway oscillators at elapsed
// time t for a frame of length dt (both seconds).
//
// Deltas are velocity-style: each frame's value is scaled by dt and
// accumulated onto the current joint rotation, so the offsets wander
// within a bounded envelope instead of retracing a fixed curve. The
// wander re-centers whenever the pose snapshot is re-applied.
func IdleDeltas(t, dt float64, p Params) IdleDelta {
	bi, bs := p.BreathingIntensity, p.BreathingSpeed
	si, ss := p.SwayIntensity, p.SwaySpeed

	return IdleDelta{
		ChestPitch:      math.Sin(t*bs) * bi * dt,
		UpperChestPitch: math.Sin(t*bs+upperChestPhase) * bi * upperChestGain * dt,
		SpineYaw:        math.Sin(t*ss) * si * spineYawGain * dt,
		SpineRoll:       math.Cos(t*ss*spineRollRate) * si * spineRollGain * dt,
		HipsYaw:         math.Sin(t*ss+hipsYawPhase) * si * hipsYawGain * dt,
		HipsRoll:        math.Cos(t*ss*hipsRollRate) * si * hipsRollGain * dt,
	}
}

// MaxStep returns the largest magnitude any single idle delta can take
// for a frame of length dt: the primary breathing term at full swing.
func MaxStep(dt float64, p Params) float64 {
	m := p.BreathingIntensity
	if p.SwayIntensity > m {
		m = p.SwayIntensity
	}
	return m * dt
}
