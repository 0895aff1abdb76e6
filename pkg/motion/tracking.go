package motion

import "math"

// Pointer tracking gains. The head turns a fraction of the pointer's
// normalized travel; the neck follows at half the head target.
const (
	yawGain   = 0.3
	pitchGain = 0.2
	pitchBias = -0.1

	// HeadSmoothing and NeckSmoothing are the per-frame lerp factors
	// toward the tracking target.
	HeadSmoothing = 0.1
	NeckSmoothing = 0.08

	// NeckFollow is the neck's share of the head target.
	NeckFollow = 0.5
)

// Idle bob layered on the tracking target so a resting head still
// carries life. Two independent oscillators per joint, lower frequency
// than breathing.
const (
	headBobPitchAmp  = 0.02
	headBobPitchRate = 0.8
	headBobYawAmp    = 0.015
	headBobYawRate   = 0.5

	neckBobPitchAmp  = 0.01
	neckBobPitchRate = 0.6
)

// Eye-gaze fallback geometry: the world-space target sits GazeDepth in
// front of the face, offset by the pointer across a half-extent plane.
const (
	GazeDepth      = 2.0
	gazeHalfWidth  = 0.35
	gazeHalfHeight = 0.6
)

// PointerTarget converts a normalized pointer position (x,y in [-1,1])
// to the head rotation target in radians. Negative pitch tilts up, so
// the bias keeps the resting gaze slightly above the horizon.
func PointerTarget(px, py float64) (pitch, yaw float64) {
	return -py*pitchGain + pitchBias, px * yawGain
}

// HeadBob returns the idle bob added to the head target at time t.
func HeadBob(t float64) (pitch, yaw float64) {
	return math.Sin(t*headBobPitchRate) * headBobPitchAmp,
		math.Cos(t*headBobYawRate) * headBobYawAmp
}

// NeckBob returns the smaller idle bob added to the neck target.
func NeckBob(t float64) (pitch float64) {
	return math.Sin(t*neckBobPitchRate) * neckBobPitchAmp
}

// Lerp moves current toward target by factor alpha in [0,1].
func Lerp(current, target, alpha float64) float64 {
	return current + (target-current)*alpha
}

// EyeGaze converts a pointer position to eye rotation angles aimed at
// a world target GazeDepth in front of the avatar. Used when the model
// has eye joints but no head or neck.
func EyeGaze(px, py float64) (pitch, yaw float64) {
	x := px * gazeHalfWidth
	y := py * gazeHalfHeight
	yaw = math.Atan2(x, GazeDepth)
	pitch = math.Atan2(-y, math.Hypot(x, GazeDepth))
	return pitch, yaw
}
