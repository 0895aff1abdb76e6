// Package motion holds the pure math behind avatar movement: idle
// breathing and sway oscillators, pointer tracking targets, smoothing,
// and additive offsets. Functions here take time and parameters in and
// return rotation values out; they keep no state, so one set serves
// any number of avatar instances.
package motion

// Default idle motion tuning. Intensities are radians per second of
// accumulated rotation velocity; speeds are radians per second of
// oscillator phase.
const (
	DefaultBreathingIntensity = 0.035
	DefaultBreathingSpeed     = 1.1
	DefaultSwayIntensity      = 0.025
	DefaultSwaySpeed          = 0.7
)

// Params holds the idle motion tuning for one avatar.
type Params struct {
	BreathingIntensity float64
	BreathingSpeed     float64
	SwayIntensity      float64
	SwaySpeed          float64
}

// DefaultParams returns the built-in tuning.
func DefaultParams() Params {
	return Params{
		BreathingIntensity: DefaultBreathingIntensity,
		BreathingSpeed:     DefaultBreathingSpeed,
		SwayIntensity:      DefaultSwayIntensity,
		SwaySpeed:          DefaultSwaySpeed,
	}
}

// Scaled returns a copy with both intensities multiplied by f. Speeds
// are untouched so scaling changes amplitude, not rhythm. Negative f
// is treated as zero.
func (p Params) Scaled(f float64) Params {
	if f < 0 {
		f = 0
	}
	p.BreathingIntensity *= f
	p.SwayIntensity *= f
	return p
}
