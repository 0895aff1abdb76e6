package motion

// Offset is an additive rotation nudge in radians, applied on top of
// the primary head pose after smoothing. Secondary sources (speech
// wobble) produce offsets; they never feed back into smoothing state.
type Offset struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Add returns the sum of two offsets.
func (o Offset) Add(other Offset) Offset {
	return Offset{
		Pitch: o.Pitch + other.Pitch,
		Yaw:   o.Yaw + other.Yaw,
		Roll:  o.Roll + other.Roll,
	}
}

// Clamp limits each axis symmetrically to the magnitudes in limit.
func (o Offset) Clamp(limit Offset) Offset {
	return Offset{
		Pitch: clampAbs(o.Pitch, limit.Pitch),
		Yaw:   clampAbs(o.Yaw, limit.Yaw),
		Roll:  clampAbs(o.Roll, limit.Roll),
	}
}

// IsZero reports whether all axes are exactly zero.
func (o Offset) IsZero() bool {
	return o.Pitch == 0 && o.Yaw == 0 && o.Roll == 0
}

func clampAbs(v, limit float64) float64 {
	if limit < 0 {
		limit = -limit
	}
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
