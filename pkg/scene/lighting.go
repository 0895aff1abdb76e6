// Package scene holds the presentation state the renderer consumes:
// lighting intensities and the logical viewport. It carries no 3D
// scene graph; bodies own their own rendering.
package scene

import "sync"

// Lighting applies a runtime scale factor over base light intensities.
// The directional light scales linearly; ambient keeps half of its
// base level at scale zero so the avatar never goes fully dark.
type Lighting struct {
	mu              sync.RWMutex
	baseDirectional float64
	baseAmbient     float64
	baseRim         float64
	scale           float64
}

// LightState is an immutable snapshot of the effective intensities.
type LightState struct {
	Directional float64 `json:"directional"`
	Ambient     float64 `json:"ambient"`
	Rim         float64 `json:"rim"`
	Scale       float64 `json:"scale"`
}

// NewLighting creates a lighting state from base intensities at scale 1.
func NewLighting(directional, ambient, rim float64) *Lighting {
	return &Lighting{
		baseDirectional: directional,
		baseAmbient:     ambient,
		baseRim:         rim,
		scale:           1,
	}
}

// SetScale updates the runtime scale factor. Negative values clamp to
// zero.
func (l *Lighting) SetScale(f float64) {
	if f < 0 {
		f = 0
	}
	l.mu.Lock()
	l.scale = f
	l.mu.Unlock()
}

// Scale returns the current scale factor.
func (l *Lighting) Scale() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scale
}

// Directional returns the effective directional intensity.
func (l *Lighting) Directional() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.baseDirectional * l.scale
}

// Ambient returns the effective ambient intensity. Ambient keeps half
// of its base level at scale zero.
func (l *Lighting) Ambient() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.baseAmbient * (0.5 + 0.5*l.scale)
}

// Rim returns the effective rim intensity. Rim follows the directional
// light.
func (l *Lighting) Rim() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.baseRim * l.scale
}

// State returns a consistent snapshot of the effective intensities.
func (l *Lighting) State() LightState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LightState{
		Directional: l.baseDirectional * l.scale,
		Ambient:     l.baseAmbient * (0.5 + 0.5*l.scale),
		Rim:         l.baseRim * l.scale,
		Scale:       l.scale,
	}
}
