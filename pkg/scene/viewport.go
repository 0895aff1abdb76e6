package scene

import "sync"

// Logical render resolution. Bodies letterbox or scale this output into
// whatever container they sit in; resize events never change it.
const (
	LogicalWidth  = 200
	LogicalHeight = 480
)

// Viewport tracks the container dimensions reported by the active body
// while pinning the logical render resolution.
type Viewport struct {
	mu         sync.RWMutex
	containerW int
	containerH int
}

// NewViewport creates a viewport with the container assumed to match
// the logical resolution until a resize event arrives.
func NewViewport() *Viewport {
	return &Viewport{
		containerW: LogicalWidth,
		containerH: LogicalHeight,
	}
}

// Resize records new container dimensions. Non-positive dimensions are
// ignored.
func (v *Viewport) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	v.mu.Lock()
	v.containerW, v.containerH = w, h
	v.mu.Unlock()
}

// Resolution returns the logical render resolution, which is fixed.
func (v *Viewport) Resolution() (w, h int) {
	return LogicalWidth, LogicalHeight
}

// Container returns the last reported container dimensions.
func (v *Viewport) Container() (w, h int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.containerW, v.containerH
}

// NormalizePointer converts container pixel coordinates to the [-1,1]
// range the tracking math expects, +y up. Bodies that already
// normalize skip this.
func (v *Viewport) NormalizePointer(px, py float64) (x, y float64) {
	w, h := v.Container()
	x = (px/float64(w))*2 - 1
	y = -((py/float64(h))*2 - 1)
	return clampUnit(x), clampUnit(y)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
