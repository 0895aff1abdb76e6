// Package speech turns incoming voice audio into head sway offsets.
//
// Audio arrives as PCM or Opus packets over the body connection. The
// wobbler runs a small RMS/VAD pipeline over it and keeps a current
// head offset that the frame loop polls once per tick.
package speech

import (
	"math"
	"sync"
	"time"

	"github.com/mirrorstage/go-avatar/pkg/motion"
)

// Analysis parameters.
const (
	AnalysisRate = 24000 // internal analysis sample rate; input is resampled to this
	FrameMS      = 20    // frame size for RMS calculation (ms)
	HopMS        = 10    // hop size between updates (ms)
	FrameSize    = AnalysisRate * FrameMS / 1000
	HopSize      = AnalysisRate * HopMS / 1000

	// Voice activity thresholds (dBFS).
	VADOnThreshold  = -35.0
	VADOffThreshold = -45.0
	VADAttackMS     = 40
	VADReleaseMS    = 250

	// Envelope follower smoothing factor.
	EnvFollowGain = 0.65

	// Master sway amplitude multiplier.
	SwayMaster = 1.5

	// Oscillator frequencies (Hz).
	SwayFreqPitch = 2.2
	SwayFreqYaw   = 0.6
	SwayFreqRoll  = 1.3

	// Oscillator amplitudes (degrees).
	SwayAmpPitchDeg = 4.5
	SwayAmpYawDeg   = 7.5
	SwayAmpRollDeg  = 2.25

	// Loudness mapping.
	SwayDBLow     = -46.0
	SwayDBHigh    = -18.0
	LoudnessGamma = 0.9
	SensDBOffset  = 4.0

	// Sway attack/release.
	SwayAttackMS  = 50
	SwayReleaseMS = 250
)

// staleAfter is how long the last computed offset stays valid. When the
// audio stream stops mid-utterance the head returns to neutral instead
// of freezing at the last sway sample.
const staleAfter = 300 * time.Millisecond

var (
	vadAttackFrames   = max(1, VADAttackMS/HopMS)
	vadReleaseFrames  = max(1, VADReleaseMS/HopMS)
	swayAttackFrames  = max(1, SwayAttackMS/HopMS)
	swayReleaseFrames = max(1, SwayReleaseMS/HopMS)
)

// Wobbler analyzes voice audio and maintains the current head sway
// offset. Feed is safe to call from the network goroutines; Offset is
// polled by the frame loop.
type Wobbler struct {
	mu sync.Mutex

	samples []float64

	// VAD state.
	vadOn    bool
	vadAbove int
	vadBelow int

	// Envelope state.
	swayEnv  float64
	swayUp   int
	swayDown int

	// Oscillator phases (radians).
	phasePitch float64
	phaseYaw   float64
	phaseRoll  float64

	t float64

	offset    motion.Offset
	updatedAt time.Time
}

// NewWobbler creates a wobbler with deterministic starting phases.
func NewWobbler() *Wobbler {
	return &Wobbler{
		samples:    make([]float64, 0, FrameSize*2),
		phasePitch: 0.7,
		phaseYaw:   2.1,
		phaseRoll:  4.2,
	}
}

// Reset clears all analysis state and the current offset.
func (w *Wobbler) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples = w.samples[:0]
	w.vadOn = false
	w.vadAbove = 0
	w.vadBelow = 0
	w.swayEnv = 0
	w.swayUp = 0
	w.swayDown = 0
	w.t = 0
	w.offset = motion.Offset{}
	w.updatedAt = time.Time{}
}

// Offset returns the current head sway offset. It reports zero when no
// audio has been processed recently.
func (w *Wobbler) Offset() motion.Offset {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.updatedAt.IsZero() || time.Since(w.updatedAt) > staleAfter {
		return motion.Offset{}
	}
	return w.offset
}

// Feed processes int16 PCM samples at the given sample rate.
func (w *Wobbler) Feed(samples []int16, sampleRate int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(samples) == 0 {
		return
	}

	floats := make([]float64, len(samples))
	for i, s := range samples {
		floats[i] = float64(s) / 32768.0
	}

	if sampleRate != AnalysisRate {
		floats = resampleLinear(floats, sampleRate, AnalysisRate)
	}

	w.samples = append(w.samples, floats...)

	for len(w.samples) >= HopSize {
		w.processHop()
	}
}

// processHop consumes one hop of audio and updates the offset.
func (w *Wobbler) processHop() {
	if len(w.samples) < HopSize {
		return
	}

	hop := w.samples[:HopSize]
	w.samples = w.samples[HopSize:]

	if len(w.samples) < FrameSize-HopSize {
		w.t += float64(HopMS) / 1000.0
		return
	}

	frameStart := max(0, len(w.samples)-FrameSize)
	frame := w.samples[frameStart:]
	if len(frame) < FrameSize {
		frame = append(hop, frame...)
	}
	db := rmsDBFS(frame)

	// VAD with hysteresis.
	if db >= VADOnThreshold {
		w.vadAbove++
		w.vadBelow = 0
		if !w.vadOn && w.vadAbove >= vadAttackFrames {
			w.vadOn = true
		}
	} else if db <= VADOffThreshold {
		w.vadBelow++
		w.vadAbove = 0
		if w.vadOn && w.vadBelow >= vadReleaseFrames {
			w.vadOn = false
		}
	}

	// Sway envelope.
	if w.vadOn {
		w.swayUp = min(swayAttackFrames, w.swayUp+1)
		w.swayDown = 0
	} else {
		w.swayDown = min(swayReleaseFrames, w.swayDown+1)
		w.swayUp = 0
	}

	up := float64(w.swayUp) / float64(swayAttackFrames)
	down := 1.0 - float64(w.swayDown)/float64(swayReleaseFrames)
	var target float64
	if w.vadOn {
		target = up
	} else {
		target = down
	}
	w.swayEnv += EnvFollowGain * (target - w.swayEnv)
	w.swayEnv = clamp(w.swayEnv, 0, 1)

	loud := loudnessGain(db) * SwayMaster
	env := w.swayEnv
	w.t += float64(HopMS) / 1000.0

	w.offset = motion.Offset{
		Pitch: degToRad(SwayAmpPitchDeg) * loud * env *
			math.Sin(2*math.Pi*SwayFreqPitch*w.t+w.phasePitch),
		Yaw: degToRad(SwayAmpYawDeg) * loud * env *
			math.Sin(2*math.Pi*SwayFreqYaw*w.t+w.phaseYaw),
		Roll: degToRad(SwayAmpRollDeg) * loud * env *
			math.Sin(2*math.Pi*SwayFreqRoll*w.t+w.phaseRoll),
	}
	w.updatedAt = time.Now()
}

func rmsDBFS(samples []float64) float64 {
	if len(samples) == 0 {
		return -100.0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := math.Sqrt(sum/float64(len(samples)) + 1e-12)
	return 20.0 * math.Log10(rms+1e-12)
}

func loudnessGain(db float64) float64 {
	t := (db + SensDBOffset - SwayDBLow) / (SwayDBHigh - SwayDBLow)
	t = clamp(t, 0, 1)
	if LoudnessGamma != 1.0 {
		t = math.Pow(t, LoudnessGamma)
	}
	return t
}

func resampleLinear(samples []float64, srIn, srOut int) []float64 {
	if srIn == srOut || len(samples) == 0 {
		return samples
	}
	nOut := int(math.Round(float64(len(samples)) * float64(srOut) / float64(srIn)))
	if nOut <= 1 {
		return nil
	}
	out := make([]float64, nOut)
	for i := range out {
		t := float64(i) / float64(nOut-1) * float64(len(samples)-1)
		idx := int(t)
		frac := t - float64(idx)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
		} else {
			out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
		}
	}
	return out
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
