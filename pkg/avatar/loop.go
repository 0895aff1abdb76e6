package avatar

import (
	"context"
	"sync"
	"time"

	"github.com/mirrorstage/go-avatar/internal/log"
	"github.com/mirrorstage/go-avatar/pkg/hub"
	"github.com/mirrorstage/go-avatar/pkg/preview"
	"github.com/mirrorstage/go-avatar/pkg/protocol"
	"github.com/mirrorstage/go-avatar/pkg/rtc"
	"github.com/mirrorstage/go-avatar/pkg/scene"
)

// maxFrameDt caps the step after a stall (debugger pause, suspend) so
// the accumulating idle offsets cannot jump.
const maxFrameDt = 0.25

// LoopOptions configures the transports and presentation state the
// frame loop drives. Previews, Publisher and Renderer may be nil.
type LoopOptions struct {
	FrameRate    int
	PreviewEvery int // render a preview every N frames, 0 disables
	Previews     *hub.Hub
	Publisher    *rtc.Publisher
	Renderer     *preview.Renderer
	Lights       *scene.Lighting
	Viewport     *scene.Viewport
}

// Loop drives the avatar at a fixed frame rate and fans frames out to
// websocket and WebRTC clients. All joint state belongs to the loop
// goroutine; other goroutines interact through the input mailbox and
// the cached status snapshot.
type Loop struct {
	av        *Avatar
	frames    *hub.Hub
	previews  *hub.Hub
	publisher *rtc.Publisher
	renderer  *preview.Renderer
	lights    *scene.Lighting
	view      *scene.Viewport

	rate         int
	previewEvery int
	frameCount   uint64

	mu      sync.RWMutex
	status  protocol.StatusData
	started time.Time
}

// NewLoop creates a frame loop for the avatar publishing to the frames
// hub.
func NewLoop(av *Avatar, frames *hub.Hub, opts LoopOptions) *Loop {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 60
	}
	return &Loop{
		av:           av,
		frames:       frames,
		previews:     opts.Previews,
		publisher:    opts.Publisher,
		renderer:     opts.Renderer,
		lights:       opts.Lights,
		view:         opts.Viewport,
		rate:         opts.FrameRate,
		previewEvery: opts.PreviewEvery,
	}
}

// Avatar returns the driven avatar. Only the loop goroutine may call
// its stepping methods.
func (l *Loop) Avatar() *Avatar {
	return l.av
}

// Run blocks driving frames until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	l.started = time.Now()
	l.mu.Unlock()
	l.refreshStatus()

	interval := time.Second / time.Duration(l.rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("frame loop started", "rate", l.rate, "preview_every", l.previewEvery)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info("frame loop stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt <= 0 {
				continue
			}
			if dt > maxFrameDt {
				dt = maxFrameDt
			}
			l.tick(dt)
		}
	}
}

// tick advances the avatar one frame and publishes the result.
func (l *Loop) tick(dt float64) {
	frame := l.av.Step(dt)
	l.frameCount++

	msg, err := protocol.NewFrameMessage(frame)
	if err != nil {
		log.Error("encode frame", "error", err)
		return
	}
	raw, err := msg.Bytes()
	if err != nil {
		log.Error("serialize frame", "error", err)
		return
	}

	l.frames.Broadcast(hub.NewJSONMessage(raw))
	if l.publisher != nil {
		l.publisher.BroadcastJSON(raw)
	}

	if l.renderer != nil && l.previews != nil && l.previewEvery > 0 &&
		l.frameCount%uint64(l.previewEvery) == 0 {
		l.broadcastPreview(frame)
	}

	l.refreshStatus()

	// Bodies get a status refresh once a second.
	if l.frameCount%uint64(l.rate) == 0 {
		l.broadcastStatus()
	}
}

func (l *Loop) broadcastPreview(frame protocol.FrameData) {
	img := l.renderer.Render(l.av.Asset(), frame.Spin)
	webp, err := preview.EncodeWebP(img)
	if err != nil {
		log.Warn("encode preview", "error", err)
		return
	}
	l.previews.BroadcastBinary(webp)
	if l.publisher != nil {
		l.publisher.BroadcastBinary(webp)
	}
}

// refreshStatus rebuilds the cached status snapshot the control API
// serves.
func (l *Loop) refreshStatus() {
	a := l.av.Asset()

	st := protocol.StatusData{
		Model:       a.Name,
		Kind:        a.Kind.String(),
		MotionScale: l.av.Inputs().MotionScale(),
		Clients:     l.frames.ClientCount(),
	}
	if a.Rig != nil {
		st.Joints = a.Rig.JointCount()
	}
	if p := l.av.Pose(); p != nil {
		st.Pose = p.Name
	}
	if l.lights != nil {
		ls := l.lights.State()
		st.Lighting = protocol.LightLevels{
			Directional: ls.Directional,
			Ambient:     ls.Ambient,
			Rim:         ls.Rim,
			Scale:       ls.Scale,
		}
	}
	if l.view != nil {
		w, h := l.view.Resolution()
		cw, ch := l.view.Container()
		st.Resolution = [2]int{w, h}
		st.Container = [2]int{cw, ch}
	}

	l.mu.Lock()
	if !l.started.IsZero() {
		st.UptimeSec = time.Since(l.started).Seconds()
	}
	l.status = st
	l.mu.Unlock()
}

// broadcastStatus publishes the cached snapshot to connected bodies.
func (l *Loop) broadcastStatus() {
	msg, err := protocol.NewStatusMessage(l.Status())
	if err != nil {
		log.Error("encode status", "error", err)
		return
	}
	raw, err := msg.Bytes()
	if err != nil {
		log.Error("serialize status", "error", err)
		return
	}

	l.frames.Broadcast(hub.NewJSONMessage(raw))
	if l.publisher != nil {
		l.publisher.BroadcastJSON(raw)
	}
}

// BroadcastStatus rebuilds the status snapshot and pushes it out
// immediately. The control API calls it after a runtime change so
// bodies see the new state before the next periodic refresh.
func (l *Loop) BroadcastStatus() {
	l.refreshStatus()
	l.broadcastStatus()
}

// Status returns the latest status snapshot.
func (l *Loop) Status() protocol.StatusData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}
