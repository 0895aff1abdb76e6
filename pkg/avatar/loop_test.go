package avatar

import (
	"context"
	"testing"
	"time"

	"github.com/mirrorstage/go-avatar/pkg/hub"
	"github.com/mirrorstage/go-avatar/pkg/motion"
	"github.com/mirrorstage/go-avatar/pkg/pose"
	"github.com/mirrorstage/go-avatar/pkg/preview"
	"github.com/mirrorstage/go-avatar/pkg/protocol"
	"github.com/mirrorstage/go-avatar/pkg/scene"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	av := New(riggedAsset(), motion.DefaultParams())
	return NewLoop(av, hub.New("frames"), LoopOptions{
		FrameRate: 60,
		Lights:    scene.NewLighting(0.95, 0.55, 0.25),
		Viewport:  scene.NewViewport(),
	})
}

func TestNewLoopDefaultsFrameRate(t *testing.T) {
	av := New(riggedAsset(), motion.DefaultParams())
	l := NewLoop(av, hub.New("frames"), LoopOptions{})
	if l.rate != 60 {
		t.Errorf("rate = %d, want 60", l.rate)
	}
}

func TestLoopStatusSnapshot(t *testing.T) {
	l := newTestLoop(t)

	snap := pose.NewSnapshot("stand")
	l.Avatar().ApplyPose(snap)
	l.refreshStatus()

	st := l.Status()
	if st.Model != "test" {
		t.Errorf("Model = %q, want %q", st.Model, "test")
	}
	if st.Kind != "rigged" {
		t.Errorf("Kind = %q, want rigged", st.Kind)
	}
	if st.Joints != 5 {
		t.Errorf("Joints = %d, want 5", st.Joints)
	}
	if st.Pose != "stand" {
		t.Errorf("Pose = %q, want stand", st.Pose)
	}
	if st.MotionScale != 1 {
		t.Errorf("MotionScale = %v, want 1", st.MotionScale)
	}
	if st.Lighting.Directional != 0.95 {
		t.Errorf("Lighting.Directional = %v, want 0.95", st.Lighting.Directional)
	}
	if st.Resolution != [2]int{scene.LogicalWidth, scene.LogicalHeight} {
		t.Errorf("Resolution = %v", st.Resolution)
	}
	if st.Container != [2]int{scene.LogicalWidth, scene.LogicalHeight} {
		t.Errorf("Container = %v", st.Container)
	}
	if st.Clients != 0 {
		t.Errorf("Clients = %d, want 0", st.Clients)
	}
}

func TestLoopTickAdvances(t *testing.T) {
	l := newTestLoop(t)

	for i := 0; i < 3; i++ {
		l.tick(frameDt)
	}
	if l.frameCount != 3 {
		t.Errorf("frameCount = %d, want 3", l.frameCount)
	}

	frame := l.av.Step(frameDt)
	if frame.Seq != 4 {
		t.Errorf("Seq = %d, want 4 after three ticks and a direct step", frame.Seq)
	}
}

func TestLoopTickWithPreviews(t *testing.T) {
	av := New(riggedAsset(), motion.DefaultParams())
	lights := scene.NewLighting(0.95, 0.55, 0.25)
	l := NewLoop(av, hub.New("frames"), LoopOptions{
		FrameRate:    60,
		PreviewEvery: 2,
		Previews:     hub.New("previews"),
		Renderer:     preview.NewRenderer(lights),
		Lights:       lights,
		Viewport:     scene.NewViewport(),
	})

	// Every second frame renders a preview; four ticks must not panic
	// with the full pipeline attached.
	for i := 0; i < 4; i++ {
		l.tick(frameDt)
	}
	if l.frameCount != 4 {
		t.Errorf("frameCount = %d, want 4", l.frameCount)
	}
}

func TestLoopBroadcastsStatusOnCadence(t *testing.T) {
	av := New(riggedAsset(), motion.DefaultParams())
	frames := hub.New("frames")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go frames.Run(ctx)

	recv, unsubscribe := frames.Subscribe(16)
	defer unsubscribe()

	l := NewLoop(av, frames, LoopOptions{FrameRate: 2})

	// At two frames a second, the second tick carries the refresh.
	l.tick(frameDt)
	l.tick(frameDt)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-recv:
			m, err := protocol.ParseMessage(msg.Data)
			if err != nil {
				t.Fatalf("parse broadcast: %v", err)
			}
			if m.Type != protocol.TypeStatus {
				continue // frames precede the status refresh
			}
			st, err := m.GetStatusData()
			if err != nil {
				t.Fatalf("status data: %v", err)
			}
			if st.Model != "test" {
				t.Errorf("Model = %q, want test", st.Model)
			}
			return
		case <-deadline:
			t.Fatal("no status message broadcast")
		}
	}
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	l := newTestLoop(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	time.Sleep(80 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if l.Status().UptimeSec <= 0 {
		t.Error("UptimeSec should be positive after running")
	}
}
