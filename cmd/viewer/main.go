// viewer is a native desktop body for avatard. With a local copy of the
// model it renders the skeleton itself from the joint frames; without
// one it displays the brain's preview stills. Either way it forwards
// pointer, focus, and resize events back, the same contract the browser
// body speaks.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sync"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/mirrorstage/go-avatar/pkg/protocol"
	"github.com/mirrorstage/go-avatar/pkg/rig"
	"github.com/mirrorstage/go-avatar/pkg/vrm"
)

const (
	reconnectDelay = 2 * time.Second
	pointerEvery   = 50 * time.Millisecond
	pointerEpsilon = 0.002
	strokeMargin   = 40
)

var strokeColor = color.NRGBA{R: 214, G: 220, B: 235, A: 255}

func main() {
	addr := flag.String("addr", "localhost:8090", "avatard address")
	model := flag.String("model", "", "local model file; enables skeleton drawing")
	flag.Parse()

	fmt.Println("🪞 Avatar Viewer")
	fmt.Printf("   Brain: %s\n", *addr)

	var asset *vrm.Asset
	if *model != "" {
		asset = vrm.Load(*model)
		if asset.Rig == nil || asset.Rig.JointCount() == 0 {
			fmt.Printf("   Model: %s has no rig, showing stills\n", asset.Name)
			asset = nil
		} else {
			fmt.Printf("   Model: %s (%d joints, local skeleton)\n", asset.Name, asset.Rig.JointCount())
		}
	}

	game := newGame(*addr, asset)
	go game.runEventStream()
	if asset == nil {
		go game.runPreviewStream()
	}

	ebiten.SetWindowSize(400, 960)
	ebiten.SetWindowTitle("avatar viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// Game mirrors the remote avatar: socket goroutines fill the latest
// still and frame, Update forwards input events, Draw paints. The asset
// and its rig are touched only from the game goroutine.
type Game struct {
	addr  string
	asset *vrm.Asset

	mu            sync.Mutex
	still         image.Image
	stillGen      int
	lastFrame     protocol.FrameData
	connected     bool
	width, height int

	sendMu sync.Mutex
	events *websocket.Conn

	cached    *ebiten.Image
	cachedGen int

	focused      bool
	lastX, lastY float64
	lastPointer  time.Time
}

func newGame(addr string, asset *vrm.Asset) *Game {
	return &Game{addr: addr, asset: asset, focused: true}
}

// runEventStream keeps the avatar socket alive: it reads frames for
// the HUD and is the channel Update sends input events on.
func (g *Game) runEventStream() {
	for {
		conn, _, err := websocket.DefaultDialer.Dial("ws://"+g.addr+"/ws/avatar", nil)
		if err != nil {
			time.Sleep(reconnectDelay)
			continue
		}

		g.sendMu.Lock()
		g.events = conn
		g.sendMu.Unlock()
		g.mu.Lock()
		g.connected = true
		g.mu.Unlock()

		g.sendEvent(protocol.NewVisibilityMessage(true))
		if w, h := g.size(); w > 0 {
			g.sendEvent(protocol.NewResizeMessage(w, h))
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil || msg.Type != protocol.TypeFrame {
				continue
			}
			if frame, err := msg.GetFrameData(); err == nil {
				g.mu.Lock()
				g.lastFrame = *frame
				g.mu.Unlock()
			}
		}

		g.sendMu.Lock()
		g.events = nil
		g.sendMu.Unlock()
		g.mu.Lock()
		g.connected = false
		g.mu.Unlock()
		conn.Close()
		time.Sleep(reconnectDelay)
	}
}

// runPreviewStream consumes binary WebP stills.
func (g *Game) runPreviewStream() {
	for {
		conn, _, err := websocket.DefaultDialer.Dial("ws://"+g.addr+"/ws/preview", nil)
		if err != nil {
			time.Sleep(reconnectDelay)
			continue
		}

		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if kind != websocket.BinaryMessage {
				continue
			}
			img, err := nativewebp.Decode(bytes.NewReader(data))
			if err != nil {
				continue
			}
			g.mu.Lock()
			g.still = img
			g.stillGen++
			g.mu.Unlock()
		}

		conn.Close()
		time.Sleep(reconnectDelay)
	}
}

func (g *Game) sendEvent(msg *protocol.Message, err error) {
	if err != nil {
		return
	}
	raw, err := msg.Bytes()
	if err != nil {
		return
	}

	g.sendMu.Lock()
	defer g.sendMu.Unlock()
	if g.events == nil {
		return
	}
	g.events.WriteMessage(websocket.TextMessage, raw)
}

func (g *Game) size() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.height
}

func (g *Game) Update() error {
	if focused := ebiten.IsFocused(); focused != g.focused {
		g.focused = focused
		g.sendEvent(protocol.NewVisibilityMessage(focused))
	}

	w, h := g.size()
	if w == 0 || h == 0 {
		return nil
	}

	mx, my := ebiten.CursorPosition()
	x := 2*float64(mx)/float64(w) - 1
	y := 1 - 2*float64(my)/float64(h)

	moved := math.Abs(x-g.lastX) > pointerEpsilon || math.Abs(y-g.lastY) > pointerEpsilon
	if moved && time.Since(g.lastPointer) >= pointerEvery {
		g.lastX, g.lastY = x, y
		g.lastPointer = time.Now()
		g.sendEvent(protocol.NewPointerMessage(x, y))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	still := g.still
	gen := g.stillGen
	frame := g.lastFrame
	connected := g.connected
	g.mu.Unlock()

	if g.asset != nil {
		g.drawSkeleton(screen, frame)
	} else {
		if still != nil && gen != g.cachedGen {
			g.cached = ebiten.NewImageFromImage(still)
			g.cachedGen = gen
		}
		if g.cached != nil {
			sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
			iw, ih := g.cached.Bounds().Dx(), g.cached.Bounds().Dy()
			scale := math.Min(float64(sw)/float64(iw), float64(sh)/float64(ih))

			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(
				(float64(sw)-float64(iw)*scale)/2,
				(float64(sh)-float64(ih)*scale)/2,
			)
			screen.DrawImage(g.cached, op)
		}
	}

	state := "connecting..."
	if connected {
		state = fmt.Sprintf("seq=%d %s joints=%d", frame.Seq, frame.State, len(frame.Joints))
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\nFPS: %.1f", state, ebiten.ActualFPS()))
}

// drawSkeleton poses the local rig from the frame's joint rotations and
// strokes each bone to its nearest posed ancestor.
func (g *Game) drawSkeleton(screen *ebiten.Image, frame protocol.FrameData) {
	rg := g.asset.Rig
	for _, jr := range frame.Joints {
		if j, ok := rg.Joint(rig.BoneName(jr.Bone)); ok {
			j.Euler = mgl64.Vec3{jr.X, jr.Y, jr.Z}
		}
	}

	bones := rg.Bones()
	if len(bones) == 0 {
		return
	}
	positions := rg.WorldPositions()
	nodes := rg.Nodes()

	jointNodes := make(map[int]bool, len(bones))
	for _, b := range bones {
		j, _ := rg.Joint(b)
		jointNodes[j.Node] = true
	}

	minV := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for n := range jointNodes {
		p := positions[n]
		for k := 0; k < 3; k++ {
			minV[k] = math.Min(minV[k], p[k])
			maxV[k] = math.Max(maxV[k], p[k])
		}
	}
	center := minV.Add(maxV).Mul(0.5)
	spanX := math.Max(maxV.X()-minV.X(), 0.001)
	spanY := math.Max(maxV.Y()-minV.Y(), 0.001)

	sw := float64(screen.Bounds().Dx())
	sh := float64(screen.Bounds().Dy())
	scale := math.Min((sw-2*strokeMargin)/spanX, (sh-2*strokeMargin)/spanY)

	project := func(p mgl64.Vec3) (float32, float32) {
		x := sw/2 + (p.X()-center.X())*scale
		y := sh/2 - (p.Y()-center.Y())*scale
		return float32(x), float32(y)
	}

	for n := range jointNodes {
		parent := nodes[n].Parent
		for parent >= 0 && parent < len(nodes) && !jointNodes[parent] {
			parent = nodes[parent].Parent
		}
		if parent < 0 || parent >= len(nodes) {
			continue
		}
		x0, y0 := project(positions[n])
		x1, y1 := project(positions[parent])
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, strokeColor, true)
	}
	for n := range jointNodes {
		x, y := project(positions[n])
		vector.DrawFilledCircle(screen, x, y, 3, strokeColor, true)
	}
}

// Layout tracks the window size so pointer events normalize against
// the real container, and reports resizes to the brain.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.Lock()
	changed := outsideWidth != g.width || outsideHeight != g.height
	g.width, g.height = outsideWidth, outsideHeight
	g.mu.Unlock()

	if changed {
		g.sendEvent(protocol.NewResizeMessage(outsideWidth, outsideHeight))
	}
	return outsideWidth, outsideHeight
}
