// Package web serves the control API and the body-facing websocket
// endpoints: JSON frames out, input events in, WebP previews out, and
// the WebRTC offer exchange.
package web

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/mirrorstage/go-avatar/pkg/avatar"
	"github.com/mirrorstage/go-avatar/pkg/hub"
	"github.com/mirrorstage/go-avatar/pkg/pose"
	"github.com/mirrorstage/go-avatar/pkg/rtc"
	"github.com/mirrorstage/go-avatar/pkg/scene"
	"github.com/mirrorstage/go-avatar/pkg/speech"
)

// Deps carries the shared state the handlers operate on. Publisher,
// Wobbler and Decoder are optional.
type Deps struct {
	Loop      *avatar.Loop
	Registry  *pose.Registry
	Lights    *scene.Lighting
	Viewport  *scene.Viewport
	Frames    *hub.Hub
	Previews  *hub.Hub
	Publisher *rtc.Publisher
	Wobbler   *speech.Wobbler
	Decoder   *speech.Decoder
	StaticDir string
}

// Server is the body-facing HTTP/websocket server.
type Server struct {
	app  *fiber.App
	addr string

	loop      *avatar.Loop
	registry  *pose.Registry
	lights    *scene.Lighting
	view      *scene.Viewport
	frames    *hub.Hub
	previews  *hub.Hub
	publisher *rtc.Publisher
	wobbler   *speech.Wobbler
	decoder   *speech.Decoder
}

// NewServer builds the fiber app and wires all routes.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		addr:      addr,
		loop:      deps.Loop,
		registry:  deps.Registry,
		lights:    deps.Lights,
		view:      deps.Viewport,
		frames:    deps.Frames,
		previews:  deps.Previews,
		publisher: deps.Publisher,
		wobbler:   deps.Wobbler,
		decoder:   deps.Decoder,
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-avatar",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	if deps.StaticDir != "" {
		app.Static("/", deps.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/poses", s.handleListPoses)
	api.Post("/pose", s.handleSetPose)
	api.Post("/motion", s.handleSetMotion)
	api.Post("/lighting", s.handleSetLighting)
	api.Post("/viewport", s.handleSetViewport)
	api.Post("/rtc/offer", s.handleRTCOffer)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/avatar", websocket.New(s.handleAvatarWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	// Input events arrive on the frames hub.
	s.frames.OnInbound(s.handleEvent)

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	fmt.Printf("🌐 Avatar control: http://localhost%s\n", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleAvatarWS attaches a body connection to the frames hub.
func (s *Server) handleAvatarWS(c *websocket.Conn) {
	client := hub.NewClient(s.frames, c)
	client.Run()
}

// handlePreviewWS attaches a monitor connection to the previews hub.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	client := hub.NewClient(s.previews, c)
	client.Run()
}
