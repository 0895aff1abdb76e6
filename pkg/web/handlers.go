package web

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mirrorstage/go-avatar/internal/log"
	"github.com/mirrorstage/go-avatar/pkg/hub"
	"github.com/mirrorstage/go-avatar/pkg/pose"
	"github.com/mirrorstage/go-avatar/pkg/protocol"
)

// loadTimeout bounds pose fetches triggered through the API.
const loadTimeout = 10 * time.Second

// handleStatus returns the loop's status snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.loop.Status())
}

// handleListPoses returns the registered pose names.
func (s *Server) handleListPoses(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"poses": s.registry.List(),
		"count": s.registry.Count(),
	})
}

// SetPoseRequest selects a pose by registry name or loads one from a
// path or URL.
type SetPoseRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// handleSetPose queues a pose swap for the next frame.
func (s *Server) handleSetPose(c *fiber.Ctx) error {
	var req SetPoseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	var (
		snap *pose.Snapshot
		err  error
	)
	switch {
	case req.Name != "":
		snap, err = s.registry.Get(req.Name)
		if errors.Is(err, pose.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	case req.Path != "":
		ctx, cancel := context.WithTimeout(c.Context(), loadTimeout)
		defer cancel()
		snap, err = pose.Load(ctx, req.Path)
		if err == nil {
			if regErr := s.registry.Register(snap); regErr != nil {
				log.Warn("pose loaded but not registered", "error", regErr)
			}
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name or path required",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.loop.Avatar().Inputs().QueuePose(snap)
	s.broadcastPoseChanged(snap)
	s.loop.BroadcastStatus()

	return c.JSON(fiber.Map{
		"pose":  snap.Name,
		"bones": snap.Len(),
	})
}

// ScaleRequest carries a runtime multiplier.
type ScaleRequest struct {
	Scale float64 `json:"scale"`
}

// handleSetMotion updates the motion intensity multiplier.
func (s *Server) handleSetMotion(c *fiber.Ctx) error {
	var req ScaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	in := s.loop.Avatar().Inputs()
	in.SetMotionScale(req.Scale)
	s.loop.BroadcastStatus()
	return c.JSON(fiber.Map{"scale": in.MotionScale()})
}

// handleSetLighting updates the lighting scale.
func (s *Server) handleSetLighting(c *fiber.Ctx) error {
	var req ScaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	s.lights.SetScale(req.Scale)
	s.loop.BroadcastStatus()
	return c.JSON(s.lights.State())
}

// ViewportRequest reports new container dimensions.
type ViewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// handleSetViewport records a container resize. The logical render
// resolution never changes.
func (s *Server) handleSetViewport(c *fiber.Ctx) error {
	var req ViewportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	s.view.Resize(req.Width, req.Height)
	s.loop.BroadcastStatus()
	w, h := s.view.Resolution()
	cw, ch := s.view.Container()
	return c.JSON(fiber.Map{
		"resolution": [2]int{w, h},
		"container":  [2]int{cw, ch},
	})
}

// OfferRequest carries a body's WebRTC session offer.
type OfferRequest struct {
	SDP string `json:"sdp"`
}

// handleRTCOffer answers a WebRTC offer with a data channel answer.
func (s *Server) handleRTCOffer(c *fiber.Ctx) error {
	if s.publisher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "webrtc disabled",
		})
	}

	var req OfferRequest
	if err := c.BodyParser(&req); err != nil || req.SDP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sdp required",
		})
	}

	answer, err := s.publisher.AcceptOffer(req.SDP)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"sdp": answer})
}

// handleEvent dispatches one inbound websocket event from a body.
func (s *Server) handleEvent(clientID string, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Debug("bad inbound message", "client", clientID, "error", err)
		return
	}

	in := s.loop.Avatar().Inputs()

	switch msg.Type {
	case protocol.TypePointer:
		p, err := msg.GetPointerData()
		if err != nil {
			return
		}
		in.SetPointer(p.X, p.Y)

	case protocol.TypeVisibility:
		v, err := msg.GetVisibilityData()
		if err != nil {
			return
		}
		in.SetVisible(v.Visible)

	case protocol.TypeResize:
		r, err := msg.GetResizeData()
		if err != nil {
			return
		}
		s.view.Resize(r.Width, r.Height)

	case protocol.TypeAudio:
		s.handleAudio(msg)

	case protocol.TypePing:
		s.answerPing(msg)

	default:
		log.Debug("unhandled inbound type", "client", clientID, "type", msg.Type)
	}
}

// handleAudio feeds a voice packet into the wobbler.
func (s *Server) handleAudio(msg *protocol.Message) {
	if s.wobbler == nil {
		return
	}
	a, err := msg.GetAudioData()
	if err != nil {
		return
	}
	packet, err := a.DecodePacket()
	if err != nil {
		log.Debug("bad audio packet", "error", err)
		return
	}

	switch a.Format {
	case protocol.AudioFormatOpus:
		if s.decoder == nil {
			return
		}
		pcm, err := s.decoder.Decode(packet)
		if err != nil {
			log.Debug("opus decode failed", "error", err)
			return
		}
		s.wobbler.Feed(pcm, s.decoder.SampleRate())

	case protocol.AudioFormatPCM16:
		s.wobbler.Feed(pcm16Mono(packet, a.Channels), a.SampleRate)
	}
}

// answerPing broadcasts a pong carrying the ping id; the asking client
// matches on it.
func (s *Server) answerPing(msg *protocol.Message) {
	var ping protocol.PingData
	if err := msg.ParseData(&ping); err != nil {
		return
	}
	pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, time.Now().UnixMilli())
	if err != nil {
		return
	}
	raw, err := pong.Bytes()
	if err != nil {
		return
	}
	s.frames.Broadcast(hub.NewJSONMessage(raw))
}

// broadcastPoseChanged announces the swap to connected bodies.
func (s *Server) broadcastPoseChanged(snap *pose.Snapshot) {
	msg, err := protocol.NewPoseChangedMessage(snap.Name, snap.Source, snap.Len())
	if err != nil {
		return
	}
	raw, err := msg.Bytes()
	if err != nil {
		return
	}
	s.frames.Broadcast(hub.NewJSONMessage(raw))
}

// pcm16Mono decodes little-endian int16 PCM, downmixing stereo.
func pcm16Mono(data []byte, channels int) []int16 {
	n := len(data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	if channels == 2 {
		mono := samples[: n/2 : n/2]
		for i := range mono {
			l := int32(samples[2*i])
			r := int32(samples[2*i+1])
			mono[i] = int16((l + r) / 2)
		}
		return mono
	}
	return samples
}
