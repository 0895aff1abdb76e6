// Package protocol defines the WebSocket message types between the
// avatar brain (this service) and its bodies (browser renderers,
// native viewers).
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Body → Brain messages
	TypePointer    MessageType = "pointer"    // Pointer moved
	TypeVisibility MessageType = "visibility" // Page/body visibility changed
	TypeResize     MessageType = "resize"     // Container resized
	TypeAudio      MessageType = "audio"      // Speech audio packet

	// Brain → Body messages
	TypeFrame  MessageType = "frame"  // Joint rotation frame
	TypeStatus MessageType = "status" // Service status snapshot
	TypePose   MessageType = "pose"   // Active pose changed

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Body → Brain Message Types
// =============================================================================

// PointerData contains a normalized pointer position. x and y are in
// [-1,1] with +y up; the brain clamps out-of-range values.
type PointerData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VisibilityData reports whether the body is visible (tab focused,
// window open). Losing visibility pauses motion; regaining it triggers
// pose recovery.
type VisibilityData struct {
	Visible bool `json:"visible"`
}

// ResizeData reports new container dimensions in pixels.
type ResizeData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Audio packet formats.
const (
	AudioFormatOpus  = "opus"
	AudioFormatPCM16 = "pcm16"
)

// AudioData contains a speech audio packet for the wobble pipeline.
type AudioData struct {
	Format     string `json:"format"`      // "opus", "pcm16"
	SampleRate int    `json:"sample_rate"` // e.g., 48000
	Channels   int    `json:"channels"`    // 1 for mono
	Data       string `json:"data"`        // base64 encoded
}

// =============================================================================
// Brain → Body Message Types
// =============================================================================

// JointRotation is one joint's local rotation as intrinsic XYZ Euler
// angles in radians.
type JointRotation struct {
	Bone string  `json:"bone"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// FrameData is one animation frame: every animated joint's rotation
// plus the avatar state that produced it.
type FrameData struct {
	Seq    uint64          `json:"seq"`
	T      float64         `json:"t"` // Elapsed animation time, seconds
	Kind   string          `json:"kind"`
	State  string          `json:"state"`
	Joints []JointRotation `json:"joints,omitempty"`
	Spin   float64         `json:"spin,omitempty"` // Placeholder spin angle
}

// StatusData is a service status snapshot.
type StatusData struct {
	Model       string      `json:"model"`
	Kind        string      `json:"kind"`
	Pose        string      `json:"pose"`
	Joints      int         `json:"joints"`
	MotionScale float64     `json:"motion_scale"`
	Lighting    LightLevels `json:"lighting"`
	Resolution  [2]int      `json:"resolution"`
	Container   [2]int      `json:"container"`
	Clients     int         `json:"clients"`
	UptimeSec   float64     `json:"uptime_sec"`
}

// LightLevels mirrors the effective lighting intensities.
type LightLevels struct {
	Directional float64 `json:"directional"`
	Ambient     float64 `json:"ambient"`
	Rim         float64 `json:"rim"`
	Scale       float64 `json:"scale"`
}

// PoseChangedData announces an active pose swap.
type PoseChangedData struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Bones  int    `json:"bones"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information.
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains the pong response.
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
