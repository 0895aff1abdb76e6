package protocol

import (
	"encoding/base64"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewPointerMessage creates a pointer event message.
func NewPointerMessage(x, y float64) (*Message, error) {
	return NewMessage(TypePointer, PointerData{X: x, Y: y})
}

// NewVisibilityMessage creates a visibility event message.
func NewVisibilityMessage(visible bool) (*Message, error) {
	return NewMessage(TypeVisibility, VisibilityData{Visible: visible})
}

// NewResizeMessage creates a resize event message.
func NewResizeMessage(width, height int) (*Message, error) {
	return NewMessage(TypeResize, ResizeData{Width: width, Height: height})
}

// NewAudioMessage creates a speech audio message from an encoded packet.
func NewAudioMessage(packet []byte, format string, sampleRate, channels int) (*Message, error) {
	return NewMessage(TypeAudio, AudioData{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Data:       base64.StdEncoding.EncodeToString(packet),
	})
}

// NewFrameMessage creates a joint frame message.
func NewFrameMessage(frame FrameData) (*Message, error) {
	return NewMessage(TypeFrame, frame)
}

// NewStatusMessage creates a status snapshot message.
func NewStatusMessage(status StatusData) (*Message, error) {
	return NewMessage(TypeStatus, status)
}

// NewPoseChangedMessage announces a pose swap.
func NewPoseChangedMessage(name, source string, bones int) (*Message, error) {
	return NewMessage(TypePose, PoseChangedData{
		Name:   name,
		Source: source,
		Bones:  bones,
	})
}

// NewPingMessage creates a ping message.
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message.
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetPointerData extracts pointer data from a message.
func (m *Message) GetPointerData() (*PointerData, error) {
	var data PointerData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetVisibilityData extracts visibility data from a message.
func (m *Message) GetVisibilityData() (*VisibilityData, error) {
	var data VisibilityData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetResizeData extracts resize data from a message.
func (m *Message) GetResizeData() (*ResizeData, error) {
	var data ResizeData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAudioData extracts audio data from a message.
func (m *Message) GetAudioData() (*AudioData, error) {
	var data AudioData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetFrameData extracts frame data from a message.
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatusData extracts status data from a message.
func (m *Message) GetStatusData() (*StatusData, error) {
	var data StatusData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DecodePacket decodes the base64 audio payload.
func (a *AudioData) DecodePacket() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Data)
}
