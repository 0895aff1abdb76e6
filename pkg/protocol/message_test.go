package protocol

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "pointer message",
			msgType: TypePointer,
			data:    PointerData{X: 0.5, Y: -0.25},
			wantErr: false,
		},
		{
			name:    "frame message",
			msgType: TypeFrame,
			data:    FrameData{Seq: 7, T: 1.25, Kind: "rigged", State: "posed"},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if msg == nil && !tt.wantErr {
				t.Error("NewMessage() returned nil message")
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestMessageRoundTrip(t *testing.T) {
	original := FrameData{
		Seq:   42,
		T:     3.5,
		Kind:  "rigged",
		State: "posed",
		Joints: []JointRotation{
			{Bone: "head", X: 0.1, Y: -0.2, Z: 0},
			{Bone: "neck", X: 0.05, Y: -0.1, Z: 0},
		},
	}

	msg, err := NewFrameMessage(original)
	if err != nil {
		t.Fatalf("NewFrameMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	if parsed.Type != TypeFrame {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeFrame)
	}

	frame, err := parsed.GetFrameData()
	if err != nil {
		t.Fatalf("GetFrameData() error = %v", err)
	}

	if frame.Seq != original.Seq {
		t.Errorf("Seq = %v, want %v", frame.Seq, original.Seq)
	}
	if frame.T != original.T {
		t.Errorf("T = %v, want %v", frame.T, original.T)
	}
	if len(frame.Joints) != 2 {
		t.Fatalf("Joints length = %d, want 2", len(frame.Joints))
	}
	if frame.Joints[0].Bone != "head" {
		t.Errorf("Joints[0].Bone = %q, want %q", frame.Joints[0].Bone, "head")
	}
	if frame.Joints[1].Y != -0.1 {
		t.Errorf("Joints[1].Y = %v, want %v", frame.Joints[1].Y, -0.1)
	}
}

func TestPointerMessage(t *testing.T) {
	msg, err := NewPointerMessage(0.75, -0.5)
	if err != nil {
		t.Fatalf("NewPointerMessage() error = %v", err)
	}

	if msg.Type != TypePointer {
		t.Errorf("Type = %v, want %v", msg.Type, TypePointer)
	}

	data, err := msg.GetPointerData()
	if err != nil {
		t.Fatalf("GetPointerData() error = %v", err)
	}
	if data.X != 0.75 || data.Y != -0.5 {
		t.Errorf("Pointer = (%v,%v), want (0.75,-0.5)", data.X, data.Y)
	}
}

func TestVisibilityMessage(t *testing.T) {
	msg, err := NewVisibilityMessage(false)
	if err != nil {
		t.Fatalf("NewVisibilityMessage() error = %v", err)
	}

	data, err := msg.GetVisibilityData()
	if err != nil {
		t.Fatalf("GetVisibilityData() error = %v", err)
	}
	if data.Visible {
		t.Error("Visible = true, want false")
	}
}

func TestAudioMessageEncoding(t *testing.T) {
	packet := []byte{0x01, 0x02, 0x03, 0xFF}

	msg, err := NewAudioMessage(packet, "opus", 48000, 1)
	if err != nil {
		t.Fatalf("NewAudioMessage() error = %v", err)
	}

	data, err := msg.GetAudioData()
	if err != nil {
		t.Fatalf("GetAudioData() error = %v", err)
	}

	if data.Format != "opus" {
		t.Errorf("Format = %q, want %q", data.Format, "opus")
	}
	if data.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", data.SampleRate)
	}

	decoded, err := data.DecodePacket()
	if err != nil {
		t.Fatalf("DecodePacket() error = %v", err)
	}
	if base64.StdEncoding.EncodeToString(decoded) != base64.StdEncoding.EncodeToString(packet) {
		t.Error("decoded packet does not match original")
	}
}

func TestPongLatency(t *testing.T) {
	pingTS := time.Now().UnixMilli()
	pongTS := pingTS + 23

	msg, err := NewPongMessage("abc", pingTS, pongTS)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}

	var data PongData
	if err := msg.ParseData(&data); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if data.LatencyMs != 23 {
		t.Errorf("LatencyMs = %d, want 23", data.LatencyMs)
	}
}

func TestPoseChangedWireType(t *testing.T) {
	msg, err := NewPoseChangedMessage("wave", "poses/wave.json", 12)
	if err != nil {
		t.Fatalf("NewPoseChangedMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	var envelope struct {
		Type string          `json:"type"`
		Data PoseChangedData `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	// Bodies dispatch on the literal wire string.
	if envelope.Type != "pose" {
		t.Errorf("wire type = %q, want %q", envelope.Type, "pose")
	}
	if envelope.Data.Name != "wave" || envelope.Data.Bones != 12 {
		t.Errorf("payload = %+v", envelope.Data)
	}
}

func TestParseMessageInvalidJSON(t *testing.T) {
	if _, err := ParseMessage([]byte("{not json")); err == nil {
		t.Error("ParseMessage() should fail on invalid JSON")
	}
}

func TestFrameOmitsEmptyJoints(t *testing.T) {
	msg, err := NewFrameMessage(FrameData{Seq: 1, Kind: "placeholder", State: "posed", Spin: 0.4})
	if err != nil {
		t.Fatalf("NewFrameMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(generic["data"], &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if _, ok := payload["joints"]; ok {
		t.Error("empty joints should be omitted from the wire format")
	}
}
