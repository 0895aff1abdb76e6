// Package rtc publishes avatar frames over WebRTC data channels for
// bodies that prefer a peer connection to the websocket. Signalling is
// a single HTTP offer/answer exchange; the body opens the data channel
// in its offer.
package rtc

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"

	"github.com/mirrorstage/go-avatar/internal/log"
)

// gatherTimeout bounds ICE candidate gathering for the answer. Without
// it a peer with no usable interfaces would hang the offer request.
const gatherTimeout = 10 * time.Second

var (
	ErrClosed        = errors.New("rtc: publisher closed")
	ErrGatherTimeout = errors.New("rtc: ice gathering timed out")
)

// AudioSink receives raw Opus payloads from a body's voice track.
type AudioSink func(packet []byte)

// Publisher fans avatar frames out to connected WebRTC peers.
type Publisher struct {
	mu        sync.Mutex
	config    webrtc.Configuration
	peers     map[string]*peer
	audioSink AudioSink
	closed    bool
}

type peer struct {
	id string
	pc *webrtc.PeerConnection

	mu sync.Mutex
	dc *webrtc.DataChannel
}

// NewPublisher creates a publisher using the given STUN servers.
func NewPublisher(stunServers []string) *Publisher {
	var config webrtc.Configuration
	if len(stunServers) > 0 {
		config.ICEServers = []webrtc.ICEServer{{URLs: stunServers}}
	}
	return &Publisher{
		config: config,
		peers:  make(map[string]*peer),
	}
}

// SetAudioSink registers a consumer for Opus payloads arriving on peer
// audio tracks. Set it before the first offer is accepted.
func (p *Publisher) SetAudioSink(sink AudioSink) {
	p.mu.Lock()
	p.audioSink = sink
	p.mu.Unlock()
}

// AcceptOffer answers a body's SDP offer and returns the complete local
// description once ICE gathering finishes.
func (p *Publisher) AcceptOffer(offerSDP string) (string, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return "", ErrClosed
	}
	sink := p.audioSink
	p.mu.Unlock()

	pc, err := webrtc.NewPeerConnection(p.config)
	if err != nil {
		return "", fmt.Errorf("rtc: create peer connection: %w", err)
	}

	pr := &peer{id: uuid.NewString(), pc: pc}

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		dc.OnOpen(func() {
			pr.mu.Lock()
			pr.dc = dc
			pr.mu.Unlock()
			log.Info("rtc data channel open", "peer", pr.id, "label", dc.Label())
		})
	})

	if sink != nil {
		if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			pc.Close()
			return "", fmt.Errorf("rtc: add audio transceiver: %w", err)
		}
		pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
			if !strings.EqualFold(track.Codec().MimeType, webrtc.MimeTypeOpus) {
				log.Debug("ignoring non-opus track", "peer", pr.id, "mime", track.Codec().MimeType)
				return
			}
			log.Info("rtc audio track open", "peer", pr.id, "ssrc", track.SSRC())
			go readAudioTrack(pr.id, track, sink)
		})
	}

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateDisconnected,
			webrtc.PeerConnectionStateClosed:
			p.remove(pr.id)
		}
	})

	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}
	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		return "", fmt.Errorf("rtc: set remote description: %w", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return "", fmt.Errorf("rtc: create answer: %w", err)
	}

	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return "", fmt.Errorf("rtc: set local description: %w", err)
	}

	select {
	case <-gathered:
	case <-time.After(gatherTimeout):
		pc.Close()
		return "", ErrGatherTimeout
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		pc.Close()
		return "", ErrClosed
	}
	p.peers[pr.id] = pr
	p.mu.Unlock()

	log.Info("rtc peer answered", "peer", pr.id)
	return pc.LocalDescription().SDP, nil
}

// BroadcastJSON sends a text payload to every open data channel.
func (p *Publisher) BroadcastJSON(data []byte) {
	for _, pr := range p.snapshot() {
		pr.sendText(string(data))
	}
}

// BroadcastBinary sends a binary payload to every open data channel.
func (p *Publisher) BroadcastBinary(data []byte) {
	for _, pr := range p.snapshot() {
		pr.sendBinary(data)
	}
}

// PeerCount returns the number of connected peers.
func (p *Publisher) PeerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.peers)
}

// Close tears down all peer connections.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	peers := make([]*peer, 0, len(p.peers))
	for _, pr := range p.peers {
		peers = append(peers, pr)
	}
	p.peers = make(map[string]*peer)
	p.mu.Unlock()

	for _, pr := range peers {
		pr.pc.Close()
	}
}

func (p *Publisher) snapshot() []*peer {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*peer, 0, len(p.peers))
	for _, pr := range p.peers {
		out = append(out, pr)
	}
	return out
}

func (p *Publisher) remove(id string) {
	p.mu.Lock()
	pr, ok := p.peers[id]
	if ok {
		delete(p.peers, id)
	}
	p.mu.Unlock()

	if ok {
		pr.pc.Close()
		log.Info("rtc peer removed", "peer", id)
	}
}

// readAudioTrack drains a remote voice track, handing each Opus payload
// to the sink. Returns when the track or peer connection closes.
func readAudioTrack(peerID string, track *webrtc.TrackRemote, sink AudioSink) {
	var prev *rtp.Packet
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			log.Debug("rtc audio track closed", "peer", peerID, "error", err)
			return
		}
		if prev != nil && pkt.SequenceNumber != prev.SequenceNumber+1 {
			log.Debug("rtc audio gap", "peer", peerID,
				"from", prev.SequenceNumber, "to", pkt.SequenceNumber)
		}
		prev = pkt
		if len(pkt.Payload) == 0 {
			continue
		}
		sink(pkt.Payload)
	}
}

func (pr *peer) sendText(s string) {
	pr.mu.Lock()
	dc := pr.dc
	pr.mu.Unlock()
	if dc == nil {
		return
	}
	if err := dc.SendText(s); err != nil {
		log.Debug("rtc send failed", "peer", pr.id, "error", err)
	}
}

func (pr *peer) sendBinary(data []byte) {
	pr.mu.Lock()
	dc := pr.dc
	pr.mu.Unlock()
	if dc == nil {
		return
	}
	if err := dc.Send(data); err != nil {
		log.Debug("rtc send failed", "peer", pr.id, "error", err)
	}
}
