package speech

import (
	"fmt"
	"sync"

	"gopkg.in/hraban/opus.v2"
)

// maxFrameSamples is the largest Opus frame: 120ms at 48kHz per channel.
const maxFrameSamples = 5760

// Decoder decodes Opus packets into int16 PCM suitable for the wobbler.
// It is safe for concurrent use; packets from different bodies share one
// decoder, which is fine for loudness analysis.
type Decoder struct {
	mu         sync.Mutex
	dec        *opus.Decoder
	sampleRate int
	channels   int
	buf        []int16
}

// NewDecoder creates an Opus decoder for the given stream format.
func NewDecoder(sampleRate, channels int) (*Decoder, error) {
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("speech: create opus decoder: %w", err)
	}
	return &Decoder{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		buf:        make([]int16, maxFrameSamples*channels),
	}, nil
}

// Decode decodes a single Opus packet. Stereo input is downmixed to
// mono. The caller owns the returned slice.
func (d *Decoder) Decode(packet []byte) ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.dec.Decode(packet, d.buf)
	if err != nil {
		return nil, fmt.Errorf("speech: decode opus packet: %w", err)
	}
	pcm := d.buf[:n*d.channels]
	if d.channels == 2 {
		mono := make([]int16, n)
		for i := 0; i < n; i++ {
			l := int32(pcm[2*i])
			r := int32(pcm[2*i+1])
			mono[i] = int16((l + r) / 2)
		}
		return mono, nil
	}
	out := make([]int16, n)
	copy(out, pcm)
	return out, nil
}

// SampleRate returns the decoder's output sample rate.
func (d *Decoder) SampleRate() int { return d.sampleRate }
