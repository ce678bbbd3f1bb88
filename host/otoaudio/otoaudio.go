// Package otoaudio plays client PCM streams through oto.
package otoaudio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/user-none/gamebridge/host"
)

// bufferDuration bounds queued audio so latency stays low when the client
// produces faster than the device drains.
const bufferDuration = 200 * time.Millisecond

var (
	ErrUnsupportedFormat = errors.New("otoaudio: unsupported audio format")
	ErrContextMismatch   = errors.New("otoaudio: audio context already opened with different parameters")
)

// oto allows a single context per process.
var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
	otoRate     int
	otoChannels int
)

func ensureContext(sampleRate, channels int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
		otoRate = sampleRate
		otoChannels = channels
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoRate != sampleRate || otoChannels != channels {
		return nil, fmt.Errorf("%w: have %d Hz/%d ch, want %d Hz/%d ch",
			ErrContextMismatch, otoRate, otoChannels, sampleRate, channels)
	}
	return otoCtx, nil
}

// Sink is a host.AudioSink backed by an oto player.
type Sink struct {
	volume float64
	player *oto.Player
	buffer *packetBuffer
}

// New creates a sink that plays at the given volume (0.0 - 2.0).
func New(volume float64) *Sink {
	return &Sink{volume: clampVolume(volume)}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 2.0 {
		return 2.0
	}
	return v
}

// OpenAudio starts a player for a raw S16 stream.
func (s *Sink) OpenAudio(info host.AudioStreamInfo) error {
	if info.Codec != host.CodecNone || info.Format != host.AudioFormatS16NE || len(info.Channels) == 0 {
		return ErrUnsupportedFormat
	}

	ctx, err := ensureContext(info.SampleRate, len(info.Channels))
	if err != nil {
		return fmt.Errorf("oto audio not available: %w", err)
	}

	capacity := int(bufferDuration.Seconds()*float64(info.SampleRate)) * info.FrameSize()
	s.buffer = newPacketBuffer(capacity)
	s.player = ctx.NewPlayer(s.buffer)
	// Set volume before Play() to avoid pop when muted
	s.player.SetVolume(s.volume)
	s.player.Play()
	return nil
}

// AudioFrames queues interleaved samples for playback.
func (s *Sink) AudioFrames(data []byte, frames int, format host.AudioFormat) {
	if s.buffer == nil || format != host.AudioFormatS16NE {
		return
	}
	s.buffer.Write(data)
}

// SetVolume changes the playback volume.
func (s *Sink) SetVolume(vol float64) {
	s.volume = clampVolume(vol)
	if s.player != nil {
		s.player.SetVolume(s.volume)
	}
}

// Flush drops queued audio, used when playback jumps in time.
func (s *Sink) Flush() {
	if s.buffer != nil {
		s.buffer.Clear()
	}
}

// CloseAudio stops the player.
func (s *Sink) CloseAudio() {
	if s.buffer != nil {
		s.buffer.Close()
	}
	if s.player != nil {
		s.player.Close()
	}
	s.player = nil
	s.buffer = nil
}
