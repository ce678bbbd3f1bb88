// Package wavsink records client audio to a WAV file. Samples are held in
// memory and written when the stream closes, so it suits short sessions
// and testing.
package wavsink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/user-none/gamebridge/host"
)

var ErrUnsupportedFormat = errors.New("wavsink: unsupported audio format")

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// Sink is a host.AudioSink writing a 16-bit PCM WAV file.
type Sink struct {
	filename string
	info     host.AudioStreamInfo
	samples  []int
	open     bool
	err      error
}

// New returns a sink that writes to filename when the stream closes.
func New(filename string) *Sink {
	return &Sink{filename: filename}
}

// OpenAudio starts a new recording.
func (s *Sink) OpenAudio(info host.AudioStreamInfo) error {
	if info.Codec != host.CodecNone || info.Format != host.AudioFormatS16NE || len(info.Channels) == 0 || info.SampleRate <= 0 {
		return ErrUnsupportedFormat
	}
	s.info = info
	s.samples = s.samples[:0]
	s.open = true
	s.err = nil
	return nil
}

// AudioFrames appends interleaved native-endian 16-bit samples.
func (s *Sink) AudioFrames(data []byte, frames int, format host.AudioFormat) {
	if !s.open || format != host.AudioFormatS16NE {
		return
	}
	n := min(frames*s.info.FrameSize(), len(data)) / 2
	for i := 0; i < n; i++ {
		s.samples = append(s.samples, int(int16(binary.NativeEndian.Uint16(data[i*2:]))))
	}
}

// Frames returns the number of frames recorded so far.
func (s *Sink) Frames() int {
	if len(s.info.Channels) == 0 {
		return 0
	}
	return len(s.samples) / len(s.info.Channels)
}

// CloseAudio writes the recording to disk.
func (s *Sink) CloseAudio() {
	if !s.open {
		return
	}
	s.open = false
	s.err = s.write()
	if s.err != nil {
		log.Printf("wavsink: %v", s.err)
		return
	}
	log.Printf("wavsink: wrote %d frames to %s", s.Frames(), s.filename)
}

// Err returns the error from the last write, if any.
func (s *Sink) Err() error {
	return s.err
}

func (s *Sink) write() (rerr error) {
	f, err := os.Create(s.filename)
	if err != nil {
		return fmt.Errorf("wavsink: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavsink: %w", err)
		}
	}()

	channels := len(s.info.Channels)
	enc := wav.NewEncoder(f, s.info.SampleRate, 16, channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: s.info.SampleRate},
		Data:           s.samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavsink: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavsink: %w", err)
	}
	return nil
}
