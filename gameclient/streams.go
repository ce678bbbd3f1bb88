package gameclient

import (
	"log"

	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/host"
)

// streams is the state of the client's audio and video streams. It is
// guarded by GameClient.stateMu.
type streams struct {
	audio host.AudioSink
	video host.VideoSink

	videoOpen bool
	videoInfo host.VideoStreamInfo

	// audioOpen is set when the client opened a stream, audioActive once
	// the sink was opened at the negotiated rate.
	audioOpen   bool
	audioActive bool
	audioInfo   host.AudioStreamInfo
	sampleRate  int

	frame       []byte
	frameWidth  int
	frameHeight int
	frameFormat host.PixelFormat
}

func pixelFormat(f gameapi.PixelFormat) (host.PixelFormat, bool) {
	switch f {
	case gameapi.PixelFormat0RGB8888:
		return host.PixelFormatXRGB8888, true
	case gameapi.PixelFormatRGB565:
		return host.PixelFormatRGB565, true
	case gameapi.PixelFormat0RGB1555:
		return host.PixelFormatRGB555, true
	}
	return host.PixelFormatUnknown, false
}

func videoCodec(c gameapi.VideoCodec) (host.Codec, bool) {
	if c == gameapi.VideoCodecH264 {
		return host.CodecH264, true
	}
	return host.CodecNone, false
}

func pcmFormat(f gameapi.PCMFormat) (host.AudioFormat, bool) {
	if f == gameapi.PCMFormatS16NE {
		return host.AudioFormatS16NE, true
	}
	return host.AudioFormatUnknown, false
}

func audioCodec(c gameapi.AudioCodec) (host.Codec, bool) {
	if c == gameapi.AudioCodecOpus {
		return host.CodecOpus, true
	}
	return host.CodecNone, false
}

var channelMap = map[gameapi.AudioChannel]host.Channel{
	gameapi.ChannelFL:   host.ChannelFL,
	gameapi.ChannelFR:   host.ChannelFR,
	gameapi.ChannelFC:   host.ChannelFC,
	gameapi.ChannelLFE:  host.ChannelLFE,
	gameapi.ChannelBL:   host.ChannelBL,
	gameapi.ChannelBR:   host.ChannelBR,
	gameapi.ChannelFLOC: host.ChannelFLOC,
	gameapi.ChannelFROC: host.ChannelFROC,
	gameapi.ChannelBC:   host.ChannelBC,
	gameapi.ChannelSL:   host.ChannelSL,
	gameapi.ChannelSR:   host.ChannelSR,
	gameapi.ChannelTFL:  host.ChannelTFL,
	gameapi.ChannelTFR:  host.ChannelTFR,
	gameapi.ChannelTFC:  host.ChannelTFC,
	gameapi.ChannelTC:   host.ChannelTC,
	gameapi.ChannelTBL:  host.ChannelTBL,
	gameapi.ChannelTBR:  host.ChannelTBR,
	gameapi.ChannelTBC:  host.ChannelTBC,
	gameapi.ChannelBLOC: host.ChannelBLOC,
	gameapi.ChannelBROC: host.ChannelBROC,
}

// channels translates a channel map. A map that is empty or holds an
// unknown position is rejected.
func channels(in []gameapi.AudioChannel) ([]host.Channel, bool) {
	if len(in) == 0 {
		return nil, false
	}
	out := make([]host.Channel, 0, len(in))
	for _, ch := range in {
		hc, ok := channelMap[ch]
		if !ok {
			return nil, false
		}
		out = append(out, hc)
	}
	return out, true
}

func rotation(r gameapi.VideoRotation) (int, bool) {
	switch r {
	case gameapi.Rotation0, gameapi.Rotation90, gameapi.Rotation180, gameapi.Rotation270:
		return r.Degrees(), true
	}
	return 0, false
}

func (c *GameClient) setSinks(audio host.AudioSink, video host.VideoSink) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.streams = streams{audio: audio, video: video}
}

func (c *GameClient) clearSinks() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.streams = streams{}
}

func (c *GameClient) openVideo(info host.VideoStreamInfo) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	s := &c.streams
	if s.video == nil {
		return false
	}
	if s.videoOpen {
		s.video.CloseVideo()
		s.videoOpen = false
	}
	if err := s.video.OpenVideo(info); err != nil {
		log.Printf("GameClient: %s: failed to open video stream: %v", c.desc.ID, err)
		return false
	}
	s.videoOpen = true
	s.videoInfo = info
	s.frame = s.frame[:0]
	return true
}

func (c *GameClient) openAudio(info host.AudioStreamInfo) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	s := &c.streams
	if s.audio == nil {
		return false
	}
	if s.audioActive {
		s.audio.CloseAudio()
	}
	s.audioOpen = true
	s.audioActive = false
	s.audioInfo = info
	if s.sampleRate > 0 {
		return c.startAudio()
	}
	return true
}

// activateAudio sets the negotiated rate and opens a stream the client
// requested before the rate was known.
func (c *GameClient) activateAudio(rate int) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	c.streams.sampleRate = rate
	if c.streams.audioOpen && !c.streams.audioActive {
		return c.startAudio()
	}
	return true
}

// startAudio requires stateMu.
func (c *GameClient) startAudio() bool {
	s := &c.streams
	s.audioInfo.SampleRate = s.sampleRate
	if err := s.audio.OpenAudio(s.audioInfo); err != nil {
		log.Printf("GameClient: %s: failed to open audio stream: %v", c.desc.ID, err)
		s.audioOpen = false
		return false
	}
	s.audioActive = true
	return true
}

func (c *GameClient) addStreamData(stream gameapi.StreamType, data []byte) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	s := &c.streams
	switch stream {
	case gameapi.StreamVideo:
		if !s.videoOpen {
			return
		}
		info := s.videoInfo
		if info.Codec != host.CodecNone {
			s.video.VideoFrame(data, info.Width, info.Height, host.PixelFormatUnknown)
			return
		}
		size := info.Width * info.Height * info.Format.BytesPerPixel()
		if size == 0 || len(data) < size {
			return
		}
		s.video.VideoFrame(data[:size], info.Width, info.Height, info.Format)
		s.frame = append(s.frame[:0], data[:size]...)
		s.frameWidth = info.Width
		s.frameHeight = info.Height
		s.frameFormat = info.Format

	case gameapi.StreamAudio:
		if !s.audioActive {
			return
		}
		info := s.audioInfo
		if info.Codec != host.CodecNone {
			s.audio.AudioFrames(data, 0, host.AudioFormatUnknown)
			return
		}
		fs := info.FrameSize()
		if fs == 0 {
			return
		}
		frames := len(data) / fs
		if frames == 0 {
			return
		}
		s.audio.AudioFrames(data[:frames*fs], frames, info.Format)
	}
}

func (c *GameClient) closeStream(stream gameapi.StreamType) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	s := &c.streams
	switch stream {
	case gameapi.StreamVideo:
		if s.videoOpen {
			s.video.CloseVideo()
			s.videoOpen = false
		}
	case gameapi.StreamAudio:
		if s.audioActive {
			s.audio.CloseAudio()
		}
		s.audioOpen = false
		s.audioActive = false
	}
}

func (c *GameClient) closeStreams() {
	c.closeStream(gameapi.StreamVideo)
	c.closeStream(gameapi.StreamAudio)
}

// lastFrame returns a copy of the most recent raw video frame.
func (c *GameClient) lastFrame() (data []byte, width, height int, format host.PixelFormat) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	s := &c.streams
	if len(s.frame) == 0 {
		return nil, 0, 0, host.PixelFormatUnknown
	}
	return append([]byte(nil), s.frame...), s.frameWidth, s.frameHeight, s.frameFormat
}
