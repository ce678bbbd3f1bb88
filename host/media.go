package host

// PixelFormat is a raw video format understood by the renderer.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatXRGB8888
	PixelFormatRGB565
	PixelFormatRGB555
)

// BytesPerPixel returns the storage size of one pixel, or 0 if unknown.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatXRGB8888:
		return 4
	case PixelFormatRGB565, PixelFormatRGB555:
		return 2
	}
	return 0
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatXRGB8888:
		return "XRGB8888"
	case PixelFormatRGB565:
		return "RGB565"
	case PixelFormatRGB555:
		return "RGB555"
	}
	return "unknown"
}

// Codec is an encoded stream format.
type Codec int

const (
	CodecNone Codec = iota
	CodecH264
	CodecOpus
)

// AudioFormat is a raw PCM sample format.
type AudioFormat int

const (
	AudioFormatUnknown AudioFormat = iota
	AudioFormatS16NE
)

// BytesPerSample returns the size of one sample of one channel.
func (f AudioFormat) BytesPerSample() int {
	if f == AudioFormatS16NE {
		return 2
	}
	return 0
}

// Channel is a speaker position in the host audio layout.
type Channel int

const (
	ChannelFL Channel = iota
	ChannelFR
	ChannelFC
	ChannelLFE
	ChannelBL
	ChannelBR
	ChannelFLOC
	ChannelFROC
	ChannelBC
	ChannelSL
	ChannelSR
	ChannelTFL
	ChannelTFR
	ChannelTFC
	ChannelTC
	ChannelTBL
	ChannelTBR
	ChannelTBC
	ChannelBLOC
	ChannelBROC
)

// VideoStreamInfo describes an opened video stream. Codec is CodecNone for
// raw pixel streams.
type VideoStreamInfo struct {
	Format   PixelFormat
	Codec    Codec
	Width    int
	Height   int
	Rotation int // degrees counter-clockwise
}

// AudioStreamInfo describes an opened audio stream. Codec is CodecNone for
// raw PCM streams.
type AudioStreamInfo struct {
	Format     AudioFormat
	Codec      Codec
	Channels   []Channel
	SampleRate int
}

// FrameSize returns the byte size of one interleaved PCM frame.
func (i AudioStreamInfo) FrameSize() int {
	return i.Format.BytesPerSample() * len(i.Channels)
}

// VideoSink renders the pictures a client produces.
type VideoSink interface {
	OpenVideo(info VideoStreamInfo) error
	VideoFrame(data []byte, width, height int, format PixelFormat)
	CloseVideo()
}

// AudioSink plays the samples a client produces.
type AudioSink interface {
	OpenAudio(info AudioStreamInfo) error
	AudioFrames(data []byte, frames int, format AudioFormat)
	CloseAudio()
}

// DiscardVideo is a VideoSink that drops every frame.
type DiscardVideo struct{}

func (DiscardVideo) OpenVideo(VideoStreamInfo) error          { return nil }
func (DiscardVideo) VideoFrame([]byte, int, int, PixelFormat) {}
func (DiscardVideo) CloseVideo()                              {}

// DiscardAudio is an AudioSink that drops every sample.
type DiscardAudio struct{}

func (DiscardAudio) OpenAudio(AudioStreamInfo) error     { return nil }
func (DiscardAudio) AudioFrames([]byte, int, AudioFormat) {}
func (DiscardAudio) CloseAudio()                         {}
