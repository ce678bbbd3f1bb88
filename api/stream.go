package gameapi

// StreamType identifies the kind of stream a client opened.
type StreamType int32

const (
	StreamUnknown StreamType = iota
	StreamAudio
	StreamVideo
)

// PixelFormat is the layout of raw video frames.
type PixelFormat int32

const (
	PixelFormatUnknown  PixelFormat = iota
	PixelFormat0RGB8888             // 32-bit, high byte unused
	PixelFormatRGB565               // 16-bit
	PixelFormat0RGB1555             // 16-bit, high bit unused
)

// VideoCodec identifies encoded video streams.
type VideoCodec int32

const (
	VideoCodecUnknown VideoCodec = iota
	VideoCodecH264
)

// PCMFormat is the sample layout of raw audio frames.
type PCMFormat int32

const (
	PCMFormatUnknown PCMFormat = iota
	PCMFormatS16NE             // signed 16-bit, native endian
)

// AudioCodec identifies encoded audio streams.
type AudioCodec int32

const (
	AudioCodecUnknown AudioCodec = iota
	AudioCodecOpus
)

// AudioChannel is one entry of a channel map. Maps passed over the ABI are
// terminated by ChannelNull.
type AudioChannel int32

const (
	ChannelNull AudioChannel = iota
	ChannelFL
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

// VideoRotation is the counter-clockwise rotation applied to video frames.
type VideoRotation int32

const (
	Rotation0 VideoRotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Degrees returns the rotation in degrees.
func (r VideoRotation) Degrees() int {
	switch r {
	case Rotation90:
		return 90
	case Rotation180:
		return 180
	case Rotation270:
		return 270
	default:
		return 0
	}
}

// HWContext identifies the graphics API a hardware-rendering client wants.
type HWContext int32

const (
	HWContextNone HWContext = iota
	HWContextOpenGL
	HWContextOpenGLES2
	HWContextOpenGLCore
	HWContextOpenGLES3
)

// HWRenderInfo is passed by clients requesting hardware rendering.
type HWRenderInfo struct {
	Context      HWContext
	Depth        bool
	Stencil      bool
	BottomLeft   bool
	VersionMajor uint32
	VersionMinor uint32
}
