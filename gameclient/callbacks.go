package gameclient

import (
	"log"

	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/host"
)

// callbacks is the host table handed to the library. Its methods run
// inside library calls, with GameClient.mu held by the caller.
type callbacks struct {
	c *GameClient
}

var _ gameapi.HostCallbacks = (*callbacks)(nil)

// CloseGame ends the session. The close runs on its own goroutine since
// the request arrives in the middle of a frame, and only applies to the
// session that was playing when it was asked for.
func (cb *callbacks) CloseGame() {
	log.Printf("GameClient: %s: client requested close", cb.c.desc.ID)
	go cb.c.closeSession(cb.c.session.Load())
}

func (cb *callbacks) OpenPixelStream(format gameapi.PixelFormat, width, height uint32, rot gameapi.VideoRotation) bool {
	f, ok := pixelFormat(format)
	if !ok {
		log.Printf("GameClient: %s: unsupported pixel format %d", cb.c.desc.ID, format)
		return false
	}
	degrees, ok := rotation(rot)
	if !ok {
		log.Printf("GameClient: %s: unsupported rotation %d", cb.c.desc.ID, rot)
		return false
	}
	return cb.c.openVideo(host.VideoStreamInfo{
		Format:   f,
		Codec:    host.CodecNone,
		Width:    int(width),
		Height:   int(height),
		Rotation: degrees,
	})
}

func (cb *callbacks) OpenVideoStream(codec gameapi.VideoCodec) bool {
	hc, ok := videoCodec(codec)
	if !ok {
		log.Printf("GameClient: %s: unsupported video codec %d", cb.c.desc.ID, codec)
		return false
	}
	return cb.c.openVideo(host.VideoStreamInfo{Codec: hc})
}

func (cb *callbacks) OpenPCMStream(format gameapi.PCMFormat, chans []gameapi.AudioChannel) bool {
	f, ok := pcmFormat(format)
	if !ok {
		log.Printf("GameClient: %s: unsupported PCM format %d", cb.c.desc.ID, format)
		return false
	}
	hc, ok := channels(chans)
	if !ok {
		log.Printf("GameClient: %s: unsupported channel map %v", cb.c.desc.ID, chans)
		return false
	}
	return cb.c.openAudio(host.AudioStreamInfo{Format: f, Codec: host.CodecNone, Channels: hc})
}

func (cb *callbacks) OpenAudioStream(codec gameapi.AudioCodec, chans []gameapi.AudioChannel) bool {
	ac, ok := audioCodec(codec)
	if !ok {
		log.Printf("GameClient: %s: unsupported audio codec %d", cb.c.desc.ID, codec)
		return false
	}
	hc, ok := channels(chans)
	if !ok {
		log.Printf("GameClient: %s: unsupported channel map %v", cb.c.desc.ID, chans)
		return false
	}
	return cb.c.openAudio(host.AudioStreamInfo{Codec: ac, Channels: hc})
}

func (cb *callbacks) AddStreamData(stream gameapi.StreamType, data []byte) {
	cb.c.addStreamData(stream, data)
}

func (cb *callbacks) CloseStream(stream gameapi.StreamType) {
	cb.c.closeStream(stream)
}

// EnableHardwareRendering is refused; only software pixel streams are
// presented.
func (cb *callbacks) EnableHardwareRendering(info *gameapi.HWRenderInfo) bool {
	if info != nil {
		log.Printf("GameClient: %s: hardware rendering (context %d) is not supported", cb.c.desc.ID, info.Context)
	}
	return false
}

func (cb *callbacks) HardwareFramebuffer() uintptr { return 0 }

func (cb *callbacks) RenderFrame() bool { return false }

func (cb *callbacks) OpenPort(port int) bool {
	layout, ok := cb.c.controllerLayout(port)
	if !ok {
		return false
	}
	return cb.c.bindPort(port, layout)
}

func (cb *callbacks) ClosePort(port int) {
	cb.c.unbindPort(port)
}

// InputEvent carries rumble requests to the host.
func (cb *callbacks) InputEvent(event *gameapi.InputEvent) bool {
	if event == nil || event.Source != gameapi.InputMotor {
		return false
	}
	if cb.c.services.Rumble == nil {
		return false
	}
	return cb.c.services.Rumble.Rumble(event.Port, event.ControllerID, event.FeatureName, event.Motor.Magnitude)
}
