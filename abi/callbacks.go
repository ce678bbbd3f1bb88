package abi

import (
	"log"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	gameapi "github.com/user-none/gamebridge/api"
)

// purego caps the number of callbacks per process, so the trampolines are
// created once and shared by every instance. Each table differs only in
// its handle.
var (
	trampolinesOnce sync.Once
	trampolines     cHostTable
)

func hostTrampolines() cHostTable {
	trampolinesOnce.Do(func() {
		trampolines = cHostTable{
			CloseGame:               purego.NewCallback(hostCloseGame),
			OpenPixelStream:         purego.NewCallback(hostOpenPixelStream),
			OpenVideoStream:         purego.NewCallback(hostOpenVideoStream),
			OpenPCMStream:           purego.NewCallback(hostOpenPCMStream),
			OpenAudioStream:         purego.NewCallback(hostOpenAudioStream),
			AddStreamData:           purego.NewCallback(hostAddStreamData),
			CloseStream:             purego.NewCallback(hostCloseStream),
			EnableHardwareRendering: purego.NewCallback(hostEnableHardwareRendering),
			HardwareFramebuffer:     purego.NewCallback(hostHardwareFramebuffer),
			RenderFrame:             purego.NewCallback(hostRenderFrame),
			OpenPort:                purego.NewCallback(hostOpenPort),
			ClosePort:               purego.NewCallback(hostClosePort),
			InputEvent:              purego.NewCallback(hostInputEvent),
		}
	})
	return trampolines
}

// registry maps instance handles to the host callbacks of live clients.
var registry = struct {
	sync.RWMutex
	next  uintptr
	hosts map[uintptr]gameapi.HostCallbacks
}{hosts: make(map[uintptr]gameapi.HostCallbacks)}

// registerHost allocates a handle for h. Handles are never zero.
func registerHost(h gameapi.HostCallbacks) uintptr {
	registry.Lock()
	defer registry.Unlock()
	registry.next++
	registry.hosts[registry.next] = h
	return registry.next
}

func unregisterHost(handle uintptr) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.hosts, handle)
}

func lookupHost(handle uintptr) gameapi.HostCallbacks {
	if handle == 0 {
		return nil
	}
	registry.RLock()
	defer registry.RUnlock()
	return registry.hosts[handle]
}

// dispatch runs fn against the host registered for handle. Unknown handles
// and panics yield the zero result.
func dispatch(name string, handle uintptr, fn func(h gameapi.HostCallbacks) uintptr) (ret uintptr) {
	h := lookupHost(handle)
	if h == nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("abi: host callback %s panicked: %v", name, r)
			ret = 0
		}
	}()
	return fn(h)
}

func boolResult(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func hostCloseGame(handle uintptr) {
	dispatch("CloseGame", handle, func(h gameapi.HostCallbacks) uintptr {
		h.CloseGame()
		return 0
	})
}

func hostOpenPixelStream(handle, format, width, height, rotation uintptr) uintptr {
	return dispatch("OpenPixelStream", handle, func(h gameapi.HostCallbacks) uintptr {
		return boolResult(h.OpenPixelStream(gameapi.PixelFormat(int32(format)), uint32(width), uint32(height),
			gameapi.VideoRotation(int32(rotation))))
	})
}

func hostOpenVideoStream(handle, codec uintptr) uintptr {
	return dispatch("OpenVideoStream", handle, func(h gameapi.HostCallbacks) uintptr {
		return boolResult(h.OpenVideoStream(gameapi.VideoCodec(int32(codec))))
	})
}

// The pointer-taking trampolines below only convert their arguments and hand
// typed pointers to the functions that follow them.

func hostOpenPCMStream(handle, format, channels uintptr) uintptr {
	return openPCMStream(handle, gameapi.PCMFormat(int32(format)), (*int32)(unsafe.Pointer(channels)))
}

func openPCMStream(handle uintptr, format gameapi.PCMFormat, channels *int32) uintptr {
	if channels == nil {
		return 0
	}
	return dispatch("OpenPCMStream", handle, func(h gameapi.HostCallbacks) uintptr {
		return boolResult(h.OpenPCMStream(format, channelsFromC(channels)))
	})
}

func hostOpenAudioStream(handle, codec, channels uintptr) uintptr {
	return openAudioStream(handle, gameapi.AudioCodec(int32(codec)), (*int32)(unsafe.Pointer(channels)))
}

func openAudioStream(handle uintptr, codec gameapi.AudioCodec, channels *int32) uintptr {
	if channels == nil {
		return 0
	}
	return dispatch("OpenAudioStream", handle, func(h gameapi.HostCallbacks) uintptr {
		return boolResult(h.OpenAudioStream(codec, channelsFromC(channels)))
	})
}

// hostAddStreamData passes the client's buffer without copying. It is only
// valid for the duration of the call.
func hostAddStreamData(handle, stream, data, size uintptr) {
	if data == 0 || size == 0 {
		return
	}
	addStreamData(handle, gameapi.StreamType(int32(stream)), unsafe.Slice((*byte)(unsafe.Pointer(data)), size))
}

func addStreamData(handle uintptr, stream gameapi.StreamType, data []byte) {
	if len(data) == 0 {
		return
	}
	dispatch("AddStreamData", handle, func(h gameapi.HostCallbacks) uintptr {
		h.AddStreamData(stream, data)
		return 0
	})
}

func hostCloseStream(handle, stream uintptr) {
	dispatch("CloseStream", handle, func(h gameapi.HostCallbacks) uintptr {
		h.CloseStream(gameapi.StreamType(int32(stream)))
		return 0
	})
}

func hostEnableHardwareRendering(handle, info uintptr) uintptr {
	return enableHardwareRendering(handle, (*cHWRenderInfo)(unsafe.Pointer(info)))
}

func enableHardwareRendering(handle uintptr, info *cHWRenderInfo) uintptr {
	if info == nil {
		return 0
	}
	return dispatch("EnableHardwareRendering", handle, func(h gameapi.HostCallbacks) uintptr {
		hw := info.toGo()
		return boolResult(h.EnableHardwareRendering(&hw))
	})
}

func hostHardwareFramebuffer(handle uintptr) uintptr {
	return dispatch("HardwareFramebuffer", handle, func(h gameapi.HostCallbacks) uintptr {
		return h.HardwareFramebuffer()
	})
}

func hostRenderFrame(handle uintptr) uintptr {
	return dispatch("RenderFrame", handle, func(h gameapi.HostCallbacks) uintptr {
		return boolResult(h.RenderFrame())
	})
}

func hostOpenPort(handle, port uintptr) uintptr {
	return dispatch("OpenPort", handle, func(h gameapi.HostCallbacks) uintptr {
		return boolResult(h.OpenPort(int(int32(port))))
	})
}

func hostClosePort(handle, port uintptr) {
	dispatch("ClosePort", handle, func(h gameapi.HostCallbacks) uintptr {
		h.ClosePort(int(int32(port)))
		return 0
	})
}

func hostInputEvent(handle, event uintptr) uintptr {
	return inputEvent(handle, (*cInputEvent)(unsafe.Pointer(event)))
}

func inputEvent(handle uintptr, event *cInputEvent) uintptr {
	if event == nil {
		return 0
	}
	return dispatch("InputEvent", handle, func(h gameapi.HostCallbacks) uintptr {
		ev := event.toGo()
		return boolResult(h.InputEvent(&ev))
	})
}
