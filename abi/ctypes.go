package abi

import (
	"runtime"
	"unsafe"

	gameapi "github.com/user-none/gamebridge/api"
)

// The types below mirror the C structs of the game client ABI and must keep
// their field layout. Pointers inside structs handed to the client either
// point at C memory or at Go memory pinned for the duration of the call.

type cProperties struct {
	LibraryPath      *byte
	ProxyDLLPaths    **byte
	ProxyDLLCount    uint32
	SystemDirectory  *byte
	ContentDirectory *byte
	SaveDirectory    *byte
	ProfileDirectory *byte
}

type cGeometry struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float32
}

type cTiming struct {
	FPS        float64
	SampleRate float64
}

type cSystemAVInfo struct {
	Geometry cGeometry
	Timing   cTiming
}

type cControllerLayout struct {
	ControllerID       *byte
	ProvidesInput      bool
	DigitalButtonCount uint32
	AnalogButtonCount  uint32
	AnalogStickCount   uint32
	AccelerometerCount uint32
	KeyCount           uint32
	RelPointerCount    uint32
	AbsPointerCount    uint32
	MotorCount         uint32
}

type cHWRenderInfo struct {
	Context      int32
	Depth        bool
	Stencil      bool
	BottomLeft   bool
	VersionMajor uint32
	VersionMinor uint32
}

// cInputEvent carries a union payload keyed by Type.
type cInputEvent struct {
	Type         int32
	Port         int32
	ControllerID *byte
	FeatureName  *byte
	Payload      [12]byte
}

type cDigitalButton struct{ Pressed bool }
type cAnalogButton struct{ Magnitude float32 }
type cAnalogStick struct{ X, Y float32 }
type cAccelerometer struct{ X, Y, Z float32 }
type cRelPointer struct{ X, Y int32 }
type cMotor struct{ Magnitude float32 }

type cKey struct {
	Pressed   bool
	Character uint32
	Modifiers uint32
}

type cAbsPointer struct {
	Pressed bool
	X, Y    float32
}

// cHostTable is the table of host callbacks given to a client. Handle is
// passed back as the first argument of every callback.
type cHostTable struct {
	Handle                  uintptr
	CloseGame               uintptr
	OpenPixelStream         uintptr
	OpenVideoStream         uintptr
	OpenPCMStream           uintptr
	OpenAudioStream         uintptr
	AddStreamData           uintptr
	CloseStream             uintptr
	EnableHardwareRendering uintptr
	HardwareFramebuffer     uintptr
	RenderFrame             uintptr
	OpenPort                uintptr
	ClosePort               uintptr
	InputEvent              uintptr
}

// maxChannels bounds channel map scans in case the terminator is missing.
const maxChannels = 32

// cString returns s as a NUL terminated byte slice.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// pinString copies s into pinned memory and returns a pointer to it.
func pinString(pin *runtime.Pinner, s string) *byte {
	b := cString(s)
	pin.Pin(&b[0])
	return &b[0]
}

// goString copies a NUL terminated C string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

func newCProperties(pin *runtime.Pinner, props *gameapi.Properties) *cProperties {
	c := &cProperties{
		LibraryPath:      pinString(pin, props.LibraryPath),
		SystemDirectory:  pinString(pin, props.SystemDirectory),
		ContentDirectory: pinString(pin, props.ContentDirectory),
		SaveDirectory:    pinString(pin, props.SaveDirectory),
		ProfileDirectory: pinString(pin, props.ProfileDirectory),
	}
	if len(props.ProxyDLLPaths) > 0 {
		paths := make([]*byte, len(props.ProxyDLLPaths))
		for i, p := range props.ProxyDLLPaths {
			paths[i] = pinString(pin, p)
		}
		pin.Pin(&paths[0])
		c.ProxyDLLPaths = &paths[0]
		c.ProxyDLLCount = uint32(len(paths))
	}
	pin.Pin(c)
	return c
}

func (c *cSystemAVInfo) toGo() gameapi.SystemAVInfo {
	return gameapi.SystemAVInfo{
		Geometry: gameapi.Geometry{
			BaseWidth:   c.Geometry.BaseWidth,
			BaseHeight:  c.Geometry.BaseHeight,
			MaxWidth:    c.Geometry.MaxWidth,
			MaxHeight:   c.Geometry.MaxHeight,
			AspectRatio: c.Geometry.AspectRatio,
		},
		Timing: gameapi.Timing{
			FPS:        c.Timing.FPS,
			SampleRate: c.Timing.SampleRate,
		},
	}
}

func newCControllerLayout(pin *runtime.Pinner, l *gameapi.ControllerLayout) *cControllerLayout {
	c := &cControllerLayout{
		ControllerID:       pinString(pin, l.ControllerID),
		ProvidesInput:      l.ProvidesInput,
		DigitalButtonCount: uint32(l.DigitalButtons),
		AnalogButtonCount:  uint32(l.AnalogButtons),
		AnalogStickCount:   uint32(l.AnalogSticks),
		AccelerometerCount: uint32(l.Accelerometers),
		KeyCount:           uint32(l.Keys),
		RelPointerCount:    uint32(l.RelPointers),
		AbsPointerCount:    uint32(l.AbsPointers),
		MotorCount:         uint32(l.Motors),
	}
	pin.Pin(c)
	return c
}

func (c *cHWRenderInfo) toGo() gameapi.HWRenderInfo {
	return gameapi.HWRenderInfo{
		Context:      gameapi.HWContext(c.Context),
		Depth:        c.Depth,
		Stencil:      c.Stencil,
		BottomLeft:   c.BottomLeft,
		VersionMajor: c.VersionMajor,
		VersionMinor: c.VersionMinor,
	}
}

func payload[T any](c *cInputEvent) *T {
	return (*T)(unsafe.Pointer(&c.Payload))
}

func newCInputEvent(pin *runtime.Pinner, ev *gameapi.InputEvent) *cInputEvent {
	c := &cInputEvent{
		Type:         int32(ev.Source),
		Port:         int32(ev.Port),
		ControllerID: pinString(pin, ev.ControllerID),
		FeatureName:  pinString(pin, ev.FeatureName),
	}
	switch ev.Source {
	case gameapi.InputDigitalButton:
		*payload[cDigitalButton](c) = cDigitalButton{Pressed: ev.DigitalButton.Pressed}
	case gameapi.InputAnalogButton:
		*payload[cAnalogButton](c) = cAnalogButton{Magnitude: ev.AnalogButton.Magnitude}
	case gameapi.InputAnalogStick:
		*payload[cAnalogStick](c) = cAnalogStick{X: ev.AnalogStick.X, Y: ev.AnalogStick.Y}
	case gameapi.InputAccelerometer:
		*payload[cAccelerometer](c) = cAccelerometer{X: ev.Accelerometer.X, Y: ev.Accelerometer.Y, Z: ev.Accelerometer.Z}
	case gameapi.InputKey:
		*payload[cKey](c) = cKey{Pressed: ev.Key.Pressed, Character: ev.Key.Character, Modifiers: ev.Key.Modifiers}
	case gameapi.InputRelPointer:
		*payload[cRelPointer](c) = cRelPointer{X: ev.RelPointer.X, Y: ev.RelPointer.Y}
	case gameapi.InputAbsPointer:
		*payload[cAbsPointer](c) = cAbsPointer{Pressed: ev.AbsPointer.Pressed, X: ev.AbsPointer.X, Y: ev.AbsPointer.Y}
	case gameapi.InputMotor:
		*payload[cMotor](c) = cMotor{Magnitude: ev.Motor.Magnitude}
	}
	pin.Pin(c)
	return c
}

func (c *cInputEvent) toGo() gameapi.InputEvent {
	ev := gameapi.InputEvent{
		Source:       gameapi.InputSource(c.Type),
		Port:         int(c.Port),
		ControllerID: goString(c.ControllerID),
		FeatureName:  goString(c.FeatureName),
	}
	switch ev.Source {
	case gameapi.InputDigitalButton:
		ev.DigitalButton.Pressed = payload[cDigitalButton](c).Pressed
	case gameapi.InputAnalogButton:
		ev.AnalogButton.Magnitude = payload[cAnalogButton](c).Magnitude
	case gameapi.InputAnalogStick:
		p := payload[cAnalogStick](c)
		ev.AnalogStick = gameapi.AnalogStickEvent{X: p.X, Y: p.Y}
	case gameapi.InputAccelerometer:
		p := payload[cAccelerometer](c)
		ev.Accelerometer = gameapi.AccelerometerEvent{X: p.X, Y: p.Y, Z: p.Z}
	case gameapi.InputKey:
		p := payload[cKey](c)
		ev.Key = gameapi.KeyEvent{Pressed: p.Pressed, Character: p.Character, Modifiers: p.Modifiers}
	case gameapi.InputRelPointer:
		p := payload[cRelPointer](c)
		ev.RelPointer = gameapi.RelPointerEvent{X: p.X, Y: p.Y}
	case gameapi.InputAbsPointer:
		p := payload[cAbsPointer](c)
		ev.AbsPointer = gameapi.AbsPointerEvent{Pressed: p.Pressed, X: p.X, Y: p.Y}
	case gameapi.InputMotor:
		ev.Motor.Magnitude = payload[cMotor](c).Magnitude
	}
	return ev
}

// channelsFromC reads a channel map terminated by ChannelNull.
func channelsFromC(p *int32) []gameapi.AudioChannel {
	if p == nil {
		return nil
	}
	var out []gameapi.AudioChannel
	for i := 0; i < maxChannels; i++ {
		ch := gameapi.AudioChannel(*(*int32)(unsafe.Add(unsafe.Pointer(p), i*4)))
		if ch == gameapi.ChannelNull {
			break
		}
		out = append(out, ch)
	}
	return out
}
