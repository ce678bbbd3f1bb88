// Package gameapi is the contract between the host and a game client. It
// mirrors the stable C ABI: the Client interface is the table of functions
// exported by a client library, HostCallbacks is the table the host hands
// to the client when it is created.
package gameapi

// Properties are handed to a client on creation. Paths stay valid until
// the client is destroyed.
type Properties struct {
	LibraryPath      string
	ProxyDLLPaths    []string
	SystemDirectory  string
	ContentDirectory string
	SaveDirectory    string
	ProfileDirectory string
}

// Client is the resolved function table of a loaded game client.
type Client interface {
	// Create hands the host callback table and properties to the client.
	Create(host HostCallbacks, props *Properties) Error

	// Destroy releases the client. No other call may follow.
	Destroy()

	// APIVersion returns the game API version the client was built against.
	APIVersion() string

	// MinAPIVersion returns the oldest host API the client can talk to.
	MinAPIVersion() string

	SupportsVFS() bool
	SupportsStandalone() bool
	RequiresGameLoop() bool
	SupportsKeyboard() bool

	LoadGame(path string) Error
	LoadStandalone() Error
	UnloadGame() Error

	// GetGameInfo fills info with the geometry and timing of the loaded game.
	GetGameInfo(info *SystemAVInfo) Error
	GetRegion() Region

	// RunFrame emulates one frame. Video and audio are delivered through the
	// host callbacks before it returns.
	RunFrame() Error
	Reset() Error

	HardwareContextReset() Error
	HardwareContextDestroy() Error

	// UpdatePort connects (layout non-nil) or disconnects (layout nil) a
	// controller on the given port.
	UpdatePort(port int, layout *ControllerLayout)

	// InputEvent delivers a host input event. It returns true if the client
	// handled the event.
	InputEvent(event *InputEvent) bool

	SerializeSize() int
	Serialize(data []byte) Error
	Deserialize(data []byte) Error

	CheatReset() Error
	SetCheat(index uint32, enabled bool, code string) Error
}

// HostCallbacks is the table of host functions a client may call while it
// is alive.
type HostCallbacks interface {
	// CloseGame is requested by a client that wants to end the session.
	CloseGame()

	OpenPixelStream(format PixelFormat, width, height uint32, rotation VideoRotation) bool
	OpenVideoStream(codec VideoCodec) bool
	OpenPCMStream(format PCMFormat, channels []AudioChannel) bool
	OpenAudioStream(codec AudioCodec, channels []AudioChannel) bool

	// AddStreamData delivers one packet to an open stream. For pixel streams
	// the packet is a full frame, for PCM streams it is interleaved samples.
	AddStreamData(stream StreamType, data []byte)
	CloseStream(stream StreamType)

	EnableHardwareRendering(info *HWRenderInfo) bool
	HardwareFramebuffer() uintptr
	RenderFrame() bool

	OpenPort(port int) bool
	ClosePort(port int)

	// InputEvent carries output events from the client, e.g. rumble.
	InputEvent(event *InputEvent) bool
}

// Library is a Client backed by a loaded shared object. Close unloads it
// and must follow Destroy.
type Library interface {
	Client
	Close() error
}
