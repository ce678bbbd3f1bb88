package gameclient

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/host"
	"github.com/user-none/gamebridge/storage"
)

type portUpdate struct {
	port   int
	layout *gameapi.ControllerLayout
}

// fakeLib is an in-process game client.
type fakeLib struct {
	mu sync.Mutex

	apiVersion string
	minVersion string
	vfs        bool
	standalone bool
	gameLoop   bool
	keyboard   bool

	createRC gameapi.Error
	loadRC   gameapi.Error
	info     gameapi.SystemAVInfo
	region   gameapi.Region
	state    []byte

	// onLoad and onFrame run inside LoadGame and RunFrame with the host
	// table, the way a real client opens and feeds its streams.
	onLoad  func(h gameapi.HostCallbacks)
	onFrame func(h gameapi.HostCallbacks)
	panicIn string

	host        gameapi.HostCallbacks
	props       gameapi.Properties
	created     bool
	destroyed   bool
	closed      bool
	loadedPath  string
	standaloneN int
	unloads     int
	frames      int
	resets      int
	updates     []portUpdate
	events      []gameapi.InputEvent
}

func newFakeLib() *fakeLib {
	return &fakeLib{
		apiVersion: gameapi.APIVersion,
		minVersion: gameapi.MinAPIVersion,
		gameLoop:   true,
		info: gameapi.SystemAVInfo{
			Geometry: gameapi.Geometry{BaseWidth: 4, BaseHeight: 2, MaxWidth: 4, MaxHeight: 2},
			Timing:   gameapi.Timing{FPS: 60, SampleRate: 48000},
		},
		region: gameapi.RegionNTSC,
		state:  make([]byte, 16),
	}
}

func (f *fakeLib) maybePanic(method string) {
	if f.panicIn == method {
		panic("fake " + method + " exploded")
	}
}

func (f *fakeLib) Create(h gameapi.HostCallbacks, props *gameapi.Properties) gameapi.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maybePanic("Create")
	if f.createRC != gameapi.ErrorNone {
		return f.createRC
	}
	f.host = h
	f.props = *props
	f.created = true
	return gameapi.ErrorNone
}

func (f *fakeLib) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = true
}

func (f *fakeLib) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeLib) APIVersion() string       { return f.apiVersion }
func (f *fakeLib) MinAPIVersion() string    { return f.minVersion }
func (f *fakeLib) SupportsVFS() bool        { return f.vfs }
func (f *fakeLib) SupportsStandalone() bool { return f.standalone }
func (f *fakeLib) RequiresGameLoop() bool   { return f.gameLoop }
func (f *fakeLib) SupportsKeyboard() bool   { return f.keyboard }

func (f *fakeLib) LoadGame(path string) gameapi.Error {
	f.mu.Lock()
	if f.loadRC != gameapi.ErrorNone {
		f.mu.Unlock()
		return f.loadRC
	}
	f.loadedPath = path
	h, onLoad := f.host, f.onLoad
	f.mu.Unlock()

	if onLoad != nil {
		onLoad(h)
	}
	return gameapi.ErrorNone
}

func (f *fakeLib) LoadStandalone() gameapi.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standaloneN++
	return gameapi.ErrorNone
}

func (f *fakeLib) UnloadGame() gameapi.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloads++
	return gameapi.ErrorNone
}

func (f *fakeLib) GetGameInfo(info *gameapi.SystemAVInfo) gameapi.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*info = f.info
	return gameapi.ErrorNone
}

func (f *fakeLib) GetRegion() gameapi.Region { return f.region }

func (f *fakeLib) RunFrame() gameapi.Error {
	f.maybePanic("RunFrame")
	f.mu.Lock()
	f.frames++
	if len(f.state) > 0 {
		f.state[0]++
	}
	h, onFrame := f.host, f.onFrame
	f.mu.Unlock()

	if onFrame != nil {
		onFrame(h)
	}
	return gameapi.ErrorNone
}

func (f *fakeLib) Reset() gameapi.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return gameapi.ErrorNone
}

func (f *fakeLib) HardwareContextReset() gameapi.Error   { return gameapi.ErrorNotImplemented }
func (f *fakeLib) HardwareContextDestroy() gameapi.Error { return gameapi.ErrorNotImplemented }

func (f *fakeLib) UpdatePort(port int, layout *gameapi.ControllerLayout) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var l *gameapi.ControllerLayout
	if layout != nil {
		cp := *layout
		l = &cp
	}
	f.updates = append(f.updates, portUpdate{port: port, layout: l})
}

func (f *fakeLib) InputEvent(event *gameapi.InputEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return true
}

func (f *fakeLib) SerializeSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state)
}

func (f *fakeLib) Serialize(data []byte) gameapi.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(data) != len(f.state) {
		return gameapi.ErrorInvalidParameters
	}
	copy(data, f.state)
	return gameapi.ErrorNone
}

func (f *fakeLib) Deserialize(data []byte) gameapi.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(data) != len(f.state) {
		return gameapi.ErrorInvalidParameters
	}
	copy(f.state, data)
	return gameapi.ErrorNone
}

func (f *fakeLib) CheatReset() gameapi.Error                    { return gameapi.ErrorNotImplemented }
func (f *fakeLib) SetCheat(uint32, bool, string) gameapi.Error { return gameapi.ErrorNotImplemented }

// fakeStats is a copy of what a fakeLib recorded.
type fakeStats struct {
	created     bool
	destroyed   bool
	closed      bool
	loadedPath  string
	standaloneN int
	unloads     int
	frames      int
	resets      int
	updates     []portUpdate
	events      []gameapi.InputEvent
	props       gameapi.Properties
}

func (f *fakeLib) stats() fakeStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeStats{
		created:     f.created,
		destroyed:   f.destroyed,
		closed:      f.closed,
		loadedPath:  f.loadedPath,
		standaloneN: f.standaloneN,
		unloads:     f.unloads,
		frames:      f.frames,
		resets:      f.resets,
		updates:     append([]portUpdate(nil), f.updates...),
		events:      append([]gameapi.InputEvent(nil), f.events...),
		props:       f.props,
	}
}

type focus struct{ on atomic.Bool }

func (f *focus) HasFocus() bool { return f.on.Load() }

type rateHandle struct{ released atomic.Bool }

func (h *rateHandle) Release() { h.released.Store(true) }

type rateController struct {
	mu      sync.Mutex
	rates   []float64
	handles []*rateHandle
}

func (r *rateController) SetInputRate(rate float64) host.InputRateHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &rateHandle{}
	r.rates = append(r.rates, rate)
	r.handles = append(r.handles, h)
	return h
}

type keyboardCapture struct {
	mu       sync.Mutex
	enabled  int
	disabled int
}

func (k *keyboardCapture) EnableKeyboard(host.KeyboardHandler) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.enabled++
}

func (k *keyboardCapture) DisableKeyboard(host.KeyboardHandler) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.disabled++
}

type controllers map[int]gameapi.ControllerLayout

func (c controllers) Layout(port int) (gameapi.ControllerLayout, bool) {
	l, ok := c[port]
	return l, ok
}

type catalog map[string]host.AddonInfo

func (c catalog) Lookup(id string) (host.AddonInfo, bool) {
	info, ok := c[id]
	return info, ok
}

type notifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *notifier) ShowError(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, title+": "+message)
}

type rumbler struct {
	port      int
	feature   string
	magnitude float32
}

func (r *rumbler) Rumble(port int, controllerID, feature string, magnitude float32) bool {
	r.port, r.feature, r.magnitude = port, feature, magnitude
	return true
}

type videoSink struct {
	mu     sync.Mutex
	info   host.VideoStreamInfo
	opened int
	closed int
	frames int
	last   []byte
}

func (v *videoSink) OpenVideo(info host.VideoStreamInfo) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.info = info
	v.opened++
	return nil
}

func (v *videoSink) VideoFrame(data []byte, width, height int, format host.PixelFormat) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frames++
	v.last = append(v.last[:0], data...)
}

func (v *videoSink) CloseVideo() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed++
}

type audioSink struct {
	mu     sync.Mutex
	info   host.AudioStreamInfo
	opened int
	closed int
	frames int
}

func (a *audioSink) OpenAudio(info host.AudioStreamInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = info
	a.opened++
	return nil
}

func (a *audioSink) AudioFrames(data []byte, frames int, format host.AudioFormat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frames += frames
}

func (a *audioSink) CloseAudio() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed++
}

func testDescriptor() *Descriptor {
	return &Descriptor{
		ID:               "game.client.test",
		Name:             "Test",
		Version:          "1.0.0",
		Author:           "tester",
		Library:          "/nonexistent/test.so",
		SupportsGameLoop: true,
		SupportsVFS:      true,
		Extensions:       []string{".bin"},
	}
}

func testServices(t *testing.T, lib *fakeLib) *host.Services {
	t.Helper()
	base := t.TempDir()
	return &host.Services{
		Loader: func(string) (gameapi.Library, error) { return lib, nil },
		Config: storage.DefaultConfig(),
		Dirs: storage.Dirs{
			Profile: filepath.Join(base, "profiles"),
			System:  filepath.Join(base, "system"),
			Saves:   filepath.Join(base, "saves"),
			Content: filepath.Join(base, "content"),
			Extract: filepath.Join(base, "extracted"),
		},
	}
}

// newInitialized returns an initialized client over lib. The library's
// reported capabilities are copied from desc.
func newInitialized(t *testing.T, desc *Descriptor, lib *fakeLib, services *host.Services) *GameClient {
	t.Helper()
	lib.vfs = desc.SupportsVFS
	lib.standalone = desc.SupportsStandalone
	lib.gameLoop = desc.SupportsGameLoop
	lib.keyboard = desc.SupportsKeyboard

	c := New(desc, services, nil)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(c.Destroy)
	return c
}

func waitFrame() { time.Sleep(5 * time.Millisecond) }
