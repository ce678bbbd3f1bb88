package abi

import (
	"fmt"
	"io"
	"runtime"

	"github.com/ebitengine/purego"

	gameapi "github.com/user-none/gamebridge/api"
)

// clientFuncs is the client function table bound with purego.RegisterFunc.
type clientFuncs struct {
	apiVersion             func() string
	minAPIVersion          func() string
	create                 func(host *cHostTable, props *cProperties) int32
	destroy                func()
	supportsVFS            func() bool
	supportsStandalone     func() bool
	requiresGameLoop       func() bool
	supportsKeyboard       func() bool
	loadGame               func(path string) int32
	loadStandalone         func() int32
	unloadGame             func() int32
	getGameInfo            func(info *cSystemAVInfo) int32
	getRegion              func() int32
	runFrame               func() int32
	reset                  func() int32
	hardwareContextReset   func() int32
	hardwareContextDestroy func() int32
	updatePort             func(port int32, connected bool, layout *cControllerLayout)
	inputEvent             func(event *cInputEvent) bool
	serializeSize          func() uintptr
	serialize              func(data *byte, size uintptr) int32
	deserialize            func(data *byte, size uintptr) int32
	cheatReset             func() int32
	setCheat               func(index uint32, enabled bool, code string) int32
}

// bindings pairs each symbol with the function field it is bound to.
func (f *clientFuncs) bindings() map[string]any {
	return map[string]any{
		symAPIVersion:             &f.apiVersion,
		symMinAPIVersion:          &f.minAPIVersion,
		symCreate:                 &f.create,
		symDestroy:                &f.destroy,
		symSupportsVFS:            &f.supportsVFS,
		symSupportsStandalone:     &f.supportsStandalone,
		symRequiresGameLoop:       &f.requiresGameLoop,
		symSupportsKeyboard:       &f.supportsKeyboard,
		symLoadGame:               &f.loadGame,
		symLoadStandalone:         &f.loadStandalone,
		symUnloadGame:             &f.unloadGame,
		symGetGameInfo:            &f.getGameInfo,
		symGetRegion:              &f.getRegion,
		symRunFrame:               &f.runFrame,
		symReset:                  &f.reset,
		symHardwareContextReset:   &f.hardwareContextReset,
		symHardwareContextDestroy: &f.hardwareContextDestroy,
		symUpdatePort:             &f.updatePort,
		symInputEvent:             &f.inputEvent,
		symSerializeSize:          &f.serializeSize,
		symSerialize:              &f.serialize,
		symDeserialize:            &f.deserialize,
		symCheatReset:             &f.cheatReset,
		symSetCheat:               &f.setCheat,
	}
}

// Binding is a gameapi.Library backed by a resolved client function table.
type Binding struct {
	closer io.Closer
	fn     clientFuncs

	// Valid between Create and Destroy.
	handle uintptr
	table  *cHostTable
	props  *cProperties
	pinner runtime.Pinner
}

// Register resolves every required symbol from r and binds them. If r is
// also an io.Closer, closing the binding closes it.
func Register(r Resolver) (*Binding, error) {
	syms, err := Resolve(r)
	if err != nil {
		return nil, err
	}

	b := &Binding{}
	if c, ok := r.(io.Closer); ok {
		b.closer = c
	}
	for name, fptr := range b.fn.bindings() {
		purego.RegisterFunc(fptr, syms[name])
	}
	return b, nil
}

// Open loads the library at path and binds it. It has the shape of a
// host.Loader.
func Open(path string) (gameapi.Library, error) {
	lib, err := Dlopen(path)
	if err != nil {
		return nil, err
	}
	b, err := Register(lib)
	if err != nil {
		lib.Close()
		return nil, fmt.Errorf("abi: %s: %w", path, err)
	}
	return b, nil
}

// Close unloads the library. The client must have been destroyed.
func (b *Binding) Close() error {
	b.release()
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Binding) release() {
	if b.handle != 0 {
		unregisterHost(b.handle)
		b.handle = 0
	}
	b.table = nil
	b.props = nil
	b.pinner.Unpin()
}

func (b *Binding) Create(host gameapi.HostCallbacks, props *gameapi.Properties) gameapi.Error {
	if b.handle != 0 {
		return gameapi.ErrorFailed
	}
	if host == nil || props == nil {
		return gameapi.ErrorInvalidParameters
	}

	b.handle = registerHost(host)
	table := hostTrampolines()
	table.Handle = b.handle
	b.table = &table
	b.pinner.Pin(b.table)
	b.props = newCProperties(&b.pinner, props)

	rc := gameapi.Error(b.fn.create(b.table, b.props))
	if rc != gameapi.ErrorNone {
		b.release()
	}
	return rc
}

func (b *Binding) Destroy() {
	b.fn.destroy()
	b.release()
}

func (b *Binding) APIVersion() string       { return b.fn.apiVersion() }
func (b *Binding) MinAPIVersion() string    { return b.fn.minAPIVersion() }
func (b *Binding) SupportsVFS() bool        { return b.fn.supportsVFS() }
func (b *Binding) SupportsStandalone() bool { return b.fn.supportsStandalone() }
func (b *Binding) RequiresGameLoop() bool   { return b.fn.requiresGameLoop() }
func (b *Binding) SupportsKeyboard() bool   { return b.fn.supportsKeyboard() }

func (b *Binding) LoadGame(path string) gameapi.Error {
	return gameapi.Error(b.fn.loadGame(path))
}

func (b *Binding) LoadStandalone() gameapi.Error {
	return gameapi.Error(b.fn.loadStandalone())
}

func (b *Binding) UnloadGame() gameapi.Error {
	return gameapi.Error(b.fn.unloadGame())
}

func (b *Binding) GetGameInfo(info *gameapi.SystemAVInfo) gameapi.Error {
	if info == nil {
		return gameapi.ErrorInvalidParameters
	}
	var c cSystemAVInfo
	rc := gameapi.Error(b.fn.getGameInfo(&c))
	if rc == gameapi.ErrorNone {
		*info = c.toGo()
	}
	return rc
}

func (b *Binding) GetRegion() gameapi.Region {
	return gameapi.Region(b.fn.getRegion())
}

func (b *Binding) RunFrame() gameapi.Error {
	return gameapi.Error(b.fn.runFrame())
}

func (b *Binding) Reset() gameapi.Error {
	return gameapi.Error(b.fn.reset())
}

func (b *Binding) HardwareContextReset() gameapi.Error {
	return gameapi.Error(b.fn.hardwareContextReset())
}

func (b *Binding) HardwareContextDestroy() gameapi.Error {
	return gameapi.Error(b.fn.hardwareContextDestroy())
}

func (b *Binding) UpdatePort(port int, layout *gameapi.ControllerLayout) {
	if layout == nil {
		b.fn.updatePort(int32(port), false, nil)
		return
	}
	var pin runtime.Pinner
	defer pin.Unpin()
	b.fn.updatePort(int32(port), true, newCControllerLayout(&pin, layout))
}

func (b *Binding) InputEvent(event *gameapi.InputEvent) bool {
	if event == nil {
		return false
	}
	var pin runtime.Pinner
	defer pin.Unpin()
	return b.fn.inputEvent(newCInputEvent(&pin, event))
}

func (b *Binding) SerializeSize() int {
	return int(b.fn.serializeSize())
}

func (b *Binding) Serialize(data []byte) gameapi.Error {
	if len(data) == 0 {
		return gameapi.ErrorInvalidParameters
	}
	return gameapi.Error(b.fn.serialize(&data[0], uintptr(len(data))))
}

func (b *Binding) Deserialize(data []byte) gameapi.Error {
	if len(data) == 0 {
		return gameapi.ErrorInvalidParameters
	}
	return gameapi.Error(b.fn.deserialize(&data[0], uintptr(len(data))))
}

func (b *Binding) CheatReset() gameapi.Error {
	return gameapi.Error(b.fn.cheatReset())
}

func (b *Binding) SetCheat(index uint32, enabled bool, code string) gameapi.Error {
	return gameapi.Error(b.fn.setCheat(index, enabled, code))
}

var _ gameapi.Library = (*Binding)(nil)
