// Package host holds the services a game client consumes from the
// surrounding application. Everything the bridge would otherwise reach
// through process-wide managers is passed in explicitly through Services.
package host

import (
	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/storage"
)

// FocusChecker reports whether the fullscreen game view has focus. Input
// is only forwarded to a client while it does.
type FocusChecker interface {
	HasFocus() bool
}

// AlwaysFocused is a FocusChecker for headless hosts.
type AlwaysFocused struct{}

func (AlwaysFocused) HasFocus() bool { return true }

// InputRateHandle pins the host input poll rate until released.
type InputRateHandle interface {
	Release()
}

// InputRateController sets the input poll rate to match a game's frame rate.
type InputRateController interface {
	SetInputRate(rate float64) InputRateHandle
}

// KeyboardHandler receives raw key events while the keyboard is captured.
type KeyboardHandler interface {
	OnKeyPress(key string, modifiers, character uint32) bool
	OnKeyRelease(key string, modifiers, character uint32) bool
}

// KeyboardCapture routes keyboard events to a handler.
type KeyboardCapture interface {
	EnableKeyboard(h KeyboardHandler)
	DisableKeyboard(h KeyboardHandler)
}

// ControllerProvider answers which controller is plugged into a port.
type ControllerProvider interface {
	Layout(port int) (gameapi.ControllerLayout, bool)
}

// Rumbler drives force feedback requested by a client.
type Rumbler interface {
	Rumble(port int, controllerID, feature string, magnitude float32) bool
}

// AddonInfo describes an installed addon a client may depend on.
type AddonInfo struct {
	ID      string
	Name    string
	Path    string
	Enabled bool
}

// AddonCatalog looks up installed addons by id.
type AddonCatalog interface {
	Lookup(id string) (AddonInfo, bool)
}

// Notifier surfaces an error to the user.
type Notifier interface {
	ShowError(title, message string)
}

// Loader opens a game client shared library.
type Loader func(path string) (gameapi.Library, error)

// Services is the context handed to every game client. Nil fields fall
// back to headless behavior.
type Services struct {
	Focus       FocusChecker
	InputRate   InputRateController
	Keyboard    KeyboardCapture
	Controllers ControllerProvider
	Rumble      Rumbler
	Addons      AddonCatalog
	Notifier    Notifier
	Loader      Loader
	Config      *storage.Config
	Dirs        storage.Dirs
}

// HasFocus reports whether input may reach the client.
func (s *Services) HasFocus() bool {
	if s.Focus == nil {
		return true
	}
	return s.Focus.HasFocus()
}

// SampleRates returns the host's accepted output sample rates.
func (s *Services) SampleRates() []int {
	if s.Config == nil || len(s.Config.Audio.SampleRates) == 0 {
		return storage.DefaultSampleRates
	}
	return s.Config.Audio.SampleRates
}

// RewindConfig returns the configured rewind settings.
func (s *Services) RewindConfig() storage.RewindConfig {
	if s.Config == nil {
		return storage.DefaultConfig().Rewind
	}
	return s.Config.Rewind
}

// AudioConfig returns the configured audio settings.
func (s *Services) AudioConfig() storage.AudioConfig {
	if s.Config == nil {
		return storage.DefaultConfig().Audio
	}
	return s.Config.Audio
}

// Notify shows an error through the Notifier if there is one.
func (s *Services) Notify(title, message string) {
	if s.Notifier != nil {
		s.Notifier.ShowError(title, message)
	}
}

type nopHandle struct{}

func (nopHandle) Release() {}

// AcquireInputRate pins the input rate, returning a no-op handle when no
// controller is configured.
func (s *Services) AcquireInputRate(rate float64) InputRateHandle {
	if s.InputRate == nil {
		return nopHandle{}
	}
	if h := s.InputRate.SetInputRate(rate); h != nil {
		return h
	}
	return nopHandle{}
}
