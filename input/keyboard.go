package input

import (
	gameapi "github.com/user-none/gamebridge/api"
)

// KeyboardControllerID identifies the keyboard in events sent to clients.
const KeyboardControllerID = "game.controller.keyboard"

// Keyboard forwards captured key events to a client that declared
// keyboard support.
type Keyboard struct {
	dispatcher Dispatcher
}

// NewKeyboard creates a keyboard bound to the dispatcher.
func NewKeyboard(dispatcher Dispatcher) *Keyboard {
	return &Keyboard{dispatcher: dispatcher}
}

// OnKeyPress handles a key going down.
func (k *Keyboard) OnKeyPress(key string, modifiers uint32, character uint32) bool {
	return k.send(key, true, modifiers, character)
}

// OnKeyRelease handles a key going up.
func (k *Keyboard) OnKeyRelease(key string, modifiers uint32, character uint32) bool {
	return k.send(key, false, modifiers, character)
}

func (k *Keyboard) send(key string, pressed bool, modifiers, character uint32) bool {
	if key == "" || k.dispatcher == nil || !k.dispatcher.AcceptsInput() {
		return false
	}

	ev := &gameapi.InputEvent{
		Source:       gameapi.InputKey,
		Port:         KeyboardPort,
		ControllerID: KeyboardControllerID,
		FeatureName:  key,
		Key: gameapi.KeyEvent{
			Pressed:   pressed,
			Character: character,
			Modifiers: modifiers,
		},
	}
	return k.dispatcher.DispatchInput(ev)
}
