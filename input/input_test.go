package input

import (
	"testing"

	gameapi "github.com/user-none/gamebridge/api"
)

type recordingDispatcher struct {
	focused bool
	handled bool
	events  []gameapi.InputEvent
}

func (d *recordingDispatcher) AcceptsInput() bool { return d.focused }

func (d *recordingDispatcher) DispatchInput(ev *gameapi.InputEvent) bool {
	d.events = append(d.events, *ev)
	return d.handled
}

var gamepad = gameapi.ControllerLayout{
	ControllerID:   "game.controller.snes",
	DigitalButtons: 12,
	AnalogSticks:   0,
}

var fullPad = gameapi.ControllerLayout{
	ControllerID:   "game.controller.dualanalog",
	DigitalButtons: 14,
	AnalogButtons:  2,
	AnalogSticks:   2,
	Accelerometers: 1,
	RelPointers:    1,
	AbsPointers:    1,
}

func TestPortButtonPress(t *testing.T) {
	d := &recordingDispatcher{focused: true, handled: true}
	p := NewPort(1, gamepad, d)

	if !p.OnButtonPress("a", true) {
		t.Fatal("OnButtonPress should return the client's result")
	}
	if len(d.events) != 1 {
		t.Fatalf("events = %d, want 1", len(d.events))
	}
	ev := d.events[0]
	if ev.Source != gameapi.InputDigitalButton || ev.Port != 1 || ev.ControllerID != "game.controller.snes" ||
		ev.FeatureName != "a" || !ev.DigitalButton.Pressed {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestPortRejectsWithoutFocus(t *testing.T) {
	d := &recordingDispatcher{focused: false, handled: true}
	p := NewPort(0, fullPad, d)

	if p.OnButtonPress("a", true) || p.OnButtonMotion("l2", 0.5) || p.OnAnalogStickMotion("left", 1, 0) ||
		p.OnAccelerometerMotion("accel", 0, 0, 1) {
		t.Error("events should be rejected without focus")
	}
	if len(d.events) != 0 {
		t.Errorf("events dispatched = %d, want 0", len(d.events))
	}
}

func TestPortRejectsMissingFeatures(t *testing.T) {
	d := &recordingDispatcher{focused: true, handled: true}
	p := NewPort(0, gamepad, d)

	if p.OnAnalogStickMotion("left", 0.5, 0.5) {
		t.Error("controller without sticks should reject stick motion")
	}
	if p.OnAccelerometerMotion("accel", 1, 2, 3) {
		t.Error("controller without accelerometer should reject motion")
	}
	if len(d.events) != 0 {
		t.Errorf("events dispatched = %d, want 0", len(d.events))
	}
}

func TestPortClampsValues(t *testing.T) {
	d := &recordingDispatcher{focused: true, handled: true}
	p := NewPort(0, fullPad, d)

	p.OnButtonMotion("l2", 1.7)
	p.OnAnalogStickMotion("left", -3, 0.25)
	p.OnAbsolutePointerMotion("pointer", true, 2, -2)

	if got := d.events[0].AnalogButton.Magnitude; got != 1 {
		t.Errorf("magnitude = %f, want 1", got)
	}
	if got := d.events[1].AnalogStick; got.X != -1 || got.Y != 0.25 {
		t.Errorf("stick = %+v, want {-1 0.25}", got)
	}
	if got := d.events[2].AbsPointer; got.X != 1 || got.Y != -1 || !got.Pressed {
		t.Errorf("pointer = %+v", got)
	}
}

func TestKeyboard(t *testing.T) {
	d := &recordingDispatcher{focused: true, handled: true}
	k := NewKeyboard(d)

	if !k.OnKeyPress("enter", gameapi.ModShift, '\r') {
		t.Error("key press should be handled")
	}
	k.OnKeyRelease("enter", gameapi.ModNone, 0)
	if k.OnKeyPress("", 0, 0) {
		t.Error("empty key name should be rejected")
	}

	if len(d.events) != 2 {
		t.Fatalf("events = %d, want 2", len(d.events))
	}
	press := d.events[0]
	if press.Source != gameapi.InputKey || press.Port != KeyboardPort || !press.Key.Pressed ||
		press.Key.Modifiers != gameapi.ModShift || press.Key.Character != '\r' {
		t.Errorf("unexpected press event %+v", press)
	}
	if d.events[1].Key.Pressed {
		t.Error("release event should not be pressed")
	}

	d.focused = false
	if k.OnKeyPress("a", 0, 'a') {
		t.Error("keyboard should reject input without focus")
	}
}
