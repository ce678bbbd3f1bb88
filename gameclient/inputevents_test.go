package gameclient

import (
	"testing"

	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/input"
)

var pad = gameapi.ControllerLayout{
	ControllerID:   "game.controller.pad",
	ProvidesInput:  true,
	DigitalButtons: 8,
	AnalogSticks:   2,
	Motors:         1,
}

func TestPortsOpenClose(t *testing.T) {
	lib := newFakeLib()
	services := testServices(t, lib)
	services.Controllers = controllers{2: pad}

	c := newInitialized(t, manualDescriptor(), lib, services)

	if c.OpenPort(2) {
		t.Fatal("port opened without a game")
	}

	openGame(t, c)

	if c.OpenPort(0) {
		t.Error("opened a port with no controller")
	}
	if !c.OpenPort(2) {
		t.Fatal("OpenPort(2) failed")
	}
	if got := c.Ports(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Ports: got %v, want [2]", got)
	}

	updates := lib.stats().updates
	if len(updates) != 1 || updates[0].port != 2 || updates[0].layout == nil ||
		updates[0].layout.ControllerID != pad.ControllerID {
		t.Fatalf("updates after open: got %+v", updates)
	}

	c.ClosePort(2)
	updates = lib.stats().updates
	if len(updates) != 2 || updates[1].port != 2 || updates[1].layout != nil {
		t.Fatalf("updates after close: got %+v", updates)
	}
	if got := c.Ports(); len(got) != 0 {
		t.Errorf("Ports after close: got %v", got)
	}

	c.ClosePort(2)
	if got := len(lib.stats().updates); got != 2 {
		t.Errorf("closing a closed port notified the client: %d updates", got)
	}
}

func TestCloseFileClearsPorts(t *testing.T) {
	lib := newFakeLib()
	services := testServices(t, lib)
	services.Controllers = controllers{0: pad, 1: pad}

	c := newInitialized(t, manualDescriptor(), lib, services)
	openGame(t, c)
	c.OpenPort(0)
	c.OpenPort(1)

	c.CloseFile()

	var cleared []int
	for _, u := range lib.stats().updates {
		if u.layout == nil {
			cleared = append(cleared, u.port)
		}
	}
	if len(cleared) != 2 {
		t.Errorf("ports cleared: got %v, want [0 1]", cleared)
	}
	if got := c.Ports(); len(got) != 0 {
		t.Errorf("Ports: got %v, want none", got)
	}
}

func TestPortCallbacksFromClient(t *testing.T) {
	lib := newFakeLib()
	services := testServices(t, lib)
	services.Controllers = controllers{3: pad}
	lib.onLoad = func(h gameapi.HostCallbacks) {
		if !h.OpenPort(3) {
			t.Error("client could not open port 3")
		}
		if h.OpenPort(4) {
			t.Error("client opened port 4 without a controller")
		}
	}

	c := newInitialized(t, manualDescriptor(), lib, services)
	openGame(t, c)

	if got := c.Ports(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("Ports: got %v, want [3]", got)
	}

	lib.host.ClosePort(3)
	if got := c.Ports(); len(got) != 0 {
		t.Errorf("Ports after client close: got %v", got)
	}
}

func TestInputRequiresFocus(t *testing.T) {
	lib := newFakeLib()
	services := testServices(t, lib)
	services.Controllers = controllers{0: pad}
	f := &focus{}
	services.Focus = f

	c := newInitialized(t, manualDescriptor(), lib, services)
	openGame(t, c)
	if !c.OpenPort(0) {
		t.Fatal("OpenPort failed")
	}

	events := []struct {
		name string
		send func() bool
	}{
		{"button", func() bool { return c.OnButtonPress(0, "a", true) }},
		{"stick", func() bool { return c.OnAnalogStickMotion(0, "leftstick", 0.5, -0.5) }},
	}

	for _, ev := range events {
		t.Run(ev.name, func(t *testing.T) {
			before := len(lib.stats().events)

			f.on.Store(false)
			if ev.send() {
				t.Error("event accepted without focus")
			}
			if got := len(lib.stats().events); got != before {
				t.Errorf("client saw %d events without focus", got-before)
			}

			f.on.Store(true)
			if !ev.send() {
				t.Error("event rejected with focus")
			}
			if got := len(lib.stats().events); got != before+1 {
				t.Errorf("client events: got %d, want %d", got, before+1)
			}
		})
	}

	// The pad has no analog buttons or accelerometers.
	if c.OnButtonMotion(0, "trigger", 1) {
		t.Error("analog button accepted by a pad without one")
	}
	if c.OnAccelerometerMotion(0, "accel", 0, 0, 1) {
		t.Error("accelerometer accepted by a pad without one")
	}
	if c.OnButtonPress(5, "a", true) {
		t.Error("event accepted on a closed port")
	}
}

func TestInputRejectedWhenNotPlaying(t *testing.T) {
	lib := newFakeLib()
	c := newInitialized(t, manualDescriptor(), lib, testServices(t, lib))

	if c.AcceptsInput() {
		t.Error("accepts input without a game")
	}
	if c.DispatchInput(&gameapi.InputEvent{Source: gameapi.InputDigitalButton}) {
		t.Error("dispatched without a game")
	}
	if c.OnKeyPress("a", 0, 'a') {
		t.Error("key accepted without a game")
	}
}

func TestKeyboard(t *testing.T) {
	lib := newFakeLib()
	services := testServices(t, lib)
	services.Keyboard = &keyboardCapture{}
	f := &focus{}
	services.Focus = f

	desc := manualDescriptor()
	desc.SupportsKeyboard = true
	c := newInitialized(t, desc, lib, services)
	openGame(t, c)

	if c.OnKeyPress("a", gameapi.ModShift, 'A') {
		t.Error("key accepted without focus")
	}

	f.on.Store(true)
	if !c.OnKeyPress("a", gameapi.ModShift, 'A') || !c.OnKeyRelease("a", 0, 'a') {
		t.Fatal("key rejected with focus")
	}

	events := lib.stats().events
	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}
	press := events[0]
	if press.Source != gameapi.InputKey || press.Port != input.KeyboardPort || !press.Key.Pressed ||
		press.Key.Character != 'A' || press.Key.Modifiers != gameapi.ModShift {
		t.Errorf("press: got %+v", press)
	}
	if events[1].Key.Pressed {
		t.Error("release reported as press")
	}
}

func TestRumble(t *testing.T) {
	r := &rumbler{}
	services := testServices(t, nil)
	services.Rumble = r
	cb := &callbacks{c: New(testDescriptor(), services, nil)}

	ev := &gameapi.InputEvent{
		Source:      gameapi.InputMotor,
		Port:        1,
		FeatureName: "strongmotor",
		Motor:       gameapi.MotorEvent{Magnitude: 0.75},
	}
	if !cb.InputEvent(ev) {
		t.Fatal("rumble not delivered")
	}
	if r.port != 1 || r.feature != "strongmotor" || r.magnitude != 0.75 {
		t.Errorf("rumble: got port %d feature %q magnitude %v", r.port, r.feature, r.magnitude)
	}

	if cb.InputEvent(&gameapi.InputEvent{Source: gameapi.InputDigitalButton}) {
		t.Error("non-motor event accepted")
	}
	if cb.InputEvent(nil) {
		t.Error("nil event accepted")
	}
}
