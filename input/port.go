// Package input translates host controller and keyboard events into game
// client input events for a single port.
package input

import (
	gameapi "github.com/user-none/gamebridge/api"
)

// KeyboardPort is the port number used for keyboard events.
const KeyboardPort = -1

// Dispatcher delivers translated events to the game client. AcceptsInput
// gates every event so nothing reaches a client that isn't in front.
type Dispatcher interface {
	AcceptsInput() bool
	DispatchInput(event *gameapi.InputEvent) bool
}

// Port is one open controller slot bound to a controller layout.
type Port struct {
	index      int
	layout     gameapi.ControllerLayout
	dispatcher Dispatcher
}

// NewPort binds layout to the given port.
func NewPort(index int, layout gameapi.ControllerLayout, dispatcher Dispatcher) *Port {
	return &Port{
		index:      index,
		layout:     layout,
		dispatcher: dispatcher,
	}
}

// Index returns the port number.
func (p *Port) Index() int { return p.index }

// Layout returns the bound controller layout.
func (p *Port) Layout() gameapi.ControllerLayout { return p.layout }

// ControllerID returns the id of the bound controller.
func (p *Port) ControllerID() string { return p.layout.ControllerID }

// OnButtonPress handles a digital button. Controllers without digital
// buttons reject it.
func (p *Port) OnButtonPress(feature string, pressed bool) bool {
	if p.layout.DigitalButtons == 0 {
		return false
	}
	ev := p.event(gameapi.InputDigitalButton, feature)
	ev.DigitalButton.Pressed = pressed
	return p.dispatch(ev)
}

// OnButtonMotion handles an analog button. The magnitude is clamped to
// [0, 1].
func (p *Port) OnButtonMotion(feature string, magnitude float32) bool {
	if p.layout.AnalogButtons == 0 {
		return false
	}
	ev := p.event(gameapi.InputAnalogButton, feature)
	ev.AnalogButton.Magnitude = clamp(magnitude, 0, 1)
	return p.dispatch(ev)
}

// OnAnalogStickMotion handles a stick. Both axes are clamped to [-1, 1].
func (p *Port) OnAnalogStickMotion(feature string, x, y float32) bool {
	if p.layout.AnalogSticks == 0 {
		return false
	}
	ev := p.event(gameapi.InputAnalogStick, feature)
	ev.AnalogStick.X = clamp(x, -1, 1)
	ev.AnalogStick.Y = clamp(y, -1, 1)
	return p.dispatch(ev)
}

// OnAccelerometerMotion handles an accelerometer. Values are passed
// through unscaled.
func (p *Port) OnAccelerometerMotion(feature string, x, y, z float32) bool {
	if p.layout.Accelerometers == 0 {
		return false
	}
	ev := p.event(gameapi.InputAccelerometer, feature)
	ev.Accelerometer = gameapi.AccelerometerEvent{X: x, Y: y, Z: z}
	return p.dispatch(ev)
}

// OnRelativePointerMotion handles mouse-style motion.
func (p *Port) OnRelativePointerMotion(feature string, dx, dy int32) bool {
	if p.layout.RelPointers == 0 {
		return false
	}
	ev := p.event(gameapi.InputRelPointer, feature)
	ev.RelPointer = gameapi.RelPointerEvent{X: dx, Y: dy}
	return p.dispatch(ev)
}

// OnAbsolutePointerMotion handles light-gun or touch style positions in
// screen-relative coordinates.
func (p *Port) OnAbsolutePointerMotion(feature string, pressed bool, x, y float32) bool {
	if p.layout.AbsPointers == 0 {
		return false
	}
	ev := p.event(gameapi.InputAbsPointer, feature)
	ev.AbsPointer = gameapi.AbsPointerEvent{Pressed: pressed, X: clamp(x, -1, 1), Y: clamp(y, -1, 1)}
	return p.dispatch(ev)
}

func (p *Port) event(source gameapi.InputSource, feature string) *gameapi.InputEvent {
	return &gameapi.InputEvent{
		Source:       source,
		Port:         p.index,
		ControllerID: p.layout.ControllerID,
		FeatureName:  feature,
	}
}

func (p *Port) dispatch(ev *gameapi.InputEvent) bool {
	if p.dispatcher == nil || !p.dispatcher.AcceptsInput() {
		return false
	}
	return p.dispatcher.DispatchInput(ev)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
