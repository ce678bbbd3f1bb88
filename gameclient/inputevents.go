package gameclient

import (
	gameapi "github.com/user-none/gamebridge/api"
)

// AcceptsInput implements input.Dispatcher. Input only reaches a playing
// client whose game view has focus.
func (c *GameClient) AcceptsInput() bool {
	return c.playing.Load() && c.services.HasFocus()
}

// DispatchInput implements input.Dispatcher.
func (c *GameClient) DispatchInput(event *gameapi.InputEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing.Load() {
		return false
	}
	handled := false
	c.guard("InputEvent", func() { handled = c.lib.InputEvent(event) })
	return handled
}

func (c *GameClient) OnButtonPress(port int, feature string, pressed bool) bool {
	if !c.AcceptsInput() {
		return false
	}
	if p := c.port(port); p != nil {
		return p.OnButtonPress(feature, pressed)
	}
	return false
}

func (c *GameClient) OnButtonMotion(port int, feature string, magnitude float32) bool {
	if !c.AcceptsInput() {
		return false
	}
	if p := c.port(port); p != nil {
		return p.OnButtonMotion(feature, magnitude)
	}
	return false
}

func (c *GameClient) OnAnalogStickMotion(port int, feature string, x, y float32) bool {
	if !c.AcceptsInput() {
		return false
	}
	if p := c.port(port); p != nil {
		return p.OnAnalogStickMotion(feature, x, y)
	}
	return false
}

func (c *GameClient) OnAccelerometerMotion(port int, feature string, x, y, z float32) bool {
	if !c.AcceptsInput() {
		return false
	}
	if p := c.port(port); p != nil {
		return p.OnAccelerometerMotion(feature, x, y, z)
	}
	return false
}

func (c *GameClient) OnRelativePointerMotion(port int, feature string, dx, dy int32) bool {
	if !c.AcceptsInput() {
		return false
	}
	if p := c.port(port); p != nil {
		return p.OnRelativePointerMotion(feature, dx, dy)
	}
	return false
}

func (c *GameClient) OnAbsolutePointerMotion(port int, feature string, pressed bool, x, y float32) bool {
	if !c.AcceptsInput() {
		return false
	}
	if p := c.port(port); p != nil {
		return p.OnAbsolutePointerMotion(feature, pressed, x, y)
	}
	return false
}

// OnKeyPress implements host.KeyboardHandler.
func (c *GameClient) OnKeyPress(key string, modifiers, character uint32) bool {
	if !c.AcceptsInput() {
		return false
	}
	c.stateMu.Lock()
	kb := c.keyboard
	c.stateMu.Unlock()
	if kb == nil {
		return false
	}
	return kb.OnKeyPress(key, modifiers, character)
}

// OnKeyRelease implements host.KeyboardHandler.
func (c *GameClient) OnKeyRelease(key string, modifiers, character uint32) bool {
	if !c.AcceptsInput() {
		return false
	}
	c.stateMu.Lock()
	kb := c.keyboard
	c.stateMu.Unlock()
	if kb == nil {
		return false
	}
	return kb.OnKeyRelease(key, modifiers, character)
}
