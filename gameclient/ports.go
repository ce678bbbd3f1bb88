package gameclient

import (
	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/input"
)

func (c *GameClient) controllerLayout(port int) (gameapi.ControllerLayout, bool) {
	if port < 0 || c.services.Controllers == nil {
		return gameapi.ControllerLayout{}, false
	}
	return c.services.Controllers.Layout(port)
}

// bindPort attaches a controller to port, growing the port table as
// needed. A controller already bound to the port is replaced.
func (c *GameClient) bindPort(port int, layout gameapi.ControllerLayout) bool {
	if port < 0 {
		return false
	}
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	for len(c.ports) <= port {
		c.ports = append(c.ports, nil)
	}
	c.ports[port] = input.NewPort(port, layout, c)
	return true
}

// unbindPort removes the controller on port. It reports whether one was
// bound.
func (c *GameClient) unbindPort(port int) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if port < 0 || port >= len(c.ports) || c.ports[port] == nil {
		return false
	}
	c.ports[port] = nil
	for n := len(c.ports); n > 0 && c.ports[n-1] == nil; n-- {
		c.ports = c.ports[:n-1]
	}
	return true
}

func (c *GameClient) port(port int) *input.Port {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if port < 0 || port >= len(c.ports) {
		return nil
	}
	return c.ports[port]
}

func (c *GameClient) openPorts() []int {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	var open []int
	for i, p := range c.ports {
		if p != nil {
			open = append(open, i)
		}
	}
	return open
}

// OpenPort connects the controller the host has on port and tells the
// client its layout.
func (c *GameClient) OpenPort(port int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing.Load() {
		return false
	}
	layout, ok := c.controllerLayout(port)
	if !ok {
		return false
	}
	if !c.bindPort(port, layout) {
		return false
	}
	ok = c.guard("UpdatePort", func() { c.lib.UpdatePort(port, &layout) })
	if !ok {
		c.unbindPort(port)
	}
	return ok
}

// ClosePort disconnects the controller on port. The client is told
// before the port goes away.
func (c *GameClient) ClosePort(port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closePort(port)
}

// closePort requires mu.
func (c *GameClient) closePort(port int) {
	if c.port(port) == nil {
		return
	}
	if c.lib != nil {
		c.guard("UpdatePort", func() { c.lib.UpdatePort(port, nil) })
	}
	c.unbindPort(port)
}

// ClearPorts disconnects every controller.
func (c *GameClient) ClearPorts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearPorts()
}

// clearPorts requires mu.
func (c *GameClient) clearPorts() {
	for _, port := range c.openPorts() {
		c.closePort(port)
	}
}

// Ports returns the numbers of the connected ports.
func (c *GameClient) Ports() []int {
	return c.openPorts()
}
