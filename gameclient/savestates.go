package gameclient

import (
	"fmt"
	"image"
	"log"

	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/savestate"
)

// SerializeSize returns the size of a serialized state, or 0 when no game
// is playing.
func (c *GameClient) SerializeSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing.Load() {
		return 0
	}
	size := 0
	c.guard("SerializeSize", func() { size = c.lib.SerializeSize() })
	return size
}

// Serialize writes the game state into data.
func (c *GameClient) Serialize(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing.Load() {
		return false
	}
	return c.check("Serialize", func() gameapi.Error { return c.lib.Serialize(data) })
}

// Deserialize restores a state produced by Serialize.
func (c *GameClient) Deserialize(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing.Load() {
		return false
	}
	return c.check("Deserialize", func() gameapi.Error { return c.lib.Deserialize(data) })
}

// SaveState writes the current state of the game into slot, with the last
// video frame as thumbnail.
func (c *GameClient) SaveState(slot int, label string) (savestate.Meta, error) {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	if c.pb == nil {
		return savestate.Meta{}, ErrNotPlaying
	}
	if c.saves == nil {
		return savestate.Meta{}, ErrNoSavestates
	}

	state, err := c.pb.CreateSavestate()
	if err != nil {
		return savestate.Meta{}, fmt.Errorf("failed to create savestate: %w", err)
	}
	return c.saves.Save(slot, label, state, c.thumbnail(), c.pb.GetTimeMs())
}

// LoadState restores the state saved in slot.
func (c *GameClient) LoadState(slot int) error {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	if c.pb == nil {
		return ErrNotPlaying
	}
	if c.saves == nil {
		return ErrNoSavestates
	}

	state, _, err := c.saves.Load(slot)
	if err != nil {
		return err
	}
	if err := c.pb.LoadSavestate(state); err != nil {
		return fmt.Errorf("failed to load savestate: %w", err)
	}
	return nil
}

// DeleteState removes the state saved in slot.
func (c *GameClient) DeleteState(slot int) error {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	if c.saves == nil {
		return ErrNoSavestates
	}
	return c.saves.Delete(slot)
}

// ListStates returns the savestates of the running game.
func (c *GameClient) ListStates() []savestate.Meta {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	if c.saves == nil {
		return nil
	}
	return c.saves.List()
}

func (c *GameClient) thumbnail() image.Image {
	data, w, h, format := c.lastFrame()
	if data == nil {
		return nil
	}
	img, err := savestate.FrameToImage(data, w, h, format)
	if err != nil {
		log.Printf("GameClient: %s: no thumbnail: %v", c.desc.ID, err)
		return nil
	}
	return img
}
