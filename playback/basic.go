package playback

import (
	"fmt"
	"sync"

	"github.com/user-none/gamebridge/gameloop"
)

// Basic runs the client at a fixed rate and supports pausing. It has no
// rewind history.
type Basic struct {
	client Client
	loop   *gameloop.GameLoop
	mu     sync.Mutex
}

// NewBasic creates a stopped basic playback at fps frames per second.
func NewBasic(client Client, fps float64) *Basic {
	b := &Basic{client: client}
	b.loop = gameloop.New(b, fps)
	return b
}

// Start implements Playback.
func (b *Basic) Start() { b.loop.Start() }

// Close implements Playback.
func (b *Basic) Close() { b.loop.Stop() }

// FrameEvent implements gameloop.Callback.
func (b *Basic) FrameEvent() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.client.RunFrame()
}

// RewindEvent implements gameloop.Callback. Basic playback never rewinds.
func (b *Basic) RewindEvent() {}

func (b *Basic) CanPause() bool         { return true }
func (b *Basic) CanSeek() bool          { return false }
func (b *Basic) GetTimeMs() uint64      { return 0 }
func (b *Basic) GetTotalTimeMs() uint64 { return 0 }
func (b *Basic) GetCacheTimeMs() uint64 { return 0 }
func (b *Basic) SeekTimeMs(uint64)      {}

// GetSpeed implements Playback.
func (b *Basic) GetSpeed() float64 { return b.loop.GetSpeed() }

// SetSpeed implements Playback. Negative speeds are ignored.
func (b *Basic) SetSpeed(speedFactor float64) {
	if speedFactor >= 0 {
		b.loop.SetSpeed(speedFactor)
	}
}

// PauseUnpause implements Playback.
func (b *Basic) PauseUnpause() {
	if b.loop.GetSpeed() == 0 {
		b.loop.SetSpeed(1.0)
	} else {
		b.loop.SetSpeed(0.0)
	}
}

// IsPaused implements Playback.
func (b *Basic) IsPaused() bool { return b.loop.GetSpeed() == 0 }

// SetFrameRate changes the loop rate.
func (b *Basic) SetFrameRate(fps float64) { b.loop.SetFPS(fps) }

// CreateSavestate implements Playback.
func (b *Basic) CreateSavestate() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return serializeState(b.client)
}

// LoadSavestate implements Playback.
func (b *Basic) LoadSavestate(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.client.Deserialize(data) {
		return ErrSerialize
	}
	return nil
}

func serializeState(client Client) ([]byte, error) {
	size := client.SerializeSize()
	if size <= 0 {
		return nil, fmt.Errorf("%w: serialize size is %d", ErrNotSupported, size)
	}
	data := make([]byte, size)
	if !client.Serialize(data) {
		return nil, ErrSerialize
	}
	return data, nil
}
