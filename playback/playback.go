// Package playback controls the time, speed, pause and seek state of a
// running game. Basic playback only drives frames, reversible playback
// records every frame into a memory stream so it can rewind and seek.
package playback

import "errors"

// RewindFactor scales negative speeds: rewinding at speed -1 steps back
// through recorded frames at a quarter of the frame rate.
const RewindFactor = 0.25

// ErrNotSupported is returned by savestate operations on playbacks that
// don't drive the game.
var ErrNotSupported = errors.New("playback does not support savestates")

// ErrSerialize is returned when the client fails to produce or accept a
// serialized state.
var ErrSerialize = errors.New("client failed to serialize state")

// Client is the part of a game client a playback drives. Every method is
// expected to be safe to call from the loop goroutine.
type Client interface {
	RunFrame() bool
	SerializeSize() int
	Serialize(data []byte) bool
	Deserialize(data []byte) bool
}

// Playback is the transport controlling a live session.
type Playback interface {
	// Start begins driving frames. Playbacks are created stopped.
	Start()

	// Close stops the loop and waits for any running frame to finish.
	Close()

	CanPause() bool
	CanSeek() bool

	GetTimeMs() uint64
	GetTotalTimeMs() uint64
	GetCacheTimeMs() uint64

	// SeekTimeMs moves to the given play time, clamped to the recorded
	// frames.
	SeekTimeMs(timeMs uint64)

	GetSpeed() float64
	SetSpeed(speedFactor float64)
	PauseUnpause()
	IsPaused() bool

	// CreateSavestate serializes the current game state.
	CreateSavestate() ([]byte, error)

	// LoadSavestate restores a state previously returned by
	// CreateSavestate.
	LoadSavestate(data []byte) error
}
