package playback

import (
	"log"
	"math"
	"sync"

	"github.com/user-none/gamebridge/gameloop"
	"github.com/user-none/gamebridge/memstream"
)

// Reversible records every frame into a memory stream, which makes it
// possible to rewind at negative speeds and to seek within the recording.
type Reversible struct {
	client        Client
	loop          *gameloop.GameLoop
	bufferSeconds float64

	// mu guards the stream and the stats. It is held across every client
	// call made by the playback so seeks never race a running frame.
	mu          sync.Mutex
	stream      memstream.MemoryStream
	playTimeMs  uint64
	totalTimeMs uint64
	cacheTimeMs uint64
}

// NewReversible creates a stopped reversible playback at fps frames per
// second. The stream holds bufferSeconds worth of frames of the client's
// serialize size.
func NewReversible(client Client, fps, bufferSeconds float64, kind memstream.Kind) *Reversible {
	r := &Reversible{
		client:        client,
		bufferSeconds: bufferSeconds,
		stream:        memstream.New(kind),
	}
	r.loop = gameloop.New(r, fps)
	r.stream.Init(client.SerializeSize(), maxFrames(fps, bufferSeconds))
	r.updateStats()
	return r
}

func maxFrames(fps, seconds float64) int {
	n := math.Round(fps * seconds)
	if n < 1 || math.IsNaN(n) {
		return 0
	}
	return int(n)
}

// Start implements Playback.
func (r *Reversible) Start() { r.loop.Start() }

// Close implements Playback.
func (r *Reversible) Close() { r.loop.Stop() }

// FrameEvent implements gameloop.Callback: run a frame and record it.
func (r *Reversible) FrameEvent() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.client.RunFrame()
	r.recordFrame()
	r.updateStats()
}

// RewindEvent implements gameloop.Callback: step back one recorded frame
// and run it so the renderer gets a fresh picture.
func (r *Reversible) RewindEvent() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stream.RewindFrames(1)
	if cur := r.stream.CurrentFrame(); cur != nil {
		if !r.client.Deserialize(cur) {
			log.Printf("Playback: failed to deserialize rewind frame")
		}
	}
	r.client.RunFrame()
	r.updateStats()
}

// recordFrame serializes the client into the stream. A failure just
// leaves this frame without a rewind point.
func (r *Reversible) recordFrame() {
	buf := r.stream.BeginFrame()
	if buf == nil {
		return
	}
	if !r.client.Serialize(buf) {
		log.Printf("Playback: failed to serialize frame %d, no rewind point recorded", r.stream.FrameCounter()+1)
		return
	}
	r.stream.SubmitFrame()
}

// rewindFrames steps back up to n frames, deserializing each one, and
// returns the number of frames completed. A step whose frame fails to
// deserialize is undone so the stream stays on the client's state.
func (r *Reversible) rewindFrames(n int) int {
	done := 0
	for done < n && r.stream.PastFramesAvailable() > 0 {
		r.stream.RewindFrames(1)
		if !r.client.Deserialize(r.stream.CurrentFrame()) {
			r.stream.AdvanceFrames(1)
			log.Printf("Playback: failed to deserialize after rewinding %d frames", done)
			break
		}
		done++
	}
	return done
}

// advanceFrames steps forward up to n recorded frames, deserializing each
// one, and returns the number of frames completed. A failed step is undone
// like in rewindFrames.
func (r *Reversible) advanceFrames(n int) int {
	done := 0
	for done < n && r.stream.FutureFramesAvailable() > 0 {
		r.stream.AdvanceFrames(1)
		if !r.client.Deserialize(r.stream.CurrentFrame()) {
			r.stream.RewindFrames(1)
			log.Printf("Playback: failed to deserialize after advancing %d frames", done)
			break
		}
		done++
	}
	return done
}

// updateStats recomputes the play, total and cache times. Called with mu
// held.
func (r *Reversible) updateStats() {
	fps := r.loop.FPS()
	if fps <= 0 {
		r.playTimeMs, r.totalTimeMs, r.cacheTimeMs = 0, 0, 0
		return
	}
	toMs := func(frames int) uint64 {
		return uint64(math.Round(1000.0 * float64(frames) / fps))
	}
	r.playTimeMs = toMs(r.stream.PastFramesAvailable())
	r.cacheTimeMs = toMs(r.stream.FutureFramesAvailable())
	r.totalTimeMs = toMs(r.stream.MaxFrameCount())
}

func (r *Reversible) CanPause() bool { return true }
func (r *Reversible) CanSeek() bool  { return true }

// GetTimeMs implements Playback. It is the duration of the recorded past.
func (r *Reversible) GetTimeMs() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playTimeMs
}

// GetTotalTimeMs implements Playback. It is the capacity of the recording.
func (r *Reversible) GetTotalTimeMs() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalTimeMs
}

// GetCacheTimeMs implements Playback. It is the duration of the recorded
// future that can be advanced to.
func (r *Reversible) GetCacheTimeMs() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cacheTimeMs
}

// SeekTimeMs implements Playback. The loop is held at speed 0 for the
// duration of the seek and restored to its previous speed afterwards.
func (r *Reversible) SeekTimeMs(timeMs uint64) {
	prevSpeed := r.loop.GetSpeed()
	r.loop.SetSpeed(0)
	defer r.loop.SetSpeed(prevSpeed)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Nothing lies beyond the capacity of the recording.
	if timeMs > r.totalTimeMs {
		timeMs = r.totalTimeMs
	}
	offsetMs := float64(int64(timeMs) - int64(r.playTimeMs))
	offsetFrames := int(math.Round(offsetMs / 1000.0 * r.loop.FPS()))

	switch {
	case offsetFrames > 0:
		r.advanceFrames(offsetFrames)
	case offsetFrames < 0:
		r.rewindFrames(-offsetFrames)
	}
	r.updateStats()
}

// GetSpeed implements Playback.
func (r *Reversible) GetSpeed() float64 { return r.loop.GetSpeed() }

// SetSpeed implements Playback. Negative speeds rewind and are scaled by
// RewindFactor.
func (r *Reversible) SetSpeed(speedFactor float64) {
	if speedFactor >= 0 {
		r.loop.SetSpeed(speedFactor)
	} else {
		r.loop.SetSpeed(speedFactor * RewindFactor)
	}
}

// PauseUnpause implements Playback.
func (r *Reversible) PauseUnpause() {
	if r.loop.GetSpeed() == 0 {
		r.loop.SetSpeed(1.0)
	} else {
		r.loop.SetSpeed(0.0)
	}
}

// IsPaused implements Playback.
func (r *Reversible) IsPaused() bool { return r.loop.GetSpeed() == 0 }

// SetFrameRate changes the loop rate and resizes the stream for the new
// rate. The recording is dropped since its timing no longer holds.
func (r *Reversible) SetFrameRate(fps float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loop.SetFPS(fps)
	r.stream.Init(r.client.SerializeSize(), maxFrames(fps, r.bufferSeconds))
	r.updateStats()
}

// PastFramesAvailable returns the number of recorded frames behind the
// current one.
func (r *Reversible) PastFramesAvailable() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream.PastFramesAvailable()
}

// FutureFramesAvailable returns the number of recorded frames ahead of
// the current one.
func (r *Reversible) FutureFramesAvailable() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream.FutureFramesAvailable()
}

// CreateSavestate implements Playback.
func (r *Reversible) CreateSavestate() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return serializeState(r.client)
}

// LoadSavestate implements Playback. The recording restarts from the
// loaded state.
func (r *Reversible) LoadSavestate(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.client.Deserialize(data) {
		return ErrSerialize
	}

	r.stream.Reset()
	if buf := r.stream.BeginFrame(); buf != nil && len(buf) == len(data) {
		copy(buf, data)
		r.stream.SubmitFrame()
	}
	r.updateStats()
	return nil
}
