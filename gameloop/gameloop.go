// Package gameloop drives a game at a fixed frame rate on its own
// goroutine. Positive speeds run frames forward, negative speeds rewind,
// and a speed of zero pauses the loop without stopping it.
package gameloop

import (
	"log"
	"math"
	"sync"
	"time"
)

// maxLagFrames is how far the loop may fall behind before it stops trying
// to catch up and resynchronises with the wall clock.
const maxLagFrames = 4

// Callback receives the loop's ticks. Both methods run on the loop
// goroutine.
type Callback interface {
	FrameEvent()
	RewindEvent()
}

// GameLoop is a fixed-rate ticker. The zero speed state blocks without
// spinning until the speed is changed or the loop is stopped.
type GameLoop struct {
	callback Callback

	mu    sync.Mutex
	fps   float64
	speed float64

	wake chan struct{}

	// lifecycle, guarded by runMu
	runMu sync.Mutex
	stop  chan struct{}
	done  chan struct{}
}

// New creates a stopped loop running at fps frames per second. The initial
// speed is 1.
func New(callback Callback, fps float64) *GameLoop {
	return &GameLoop{
		callback: callback,
		fps:      fps,
		speed:    1.0,
		wake:     make(chan struct{}, 1),
	}
}

// Start launches the loop goroutine. Calling Start on a running loop does
// nothing.
func (gl *GameLoop) Start() {
	gl.runMu.Lock()
	defer gl.runMu.Unlock()

	if gl.stop != nil {
		return
	}
	gl.stop = make(chan struct{})
	gl.done = make(chan struct{})
	go gl.run(gl.stop, gl.done)
}

// Stop signals the loop goroutine to exit and waits for it. No callback is
// running or will run once Stop returns. Stop must not be called from
// inside a callback.
func (gl *GameLoop) Stop() {
	gl.runMu.Lock()
	defer gl.runMu.Unlock()

	if gl.stop == nil {
		return
	}
	close(gl.stop)
	<-gl.done
	gl.stop = nil
	gl.done = nil
}

// IsRunning reports whether the loop goroutine is alive.
func (gl *GameLoop) IsRunning() bool {
	gl.runMu.Lock()
	defer gl.runMu.Unlock()
	return gl.stop != nil
}

// FPS returns the target frame rate.
func (gl *GameLoop) FPS() float64 {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	return gl.fps
}

// SetFPS changes the target frame rate. It takes effect on the next tick.
func (gl *GameLoop) SetFPS(fps float64) {
	gl.mu.Lock()
	gl.fps = fps
	gl.mu.Unlock()
	gl.signal()
}

// GetSpeed returns the current speed factor.
func (gl *GameLoop) GetSpeed() float64 {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	return gl.speed
}

// SetSpeed changes the speed factor. A tick already scheduled still
// happens at its original time.
func (gl *GameLoop) SetSpeed(speed float64) {
	gl.mu.Lock()
	gl.speed = speed
	gl.mu.Unlock()
	gl.signal()
}

func (gl *GameLoop) signal() {
	select {
	case gl.wake <- struct{}{}:
	default:
	}
}

func (gl *GameLoop) state() (speed, fps float64) {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	return gl.speed, gl.fps
}

func (gl *GameLoop) run(stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	next := time.Now()
	for {
		select {
		case <-stop:
			return
		default:
		}

		speed, fps := gl.state()
		if speed == 0 || fps <= 0 || math.IsNaN(speed) {
			// paused: sleep until something changes
			select {
			case <-stop:
				return
			case <-gl.wake:
				next = time.Now()
				continue
			}
		}

		if speed > 0 {
			gl.tick("FrameEvent", gl.callback.FrameEvent)
		} else {
			gl.tick("RewindEvent", gl.callback.RewindEvent)
		}

		period := time.Duration(float64(time.Second) / (fps * math.Abs(speed)))
		next = next.Add(period)

		now := time.Now()
		if now.Sub(next) > maxLagFrames*period {
			next = now
		}

		wait := next.Sub(now)
		if wait <= 0 {
			continue
		}

		timer.Reset(wait)
		select {
		case <-stop:
			return
		case <-timer.C:
		}
	}
}

// tick runs one callback. A panic is logged and the tick skipped so a
// single bad frame doesn't end the session.
func (gl *GameLoop) tick(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("GameLoop: %s panicked, skipping tick: %v", name, r)
		}
	}()
	fn()
}
