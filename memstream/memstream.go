// Package memstream implements the rewind buffer: a fixed-capacity ring of
// serialized emulator states with a cursor splitting past frames (that can
// be rewound to) from future frames (that can be advanced to again).
//
// Streams are not safe for concurrent use. The playback that owns a stream
// serializes access with its own lock.
package memstream

import "strings"

// MemoryStream is a bounded FIFO of fixed-size frames. The oldest frame is
// evicted when a frame is submitted at capacity, and submitting a frame
// while future frames exist discards them.
type MemoryStream interface {
	// Init sizes the stream for maxFrameCount frames of frameSize bytes. A
	// zero frame size or count leaves the stream with no capacity.
	Init(frameSize, maxFrameCount int)

	// Reset drops every frame but keeps the capacity.
	Reset()

	FrameSize() int
	MaxFrameCount() int

	// BeginFrame returns a buffer of FrameSize bytes to serialize the next
	// state into, or nil if the stream has no capacity.
	BeginFrame() []byte

	// SubmitFrame commits the buffer returned by BeginFrame as the new
	// current frame.
	SubmitFrame()

	// CurrentFrame returns the state at the cursor, or nil if the stream is
	// empty. The slice is only valid until the stream is next modified.
	CurrentFrame() []byte

	FutureFramesAvailable() int
	AdvanceFrames(frameCount int) int

	PastFramesAvailable() int
	RewindFrames(frameCount int) int

	// FrameCounter is the timeline position of the current frame. It
	// follows submits, rewinds and advances.
	FrameCounter() uint64
	SetFrameCounter(frameCount uint64)
}

// Kind names a stream implementation.
type Kind string

const (
	KindBasic     Kind = "basic"
	KindDeltaPair Kind = "deltapair"
)

// New returns an uninitialised stream of the given kind. Unrecognised
// kinds fall back to the full-snapshot implementation.
func New(kind Kind) MemoryStream {
	switch Kind(strings.ToLower(string(kind))) {
	case KindDeltaPair:
		return &DeltaPair{}
	default:
		return &Basic{}
	}
}

// ring tracks the positions shared by both implementations. Slot indexes
// are relative to the oldest retained frame.
type ring struct {
	capacity int
	oldest   int // slot of the oldest retained frame
	count    int // retained frames, including current and future
	cursor   int // offset of the current frame from oldest
	counter  uint64
}

func (r *ring) reset() {
	r.oldest = 0
	r.count = 0
	r.cursor = 0
	r.counter = 0
}

func (r *ring) slot(offset int) int {
	return (r.oldest + offset) % r.capacity
}

func (r *ring) past() int {
	if r.count == 0 {
		return 0
	}
	return r.cursor
}

func (r *ring) future() int {
	if r.count == 0 {
		return 0
	}
	return r.count - 1 - r.cursor
}

// prepareSubmit drops future frames and evicts the oldest frame if the
// ring is full. It returns the slot the new frame goes into and whether a
// frame was evicted.
func (r *ring) prepareSubmit() (int, bool) {
	if r.count > 0 {
		r.count = r.cursor + 1
	}

	evicted := false
	if r.count == r.capacity {
		r.oldest = (r.oldest + 1) % r.capacity
		r.count--
		r.cursor--
		evicted = true
	}

	return r.slot(r.count), evicted
}

func (r *ring) commitSubmit() {
	r.count++
	r.cursor = r.count - 1
	r.counter++
}

func (r *ring) rewindCounter(n int) {
	if uint64(n) > r.counter {
		r.counter = 0
		return
	}
	r.counter -= uint64(n)
}

func clampFrames(requested, available int) int {
	if requested < 0 {
		return 0
	}
	if requested > available {
		return available
	}
	return requested
}
