package memstream

// Basic stores every frame as a full raw snapshot.
type Basic struct {
	ring
	frameSize int
	slots     [][]byte
	next      []byte
}

// Init implements MemoryStream.
func (b *Basic) Init(frameSize, maxFrameCount int) {
	b.ring = ring{}
	b.slots = nil
	b.next = nil
	b.frameSize = 0

	if frameSize <= 0 || maxFrameCount <= 0 {
		return
	}

	b.frameSize = frameSize
	b.capacity = maxFrameCount
	b.slots = make([][]byte, maxFrameCount)
	b.next = make([]byte, frameSize)
}

// Reset implements MemoryStream.
func (b *Basic) Reset() {
	b.ring.reset()
}

// FrameSize implements MemoryStream.
func (b *Basic) FrameSize() int { return b.frameSize }

// MaxFrameCount implements MemoryStream.
func (b *Basic) MaxFrameCount() int { return b.capacity }

// BeginFrame implements MemoryStream.
func (b *Basic) BeginFrame() []byte {
	return b.next
}

// SubmitFrame implements MemoryStream. The scratch buffer is swapped into
// the ring so no copy is made.
func (b *Basic) SubmitFrame() {
	if b.next == nil {
		return
	}

	idx, _ := b.prepareSubmit()
	b.slots[idx], b.next = b.next, b.slots[idx]
	if b.next == nil {
		b.next = make([]byte, b.frameSize)
	}
	b.commitSubmit()
}

// CurrentFrame implements MemoryStream.
func (b *Basic) CurrentFrame() []byte {
	if b.count == 0 {
		return nil
	}
	return b.slots[b.slot(b.cursor)]
}

// FutureFramesAvailable implements MemoryStream.
func (b *Basic) FutureFramesAvailable() int { return b.future() }

// AdvanceFrames implements MemoryStream.
func (b *Basic) AdvanceFrames(frameCount int) int {
	n := clampFrames(frameCount, b.future())
	b.cursor += n
	b.counter += uint64(n)
	return n
}

// PastFramesAvailable implements MemoryStream.
func (b *Basic) PastFramesAvailable() int { return b.past() }

// RewindFrames implements MemoryStream.
func (b *Basic) RewindFrames(frameCount int) int {
	n := clampFrames(frameCount, b.past())
	b.cursor -= n
	b.rewindCounter(n)
	return n
}

// FrameCounter implements MemoryStream.
func (b *Basic) FrameCounter() uint64 { return b.counter }

// SetFrameCounter implements MemoryStream.
func (b *Basic) SetFrameCounter(frameCount uint64) { b.counter = frameCount }
