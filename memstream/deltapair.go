package memstream

import "encoding/binary"

// deltaPair is one changed 32-bit word of a frame: its word index and the
// XOR of the old and new values.
type deltaPair struct {
	index uint32
	xor   uint32
}

// DeltaPair keeps only the current frame in full. Every other retained
// frame is stored as the list of words that differ from its predecessor,
// so walking the cursor either way is a matter of XOR-ing one delta into
// the current frame. Consecutive emulator states tend to differ in a small
// number of words.
type DeltaPair struct {
	ring
	frameSize  int
	paddedSize int
	current    []byte
	next       []byte

	// deltas[slot] turns the predecessor frame into the frame at slot. The
	// delta held by the oldest slot is meaningless and kept empty.
	deltas [][]deltaPair
}

// Init implements MemoryStream.
func (d *DeltaPair) Init(frameSize, maxFrameCount int) {
	d.ring = ring{}
	d.frameSize = 0
	d.paddedSize = 0
	d.current = nil
	d.next = nil
	d.deltas = nil

	if frameSize <= 0 || maxFrameCount <= 0 {
		return
	}

	d.frameSize = frameSize
	d.paddedSize = (frameSize + 3) &^ 3
	d.capacity = maxFrameCount
	d.current = make([]byte, d.paddedSize)
	d.next = make([]byte, d.paddedSize)
	d.deltas = make([][]deltaPair, maxFrameCount)
}

// Reset implements MemoryStream.
func (d *DeltaPair) Reset() {
	d.ring.reset()
	for i := range d.deltas {
		d.deltas[i] = d.deltas[i][:0]
	}
}

// FrameSize implements MemoryStream.
func (d *DeltaPair) FrameSize() int { return d.frameSize }

// MaxFrameCount implements MemoryStream.
func (d *DeltaPair) MaxFrameCount() int { return d.capacity }

// BeginFrame implements MemoryStream.
func (d *DeltaPair) BeginFrame() []byte {
	if d.next == nil {
		return nil
	}
	return d.next[:d.frameSize]
}

// SubmitFrame implements MemoryStream.
func (d *DeltaPair) SubmitFrame() {
	if d.next == nil {
		return
	}

	hadFrame := d.count > 0
	idx, _ := d.prepareSubmit()

	if hadFrame && d.count > 0 {
		d.deltas[idx] = diffFrames(d.deltas[idx][:0], d.current, d.next)
	} else {
		d.deltas[idx] = d.deltas[idx][:0]
	}

	d.current, d.next = d.next, d.current
	d.commitSubmit()

	// the new oldest frame has no predecessor
	d.deltas[d.oldest] = d.deltas[d.oldest][:0]
}

// CurrentFrame implements MemoryStream.
func (d *DeltaPair) CurrentFrame() []byte {
	if d.count == 0 {
		return nil
	}
	return d.current[:d.frameSize]
}

// FutureFramesAvailable implements MemoryStream.
func (d *DeltaPair) FutureFramesAvailable() int { return d.future() }

// AdvanceFrames implements MemoryStream.
func (d *DeltaPair) AdvanceFrames(frameCount int) int {
	n := clampFrames(frameCount, d.future())
	for i := 0; i < n; i++ {
		d.cursor++
		applyDelta(d.current, d.deltas[d.slot(d.cursor)])
	}
	d.counter += uint64(n)
	return n
}

// PastFramesAvailable implements MemoryStream.
func (d *DeltaPair) PastFramesAvailable() int { return d.past() }

// RewindFrames implements MemoryStream.
func (d *DeltaPair) RewindFrames(frameCount int) int {
	n := clampFrames(frameCount, d.past())
	for i := 0; i < n; i++ {
		applyDelta(d.current, d.deltas[d.slot(d.cursor)])
		d.cursor--
	}
	d.rewindCounter(n)
	return n
}

// FrameCounter implements MemoryStream.
func (d *DeltaPair) FrameCounter() uint64 { return d.counter }

// SetFrameCounter implements MemoryStream.
func (d *DeltaPair) SetFrameCounter(frameCount uint64) { d.counter = frameCount }

// diffFrames appends to dst the words that differ between prev and next.
// Both slices are padded to a multiple of four bytes.
func diffFrames(dst []deltaPair, prev, next []byte) []deltaPair {
	for i := 0; i+4 <= len(next); i += 4 {
		a := binary.LittleEndian.Uint32(prev[i:])
		b := binary.LittleEndian.Uint32(next[i:])
		if a != b {
			dst = append(dst, deltaPair{index: uint32(i / 4), xor: a ^ b})
		}
	}
	return dst
}

func applyDelta(frame []byte, delta []deltaPair) {
	for _, p := range delta {
		off := int(p.index) * 4
		v := binary.LittleEndian.Uint32(frame[off:])
		binary.LittleEndian.PutUint32(frame[off:], v^p.xor)
	}
}
