package otoaudio

import (
	"io"
	"sync"

	"github.com/eapache/queue"
)

// packetBuffer is the pull source handed to the oto player. Packets are
// queued whole and consumed across as many reads as needed. When the
// buffered byte count would exceed capacity the oldest packets are dropped.
type packetBuffer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	packets  *queue.Queue
	head     []byte // remainder of the packet being read
	buffered int
	capacity int
	closed   bool
}

func newPacketBuffer(capacity int) *packetBuffer {
	b := &packetBuffer{
		packets:  queue.New(),
		capacity: capacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Write queues a copy of p.
func (b *packetBuffer) Write(p []byte) {
	if len(p) == 0 {
		return
	}
	if len(p) > b.capacity {
		p = p[len(p)-b.capacity:]
	}
	pkt := make([]byte, len(p))
	copy(pkt, p)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for b.buffered+len(pkt) > b.capacity {
		b.dropOldest(b.buffered + len(pkt) - b.capacity)
	}
	b.packets.Add(pkt)
	b.buffered += len(pkt)
	b.cond.Signal()
}

// dropOldest discards up to n bytes from the front. Caller holds mu.
func (b *packetBuffer) dropOldest(n int) {
	for n > 0 {
		if len(b.head) == 0 {
			if b.packets.Length() == 0 {
				return
			}
			b.head = b.packets.Remove().([]byte)
		}
		k := min(n, len(b.head))
		b.head = b.head[k:]
		b.buffered -= k
		n -= k
	}
}

// Read blocks until data is available or the buffer is closed. It returns
// io.EOF once closed and drained.
func (b *packetBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.buffered == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.buffered == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && b.buffered > 0 {
		if len(b.head) == 0 {
			b.head = b.packets.Remove().([]byte)
		}
		k := copy(p[n:], b.head)
		b.head = b.head[k:]
		b.buffered -= k
		n += k
	}
	return n, nil
}

// Buffered returns the number of queued bytes.
func (b *packetBuffer) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffered
}

// Clear drops everything queued.
func (b *packetBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.packets = queue.New()
	b.head = nil
	b.buffered = 0
}

// Close wakes any blocked reader. Remaining data can still be read.
func (b *packetBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}
