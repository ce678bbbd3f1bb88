package memstream

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
)

var kinds = []Kind{KindBasic, KindDeltaPair}

// submitValue writes v into the first bytes of the next frame and a few
// scattered words so delta frames have more than one change.
func submitValue(t *testing.T, ms MemoryStream, v uint32) {
	t.Helper()
	buf := ms.BeginFrame()
	if len(buf) != ms.FrameSize() {
		t.Fatalf("BeginFrame length = %d, want %d", len(buf), ms.FrameSize())
	}
	for i := range buf {
		buf[i] = 0
	}
	binary.LittleEndian.PutUint32(buf, v)
	buf[len(buf)-1] = byte(v * 7)
	ms.SubmitFrame()
}

func currentValue(t *testing.T, ms MemoryStream) uint32 {
	t.Helper()
	cur := ms.CurrentFrame()
	if cur == nil {
		t.Fatal("CurrentFrame() = nil")
	}
	if cur[len(cur)-1] != byte(binary.LittleEndian.Uint32(cur)*7) {
		t.Fatalf("frame tail corrupted: %v", cur)
	}
	return binary.LittleEndian.Uint32(cur)
}

func TestNewKinds(t *testing.T) {
	if _, ok := New(KindBasic).(*Basic); !ok {
		t.Error("New(basic) should return *Basic")
	}
	if _, ok := New("DeltaPair").(*DeltaPair); !ok {
		t.Error("New(DeltaPair) should return *DeltaPair")
	}
	if _, ok := New("unknown").(*Basic); !ok {
		t.Error("New(unknown) should fall back to *Basic")
	}
}

func TestEvictionKeepsNewestFrames(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(64, 10)

			for i := 0; i < 15; i++ {
				submitValue(t, ms, uint32(i))
			}

			if got := ms.PastFramesAvailable(); got != 9 {
				t.Errorf("PastFramesAvailable() = %d, want 9", got)
			}
			if got := ms.FutureFramesAvailable(); got != 0 {
				t.Errorf("FutureFramesAvailable() = %d, want 0", got)
			}
			if got := currentValue(t, ms); got != 14 {
				t.Errorf("current = %d, want 14", got)
			}

			ms.RewindFrames(100)
			if got := currentValue(t, ms); got != 5 {
				t.Errorf("oldest surviving frame = %d, want 5", got)
			}
		})
	}
}

func TestRewindThree(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(64, 10)
			for i := 0; i < 15; i++ {
				submitValue(t, ms, uint32(i))
			}

			if got := ms.RewindFrames(3); got != 3 {
				t.Fatalf("RewindFrames(3) = %d, want 3", got)
			}
			if got := currentValue(t, ms); got != 11 {
				t.Errorf("current = %d, want 11", got)
			}
			if got := ms.FutureFramesAvailable(); got != 3 {
				t.Errorf("FutureFramesAvailable() = %d, want 3", got)
			}
		})
	}
}

func TestRewindClamped(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(16, 8)
			for i := 0; i < 4; i++ {
				submitValue(t, ms, uint32(i))
			}
			past := ms.PastFramesAvailable()
			if got := ms.RewindFrames(past + 5); got != past {
				t.Errorf("RewindFrames(%d) = %d, want %d", past+5, got, past)
			}
			if got := ms.PastFramesAvailable(); got != 0 {
				t.Errorf("PastFramesAvailable() = %d, want 0", got)
			}
			if got := ms.RewindFrames(1); got != 0 {
				t.Errorf("RewindFrames(1) at oldest = %d, want 0", got)
			}
			if got := ms.AdvanceFrames(50); got != past {
				t.Errorf("AdvanceFrames(50) = %d, want %d", got, past)
			}
			if got := ms.RewindFrames(-2); got != 0 {
				t.Errorf("RewindFrames(-2) = %d, want 0", got)
			}
		})
	}
}

func TestRewindAdvanceSymmetry(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(40, 12)
			for i := 0; i < 20; i++ {
				submitValue(t, ms, uint32(i*31))
			}
			before := append([]byte(nil), ms.CurrentFrame()...)

			for k := 0; k <= ms.PastFramesAvailable(); k++ {
				if got := ms.RewindFrames(k); got != k {
					t.Fatalf("RewindFrames(%d) = %d", k, got)
				}
				if got := ms.AdvanceFrames(k); got != k {
					t.Fatalf("AdvanceFrames(%d) = %d", k, got)
				}
				if !bytes.Equal(ms.CurrentFrame(), before) {
					t.Fatalf("frame after rewind/advance of %d differs", k)
				}
			}
		})
	}
}

func TestSubmitDiscardsFuture(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(8, 10)
			for i := 0; i < 6; i++ {
				submitValue(t, ms, uint32(i))
			}
			ms.RewindFrames(3)
			submitValue(t, ms, 100)

			if got := ms.FutureFramesAvailable(); got != 0 {
				t.Errorf("FutureFramesAvailable() = %d, want 0", got)
			}
			if got := ms.PastFramesAvailable(); got != 3 {
				t.Errorf("PastFramesAvailable() = %d, want 3", got)
			}
			if got := currentValue(t, ms); got != 100 {
				t.Errorf("current = %d, want 100", got)
			}
			ms.RewindFrames(1)
			if got := currentValue(t, ms); got != 2 {
				t.Errorf("frame before new branch = %d, want 2", got)
			}
		})
	}
}

func TestZeroCapacity(t *testing.T) {
	tests := []struct {
		name      string
		frameSize int
		maxFrames int
	}{
		{"zero frame size", 0, 10},
		{"zero frame count", 64, 0},
		{"negative frame size", -1, 10},
	}
	for _, kind := range kinds {
		for _, tt := range tests {
			t.Run(string(kind)+"/"+tt.name, func(t *testing.T) {
				ms := New(kind)
				ms.Init(tt.frameSize, tt.maxFrames)
				if ms.BeginFrame() != nil {
					t.Error("BeginFrame() should be nil without capacity")
				}
				ms.SubmitFrame()
				if ms.CurrentFrame() != nil {
					t.Error("CurrentFrame() should be nil without capacity")
				}
				if ms.MaxFrameCount() != 0 || ms.FrameSize() != 0 {
					t.Errorf("capacity = %d x %d, want 0 x 0", ms.MaxFrameCount(), ms.FrameSize())
				}
			})
		}
	}
}

func TestSingleFrameCapacity(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(12, 1)
			for i := 0; i < 3; i++ {
				submitValue(t, ms, uint32(i+1))
				if got := currentValue(t, ms); got != uint32(i+1) {
					t.Errorf("current = %d, want %d", got, i+1)
				}
				if ms.PastFramesAvailable() != 0 || ms.FutureFramesAvailable() != 0 {
					t.Error("single frame stream should have no past or future")
				}
			}
		})
	}
}

func TestFrameCounter(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(8, 4)
			for i := 0; i < 6; i++ {
				submitValue(t, ms, uint32(i))
			}
			if got := ms.FrameCounter(); got != 6 {
				t.Errorf("FrameCounter() = %d, want 6", got)
			}
			ms.RewindFrames(2)
			if got := ms.FrameCounter(); got != 4 {
				t.Errorf("FrameCounter() after rewind = %d, want 4", got)
			}
			ms.AdvanceFrames(1)
			if got := ms.FrameCounter(); got != 5 {
				t.Errorf("FrameCounter() after advance = %d, want 5", got)
			}
			ms.SetFrameCounter(1)
			ms.RewindFrames(2)
			if got := ms.FrameCounter(); got != 0 {
				t.Errorf("FrameCounter() should not underflow, got %d", got)
			}
		})
	}
}

func TestReset(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			ms := New(kind)
			ms.Init(8, 4)
			for i := 0; i < 3; i++ {
				submitValue(t, ms, uint32(i))
			}
			ms.Reset()
			if ms.CurrentFrame() != nil || ms.PastFramesAvailable() != 0 || ms.FrameCounter() != 0 {
				t.Error("stream should be empty after Reset")
			}
			if ms.MaxFrameCount() != 4 {
				t.Errorf("MaxFrameCount() = %d, want 4", ms.MaxFrameCount())
			}
			submitValue(t, ms, 9)
			if got := currentValue(t, ms); got != 9 {
				t.Errorf("current = %d, want 9", got)
			}
		})
	}
}

// TestBoundHolds drives random sequences of operations and checks that
// retained frames never exceed capacity and that both implementations agree.
func TestBoundHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	basic := New(KindBasic)
	delta := New(KindDeltaPair)
	basic.Init(33, 16)
	delta.Init(33, 16)

	for step := 0; step < 5000; step++ {
		switch op := rng.Intn(4); op {
		case 0, 1:
			v := rng.Uint32()
			submitValue(t, basic, v)
			submitValue(t, delta, v)
		case 2:
			n := rng.Intn(20)
			if a, b := basic.RewindFrames(n), delta.RewindFrames(n); a != b {
				t.Fatalf("step %d: rewind mismatch %d vs %d", step, a, b)
			}
		case 3:
			n := rng.Intn(20)
			if a, b := basic.AdvanceFrames(n), delta.AdvanceFrames(n); a != b {
				t.Fatalf("step %d: advance mismatch %d vs %d", step, a, b)
			}
		}

		for _, ms := range []MemoryStream{basic, delta} {
			if total := ms.PastFramesAvailable() + ms.FutureFramesAvailable(); total > ms.MaxFrameCount() {
				t.Fatalf("step %d: past+future = %d exceeds %d", step, total, ms.MaxFrameCount())
			}
		}
		if !bytes.Equal(basic.CurrentFrame(), delta.CurrentFrame()) {
			t.Fatalf("step %d: implementations disagree on current frame", step)
		}
	}
}
