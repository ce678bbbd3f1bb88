package gameclient

import (
	"errors"
	"fmt"
	"math"

	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/storage"
)

// ErrUnsupportedSampleRate is returned when the game's sample rate can't
// be played without resampling.
var ErrUnsupportedSampleRate = errors.New("unsupported sample rate")

// Timing is the outcome of matching a game's timing to the host.
type Timing struct {
	FPS        float64 // as reported by the game
	SampleRate float64 // as reported by the game

	// HostSampleRate is the rate the audio sink is opened at. It is 0 for
	// games without audio.
	HostSampleRate int

	// Multiplier scales the frame rate so the game produces audio at
	// HostSampleRate.
	Multiplier float64
}

// FrameRate returns the rate the game loop runs at.
func (t Timing) FrameRate() float64 {
	return t.FPS * t.Multiplier
}

// NegotiateTiming picks the host sample rate for a game. A rate in the
// accepted set is used as is. Otherwise, with frame rate correction
// enabled, the closest accepted rate within the tolerance is chosen and
// the frame rate scaled to match it.
func NegotiateTiming(t gameapi.Timing, rates []int, cfg storage.AudioConfig) (Timing, error) {
	if t.FPS <= 0 || math.IsNaN(t.FPS) || math.IsInf(t.FPS, 0) {
		return Timing{}, fmt.Errorf("%w: fps %v", ErrInvalidTiming, t.FPS)
	}
	if math.IsNaN(t.SampleRate) || math.IsInf(t.SampleRate, 0) || t.SampleRate < 0 {
		return Timing{}, fmt.Errorf("%w: sample rate %v", ErrInvalidTiming, t.SampleRate)
	}

	out := Timing{FPS: t.FPS, SampleRate: t.SampleRate, Multiplier: 1.0}
	if t.SampleRate == 0 {
		return out, nil
	}

	for _, r := range rates {
		if float64(r) == t.SampleRate {
			out.HostSampleRate = r
			return out, nil
		}
	}

	if cfg.FrameRateCorrection {
		best, bestDiff := 0, math.Inf(1)
		for _, r := range rates {
			if r <= 0 {
				continue
			}
			diff := math.Abs(float64(r)/t.SampleRate - 1)
			if diff < bestDiff {
				best, bestDiff = r, diff
			}
		}
		if best > 0 && bestDiff <= cfg.CorrectionTolerance {
			out.HostSampleRate = best
			out.Multiplier = float64(best) / t.SampleRate
			return out, nil
		}
	}

	return Timing{}, fmt.Errorf("%w: %v Hz (accepted %v)", ErrUnsupportedSampleRate, t.SampleRate, rates)
}
