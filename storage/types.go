package storage

// Config is the bridge configuration stored in config.json
type Config struct {
	Version     int               `json:"version"`
	Rewind      RewindConfig      `json:"rewind"`
	Audio       AudioConfig       `json:"audio"`
	Directories DirectoriesConfig `json:"directories"`
}

// RewindConfig controls the reversible playback buffer
type RewindConfig struct {
	Enabled       bool   `json:"enabled"`
	BufferSeconds int    `json:"bufferSeconds"`
	Stream        string `json:"stream"` // "basic" or "deltapair"
}

// AudioConfig controls sample rate negotiation with game clients
type AudioConfig struct {
	SampleRates         []int   `json:"sampleRates"`
	FrameRateCorrection bool    `json:"frameRateCorrection"`
	CorrectionTolerance float64 `json:"correctionTolerance"`
}

// DirectoriesConfig overrides the default data directories. Empty values
// resolve under the base directory.
type DirectoriesConfig struct {
	Profile string `json:"profile,omitempty"`
	System  string `json:"system,omitempty"`
	Saves   string `json:"saves,omitempty"`
	Content string `json:"content,omitempty"`
}

// DefaultSampleRates lists the host output rates in order of preference
var DefaultSampleRates = []int{48000, 44100, 32000, 22050, 96000}

// RewindStreams lists the valid values for rewind.stream
var RewindStreams = []string{"basic", "deltapair"}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Rewind: RewindConfig{
			Enabled:       true,
			BufferSeconds: 60,
			Stream:        "basic",
		},
		Audio: AudioConfig{
			SampleRates:         append([]int(nil), DefaultSampleRates...),
			FrameRateCorrection: false,
			CorrectionTolerance: 0.01,
		},
	}
}
