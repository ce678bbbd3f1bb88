package storage

import (
	"encoding/json"
	"fmt"
)

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "rewind.enabled", "audio.sampleRates").
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	nested := map[string][]string{
		"rewind": {"enabled", "bufferSeconds", "stream"},
		"audio":  {"sampleRates", "frameRateCorrection", "correctionTolerance"},
	}
	for section, keys := range nested {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file. Present fields keep their value, including zero values
// such as rewind.enabled=false.
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["rewind.enabled"] {
		config.Rewind.Enabled = defaults.Rewind.Enabled
	}
	if !presentKeys["rewind.bufferSeconds"] {
		config.Rewind.BufferSeconds = defaults.Rewind.BufferSeconds
	}
	if !presentKeys["rewind.stream"] {
		config.Rewind.Stream = defaults.Rewind.Stream
	}
	if !presentKeys["audio.sampleRates"] {
		config.Audio.SampleRates = defaults.Audio.SampleRates
	}
	if !presentKeys["audio.frameRateCorrection"] {
		config.Audio.FrameRateCorrection = defaults.Audio.FrameRateCorrection
	}
	if !presentKeys["audio.correctionTolerance"] {
		config.Audio.CorrectionTolerance = defaults.Audio.CorrectionTolerance
	}
}

func validStream(stream string) bool {
	for _, s := range RewindStreams {
		if stream == s {
			return true
		}
	}
	return false
}

func validSampleRates(rates []int) bool {
	if len(rates) == 0 {
		return false
	}
	for _, r := range rates {
		if r < 8000 || r > 192000 {
			return false
		}
	}
	return true
}

// ValidateConfig checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
func ValidateConfig(config *Config) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	if config.Rewind.BufferSeconds < 1 || config.Rewind.BufferSeconds > 600 {
		errors = append(errors, fmt.Sprintf("rewind.bufferSeconds: %d (valid: 1-600)", config.Rewind.BufferSeconds))
	}

	if !validStream(config.Rewind.Stream) {
		errors = append(errors, fmt.Sprintf("rewind.stream: %q (valid: %v)", config.Rewind.Stream, RewindStreams))
	}

	if !validSampleRates(config.Audio.SampleRates) {
		errors = append(errors, fmt.Sprintf("audio.sampleRates: %v (valid: non-empty, 8000-192000)", config.Audio.SampleRates))
	}

	if config.Audio.CorrectionTolerance < 0 || config.Audio.CorrectionTolerance > 0.1 {
		errors = append(errors, fmt.Sprintf("audio.correctionTolerance: %.3f (valid: 0.0-0.1)", config.Audio.CorrectionTolerance))
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if config.Rewind.BufferSeconds < 1 || config.Rewind.BufferSeconds > 600 {
		config.Rewind.BufferSeconds = defaults.Rewind.BufferSeconds
	}
	if !validStream(config.Rewind.Stream) {
		config.Rewind.Stream = defaults.Rewind.Stream
	}
	if !validSampleRates(config.Audio.SampleRates) {
		config.Audio.SampleRates = defaults.Audio.SampleRates
	}
	if config.Audio.CorrectionTolerance < 0 || config.Audio.CorrectionTolerance > 0.1 {
		config.Audio.CorrectionTolerance = defaults.Audio.CorrectionTolerance
	}

	return config
}
