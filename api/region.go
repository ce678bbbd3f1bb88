package gameapi

// Region represents the video region reported by a loaded game.
type Region int

const (
	RegionUnknown Region = iota
	RegionNTSC
	RegionPAL
)

// String returns the display name of the region.
func (r Region) String() string {
	switch r {
	case RegionNTSC:
		return "NTSC"
	case RegionPAL:
		return "PAL"
	default:
		return "Unknown"
	}
}
