package gameapi

// Geometry describes the video output of a loaded game.
type Geometry struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float32 // 0 means BaseWidth / BaseHeight
}

// Timing describes the frame and audio rates of a loaded game.
type Timing struct {
	FPS        float64
	SampleRate float64
}

// SystemAVInfo is returned once after a successful game load.
type SystemAVInfo struct {
	Geometry Geometry
	Timing   Timing
}

// DisplayAspectRatio computes the display aspect ratio from the active
// dimensions and pixel aspect ratio.
func DisplayAspectRatio(width, height int, par float64) float64 {
	if height == 0 {
		return 0
	}
	return (float64(width) / float64(height)) * par
}

// DisplayAspect returns the aspect ratio the geometry should be shown at,
// falling back to square pixels when the client leaves it unset.
func (g Geometry) DisplayAspect() float64 {
	if g.AspectRatio > 0 {
		return float64(g.AspectRatio)
	}
	return DisplayAspectRatio(int(g.BaseWidth), int(g.BaseHeight), 1.0)
}
