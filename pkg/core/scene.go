package core

// DefaultMaxDepth is the number of scatter events after which a path is cut off
const DefaultMaxDepth = 50

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width              int     // Image width
	Height             int     // Image height
	SamplesPerPixel    int     // Number of rays per pixel
	MaxDepth           int     // Maximum ray bounce depth
	AdaptiveMinSamples float64 // Minimum samples as a fraction of max samples before adaptive stop (0.0-1.0)
	AdaptiveThreshold  float64 // Relative luminance error for adaptive convergence; 0 disables adaptive sampling
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 100,
		MaxDepth:        DefaultMaxDepth,
	}
}

// Scene is what the renderers and integrators consume
type Scene interface {
	GetCamera() Camera
	GetWorld() Shape
	GetBackgroundColors() (topColor, bottomColor Vec3)
	GetSamplingConfig() SamplingConfig
}
