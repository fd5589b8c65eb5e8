package lm

import "math"

// Settings configures Solve. The zero value is not meaningful on its own;
// pass nil to Solve to get DefaultSettings(), or start from
// DefaultSettings() and override individual fields — exactly the
// nil-means-defaults convention the teacher's optimize packages use.
type Settings struct {
	MaxIterations          int
	CostTolerance          float64
	ParamTolerance         float64
	GradientTolerance      float64
	LineSearchSteps        int
	InitialDamping         float64
	AdaptiveDamping        bool
	DampingIncreaseFactor  float64
	DampingDecreaseFactor  float64
	MaxInnerIterations     int
	UseQR                  bool
	TrustRegionRadius      float64
	Verbose                bool
}

// defaultSettings returns settings if non-nil, else DefaultSettings().
func defaultSettings(settings *Settings) *Settings {
	if settings != nil {
		return settings
	}
	return DefaultSettings()
}

// DefaultSettings returns the solver's documented defaults.
func DefaultSettings() *Settings {
	return &Settings{
		MaxIterations:         100,
		CostTolerance:         1e-6,
		ParamTolerance:        1e-6,
		GradientTolerance:     1e-6,
		LineSearchSteps:       10,
		InitialDamping:        1e-3,
		AdaptiveDamping:       true,
		DampingIncreaseFactor: 10,
		DampingDecreaseFactor: 10,
		MaxInnerIterations:    10,
		UseQR:                 false,
		TrustRegionRadius:     math.Inf(1),
		Verbose:               false,
	}
}
