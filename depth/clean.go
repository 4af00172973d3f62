package depth

import (
	"image"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// ErrDepthUnavailable is returned when the estimation service produced no
// usable depth tensor. Cleaning never partially succeeds with an empty field.
var ErrDepthUnavailable = errors.New("no depth data available for image")

// CleanConfig tunes the post-processing passes. Zero values select the
// documented defaults.
type CleanConfig struct {
	// BilateralRadius is the neighborhood radius of the first bilateral
	// pass. The second pass always runs at half this radius (minimum 1).
	BilateralRadius int
	// RangeSigma overrides the range gaussian sigma of the bilateral
	// passes. 0 selects AdaptiveRangeSigma for the input width.
	RangeSigma float64
	// HoleWindow is the neighborhood size for hole filling.
	HoleWindow int
	// Guide optionally supplies the full resolution color image used for
	// joint bilateral upsampling when the target is larger than the input.
	Guide image.Image
}

// DefaultCleanConfig returns the standard post-processing configuration.
func DefaultCleanConfig() CleanConfig {
	return CleanConfig{
		BilateralRadius: 3,
		HoleWindow:      5,
	}
}

// Result holds a cleaned depth field and its derived confidence. Both are
// immutable once produced; downstream stages only read them.
type Result struct {
	Depth      *Field
	Confidence *Field
}

// Clean normalizes, denoises, hole-fills and resamples a raw depth tensor.
// The passes run in order: min-max normalization, a strong bilateral pass, a
// 3x3 median, hole filling, a lighter bilateral pass, a final min-max
// restretch, confidence derivation, then resampling to the target
// resolution.
func Clean(raw []float64, width, height, targetWidth, targetHeight int, cfg CleanConfig, logger golog.Logger) (*Result, error) {
	if len(raw) == 0 || width <= 0 || height <= 0 {
		return nil, ErrDepthUnavailable
	}
	if cfg.BilateralRadius == 0 {
		cfg.BilateralRadius = DefaultCleanConfig().BilateralRadius
	}
	if cfg.HoleWindow == 0 {
		cfg.HoleWindow = DefaultCleanConfig().HoleWindow
	}
	rangeSigma := cfg.RangeSigma
	if rangeSigma == 0 {
		rangeSigma = AdaptiveRangeSigma(width)
	}

	f, err := FieldFromSlice(raw, width, height)
	if err != nil {
		return nil, errors.Wrap(err, "cannot clean depth tensor")
	}
	f = f.Clone() // callers keep the raw tensor
	f.Normalize()

	f = ApplyFilter(f, BilateralFilter(cfg.BilateralRadius, rangeSigma))
	f = ApplyFilter(f, MedianFilter3())
	f = ApplyFilter(f, HoleFillingFilter(cfg.HoleWindow))

	lightRadius := cfg.BilateralRadius / 2
	if lightRadius < 1 {
		lightRadius = 1
	}
	f = ApplyFilter(f, BilateralFilter(lightRadius, rangeSigma))

	// filtering contracts the extremes slightly; restretch so consumers
	// can rely on the [0,1] range
	f.Normalize()

	conf := ConfidenceFromGradient(f)

	if targetWidth != width || targetHeight != height {
		logger.Debugw("resampling depth field",
			"from_width", width, "from_height", height,
			"to_width", targetWidth, "to_height", targetHeight,
			"guided", cfg.Guide != nil)
		f = Resample(f, targetWidth, targetHeight, cfg.Guide)
		conf = Resample(conf, targetWidth, targetHeight, nil)
	}

	return &Result{Depth: f, Confidence: conf}, nil
}
