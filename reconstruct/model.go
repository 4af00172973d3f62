package reconstruct

import (
	"context"
	"image"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// ModelTier selects the depth model variant to run.
type ModelTier string

// Available model tiers, fast to accurate.
const (
	ModelTierFast     ModelTier = "fast"
	ModelTierBalanced ModelTier = "balanced"
	ModelTierQuality  ModelTier = "quality"
)

// RawDepth is the uncleaned tensor a depth estimator returns: flat row-major
// samples plus an optional parallel confidence-like signal.
type RawDepth struct {
	Samples    []float64
	Width      int
	Height     int
	Confidence []float64
}

// DepthEstimator is the opaque inference service. Implementations live
// outside this module.
type DepthEstimator interface {
	// EstimateDepth infers a raw depth tensor for the image, limiting the
	// larger tensor dimension to maxResolution when positive.
	EstimateDepth(ctx context.Context, img image.Image, maxResolution int) (*RawDepth, error)
}

// ModelLoader acquires the inference backend for a tier.
type ModelLoader interface {
	Load(ctx context.Context, tier ModelTier) (DepthEstimator, error)
}

// ModelHandle owns the process-wide model instance. The estimator is loaded
// lazily and reloaded only when the requested tier changes.
type ModelHandle struct {
	mu        sync.Mutex
	loader    ModelLoader
	tier      ModelTier
	estimator DepthEstimator
	logger    golog.Logger
}

// NewModelHandle wraps a loader in a handle with nothing loaded yet.
func NewModelHandle(loader ModelLoader, logger golog.Logger) *ModelHandle {
	return &ModelHandle{loader: loader, logger: logger}
}

// Estimator returns the loaded estimator for the tier, loading or reloading
// only when the tier differs from the currently resident one. Load failures
// carry ErrModelLoadFailed.
func (h *ModelHandle) Estimator(ctx context.Context, tier ModelTier) (DepthEstimator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.estimator != nil && h.tier == tier {
		return h.estimator, nil
	}

	if h.estimator != nil {
		h.logger.Infow("model tier changed, reloading", "from", h.tier, "to", tier)
	}
	est, err := h.loader.Load(ctx, tier)
	if err != nil {
		return nil, errors.Wrapf(ErrModelLoadFailed, "tier %s: %v", tier, err)
	}
	h.estimator = est
	h.tier = tier
	return est, nil
}
