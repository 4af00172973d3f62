// Package reconstruct orchestrates the photo-to-geometry pipeline: depth
// estimation through an explicit model handle, per-photo cleaning, mesh
// synthesis and smoothing, multi-view alignment, and point-cloud fusion,
// with phase progress reporting and cooperative cancellation between photos.
package reconstruct

import (
	"context"

	"github.com/pkg/errors"

	"github.com/monoscene/monoscene/depth"
	"github.com/monoscene/monoscene/pointcloud"
)

// The failure taxonomy of a reconstruction batch. A batch either fully
// completes or fully rolls back; no partial mesh set is ever returned.
var (
	// ErrDepthUnavailable: the estimation service returned no usable tensor
	// for a photo. Fails the whole batch, not just the photo.
	ErrDepthUnavailable = depth.ErrDepthUnavailable

	// ErrResourceExhausted: out-of-memory-class failure during inference or
	// geometry construction.
	ErrResourceExhausted = errors.New("out of resources during reconstruction")

	// ErrModelLoadFailed: the inference backend could not be acquired.
	// Distinct from inference-time failure.
	ErrModelLoadFailed = errors.New("depth estimation model failed to load")

	// ErrAlignmentDegenerate: too little shared structure to register two
	// views. Not fatal, alignment falls back to spacing placement.
	ErrAlignmentDegenerate = pointcloud.ErrAlignmentDegenerate
)

// Message maps an error to the single human-readable line shown to users.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "Reconstruction cancelled."
	case errors.Is(err, ErrDepthUnavailable):
		return "Could not estimate depth for a photo. Check the image and try again."
	case errors.Is(err, ErrResourceExhausted):
		return "Ran out of memory. Try fewer photos or a lower resolution."
	case errors.Is(err, ErrModelLoadFailed):
		return "Could not load the depth model. Check your connection and retry."
	case errors.Is(err, ErrAlignmentDegenerate):
		return "Views could not be registered; using approximate placement."
	default:
		return "Reconstruction failed: " + err.Error()
	}
}
