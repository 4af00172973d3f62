package reconstruct

import (
	"context"
	"image"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/monoscene/monoscene/align"
	"github.com/monoscene/monoscene/camera"
	"github.com/monoscene/monoscene/depth"
	"github.com/monoscene/monoscene/fusion"
	"github.com/monoscene/monoscene/mesh"
)

// Photo is one reconstruction input.
type Photo struct {
	// Path identifies the source file, used for metadata lookup and as the
	// mesh's texture reference.
	Path string
	// Image is the decoded photograph, used as the upsampling guide.
	Image image.Image
}

// Options configures one reconstruction batch.
type Options struct {
	// Tier selects the depth model variant.
	Tier ModelTier
	// MaxResolution caps the larger dimension of the inferred depth tensor.
	MaxResolution int
	// TargetWidth and TargetHeight resample the cleaned depth field; zero
	// keeps the inferred resolution.
	TargetWidth  int
	TargetHeight int

	Clean depth.CleanConfig
	Mesh  mesh.Options
	// SmoothIterations rounds of Taubin smoothing per mesh; zero skips.
	SmoothIterations int
	Align            align.Config
	Fuse             fusion.Config

	// Metadata optionally supplies camera intrinsics per photo.
	Metadata camera.MetadataReader
	// Progress optionally receives phase/percent events.
	Progress ProgressFunc
	// OffThread runs the batch in its own goroutine. The results are
	// identical either way, the algorithms are pure functions of their
	// inputs.
	OffThread bool
}

// DefaultOptions returns the standard batch configuration.
func DefaultOptions() Options {
	return Options{
		Tier:             ModelTierBalanced,
		MaxResolution:    1024,
		Clean:            depth.DefaultCleanConfig(),
		Mesh:             mesh.DefaultOptions(),
		SmoothIterations: 2,
		Align:            align.DefaultConfig(),
		Fuse:             fusion.DefaultConfig(),
	}
}

// Result is a completed batch: the aligned per-photo meshes and the fused
// cloud derived from them.
type Result struct {
	JobID  uuid.UUID
	Meshes []*mesh.SurfaceMesh
	Fused  fusion.Result
}

// Pipeline runs reconstruction batches against one model handle.
type Pipeline struct {
	handle *ModelHandle
	logger golog.Logger
	clock  clock.Clock
}

// NewPipeline returns a pipeline owning a fresh model handle over the
// loader.
func NewPipeline(loader ModelLoader, logger golog.Logger) *Pipeline {
	return NewPipelineWithClock(loader, logger, clock.New())
}

// NewPipelineWithClock is NewPipeline with an injectable clock for tests.
func NewPipelineWithClock(loader ModelLoader, logger golog.Logger, clk clock.Clock) *Pipeline {
	return &Pipeline{
		handle: NewModelHandle(loader, logger),
		logger: logger,
		clock:  clk,
	}
}

// Run reconstructs the photos in order: per-photo depth cleaning, mesh
// synthesis and smoothing, then alignment and fusion once every mesh
// exists. Cancellation is checked between photos; a cancelled batch
// commits nothing.
func (p *Pipeline) Run(ctx context.Context, photos []Photo, opts Options) (*Result, error) {
	if len(photos) == 0 {
		return nil, errors.New("no photos to reconstruct")
	}

	if opts.OffThread {
		var res *Result
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			res, err = p.run(groupCtx, photos, opts)
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}
		return res, nil
	}
	return p.run(ctx, photos, opts)
}

func (p *Pipeline) run(ctx context.Context, photos []Photo, opts Options) (*Result, error) {
	jobID := uuid.New()
	reporter := newProgressReporter(jobID, opts.Progress, p.clock)
	logger := p.logger

	reporter.report(PhaseModelLoading, 0)
	estimator, err := p.handle.Estimator(ctx, opts.Tier)
	if err != nil {
		return nil, err
	}

	// per-photo work covers the first 90 percent
	perPhoto := 90 / len(photos)

	meshes := make([]*mesh.SurfaceMesh, 0, len(photos))
	for i, photo := range photos {
		if err := ctx.Err(); err != nil {
			logger.Infow("reconstruction cancelled", "job", jobID, "completedPhotos", len(meshes))
			return nil, err
		}
		base := i * perPhoto

		reporter.report(PhaseEstimating, base)
		raw, err := estimator.EstimateDepth(ctx, photo.Image, opts.MaxResolution)
		if err != nil {
			return nil, errors.Wrapf(err, "estimating depth for %s", photo.Path)
		}
		if raw == nil {
			return nil, errors.Wrapf(ErrDepthUnavailable, "photo %s", photo.Path)
		}

		targetWidth, targetHeight := opts.TargetWidth, opts.TargetHeight
		if targetWidth <= 0 {
			targetWidth = raw.Width
		}
		if targetHeight <= 0 {
			targetHeight = raw.Height
		}
		cleanCfg := opts.Clean
		if cleanCfg.Guide == nil {
			cleanCfg.Guide = photo.Image
		}
		cleaned, err := depth.Clean(raw.Samples, raw.Width, raw.Height, targetWidth, targetHeight, cleanCfg, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "photo %s", photo.Path)
		}

		reporter.report(PhaseGeneratingMesh, base+perPhoto/2)
		intrinsics := camera.IntrinsicsFor(opts.Metadata, photo.Path, logger)
		meshOpts := opts.Mesh
		meshOpts.Intrinsics = &intrinsics
		meshOpts.TextureRef = photo.Path
		m, err := mesh.Synthesize(cleaned.Depth, cleaned.Confidence, meshOpts, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "photo %s", photo.Path)
		}

		if opts.SmoothIterations > 0 {
			reporter.report(PhaseSmoothing, base+perPhoto*3/4)
			mesh.Smooth(m, opts.SmoothIterations)
		}
		meshes = append(meshes, m)
	}

	// barrier: every per-photo mesh exists past this point
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reporter.report(PhaseAligning, 90)
	placed := align.Align(meshes, opts.Align, logger)

	reporter.report(PhaseMerging, 95)
	fused, err := fusion.Fuse(placed, opts.Fuse, logger)
	if err != nil {
		return nil, err
	}

	reporter.report(PhaseComplete, 100)
	return &Result{JobID: jobID, Meshes: placed, Fused: fused}, nil
}
