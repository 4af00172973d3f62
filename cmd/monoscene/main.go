// Command monoscene reconstructs a textured 3D scene from one or more
// photographs and writes the fused point cloud to a PCD or PLY file. It runs
// with a built-in luminance depth estimator, real model backends plug in
// through reconstruct.ModelLoader.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.viam.com/utils"

	"github.com/monoscene/monoscene/depth"
	"github.com/monoscene/monoscene/pointcloud"
	"github.com/monoscene/monoscene/reconstruct"
)

var logger = golog.NewDevelopmentLogger("monoscene")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	outPath := flags.String("out", "scene.pcd", "output file (.pcd or .ply)")
	tier := flags.String("tier", string(reconstruct.ModelTierBalanced), "model tier: fast, balanced, quality")
	smooth := flags.Int("smooth", 2, "taubin smoothing iterations")
	preRegister := flags.Bool("icp", false, "ICP pre-registration before fusion")
	depthPreview := flags.String("depthpreview", "", "also write a false-color depth image per photo to this prefix")
	quiet := flags.Bool("quiet", false, "only log errors")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return errors.New("usage: monoscene [flags] photo.jpg [photo2.jpg ...]")
	}
	if *quiet {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
		zl, err := cfg.Build()
		if err != nil {
			return err
		}
		logger = zl.Sugar()
	}

	photos := make([]reconstruct.Photo, 0, flags.NArg())
	for _, path := range flags.Args() {
		img, err := loadImage(path)
		if err != nil {
			return err
		}
		photos = append(photos, reconstruct.Photo{Path: path, Image: img})
	}

	opts := reconstruct.DefaultOptions()
	opts.Tier = reconstruct.ModelTier(*tier)
	opts.SmoothIterations = *smooth
	opts.Fuse.PreRegister = *preRegister
	opts.Progress = func(e reconstruct.Event) {
		logger.Infow("progress", "phase", e.Phase, "percent", e.Percent)
	}

	pipeline := reconstruct.NewPipeline(luminanceLoader{}, logger)
	result, err := pipeline.Run(ctx, photos, opts)
	if err != nil {
		logger.Errorw("reconstruction failed", "error", err)
		return errors.New(reconstruct.Message(err))
	}

	if err := writeCloud(result.Fused.Cloud, *outPath); err != nil {
		return err
	}
	if *depthPreview != "" {
		for i, m := range result.Meshes {
			path := fmt.Sprintf("%s-%02d.png", *depthPreview, i)
			if err := writeDepthPreview(m.Depth, path); err != nil {
				return err
			}
		}
	}
	logger.Infow("wrote scene",
		"job", result.JobID,
		"meshes", len(result.Meshes),
		"points", result.Fused.Cloud.Size(),
		"out", *outPath,
	)
	return nil
}

func loadImage(path string) (image.Image, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}

func writeCloud(cloud pointcloud.PointCloud, path string) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	switch filepath.Ext(path) {
	case ".ply":
		return pointcloud.ToPLY(cloud, f)
	default:
		return pointcloud.ToPCD(cloud, f, pointcloud.PCDAscii)
	}
}

func writeDepthPreview(dm *depth.Field, path string) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return png.Encode(f, dm.ToPrettyPicture())
}

// luminanceLoader provides the built-in estimator for every tier.
type luminanceLoader struct{}

func (luminanceLoader) Load(ctx context.Context, tier reconstruct.ModelTier) (reconstruct.DepthEstimator, error) {
	return &luminanceEstimator{}, nil
}

// luminanceEstimator fakes monocular depth by reading brightness as
// nearness. Good enough to exercise the pipeline end to end without a model
// backend.
type luminanceEstimator struct{}

func (e *luminanceEstimator) EstimateDepth(ctx context.Context, img image.Image, maxResolution int) (*reconstruct.RawDepth, error) {
	if img == nil {
		return nil, nil
	}
	bounds := img.Bounds()
	if maxResolution > 0 && (bounds.Dx() > maxResolution || bounds.Dy() > maxResolution) {
		img = resize.Thumbnail(uint(maxResolution), uint(maxResolution), img, resize.Bilinear)
		bounds = img.Bounds()
	}

	width, height := bounds.Dx(), bounds.Dy()
	samples := make([]float64, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			// bright regions read as near, so depth grows with darkness
			samples = append(samples, 1-lum/0xffff)
		}
	}
	return &reconstruct.RawDepth{Samples: samples, Width: width, Height: height}, nil
}
