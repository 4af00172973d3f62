// Package fusion merges aligned per-photo meshes into one dense point cloud
// via voxel-grid averaging and statistical outlier removal, optionally
// ICP-registering consecutive views first.
package fusion

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/monoscene/monoscene/mesh"
	"github.com/monoscene/monoscene/pointcloud"
)

// Config tunes point-cloud fusion.
type Config struct {
	// PreRegister runs ICP between each mesh's cloud and the previous one
	// before concatenation. Degenerate registrations fall back to the
	// already-applied base placement.
	PreRegister bool
	// ICP tunes the pre-registration.
	ICP pointcloud.ICPConfig
	// VoxelSize is the downsampling voxel edge length; zero picks an
	// adaptive size from the total point count.
	VoxelSize float64
	// Outlier tunes statistical outlier removal.
	Outlier pointcloud.OutlierConfig
}

// DefaultConfig returns the fusion tunables used by the pipeline.
func DefaultConfig() Config {
	return Config{
		PreRegister: false,
		ICP:         pointcloud.DefaultICPConfig(),
		Outlier:     pointcloud.DefaultOutlierConfig(),
	}
}

// Result pairs the fused cloud with the per-photo meshes it was derived
// from, so callers can toggle between fused and per-photo views.
type Result struct {
	Cloud  pointcloud.PointCloud
	Meshes []*mesh.SurfaceMesh
}

// Fuse flattens all mesh vertices into one cloud, deduplicates
// near-coincident samples by voxel averaging and drops statistical
// outliers. The input meshes are read-only and returned alongside the
// cloud.
func Fuse(meshes []*mesh.SurfaceMesh, cfg Config, logger golog.Logger) (Result, error) {
	if len(meshes) == 0 {
		return Result{}, errors.New("no meshes to fuse")
	}

	clouds := make([]pointcloud.PointCloud, 0, len(meshes))
	total := 0
	for i, m := range meshes {
		cloud := m.ToPointCloud()
		if cfg.PreRegister && i > 0 {
			res, err := pointcloud.RegisterICP(cloud, clouds[i-1], cfg.ICP)
			switch {
			case errors.Is(err, pointcloud.ErrAlignmentDegenerate):
				if logger != nil {
					logger.Debugw("registration degenerate, keeping base placement", "mesh", i)
				}
			case err != nil:
				return Result{}, errors.Wrapf(err, "registering mesh %d", i)
			default:
				cloud = pointcloud.ApplyTranslation(cloud, res.Translation)
			}
		}
		clouds = append(clouds, cloud)
		total += cloud.Size()
	}

	merged := pointcloud.NewWithPrealloc(total)
	for _, cloud := range clouds {
		var setErr error
		cloud.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
			setErr = merged.Set(p, d)
			return setErr == nil
		})
		if setErr != nil {
			return Result{}, errors.Wrap(setErr, "concatenating clouds")
		}
	}

	fused := pointcloud.VoxelDownsample(merged, cfg.VoxelSize)
	fused, err := pointcloud.StatisticalOutlierRemoval(fused, cfg.Outlier)
	if err != nil {
		return Result{}, err
	}

	if logger != nil {
		logger.Infow("fused point cloud",
			"meshes", len(meshes),
			"inputPoints", total,
			"fusedPoints", fused.Size(),
		)
	}
	return Result{Cloud: fused, Meshes: meshes}, nil
}
