// Package camera models the per-photo camera parameters that mesh synthesis
// needs for perspective correction, and the metadata reader collaborator
// that supplies them.
package camera

import (
	"math"

	"github.com/edaniels/golog"
)

// Intrinsics describes the camera that took a source photograph. It is
// derived once from image metadata, or defaulted, and is read-only input to
// mesh synthesis.
type Intrinsics struct {
	// FocalLengthMM is the lens focal length in millimeters.
	FocalLengthMM float64
	// FOVDegrees is the horizontal field of view in degrees.
	FOVDegrees float64
	// SensorWidthMM is the sensor width in millimeters.
	SensorWidthMM float64
	// AspectRatio is image width over height.
	AspectRatio float64
}

// DefaultIntrinsics returns the parameters assumed when a photo carries no
// usable metadata: a 50mm lens on a full-frame 36mm sensor.
func DefaultIntrinsics() Intrinsics {
	i := Intrinsics{
		FocalLengthMM: 50,
		SensorWidthMM: 36,
		AspectRatio:   4. / 3.,
	}
	i.FOVDegrees = i.fovFromFocal()
	return i
}

// FOVRadians returns the horizontal field of view in radians.
func (i Intrinsics) FOVRadians() float64 {
	return i.FOVDegrees * math.Pi / 180.
}

// fovFromFocal derives the horizontal field of view from the focal length
// and sensor width.
func (i Intrinsics) fovFromFocal() float64 {
	if i.FocalLengthMM <= 0 || i.SensorWidthMM <= 0 {
		return 60
	}
	return 2 * math.Atan(i.SensorWidthMM/(2*i.FocalLengthMM)) * 180. / math.Pi
}

// MetadataReader extracts intrinsics from a source image file. Implementations
// live outside this module (EXIF readers, sidecar files).
type MetadataReader interface {
	Intrinsics(path string) (Intrinsics, error)
}

// IntrinsicsFor reads intrinsics for a photo, filling any missing parameter
// with defaults. It never fails the pipeline: a reader error is logged and
// the defaults are returned.
func IntrinsicsFor(reader MetadataReader, path string, logger golog.Logger) Intrinsics {
	def := DefaultIntrinsics()
	if reader == nil {
		return def
	}
	in, err := reader.Intrinsics(path)
	if err != nil {
		logger.Debugw("no camera metadata, using defaults", "path", path, "error", err)
		return def
	}
	if in.FocalLengthMM <= 0 {
		in.FocalLengthMM = def.FocalLengthMM
	}
	if in.SensorWidthMM <= 0 {
		in.SensorWidthMM = def.SensorWidthMM
	}
	if in.AspectRatio <= 0 {
		in.AspectRatio = def.AspectRatio
	}
	if in.FOVDegrees <= 0 {
		in.FOVDegrees = in.fovFromFocal()
	}
	return in
}
