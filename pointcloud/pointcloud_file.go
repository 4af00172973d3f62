package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii are ascii pcd files.
	PCDAscii PCDType = 0
	// PCDBinary are binary pcd files.
	PCDBinary PCDType = 1
)

// ToPCD writes out a point cloud to a PCD file of the specified type.
func ToPCD(cloud PointCloud, out io.Writer, outputType PCDType) error {
	var err error

	switch outputType {
	case PCDBinary:
		_, err = fmt.Fprintf(out, "VERSION .7\n")
	case PCDAscii:
		_, err = fmt.Fprintf(out, "VERSION 0.7\n")
	default:
		return errors.Errorf("unknown pcd type %d", outputType)
	}
	if err != nil {
		return err
	}
	if cloud.MetaData().HasColor {
		_, err = fmt.Fprintf(out, "FIELDS x y z rgb\n"+
			"SIZE 4 4 4 4\n"+
			"TYPE F F F I\n"+
			"COUNT 1 1 1 1\n")
	} else {
		_, err = fmt.Fprintf(out, "FIELDS x y z\n"+
			"SIZE 4 4 4\n"+
			"TYPE F F F\n"+
			"COUNT 1 1 1\n")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "WIDTH %d\n"+
		"HEIGHT %d\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n",
		cloud.Size(),
		1,
		cloud.Size())
	if err != nil {
		return err
	}
	switch outputType {
	case PCDBinary:
		_, err = fmt.Fprintf(out, "DATA binary\n")
	case PCDAscii:
		_, err = fmt.Fprintf(out, "DATA ascii\n")
	}
	if err != nil {
		return err
	}
	return writePCDData(cloud, out, outputType)
}

func writePCDData(cloud PointCloud, out io.Writer, pcdType PCDType) error {
	var iterErr error
	cloud.Iterate(func(pos r3.Vector, d Data) bool {
		var err error
		x := pos.X
		y := pos.Y
		z := pos.Z
		if cloud.MetaData().HasColor {
			red, green, blue := 127, 127, 127
			if d != nil && d.HasColor() {
				r, g, b := d.RGB255()
				red, green, blue = int(r), int(g), int(b)
			}
			rgb := red<<16 | green<<8 | blue
			switch pcdType {
			case PCDBinary:
				buf := make([]byte, 16)
				binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(x)))
				binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(y)))
				binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(z)))
				binary.LittleEndian.PutUint32(buf[12:], uint32(rgb))
				_, err = out.Write(buf)
			case PCDAscii:
				_, err = fmt.Fprintf(out, "%f %f %f %d\n", x, y, z, rgb)
			}
		} else {
			switch pcdType {
			case PCDBinary:
				buf := make([]byte, 12)
				binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(x)))
				binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(y)))
				binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(z)))
				_, err = out.Write(buf)
			case PCDAscii:
				_, err = fmt.Fprintf(out, "%f %f %f\n", x, y, z)
			}
		}
		if err != nil {
			iterErr = err
			return false
		}
		return true
	})
	return iterErr
}

// ToPLY writes out a point cloud as an ascii PLY file. Colors are written
// when the cloud carries them.
func ToPLY(cloud PointCloud, out io.Writer) error {
	w := bufio.NewWriter(out)
	hasColor := cloud.MetaData().HasColor

	if _, err := fmt.Fprintf(w, "ply\nformat ascii 1.0\nelement vertex %d\n"+
		"property float x\nproperty float y\nproperty float z\n", cloud.Size()); err != nil {
		return err
	}
	if hasColor {
		if _, err := fmt.Fprintf(w, "property uchar red\nproperty uchar green\nproperty uchar blue\n"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "end_header\n"); err != nil {
		return err
	}

	var iterErr error
	cloud.Iterate(func(pos r3.Vector, d Data) bool {
		var err error
		if hasColor {
			red, green, blue := uint8(127), uint8(127), uint8(127)
			if d != nil && d.HasColor() {
				red, green, blue = d.RGB255()
			}
			_, err = fmt.Fprintf(w, "%f %f %f %d %d %d\n", pos.X, pos.Y, pos.Z, red, green, blue)
		} else {
			_, err = fmt.Fprintf(w, "%f %f %f\n", pos.X, pos.Y, pos.Z)
		}
		if err != nil {
			iterErr = err
			return false
		}
		return true
	})
	if iterErr != nil {
		return iterErr
	}
	return w.Flush()
}
