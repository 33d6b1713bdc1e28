package stereo

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrBehindCamera is returned when a 3D point projects behind a camera's
// image plane. Callers drop the landmark rather than treating the projection
// as a zero-error observation.
var ErrBehindCamera = errors.New("point projects behind the camera")

// Reproject applies the 3x4 projection matrix p to the homogeneous point
// [X Y Z 1] and dehomogenizes by the depth component, yielding the expected
// pixel coordinate for that camera.
func Reproject(pt r3.Vector, p *mat.Dense) (r2.Point, error) {
	x := p.At(0, 0)*pt.X + p.At(0, 1)*pt.Y + p.At(0, 2)*pt.Z + p.At(0, 3)
	y := p.At(1, 0)*pt.X + p.At(1, 1)*pt.Y + p.At(1, 2)*pt.Z + p.At(1, 3)
	depth := p.At(2, 0)*pt.X + p.At(2, 1)*pt.Y + p.At(2, 2)*pt.Z + p.At(2, 3)
	if depth <= 0 {
		return r2.Point{}, errors.Wrapf(ErrBehindCamera, "depth %.6f for point (%.4f, %.4f, %.4f)",
			depth, pt.X, pt.Y, pt.Z)
	}
	return r2.Point{X: x / depth, Y: y / depth}, nil
}
