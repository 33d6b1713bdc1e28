// Package stereo implements the geometric core of the consistency check:
// recovering a 3D point from one observation per camera, and projecting a 3D
// point back into a camera's image plane. All functions are pure and operate
// on undistorted pixel coordinates and 3x4 projection matrices.
package stereo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateGeometry is returned when the two viewing rays do not
// constrain a finite 3D point: the rays are parallel or the point sits at
// infinity. Callers drop the landmark for the current frame and continue.
var ErrDegenerateGeometry = errors.New("degenerate geometry: viewing rays do not intersect at a finite point")

// homogeneousEpsilon is the scale below which the fourth (homogeneous)
// component of the triangulated solution is treated as zero. The solution
// vector from the SVD has unit norm, so this is relative to the solution
// scale.
const homogeneousEpsilon = 1e-12

// Triangulate computes the 3D point, in the front camera's frame, whose
// projections through pFront and pSide best explain the two undistorted
// observations, using the direct linear transform. Each view contributes two
// rows of the 4x4 homogeneous system, x·p3ᵀ − p1ᵀ and y·p3ᵀ − p2ᵀ (from the
// constraint x × (P·X) = 0); the least-squares solution is the right-singular
// vector of the smallest singular value, dehomogenized by its fourth
// component.
//
// When the smallest singular values are numerically tied, any null-space
// vector is a valid least-squares answer; the one gonum returns is used
// without further disambiguation and the residual shows up in the
// reprojection error downstream.
func Triangulate(front, side r2.Point, pFront, pSide *mat.Dense) (r3.Vector, error) {
	a := mat.NewDense(4, 4, nil)
	setConstraintRows(a, 0, front, pFront)
	setConstraintRows(a, 2, side, pSide)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return r3.Vector{}, errors.New("failed to factorize triangulation system")
	}
	var v mat.Dense
	svd.VTo(&v)

	// right-singular vector associated with the smallest singular value
	w := v.At(3, 3)
	if math.Abs(w) < homogeneousEpsilon {
		return r3.Vector{}, errors.Wrapf(ErrDegenerateGeometry,
			"front (%.2f, %.2f) side (%.2f, %.2f)", front.X, front.Y, side.X, side.Y)
	}
	return r3.Vector{
		X: v.At(0, 3) / w,
		Y: v.At(1, 3) / w,
		Z: v.At(2, 3) / w,
	}, nil
}

// setConstraintRows writes the two DLT constraint rows for one observation
// into rows row and row+1 of a.
func setConstraintRows(a *mat.Dense, row int, pt r2.Point, p *mat.Dense) {
	for j := 0; j < 4; j++ {
		a.Set(row, j, pt.X*p.At(2, j)-p.At(0, j))
		a.Set(row+1, j, pt.Y*p.At(2, j)-p.At(1, j))
	}
}
