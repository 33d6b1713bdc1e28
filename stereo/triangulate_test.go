package stereo

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/tomdubnov-bit/Silo/calib"
)

func newTestRig() *calib.StereoParameters {
	cos30 := math.Cos(math.Pi / 6)
	return &calib.StereoParameters{
		Front: calib.CameraParameters{
			Width: 1280, Height: 720,
			Fx: 800, Fy: 800, Ppx: 640, Ppy: 360,
		},
		Side: calib.CameraParameters{
			Width: 1280, Height: 720,
			Fx: 800, Fy: 800, Ppx: 640, Ppy: 360,
		},
		Rotation: [9]float64{
			cos30, 0, 0.5,
			0, 1, 0,
			-0.5, 0, cos30,
		},
		Translation: [3]float64{-0.3, 0, 0.08},
	}
}

func TestReproject(t *testing.T) {
	pFront, _ := newTestRig().ProjectionMatrices()

	// a point on the optical axis lands on the principal point
	pt, err := Reproject(r3.Vector{X: 0, Y: 0, Z: 0.5}, pFront)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pt.X, test.ShouldAlmostEqual, 640, 1e-9)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 360, 1e-9)

	_, err = Reproject(r3.Vector{X: 0, Y: 0, Z: -1}, pFront)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrBehindCamera), test.ShouldBeTrue)
}

func TestTriangulateRoundTrip(t *testing.T) {
	pFront, pSide := newTestRig().ProjectionMatrices()

	points := []r3.Vector{
		{X: 0, Y: 0, Z: 0.5},
		{X: 0.05, Y: -0.07, Z: 0.55},
		{X: -0.05, Y: 0.09, Z: 0.48},
		{X: 0.02, Y: 0.03, Z: 0.62},
	}
	for _, want := range points {
		front, err := Reproject(want, pFront)
		test.That(t, err, test.ShouldBeNil)
		side, err := Reproject(want, pSide)
		test.That(t, err, test.ShouldBeNil)

		got, err := Triangulate(front, side, pFront, pSide)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got.X, test.ShouldAlmostEqual, want.X, 1e-6)
		test.That(t, got.Y, test.ShouldAlmostEqual, want.Y, 1e-6)
		test.That(t, got.Z, test.ShouldAlmostEqual, want.Z, 1e-6)
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	// a rectified pair observing identical coordinates in both views: the two
	// rays are parallel and the point sits at infinity
	rig := newTestRig()
	rig.Rotation = [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	rig.Translation = [3]float64{-0.3, 0, 0}
	pFront, pSide := rig.ProjectionMatrices()

	obs := r2.Point{X: 700, Y: 300}
	_, err := Triangulate(obs, obs, pFront, pSide)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
}
