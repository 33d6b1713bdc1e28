package calib

import "github.com/golang/geo/r2"

// UndistortPixel maps a raw pixel observation onto the ideal pinhole model
// assumed by the projection matrices. The point is moved to the normalized
// image plane, the distortion model is inverted there, and the result is
// mapped back through the intrinsics. Points outside the image bounds are not
// rejected; the extrapolated result is returned and the caller decides how
// much to trust it.
func (params *CameraParameters) UndistortPixel(pt r2.Point) r2.Point {
	if params == nil {
		return pt
	}
	bc, err := params.distorter()
	if err != nil {
		return pt
	}
	x := (pt.X - params.Ppx) / params.Fx
	y := (pt.Y - params.Ppy) / params.Fy
	x, y = bc.Undistort(x, y)
	return r2.Point{X: x*params.Fx + params.Ppx, Y: y*params.Fy + params.Ppy}
}

// InFrame reports whether a pixel coordinate falls inside the image bounds.
func (params *CameraParameters) InFrame(pt r2.Point) bool {
	return pt.X >= 0 && pt.X < float64(params.Width) && pt.Y >= 0 && pt.Y < float64(params.Height)
}

// DistortPixel applies the forward distortion model to an ideal pinhole pixel
// coordinate, producing the raw pixel the camera would actually observe. It is
// the inverse of UndistortPixel and is mainly useful for generating synthetic
// observations.
func (params *CameraParameters) DistortPixel(pt r2.Point) r2.Point {
	if params == nil {
		return pt
	}
	bc, err := params.distorter()
	if err != nil {
		return pt
	}
	x := (pt.X - params.Ppx) / params.Fx
	y := (pt.Y - params.Ppy) / params.Fy
	x, y = bc.Transform(x, y)
	return r2.Point{X: x*params.Fx + params.Ppx, Y: y*params.Fy + params.Ppy}
}
