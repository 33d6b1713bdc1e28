// Package calib holds the stereo camera calibration bundle: per-camera
// intrinsics and distortion, the extrinsic transform between the two cameras,
// and the projection matrices derived from them. The bundle is produced once
// by an external calibration routine and is read-only for the life of the
// process.
package calib

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is returned when a camera is missing intrinsic parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrapf(ErrNoIntrinsics, msg)
}

// CameraParameters holds the pinhole intrinsics of one camera together with
// its Brown-Conrady distortion coefficients. Immutable after construction.
type CameraParameters struct {
	Width      int       `json:"width_px"`
	Height     int       `json:"height_px"`
	Fx         float64   `json:"fx"`
	Fy         float64   `json:"fy"`
	Ppx        float64   `json:"ppx"`
	Ppy        float64   `json:"ppy"`
	Distortion []float64 `json:"distortion_parameters"`
}

// CheckValid checks if the fields for CameraParameters have valid inputs.
func (params *CameraParameters) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("CameraParameters do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid image size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid principal point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid principal point Ppy = %#v", params.Ppy))
	}
	if len(params.Distortion) != 0 {
		if _, err := NewBrownConrady(params.Distortion); err != nil {
			return err
		}
	}
	return nil
}

// CameraMatrix creates the 3x3 intrinsic matrix K and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *CameraParameters) CameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	k := mat.NewDense(3, 3, nil)
	k.Set(0, 0, params.Fx)
	k.Set(1, 1, params.Fy)
	k.Set(0, 2, params.Ppx)
	k.Set(1, 2, params.Ppy)
	k.Set(2, 2, 1)
	return k
}

// distorter returns the Brown-Conrady model built from the coefficient
// vector, or a zero model when the camera carries no distortion.
func (params *CameraParameters) distorter() (*BrownConrady, error) {
	if len(params.Distortion) == 0 {
		return &BrownConrady{}, nil
	}
	return NewBrownConrady(params.Distortion)
}
