package calib

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// orthogonalityTolerance bounds ‖RᵀR − I‖ and |det(R) − 1| for a usable
	// rotation matrix.
	orthogonalityTolerance = 0.01
	// maxCalibrationRMS is the reprojection error above which a calibration
	// is considered suspect (warning, not fatal).
	maxCalibrationRMS = 1.0
)

// StereoParameters is the full calibration bundle for a fixed two-camera rig:
// intrinsics and distortion for the front and side cameras, plus the rotation
// and translation mapping front-camera coordinates into the side-camera frame.
// The projection matrices are always derived from (K, R, T), never stored, so
// they cannot drift out of sync. Constructed once from a calibration artifact
// and read-only afterwards; safe for concurrent readers.
type StereoParameters struct {
	Front CameraParameters `json:"front"`
	Side  CameraParameters `json:"side"`
	// Rotation is the 3x3 front-to-side rotation matrix in row-major order.
	Rotation [9]float64 `json:"rotation"`
	// Translation is the front-to-side translation vector in meters.
	Translation [3]float64 `json:"translation"`
	// RMSError is the RMS reprojection error reported by the calibration
	// procedure, in pixels.
	RMSError float64 `json:"rms_error_px"`
}

// RotationMatrix returns R as a dense 3x3 matrix.
func (sp *StereoParameters) RotationMatrix() *mat.Dense {
	r := make([]float64, 9)
	copy(r, sp.Rotation[:])
	return mat.NewDense(3, 3, r)
}

// TranslationVector returns T as a 3-vector.
func (sp *StereoParameters) TranslationVector() r3.Vector {
	return r3.Vector{X: sp.Translation[0], Y: sp.Translation[1], Z: sp.Translation[2]}
}

// Baseline returns the physical distance between the two camera optical
// centers in meters.
func (sp *StereoParameters) Baseline() float64 {
	return sp.TranslationVector().Norm()
}

// ProjectionMatrices derives the two 3x4 projection matrices from the bundle:
// P_front = K_front·[I|0] in the front camera's own frame, and
// P_side = K_side·[R|T] mapping front-frame points into the side view.
func (sp *StereoParameters) ProjectionMatrices() (*mat.Dense, *mat.Dense) {
	identityPose := mat.NewDense(3, 4, nil)
	identityPose.Set(0, 0, 1)
	identityPose.Set(1, 1, 1)
	identityPose.Set(2, 2, 1)
	pFront := mat.NewDense(3, 4, nil)
	pFront.Mul(sp.Front.CameraMatrix(), identityPose)

	sidePose := mat.NewDense(3, 4, nil)
	r := sp.RotationMatrix()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sidePose.Set(i, j, r.At(i, j))
		}
		sidePose.Set(i, 3, sp.Translation[i])
	}
	pSide := mat.NewDense(3, 4, nil)
	pSide.Mul(sp.Side.CameraMatrix(), sidePose)

	return pFront, pSide
}

// CheckValid fails fast on a bundle that cannot support triangulation: bad
// per-camera parameters, a rotation matrix that is not orthogonal with
// determinant +1, or mismatched image sizes between the two cameras. Every
// downstream computation depends on these holding, so the check runs before
// any frame is processed.
func (sp *StereoParameters) CheckValid() error {
	if sp == nil {
		return errors.New("stereo parameters do not exist")
	}
	if err := sp.Front.CheckValid(); err != nil {
		return errors.Wrap(err, "front camera")
	}
	if err := sp.Side.CheckValid(); err != nil {
		return errors.Wrap(err, "side camera")
	}
	if sp.Front.Width != sp.Side.Width || sp.Front.Height != sp.Side.Height {
		return errors.Errorf("mismatched image sizes: front (%d,%d) != side (%d,%d)",
			sp.Front.Width, sp.Front.Height, sp.Side.Width, sp.Side.Height)
	}

	r := sp.RotationMatrix()
	var rtr mat.Dense
	rtr.Mul(r.T(), r)
	var residual mat.Dense
	residual.Sub(&rtr, eye(3))
	if orthErr := mat.Norm(&residual, 2); orthErr > orthogonalityTolerance {
		return errors.Errorf("rotation matrix is not orthogonal: ‖RᵀR − I‖ = %.6f", orthErr)
	}
	if det := mat.Det(r); math.Abs(det-1.0) > orthogonalityTolerance {
		return errors.Errorf("rotation matrix is not a proper rotation: det = %.6f", det)
	}
	if sp.RMSError < 0 {
		return errors.Errorf("negative RMS calibration error %.4f", sp.RMSError)
	}
	return nil
}

// Warnings reports quality concerns that do not invalidate the bundle:
// an implausible baseline for a desktop rig, large distortion coefficients,
// and a high calibration RMS. Callers typically log these at startup.
func (sp *StereoParameters) Warnings() []string {
	var warnings []string
	if b := sp.Baseline(); b < 0.05 || b > 2.0 {
		warnings = append(warnings, fmt.Sprintf("baseline %.4f m is outside the expected 5 cm - 2 m range", b))
	}
	for name, cam := range map[string]*CameraParameters{"front": &sp.Front, "side": &sp.Side} {
		for _, c := range cam.Distortion {
			if math.Abs(c) >= 2.0 {
				warnings = append(warnings, fmt.Sprintf("%s camera has a large distortion coefficient (%.3f)", name, c))
				break
			}
		}
	}
	if sp.RMSError > maxCalibrationRMS {
		warnings = append(warnings, fmt.Sprintf("calibration RMS error %.4f px exceeds %.1f px", sp.RMSError, maxCalibrationRMS))
	}
	return warnings
}

// RotationAngle returns the magnitude of the relative rotation between the
// cameras in radians, from the trace of R.
func (sp *StereoParameters) RotationAngle() float64 {
	r := sp.RotationMatrix()
	cosTheta := (mat.Trace(r) - 1) / 2
	// clamp against accumulated rounding before acos
	cosTheta = math.Max(-1, math.Min(1, cosTheta))
	return math.Acos(cosTheta)
}

// eye creates an identity matrix of size nxn.
func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
