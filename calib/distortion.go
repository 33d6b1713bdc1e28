package calib

import "github.com/pkg/errors"

// InvalidDistortionError is used when the distortion parameters are invalid.
func InvalidDistortionError(msg string) error {
	return errors.Wrapf(errors.New("invalid distortion_parameters"), msg)
}

// BrownConrady is the Brown-Conrady lens distortion model over normalized
// image coordinates. The coefficient ordering follows the usual calibration
// convention: k1, k2, p1, p2, then optionally k3 and the rational-model
// denominators k4, k5, k6.
type BrownConrady struct {
	RadialK1     float64 `json:"rk1"`
	RadialK2     float64 `json:"rk2"`
	TangentialP1 float64 `json:"tp1"`
	TangentialP2 float64 `json:"tp2"`
	RadialK3     float64 `json:"rk3"`
	RadialK4     float64 `json:"rk4"`
	RadialK5     float64 `json:"rk5"`
	RadialK6     float64 `json:"rk6"`
}

// NewBrownConrady takes a coefficient vector of length 4 to 8 and builds the
// model, filling the missing trailing coefficients with zero.
func NewBrownConrady(inp []float64) (*BrownConrady, error) {
	if len(inp) == 0 {
		return &BrownConrady{}, nil
	}
	if len(inp) < 4 {
		return nil, InvalidDistortionError(errors.Errorf("list of parameters too short, expected at least 4, got %d", len(inp)).Error())
	}
	if len(inp) > 8 {
		return nil, InvalidDistortionError(errors.Errorf("list of parameters too long, expected max 8, got %d", len(inp)).Error())
	}
	coeffs := make([]float64, 8)
	copy(coeffs, inp)
	return &BrownConrady{
		RadialK1:     coeffs[0],
		RadialK2:     coeffs[1],
		TangentialP1: coeffs[2],
		TangentialP2: coeffs[3],
		RadialK3:     coeffs[4],
		RadialK4:     coeffs[5],
		RadialK5:     coeffs[6],
		RadialK6:     coeffs[7],
	}, nil
}

// CheckValid checks if the fields for BrownConrady have valid inputs.
func (bc *BrownConrady) CheckValid() error {
	if bc == nil {
		return InvalidDistortionError("BrownConrady shaped distortion_parameters not provided")
	}
	return nil
}

// Parameters returns the coefficients of the distortion model as a list of floats.
func (bc *BrownConrady) Parameters() []float64 {
	if bc == nil {
		return []float64{}
	}
	return []float64{
		bc.RadialK1, bc.RadialK2, bc.TangentialP1, bc.TangentialP2,
		bc.RadialK3, bc.RadialK4, bc.RadialK5, bc.RadialK6,
	}
}

// Transform applies the forward distortion model to an undistorted normalized
// point (x, y) and returns the distorted normalized point.
//
//	x_d = x*(1 + k1*r² + k2*r⁴ + k3*r⁶)/(1 + k4*r² + k5*r⁴ + k6*r⁶) + 2*p1*x*y + p2*(r² + 2*x²)
//	y_d = y*(1 + k1*r² + k2*r⁴ + k3*r⁶)/(1 + k4*r² + k5*r⁴ + k6*r⁶) + 2*p2*x*y + p1*(r² + 2*y²)
func (bc *BrownConrady) Transform(x, y float64) (float64, float64) {
	if bc == nil {
		return x, y
	}
	r2 := x*x + y*y
	r4 := r2 * r2
	r6 := r4 * r2
	radNum := 1.0 + bc.RadialK1*r2 + bc.RadialK2*r4 + bc.RadialK3*r6
	radDen := 1.0 + bc.RadialK4*r2 + bc.RadialK5*r4 + bc.RadialK6*r6
	rad := radNum / radDen
	xd := x*rad + 2.0*bc.TangentialP1*x*y + bc.TangentialP2*(r2+2.0*x*x)
	yd := y*rad + 2.0*bc.TangentialP2*x*y + bc.TangentialP1*(r2+2.0*y*y)
	return xd, yd
}

// Undistort inverts the distortion model for a distorted normalized point
// (xd, yd) by fixed-point iteration: each step re-estimates the radial and
// tangential terms at the current undistorted guess and compensates. The
// iteration converges quickly for the narrow-field lenses this model targets.
func (bc *BrownConrady) Undistort(xd, yd float64) (float64, float64) {
	if bc == nil {
		return xd, yd
	}

	const maxIterations = 20
	const tolerance = 1e-12

	x, y := xd, yd
	for i := 0; i < maxIterations; i++ {
		r2 := x*x + y*y
		r4 := r2 * r2
		r6 := r4 * r2
		radNum := 1.0 + bc.RadialK1*r2 + bc.RadialK2*r4 + bc.RadialK3*r6
		radDen := 1.0 + bc.RadialK4*r2 + bc.RadialK5*r4 + bc.RadialK6*r6
		rad := radNum / radDen
		if rad == 0 {
			break
		}
		tanX := 2.0*bc.TangentialP1*x*y + bc.TangentialP2*(r2+2.0*x*x)
		tanY := 2.0*bc.TangentialP2*x*y + bc.TangentialP1*(r2+2.0*y*y)

		xNext := (xd - tanX) / rad
		yNext := (yd - tanY) / rad

		dx := xNext - x
		dy := yNext - y
		x, y = xNext, yNext
		if dx*dx+dy*dy < tolerance*tolerance {
			break
		}
	}
	return x, y
}
