// Package main validates a stereo calibration artifact and prints a summary
// of the rig geometry and any quality concerns.
package main

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"github.com/tomdubnov-bit/Silo/calib"
)

var logger = golog.NewDevelopmentLogger("calibcheck")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Calibration string `flag:"calibration,required,usage=path to the stereo calibration JSON"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	params, err := calib.NewStereoParametersFromJSONFile(argsParsed.Calibration)
	if err != nil {
		return err
	}

	logger.Infow("calibration is valid",
		"front_resolution", []int{params.Front.Width, params.Front.Height},
		"front_focal_px", []float64{params.Front.Fx, params.Front.Fy},
		"side_focal_px", []float64{params.Side.Fx, params.Side.Fy},
		"baseline_m", params.Baseline(),
		"rotation_deg", params.RotationAngle()*180/math.Pi,
		"rms_error_px", params.RMSError,
	)
	for _, w := range params.Warnings() {
		logger.Warnw("calibration quality concern", "warning", w)
	}
	return nil
}
