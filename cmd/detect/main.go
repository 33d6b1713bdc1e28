// Package main runs the stereo geometric-consistency check over recorded
// landmark observations and reports whether the subject is live or synthetic.
package main

import (
	"context"
	"os"
	"strconv"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/tomdubnov-bit/Silo/calib"
	"github.com/tomdubnov-bit/Silo/detection"
	"github.com/tomdubnov-bit/Silo/landmark"
)

var logger = golog.NewDevelopmentLogger("detect")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Calibration     string     `flag:"calibration,required,usage=path to the stereo calibration JSON"`
	Observations    string     `flag:"observations,required,usage=path to the landmark observation JSON (object or array)"`
	Anchor          bool       `flag:"anchor,usage=establish a first-frame anchor and compensate calibration drift"`
	AnchorThreshold pixelsFlag `flag:"anchor-threshold,usage=max mean error in px for a usable anchor frame (default 10)"`
	RealThreshold   pixelsFlag `flag:"real-threshold,usage=mean error in px at or below which confidence is 100 (default 5)"`
	FakeThreshold   pixelsFlag `flag:"fake-threshold,usage=mean error in px at or above which confidence is 0 (default 15)"`
	JSONOut         string     `flag:"json,usage=write a JSON session report to this path"`
	CSVOut          string     `flag:"csv,usage=append per-frame rows to this results log"`
	Quiet           bool       `flag:"quiet,usage=suppress the console report"`
}

// pixelsFlag is a pixel quantity flag.
type pixelsFlag float64

func (pf *pixelsFlag) String() string {
	return strconv.FormatFloat(float64(*pf), 'f', -1, 64)
}

func (pf *pixelsFlag) Set(val string) error {
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return err
	}
	*pf = pixelsFlag(parsed)
	return nil
}

func (pf *pixelsFlag) Get() interface{} {
	return float64(*pf)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	return runDetect(ctx, argsParsed, logger)
}

func runDetect(ctx context.Context, args Arguments, logger golog.Logger) error {
	params, err := calib.NewStereoParametersFromJSONFile(args.Calibration)
	if err != nil {
		return err
	}

	scoring := detection.DefaultScoringConfig()
	if args.RealThreshold > 0 {
		scoring.RealThresholdPx = float64(args.RealThreshold)
	}
	if args.FakeThreshold > 0 {
		scoring.FakeThresholdPx = float64(args.FakeThreshold)
	}

	pipeline, err := detection.NewPipeline(params, scoring, logger)
	if err != nil {
		return err
	}

	frames, err := landmark.ReadSessionFromJSONFile(args.Observations)
	if err != nil {
		return err
	}

	session := detection.NewSession(pipeline, float64(args.AnchorThreshold))

	var results []*detection.EvaluationResult
	anySynthetic := false
	anyFailed := false
	for _, obs := range frames {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var result *detection.EvaluationResult
		var err error
		if args.Anchor {
			result, err = session.EvaluateFrame(obs)
		} else {
			result, err = pipeline.EvaluateFrame(obs)
		}
		if err != nil {
			logger.Errorw("frame evaluation failed", "frame", obs.Frame, "error", err)
			anyFailed = true
			continue
		}
		results = append(results, result)
		anySynthetic = anySynthetic || result.Synthetic
		if !args.Quiet {
			//nolint:forbidigo
			os.Stdout.WriteString(detection.RenderConsole(result))
		}
		if args.CSVOut != "" {
			if err := detection.AppendCSV(args.CSVOut, result); err != nil {
				return err
			}
		}
	}
	if args.Anchor {
		logger.Infow("session finished", "frames", len(frames), "anchor_state", session.State())
	}

	if args.JSONOut != "" {
		if err := writeJSONFile(args.JSONOut, results); err != nil {
			return err
		}
	}

	if len(results) == 0 {
		return errors.New("no frame could be evaluated")
	}
	if anySynthetic {
		// nonzero exit so callers can gate on the verdict
		return errors.New("synthetic subject detected")
	}
	if anyFailed {
		return errors.New("some frames could not be evaluated")
	}
	return nil
}

func writeJSONFile(path string, results []*detection.EvaluationResult) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "error creating JSON report")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return detection.WriteSessionJSON(f, results)
}
