package detection

import (
	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/tomdubnov-bit/Silo/calib"
	"github.com/tomdubnov-bit/Silo/landmark"
	"github.com/tomdubnov-bit/Silo/stereo"
)

// Pipeline evaluates frame pairs against a fixed calibration: undistort both
// observations per landmark, triangulate, reproject into both views, pool the
// reprojection errors, and score the mean. A Pipeline is immutable after
// construction and safe for concurrent use; frames are independent.
type Pipeline struct {
	params  *calib.StereoParameters
	pFront  *mat.Dense
	pSide   *mat.Dense
	scoring ScoringConfig
	logger  golog.Logger
	clock   clock.Clock
}

// NewPipeline validates the calibration bundle and the scoring thresholds and
// derives the projection matrices once. Quality warnings from the calibration
// are logged, not fatal.
func NewPipeline(params *calib.StereoParameters, scoring ScoringConfig, logger golog.Logger) (*Pipeline, error) {
	if err := params.CheckValid(); err != nil {
		return nil, errors.Wrap(err, "invalid stereo calibration")
	}
	if err := scoring.CheckValid(); err != nil {
		return nil, errors.Wrap(err, "invalid scoring config")
	}
	for _, w := range params.Warnings() {
		logger.Warnw("calibration quality concern", "warning", w)
	}
	pFront, pSide := params.ProjectionMatrices()
	return &Pipeline{
		params:  params,
		pFront:  pFront,
		pSide:   pSide,
		scoring: scoring,
		logger:  logger,
		clock:   clock.New(),
	}, nil
}

// EvaluateFrame runs the full consistency check on one frame pair. Landmarks
// that fail recoverably (not visible in both views, degenerate triangulation,
// projection behind a camera) are dropped and logged; the frame fails only
// when no landmark survives.
func (p *Pipeline) EvaluateFrame(obs landmark.ObservationSet) (*EvaluationResult, error) {
	eval, err := p.evaluateFrame(obs, nil)
	if err != nil {
		return nil, err
	}
	return eval.result, nil
}

// frameEvaluation carries, alongside the result, the per-landmark side-view
// coordinates the anchor session needs to measure and apply offsets.
type frameEvaluation struct {
	result *EvaluationResult
	// expectedSide maps each surviving landmark to its reprojected side-view
	// coordinate, after any anchor offset was applied.
	expectedSide map[landmark.ID]r2.Point
	// observedSide maps each surviving landmark to its undistorted side-view
	// observation.
	observedSide map[landmark.ID]r2.Point
}

func (p *Pipeline) evaluateFrame(obs landmark.ObservationSet, sideOffsets map[landmark.ID]r2.Point) (*frameEvaluation, error) {
	samples := make([]Sample, 0, 2*len(obs.Correspondences))
	var dropped []landmark.ID
	var diagnostics error
	expectedSide := map[landmark.ID]r2.Point{}
	observedSide := map[landmark.ID]r2.Point{}

	for _, c := range obs.Correspondences {
		if !c.Visible() {
			dropped = append(dropped, c.ID)
			p.logger.Debugw("landmark not visible in both views", "frame", obs.Frame, "landmark", c.ID)
			continue
		}
		front := p.params.Front.UndistortPixel(c.Front)
		side := p.params.Side.UndistortPixel(c.Side)
		if !p.params.Front.InFrame(front) || !p.params.Side.InFrame(side) {
			// extrapolated, still used; the error statistic is the arbiter
			p.logger.Debugw("undistorted point outside the frame",
				"frame", obs.Frame, "landmark", c.ID, "front", front, "side", side)
		}

		point, err := stereo.Triangulate(front, side, p.pFront, p.pSide)
		if err != nil {
			dropped = append(dropped, c.ID)
			diagnostics = multierr.Append(diagnostics, errors.Wrapf(err, "landmark %q", c.ID))
			p.logger.Debugw("triangulation failed", "frame", obs.Frame, "landmark", c.ID, "error", err)
			continue
		}

		reprFront, err := stereo.Reproject(point, p.pFront)
		if err == nil {
			var reprSide r2.Point
			reprSide, err = stereo.Reproject(point, p.pSide)
			if err == nil {
				if offset, ok := sideOffsets[c.ID]; ok {
					reprSide = reprSide.Add(offset)
				}
				samples = append(samples,
					Sample{ID: c.ID, View: FrontView, ErrorPx: front.Sub(reprFront).Norm()},
					Sample{ID: c.ID, View: SideView, ErrorPx: side.Sub(reprSide).Norm()},
				)
				expectedSide[c.ID] = reprSide
				observedSide[c.ID] = side
				continue
			}
		}
		dropped = append(dropped, c.ID)
		diagnostics = multierr.Append(diagnostics, errors.Wrapf(err, "landmark %q", c.ID))
		p.logger.Debugw("reprojection failed", "frame", obs.Frame, "landmark", c.ID, "error", err)
	}

	stats, err := Aggregate(samples)
	if err != nil {
		return nil, multierr.Append(errors.Wrapf(err, "frame %d", obs.Frame), diagnostics)
	}
	confidence, synthetic := p.scoring.Score(stats.MeanError)
	return &frameEvaluation{
		result: &EvaluationResult{
			Frame:      obs.Frame,
			Timestamp:  p.clock.Now(),
			Synthetic:  synthetic,
			Confidence: confidence,
			Stats:      stats,
			Scoring:    p.scoring,
			Dropped:    dropped,
		},
		expectedSide: expectedSide,
		observedSide: observedSide,
	}, nil
}
