package detection

import (
	"github.com/golang/geo/r2"

	"github.com/tomdubnov-bit/Silo/landmark"
)

// DefaultAnchorValidityThresholdPx bounds the mean reprojection error a frame
// may have and still serve as an anchor. Above it the establishment frame is
// itself too inconsistent to trust as a baseline.
const DefaultAnchorValidityThresholdPx = 10.0

// Anchor state names, as reported by Session.State.
const (
	StateUncalibrated = "uncalibrated"
	StateAnchored     = "anchored"
	StateRejected     = "rejected"
)

// anchorState is the session's calibration-drift state. Exactly one of the
// three concrete states holds at a time.
type anchorState interface {
	name() string
}

type uncalibrated struct{}

func (uncalibrated) name() string { return StateUncalibrated }

type anchored struct {
	// offsets maps each landmark to observed − expected side-view
	// coordinates measured on the establishment frame.
	offsets map[landmark.ID]r2.Point
}

func (anchored) name() string { return StateAnchored }

type rejected struct{}

func (rejected) name() string { return StateRejected }

// Session evaluates a sequence of frame pairs in anchor mode, compensating
// for small calibration drift on a fixed rig. The first successfully
// evaluated frame establishes per-landmark offsets between observed and
// expected side-view coordinates; later frames apply those offsets to the
// expected coordinates before errors are measured. An establishment frame
// whose mean error exceeds the validity threshold permanently rejects the
// anchor and the session falls back to direct evaluation.
//
// A Session is not safe for concurrent use; frames must arrive in order.
type Session struct {
	pipeline            *Pipeline
	validityThresholdPx float64
	state               anchorState
}

// NewSession wraps a pipeline in anchor-mode state. A non-positive threshold
// selects DefaultAnchorValidityThresholdPx.
func NewSession(pipeline *Pipeline, validityThresholdPx float64) *Session {
	if validityThresholdPx <= 0 {
		validityThresholdPx = DefaultAnchorValidityThresholdPx
	}
	return &Session{
		pipeline:            pipeline,
		validityThresholdPx: validityThresholdPx,
		state:               uncalibrated{},
	}
}

// State reports the current anchor state.
func (s *Session) State() string {
	return s.state.name()
}

// EvaluateFrame evaluates the next frame pair of the session. While
// uncalibrated it also tries to establish the anchor; an establishment frame
// that fails outright leaves the session uncalibrated so the next frame can
// try again.
func (s *Session) EvaluateFrame(obs landmark.ObservationSet) (*EvaluationResult, error) {
	switch st := s.state.(type) {
	case uncalibrated:
		eval, err := s.pipeline.evaluateFrame(obs, nil)
		if err != nil {
			return nil, err
		}
		if eval.result.Stats.MeanError > s.validityThresholdPx {
			s.state = rejected{}
			s.pipeline.logger.Warnw("anchor rejected, falling back to direct evaluation",
				"frame", obs.Frame,
				"mean_error_px", eval.result.Stats.MeanError,
				"threshold_px", s.validityThresholdPx)
			return eval.result, nil
		}
		offsets := make(map[landmark.ID]r2.Point, len(eval.observedSide))
		for id, observed := range eval.observedSide {
			offsets[id] = observed.Sub(eval.expectedSide[id])
		}
		s.state = anchored{offsets: offsets}
		s.pipeline.logger.Infow("anchor established",
			"frame", obs.Frame,
			"landmarks", len(offsets),
			"mean_error_px", eval.result.Stats.MeanError)
		return eval.result, nil
	case anchored:
		eval, err := s.pipeline.evaluateFrame(obs, st.offsets)
		if err != nil {
			return nil, err
		}
		return eval.result, nil
	default: // rejected
		return s.pipeline.EvaluateFrame(obs)
	}
}
