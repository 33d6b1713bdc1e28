package detection

import "github.com/pkg/errors"

// ScoringConfig maps a mean reprojection error onto a confidence score and a
// verdict. The mapping is piecewise linear: errors at or below RealThresholdPx
// score 100, errors at or above FakeThresholdPx score 0, and errors in between
// interpolate linearly. Confidences at or below VerdictCutoff are declared
// synthetic.
type ScoringConfig struct {
	RealThresholdPx float64 `json:"real_threshold_px"`
	FakeThresholdPx float64 `json:"fake_threshold_px"`
	VerdictCutoff   float64 `json:"verdict_cutoff"`
}

// DefaultScoringConfig returns the calibrated production thresholds: a live
// subject's rigid landmarks stay within ~5 px of geometric consistency, while
// a flat or resynthesized face drifts past 15 px.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RealThresholdPx: 5.0,
		FakeThresholdPx: 15.0,
		VerdictCutoff:   70.0,
	}
}

// CheckValid checks that the thresholds describe a usable mapping.
func (c ScoringConfig) CheckValid() error {
	if c.RealThresholdPx <= 0 {
		return errors.Errorf("real threshold must be positive, got %.4f", c.RealThresholdPx)
	}
	if c.FakeThresholdPx <= c.RealThresholdPx {
		return errors.Errorf("fake threshold (%.4f) must exceed real threshold (%.4f)",
			c.FakeThresholdPx, c.RealThresholdPx)
	}
	if c.VerdictCutoff < 0 || c.VerdictCutoff > 100 {
		return errors.Errorf("verdict cutoff must be within [0, 100], got %.4f", c.VerdictCutoff)
	}
	return nil
}

// Confidence maps a mean reprojection error in pixels onto [0, 100]. The
// mapping is continuous and monotonically non-increasing in the error.
func (c ScoringConfig) Confidence(meanErrorPx float64) float64 {
	switch {
	case meanErrorPx <= c.RealThresholdPx:
		return 100.0
	case meanErrorPx >= c.FakeThresholdPx:
		return 0.0
	default:
		slope := 100.0 / (c.FakeThresholdPx - c.RealThresholdPx)
		return 100.0 - (meanErrorPx-c.RealThresholdPx)*slope
	}
}

// Score returns the confidence for a mean reprojection error together with
// the verdict. A confidence exactly at the cutoff is synthetic.
func (c ScoringConfig) Score(meanErrorPx float64) (confidence float64, synthetic bool) {
	confidence = c.Confidence(meanErrorPx)
	return confidence, confidence <= c.VerdictCutoff
}
