package detection

import (
	"time"

	"github.com/tomdubnov-bit/Silo/landmark"
)

// EvaluationResult is the complete outcome of evaluating one frame pair.
// Built once per frame and read-only afterwards.
type EvaluationResult struct {
	// Frame is the index of the evaluated frame pair.
	Frame int
	// Timestamp records when the evaluation completed.
	Timestamp time.Time
	// Synthetic is the verdict: true when the geometry is inconsistent with a
	// live three-dimensional face.
	Synthetic bool
	// Confidence is the authenticity confidence in [0, 100]; higher means
	// more consistent with a live subject.
	Confidence float64
	// Stats holds the reprojection-error statistics the verdict derives from.
	Stats ErrorStats
	// Scoring is the threshold configuration that produced the verdict,
	// carried along so reports stay self-describing.
	Scoring ScoringConfig
	// Dropped lists landmarks excluded from the statistics, whether for
	// missing visibility or recoverable geometric failures.
	Dropped []landmark.ID
}
