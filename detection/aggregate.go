// Package detection turns per-landmark reprojection errors into an
// authenticity verdict. It composes the calib and stereo packages into a
// frame-pair pipeline, reduces the per-view pixel errors to summary
// statistics, and maps the mean error onto a bounded confidence score.
package detection

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/tomdubnov-bit/Silo/landmark"
)

// View names one of the two cameras.
type View string

// The two views of the rig.
const (
	FrontView View = "front"
	SideView  View = "side"
)

// Sample is one landmark's reprojection error in one view, in pixels.
type Sample struct {
	ID      landmark.ID
	View    View
	ErrorPx float64
}

// ErrInsufficientLandmarks is returned when no landmark produced a usable
// error sample, so the frame has no statistic to score. The frame evaluation
// fails rather than fabricating a zero error that would read as a perfect
// human.
var ErrInsufficientLandmarks = errors.New("insufficient landmarks: no valid error samples")

// ErrorStats summarizes the reprojection errors of one frame pair. The
// overall statistics pool both views' samples together; the per-view means
// are computed over that view's samples only.
type ErrorStats struct {
	MeanError      float64 `json:"mean_error_px"`
	StdError       float64 `json:"std_error_px"`
	MinError       float64 `json:"min_error_px"`
	MaxError       float64 `json:"max_error_px"`
	FrontMeanError float64 `json:"front_mean_error_px"`
	SideMeanError  float64 `json:"side_mean_error_px"`
	LandmarkCount  int     `json:"landmark_count"`
}

// Aggregate reduces the error samples of one frame pair to summary
// statistics. Samples from dropped landmarks never reach here; if nothing is
// left, it returns ErrInsufficientLandmarks.
func Aggregate(samples []Sample) (ErrorStats, error) {
	if len(samples) == 0 {
		return ErrorStats{}, ErrInsufficientLandmarks
	}

	all := make([]float64, 0, len(samples))
	var front, side []float64
	landmarks := map[landmark.ID]bool{}
	minErr := math.Inf(1)
	maxErr := math.Inf(-1)
	for _, s := range samples {
		all = append(all, s.ErrorPx)
		switch s.View {
		case FrontView:
			front = append(front, s.ErrorPx)
		case SideView:
			side = append(side, s.ErrorPx)
		}
		landmarks[s.ID] = true
		minErr = math.Min(minErr, s.ErrorPx)
		maxErr = math.Max(maxErr, s.ErrorPx)
	}

	stats := ErrorStats{
		MeanError:     stat.Mean(all, nil),
		StdError:      stat.PopStdDev(all, nil),
		MinError:      minErr,
		MaxError:      maxErr,
		LandmarkCount: len(landmarks),
	}
	if len(front) > 0 {
		stats.FrontMeanError = stat.Mean(front, nil)
	}
	if len(side) > 0 {
		stats.SideMeanError = stat.Mean(side, nil)
	}
	return stats, nil
}
