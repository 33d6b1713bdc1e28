package detection

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// csvHeader is the column order of the append-only results log.
var csvHeader = []string{
	"timestamp",
	"is_synthetic",
	"confidence_score",
	"mean_error",
	"std_error",
	"front_error",
	"side_error",
	"landmarks_count",
}

// RenderConsole formats a human-readable report of one evaluation.
func RenderConsole(result *EvaluationResult) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "GEOMETRIC AUTHENTICITY REPORT")
	fmt.Fprintln(&b, rule)
	verdict := "LIVE SUBJECT"
	if result.Synthetic {
		verdict = "SYNTHETIC"
	}
	fmt.Fprintf(&b, "Verdict:        %s\n", verdict)
	fmt.Fprintf(&b, "Confidence:     %.1f / 100\n", result.Confidence)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Mean error:     %.2f px\n", result.Stats.MeanError)
	fmt.Fprintf(&b, "Std deviation:  %.2f px\n", result.Stats.StdError)
	fmt.Fprintf(&b, "Error range:    %.2f - %.2f px\n", result.Stats.MinError, result.Stats.MaxError)
	fmt.Fprintf(&b, "Front camera:   %.2f px\n", result.Stats.FrontMeanError)
	fmt.Fprintf(&b, "Side camera:    %.2f px\n", result.Stats.SideMeanError)
	fmt.Fprintf(&b, "Landmarks used: %d\n", result.Stats.LandmarkCount)
	if len(result.Dropped) > 0 {
		ids := make([]string, 0, len(result.Dropped))
		for _, id := range result.Dropped {
			ids = append(ids, string(id))
		}
		fmt.Fprintf(&b, "Dropped:        %s\n", strings.Join(ids, ", "))
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Thresholds:     live <= %.1f px, synthetic >= %.1f px, cutoff %.0f\n",
		result.Scoring.RealThresholdPx, result.Scoring.FakeThresholdPx, result.Scoring.VerdictCutoff)
	fmt.Fprintln(&b, rule)
	return b.String()
}

type jsonReport struct {
	Timestamp string        `json:"timestamp"`
	Frame     int           `json:"frame"`
	Detection jsonDetection `json:"detection"`
	Metrics   ErrorStats    `json:"metrics"`
	Scoring   ScoringConfig `json:"thresholds"`
	Dropped   []string      `json:"dropped_landmarks,omitempty"`
}

type jsonDetection struct {
	Synthetic  bool    `json:"is_synthetic"`
	Confidence float64 `json:"confidence_score"`
}

func newJSONReport(result *EvaluationResult) jsonReport {
	report := jsonReport{
		Timestamp: result.Timestamp.Format(time.RFC3339),
		Frame:     result.Frame,
		Detection: jsonDetection{
			Synthetic:  result.Synthetic,
			Confidence: result.Confidence,
		},
		Metrics: result.Stats,
		Scoring: result.Scoring,
	}
	for _, id := range result.Dropped {
		report.Dropped = append(report.Dropped, string(id))
	}
	return report
}

// WriteJSON writes the evaluation as a machine-readable JSON document.
func WriteJSON(w io.Writer, result *EvaluationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newJSONReport(result)); err != nil {
		return errors.Wrap(err, "error writing JSON report")
	}
	return nil
}

// WriteSessionJSON writes a sequence of evaluations as a JSON array, one
// report per frame. A single frame is still written as a one-element array so
// consumers parse session output uniformly.
func WriteSessionJSON(w io.Writer, results []*EvaluationResult) error {
	reports := make([]jsonReport, 0, len(results))
	for _, result := range results {
		reports = append(reports, newJSONReport(result))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return errors.Wrap(err, "error writing JSON session report")
	}
	return nil
}

// AppendCSV appends one evaluation as a row of the results log at csvPath,
// writing the header first when the file is new or empty.
func AppendCSV(csvPath string, result *EvaluationResult) (err error) {
	//nolint:gosec
	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "error opening results log")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "error inspecting results log")
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return errors.Wrap(err, "error writing results log header")
		}
	}
	row := []string{
		result.Timestamp.Format(time.RFC3339),
		strconv.FormatBool(result.Synthetic),
		strconv.FormatFloat(result.Confidence, 'f', 1, 64),
		strconv.FormatFloat(result.Stats.MeanError, 'f', 4, 64),
		strconv.FormatFloat(result.Stats.StdError, 'f', 4, 64),
		strconv.FormatFloat(result.Stats.FrontMeanError, 'f', 4, 64),
		strconv.FormatFloat(result.Stats.SideMeanError, 'f', 4, 64),
		strconv.Itoa(result.Stats.LandmarkCount),
	}
	if err := w.Write(row); err != nil {
		return errors.Wrap(err, "error writing results log row")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "error flushing results log")
}
