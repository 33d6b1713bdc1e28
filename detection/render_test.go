package detection

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/tomdubnov-bit/Silo/landmark"
)

func testResult() *EvaluationResult {
	return &EvaluationResult{
		Frame:      3,
		Timestamp:  time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Synthetic:  true,
		Confidence: 23.7,
		Stats: ErrorStats{
			MeanError:      12.63,
			StdError:       0.28,
			MinError:       12.06,
			MaxError:       13.2,
			FrontMeanError: 12.76,
			SideMeanError:  12.5,
			LandmarkCount:  5,
		},
		Scoring: DefaultScoringConfig(),
		Dropped: []landmark.ID{landmark.NoseTip},
	}
}

func TestRenderConsole(t *testing.T) {
	out := RenderConsole(testResult())
	test.That(t, out, test.ShouldContainSubstring, "SYNTHETIC")
	test.That(t, out, test.ShouldContainSubstring, "23.7")
	test.That(t, out, test.ShouldContainSubstring, "12.63 px")
	test.That(t, out, test.ShouldContainSubstring, "nose_tip")

	live := testResult()
	live.Synthetic = false
	live.Confidence = 100
	test.That(t, RenderConsole(live), test.ShouldContainSubstring, "LIVE SUBJECT")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, WriteJSON(&buf, testResult()), test.ShouldBeNil)

	var report map[string]interface{}
	test.That(t, json.Unmarshal(buf.Bytes(), &report), test.ShouldBeNil)

	detectionBlock, ok := report["detection"].(map[string]interface{})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, detectionBlock["is_synthetic"], test.ShouldEqual, true)
	test.That(t, detectionBlock["confidence_score"], test.ShouldAlmostEqual, 23.7)

	metrics, ok := report["metrics"].(map[string]interface{})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, metrics["mean_error_px"], test.ShouldAlmostEqual, 12.63)
	test.That(t, metrics["landmark_count"], test.ShouldAlmostEqual, 5)

	thresholds, ok := report["thresholds"].(map[string]interface{})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, thresholds["real_threshold_px"], test.ShouldAlmostEqual, 5)
	test.That(t, report["timestamp"], test.ShouldEqual, "2026-08-24T12:00:00Z")
}

func TestWriteSessionJSON(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, WriteSessionJSON(&buf, []*EvaluationResult{testResult(), testResult()}), test.ShouldBeNil)

	var reports []map[string]interface{}
	test.That(t, json.Unmarshal(buf.Bytes(), &reports), test.ShouldBeNil)
	test.That(t, reports, test.ShouldHaveLength, 2)

	// single frame still encodes as an array
	buf.Reset()
	test.That(t, WriteSessionJSON(&buf, []*EvaluationResult{testResult()}), test.ShouldBeNil)
	reports = nil
	test.That(t, json.Unmarshal(buf.Bytes(), &reports), test.ShouldBeNil)
	test.That(t, reports, test.ShouldHaveLength, 1)
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	test.That(t, AppendCSV(path, testResult()), test.ShouldBeNil)
	test.That(t, AppendCSV(path, testResult()), test.ShouldBeNil)

	//nolint:gosec
	f, err := os.Open(path)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, f.Close(), test.ShouldBeNil)
	}()

	rows, err := csv.NewReader(f).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	// header written once, then one row per append
	test.That(t, rows, test.ShouldHaveLength, 3)
	test.That(t, rows[0], test.ShouldResemble, csvHeader)
	test.That(t, rows[1][0], test.ShouldEqual, "2026-08-24T12:00:00Z")
	test.That(t, rows[1][1], test.ShouldEqual, "true")
	test.That(t, rows[1][2], test.ShouldEqual, "23.7")
	test.That(t, rows[2][7], test.ShouldEqual, "5")
}
