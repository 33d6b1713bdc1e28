package detection

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestSessionEstablishesAnchor(t *testing.T) {
	// a few pixels of residual miscalibration on the side camera
	drift := r2.Point{X: 0, Y: 4}
	session := NewSession(newTestPipeline(t, newTestRig()), 0)
	test.That(t, session.State(), test.ShouldEqual, StateUncalibrated)

	first, err := session.EvaluateFrame(shiftSide(observeHead(t, newTestRig()), drift))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, session.State(), test.ShouldEqual, StateAnchored)
	test.That(t, first.Synthetic, test.ShouldBeFalse)
	test.That(t, first.Stats.MeanError, test.ShouldBeGreaterThan, 1.0)

	// the same drift on a later frame is fully compensated on the side view
	second, err := session.EvaluateFrame(shiftSide(observeHead(t, newTestRig()), drift))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.Stats.SideMeanError, test.ShouldBeLessThan, 1e-9)
	test.That(t, second.Stats.MeanError, test.ShouldBeLessThan, first.Stats.MeanError)
	test.That(t, second.Synthetic, test.ShouldBeFalse)
}

func TestSessionRejectsBadAnchor(t *testing.T) {
	// far past the validity threshold: not drift, an inconsistent feed
	drift := r2.Point{X: 0, Y: 25}
	session := NewSession(newTestPipeline(t, newTestRig()), 0)

	first, err := session.EvaluateFrame(shiftSide(observeHead(t, newTestRig()), drift))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, session.State(), test.ShouldEqual, StateRejected)
	test.That(t, first.Stats.MeanError, test.ShouldBeGreaterThan, DefaultAnchorValidityThresholdPx)

	// rejection is permanent; later frames are evaluated directly with no
	// offsets, even clean ones
	clean, err := session.EvaluateFrame(observeHead(t, newTestRig()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, session.State(), test.ShouldEqual, StateRejected)
	test.That(t, clean.Synthetic, test.ShouldBeFalse)
	test.That(t, clean.Stats.MeanError, test.ShouldBeLessThan, 1e-6)
}

func TestSessionRetriesEstablishmentAfterFailedFrame(t *testing.T) {
	session := NewSession(newTestPipeline(t, newTestRig()), 0)

	blind := observeHead(t, newTestRig())
	for i := range blind.Correspondences {
		blind.Correspondences[i].SideVisible = false
	}
	_, err := session.EvaluateFrame(blind)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInsufficientLandmarks), test.ShouldBeTrue)
	test.That(t, session.State(), test.ShouldEqual, StateUncalibrated)

	_, err = session.EvaluateFrame(observeHead(t, newTestRig()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, session.State(), test.ShouldEqual, StateAnchored)
}

func TestSessionCustomThreshold(t *testing.T) {
	// a drift of ~4 px mean error anchors with the default threshold but is
	// rejected with a stricter one
	drift := r2.Point{X: 0, Y: 8}

	strict := NewSession(newTestPipeline(t, newTestRig()), 2.0)
	_, err := strict.EvaluateFrame(shiftSide(observeHead(t, newTestRig()), drift))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strict.State(), test.ShouldEqual, StateRejected)

	lax := NewSession(newTestPipeline(t, newTestRig()), 0)
	_, err = lax.EvaluateFrame(shiftSide(observeHead(t, newTestRig()), drift))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lax.State(), test.ShouldEqual, StateAnchored)
}
