// Package landmark defines the facial landmark observations the detection
// pipeline consumes. Landmarks are named, anatomically fixed points detected
// independently in each camera view by an external detector; this package
// only carries their identities and pixel coordinates.
package landmark

import "github.com/golang/geo/r2"

// ID names an anatomically fixed facial point tracked across both views.
type ID string

// The canonical rigid landmark set. These points sit on bone structure and
// are visible from both a front and an angled view, so they do not move with
// expression.
const (
	NoseTip       ID = "nose_tip"
	NoseBridgeTop ID = "nose_bridge_top"
	NoseBridgeMid ID = "nose_bridge_mid"
	Chin          ID = "chin"
	LeftForehead  ID = "left_forehead"
	RightForehead ID = "right_forehead"
)

// RigidLandmarks lists the canonical landmark set in a stable order.
func RigidLandmarks() []ID {
	return []ID{NoseTip, NoseBridgeTop, NoseBridgeMid, Chin, LeftForehead, RightForehead}
}

// Correspondence is one landmark's observation in both views of a single
// frame pair: the raw pixel coordinate per camera and a per-view visibility
// flag from the detector. Transient; lives for one frame-pair evaluation.
type Correspondence struct {
	ID           ID
	Front        r2.Point
	Side         r2.Point
	FrontVisible bool
	SideVisible  bool
}

// Visible reports whether the landmark was detected in both views. A
// correspondence missing either view cannot be triangulated.
func (c Correspondence) Visible() bool {
	return c.FrontVisible && c.SideVisible
}

// ObservationSet is the full landmark observation for one frame pair.
type ObservationSet struct {
	// Frame is the caller-assigned frame-pair index, carried through for
	// error context.
	Frame int
	// Correspondences holds one entry per detected landmark.
	Correspondences []Correspondence
}

// VisibleCorrespondences returns the subset detected in both views.
func (o ObservationSet) VisibleCorrespondences() []Correspondence {
	visible := make([]Correspondence, 0, len(o.Correspondences))
	for _, c := range o.Correspondences {
		if c.Visible() {
			visible = append(visible, c)
		}
	}
	return visible
}
