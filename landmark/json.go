package landmark

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// jsonPoint is the wire form of a pixel coordinate.
type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// jsonCorrespondence is the wire form of one landmark observation. The
// visibility flags default to true when omitted, since most detectors only
// emit landmarks they actually found.
type jsonCorrespondence struct {
	ID           ID        `json:"id"`
	Front        jsonPoint `json:"front"`
	Side         jsonPoint `json:"side"`
	FrontVisible *bool     `json:"front_visible,omitempty"`
	SideVisible  *bool     `json:"side_visible,omitempty"`
}

// jsonObservationSet is the wire form of one frame pair.
type jsonObservationSet struct {
	Frame     int                  `json:"frame"`
	Landmarks []jsonCorrespondence `json:"landmarks"`
}

func (j jsonObservationSet) toObservationSet() ObservationSet {
	obs := ObservationSet{
		Frame:           j.Frame,
		Correspondences: make([]Correspondence, 0, len(j.Landmarks)),
	}
	for _, lm := range j.Landmarks {
		c := Correspondence{
			ID:           lm.ID,
			Front:        r2.Point{X: lm.Front.X, Y: lm.Front.Y},
			Side:         r2.Point{X: lm.Side.X, Y: lm.Side.Y},
			FrontVisible: true,
			SideVisible:  true,
		}
		if lm.FrontVisible != nil {
			c.FrontVisible = *lm.FrontVisible
		}
		if lm.SideVisible != nil {
			c.SideVisible = *lm.SideVisible
		}
		obs.Correspondences = append(obs.Correspondences, c)
	}
	return obs
}

// ReadObservationSet decodes a single frame pair's observations from r.
func ReadObservationSet(r io.Reader) (ObservationSet, error) {
	var j jsonObservationSet
	if err := json.NewDecoder(r).Decode(&j); err != nil {
		return ObservationSet{}, errors.Wrap(err, "error parsing observation JSON")
	}
	return j.toObservationSet(), nil
}

// ReadSessionFromJSONFile loads observation sets for a session. The file may
// hold either a single observation-set object or a JSON array of them, in
// frame order; a single object is returned as a one-frame session. Frames
// with no explicit index are numbered by position.
func ReadSessionFromJSONFile(jsonPath string) ([]ObservationSet, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening observation file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)

	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading observation data")
	}
	trimmed := bytes.TrimLeft(byteValue, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, errors.New("observation file is empty")
	}

	var wire []jsonObservationSet
	if trimmed[0] == '[' {
		if err := json.Unmarshal(byteValue, &wire); err != nil {
			return nil, errors.Wrap(err, "error parsing observation JSON")
		}
	} else {
		var single jsonObservationSet
		if err := json.Unmarshal(byteValue, &single); err != nil {
			return nil, errors.Wrap(err, "error parsing observation JSON")
		}
		wire = []jsonObservationSet{single}
	}

	sets := make([]ObservationSet, 0, len(wire))
	for i, j := range wire {
		obs := j.toObservationSet()
		if obs.Frame == 0 {
			obs.Frame = i
		}
		sets = append(sets, obs)
	}
	return sets, nil
}
