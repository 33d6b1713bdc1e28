package calib

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// NewStereoParametersFromJSONFile loads a calibration artifact written by the
// calibration tooling and validates it before returning. The file holds the
// same bundle Save writes, so a load/save cycle is lossless.
func NewStereoParametersFromJSONFile(jsonPath string) (*StereoParameters, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening calibration file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	return ReadStereoParameters(jsonFile)
}

// ReadStereoParameters decodes and validates a calibration bundle from r.
func ReadStereoParameters(r io.Reader) (*StereoParameters, error) {
	byteValue, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading calibration data")
	}
	params := &StereoParameters{}
	if err := json.Unmarshal(byteValue, params); err != nil {
		return nil, errors.Wrap(err, "error parsing calibration JSON")
	}
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	return params, nil
}

// Save writes the bundle to a JSON file that NewStereoParametersFromJSONFile
// can read back.
func (sp *StereoParameters) Save(jsonPath string) error {
	b, err := json.MarshalIndent(sp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error encoding calibration JSON")
	}
	return os.WriteFile(jsonPath, b, 0o644)
}
