package calib

import (
	"testing"

	"go.viam.com/test"
)

func TestCameraParametersCheckValid(t *testing.T) {
	params := &CameraParameters{
		Width: 1280, Height: 720,
		Fx: 800, Fy: 800, Ppx: 640, Ppy: 360,
	}
	test.That(t, params.CheckValid(), test.ShouldBeNil)

	var nilParams *CameraParameters
	test.That(t, nilParams.CheckValid(), test.ShouldNotBeNil)

	bad := *params
	bad.Width = 0
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)

	bad = *params
	bad.Fx = -800
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)

	bad = *params
	bad.Ppy = -1
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)

	bad = *params
	bad.Distortion = []float64{0.1, 0.2, 0.3}
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)

	good := *params
	good.Distortion = []float64{-0.28, 0.08, 0.0005, -0.0003, 0.02}
	test.That(t, good.CheckValid(), test.ShouldBeNil)
}

func TestCameraMatrix(t *testing.T) {
	params := &CameraParameters{
		Width: 1280, Height: 720,
		Fx: 800, Fy: 810, Ppx: 640, Ppy: 360,
	}
	k := params.CameraMatrix()
	test.That(t, k.At(0, 0), test.ShouldEqual, 800)
	test.That(t, k.At(1, 1), test.ShouldEqual, 810)
	test.That(t, k.At(0, 2), test.ShouldEqual, 640)
	test.That(t, k.At(1, 2), test.ShouldEqual, 360)
	test.That(t, k.At(2, 2), test.ShouldEqual, 1)
	test.That(t, k.At(1, 0), test.ShouldEqual, 0)

	var nilParams *CameraParameters
	test.That(t, nilParams.CameraMatrix(), test.ShouldBeNil)
}
