/*
NAME
  vbap_test.go

DESCRIPTION
  vbap_test.go tests the pyramid-mesa cube/sphere transform's round trip
  at cube-face centres, snap-speaker detection, the VBAP triangle
  solve's unit-energy normalisation, and the directionless cube-centre
  case spreading equally over a symmetric 7.1.4 layout's ear-level
  speakers.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"math"
	"testing"

	"github.com/immaudio/iab/element"
)

func TestCubeToSphereToCubeRoundTrip(t *testing.T) {
	cases := []element.Position{
		{X: 1.0, Y: 0.5, Z: 0.5}, // +X face centre.
		{X: 0.0, Y: 0.5, Z: 0.5}, // -X face centre.
		{X: 0.5, Y: 1.0, Z: 0.5}, // +Y face centre.
		{X: 0.5, Y: 0.5, Z: 1.0}, // +Z face centre.
	}
	for _, p := range cases {
		az, el, defined := CubeToSphere(p)
		if !defined {
			t.Fatalf("position %+v: direction unexpectedly undefined", p)
		}
		got := SphereToCube(az, el)
		const tol = 1e-6
		if d := got.X - p.X; d > tol || d < -tol {
			t.Errorf("position %+v: X round trip got %v", p, got.X)
		}
		if d := got.Y - p.Y; d > tol || d < -tol {
			t.Errorf("position %+v: Y round trip got %v", p, got.Y)
		}
		if d := got.Z - p.Z; d > tol || d < -tol {
			t.Errorf("position %+v: Z round trip got %v", p, got.Z)
		}
	}
}

func testConfig() *Config {
	return &Config{
		PhysicalSpeakers: []PhysicalSpeaker{
			{URI: "L", VBAPXYZ: [3]float64{-1, 1, 0}, OutputIndex: 0},
			{URI: "R", VBAPXYZ: [3]float64{1, 1, 0}, OutputIndex: 1},
			{URI: "C", VBAPXYZ: [3]float64{0, 1, 0}, OutputIndex: 2},
			{URI: "Ts", VBAPXYZ: [3]float64{0, 0, 1}, OutputIndex: 3},
		},
		Triangulation: []Triangle{{0, 2, 3}, {2, 1, 3}},
	}
}

func TestEnginePanGainsCentreSpeaker(t *testing.T) {
	e := NewEngine(testConfig())
	az, el, _ := cartesianToSpherical([3]float64{0, 1, 0})
	pos := SphereToCube(az, el)
	gains, err := e.PanGains(pos, 0)
	if err != nil {
		t.Fatalf("PanGains: %v", err)
	}
	if len(gains) != 4 {
		t.Fatalf("gains length: got %d want 4", len(gains))
	}
	// A source exactly at speaker C's direction should place all energy on
	// C (index 2), with negligible leakage elsewhere.
	const tol = 1e-6
	if gains[2] < 1-tol {
		t.Errorf("expected C to carry unit gain, got %v (all: %v)", gains[2], gains)
	}
}

func TestEnginePanGainsUnitEnergy(t *testing.T) {
	e := NewEngine(testConfig())
	az, el, _ := cartesianToSpherical([3]float64{0.3, 0.8, 0.2})
	pos := SphereToCube(az, el)
	gains, err := e.PanGains(pos, 0)
	if err != nil {
		t.Fatalf("PanGains: %v", err)
	}
	var energy float64
	for _, g := range gains {
		energy += g * g
	}
	const tol = 1e-6
	if d := energy - 1.0; d > tol || d < -tol {
		t.Errorf("gain vector energy = %v, want ~1.0 (gains: %v)", energy, gains)
	}
}

func TestEnginePanGainsNoTriangleFails(t *testing.T) {
	cfg := &Config{
		PhysicalSpeakers: []PhysicalSpeaker{
			{URI: "L", VBAPXYZ: [3]float64{-1, 1, 0}, OutputIndex: 0},
		},
		Triangulation: nil,
	}
	e := NewEngine(cfg)
	_, err := e.PanGains(element.Position{X: 0.5, Y: 1.0, Z: 0.5}, 0)
	if err != ErrVBAPFailure {
		t.Fatalf("expected ErrVBAPFailure, got %v", err)
	}
}

func TestEngineFindSnapSpeaker(t *testing.T) {
	e := NewEngine(testConfig())
	az, el, _ := cartesianToSpherical([3]float64{0, 1, 0})
	pos := SphereToCube(az, el)
	idx, ok := e.FindSnapSpeaker(pos, 0.05)
	if !ok {
		t.Fatalf("expected a snap match for C's own direction")
	}
	if idx != 2 {
		t.Errorf("FindSnapSpeaker: got output index %d, want 2 (C)", idx)
	}
}

func TestEngineFindSnapSpeakerNoMatch(t *testing.T) {
	e := NewEngine(testConfig())
	idx, ok := e.FindSnapSpeaker(element.Position{X: 0.5, Y: 0.5, Z: 0.5}, 1e-9)
	if ok {
		t.Fatalf("unexpected snap match at centre with zero tolerance: index %d", idx)
	}
}

func TestExtendedSourceDirectionsZeroApertureIsSingleSource(t *testing.T) {
	sources := extendedSourceDirections(0.1, 0.2, 0)
	if len(sources) != 1 {
		t.Fatalf("zero aperture should yield a single source, got %d", len(sources))
	}
}

func TestExtendedSourceDirectionsApertureCross(t *testing.T) {
	sources := extendedSourceDirections(0, 0, math.Pi/8)
	if len(sources) != 5 {
		t.Fatalf("non-zero aperture should yield 5 sources (MDAP cross), got %d", len(sources))
	}
}

func TestApplyZoneMaskDisabledIsNoop(t *testing.T) {
	e := NewEngine(testConfig())
	gains := []float64{1, 1, 1, 1}
	e.ApplyZoneMask(gains, element.ZoneGains9{Enabled: false})
	for i, g := range gains {
		if g != 1 {
			t.Errorf("gain %d mutated despite zones disabled: %v", i, g)
		}
	}
}

func TestZoneIndexGrid(t *testing.T) {
	cases := []struct {
		p    element.Position
		want int
	}{
		{element.Position{X: 0.1, Y: 0.1}, 0}, // left, back
		{element.Position{X: 0.5, Y: 0.5}, 4}, // centre, mid
		{element.Position{X: 0.9, Y: 0.9}, 8}, // right, front
	}
	for _, c := range cases {
		if got := zoneIndex(c.p); got != c.want {
			t.Errorf("zoneIndex(%+v) = %d, want %d", c.p, got, c.want)
		}
	}
}

func TestCubeToSphereCentreIsUndefined(t *testing.T) {
	if _, _, defined := CubeToSphere(element.Position{X: 0.5, Y: 0.5, Z: 0.5}); defined {
		t.Fatalf("cube centre has no direction; defined should be false")
	}
}

// sevenOneFourConfig is a symmetric 7.1.4 layout: eight ear-level
// speakers (LFE included) and four heights.
func sevenOneFourConfig() *Config {
	return &Config{
		PhysicalSpeakers: []PhysicalSpeaker{
			{URI: "L", VBAPXYZ: [3]float64{-1, 1, 0}, OutputIndex: 0},
			{URI: "R", VBAPXYZ: [3]float64{1, 1, 0}, OutputIndex: 1},
			{URI: "C", VBAPXYZ: [3]float64{0, 1, 0}, OutputIndex: 2},
			{URI: "LFE", VBAPXYZ: [3]float64{0, 1, -0.1}, OutputIndex: 3},
			{URI: "Lss", VBAPXYZ: [3]float64{-1, 0, 0}, OutputIndex: 4},
			{URI: "Rss", VBAPXYZ: [3]float64{1, 0, 0}, OutputIndex: 5},
			{URI: "Lrs", VBAPXYZ: [3]float64{-1, -1, 0}, OutputIndex: 6},
			{URI: "Rrs", VBAPXYZ: [3]float64{1, -1, 0}, OutputIndex: 7},
			{URI: "Ltf", VBAPXYZ: [3]float64{-1, 1, 1}, OutputIndex: 8},
			{URI: "Rtf", VBAPXYZ: [3]float64{1, 1, 1}, OutputIndex: 9},
			{URI: "Ltr", VBAPXYZ: [3]float64{-1, -1, 1}, OutputIndex: 10},
			{URI: "Rtr", VBAPXYZ: [3]float64{1, -1, 1}, OutputIndex: 11},
		},
		Triangulation: []Triangle{
			{0, 2, 8}, {2, 1, 9}, {0, 4, 8}, {1, 5, 9},
			{4, 6, 10}, {5, 7, 11}, {6, 7, 10}, {8, 9, 10},
		},
	}
}

func TestPanGainsCubeCentreSpreadsOverEarLevelSpeakers(t *testing.T) {
	e := NewEngine(sevenOneFourConfig())
	gains, err := e.PanGains(element.Position{X: 0.5, Y: 0.5, Z: 0.5}, 0)
	if err != nil {
		t.Fatalf("PanGains: %v", err)
	}

	// Speaker slice indices 0..7 are ear-level, 8..11 are heights.
	const tol = 1e-12
	earGain := gains[0]
	if earGain <= 0 {
		t.Fatalf("ear-level gain not positive: %v", earGain)
	}
	for i := 0; i < 8; i++ {
		if math.Abs(gains[i]-earGain) > tol {
			t.Errorf("ear-level speaker %d: gain %v, want %v (equal on all)", i, gains[i], earGain)
		}
	}
	for i := 8; i < 12; i++ {
		if gains[i] != 0 {
			t.Errorf("height speaker %d: gain %v, want 0", i, gains[i])
		}
	}
	var energy float64
	for _, g := range gains {
		energy += g * g
	}
	if math.Abs(energy-1.0) > 1e-9 {
		t.Errorf("centre gains energy = %v, want 1.0", energy)
	}
}
