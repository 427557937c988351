/*
NAME
  render_test.go

DESCRIPTION
  render_test.go tests the per-frame render pipeline's pure helper
  functions: sample-window extraction and accumulation, gain scaling,
  spread-to-aperture conversion, and the BedRemap destination/physical
  index lookups.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"testing"

	"github.com/immaudio/iab/element"
)

func TestTotalSamples(t *testing.T) {
	if got := totalSamples([]int{250, 250, 250, 252}); got != 1002 {
		t.Errorf("totalSamples = %d, want 1002", got)
	}
}

func TestScaleAppliesGainAndPadsShortInput(t *testing.T) {
	got := scale([]float64{1, 2}, 2.0, 4)
	want := []float64{2, 4, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestWindowOfExtractsSliceAndZeroPadsPastEnd(t *testing.T) {
	samples := []float64{10, 20, 30, 40}
	got := windowOf(samples, 2, 4)
	want := []float64{30, 40, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestAccumulateIntoFirstCallAllocates(t *testing.T) {
	got := accumulateInto(nil, []float64{1, 2}, 0.5)
	want := []float64{0.5, 1.0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestAccumulateIntoSumsAcrossCalls(t *testing.T) {
	acc := accumulateInto(nil, []float64{1, 1}, 1.0)
	acc = accumulateInto(acc, []float64{2, 2}, 0.5)
	want := []float64{2, 2}
	for i := range want {
		if acc[i] != want[i] {
			t.Errorf("sample %d: got %v want %v", i, acc[i], want[i])
		}
	}
}

func TestApplyObjectGainUnity(t *testing.T) {
	gains := []float64{0.5, 1.0}
	applyObjectGain(gains, 0) // code 0 is always unity.
	if gains[0] != 0.5 || gains[1] != 1.0 {
		t.Errorf("unity gain code should leave gains unchanged, got %v", gains)
	}
}

func TestSpreadApertureModes(t *testing.T) {
	const half = 3.14159265358979 / 2
	cases := []struct {
		name   string
		spread element.Spread
		want   float64
	}{
		{"low1d_zero", element.Spread{Mode: element.SpreadLow1D, Values: [3]float64{0, 0, 0}}, 0},
		{"low1d_half", element.Spread{Mode: element.SpreadLow1D, Values: [3]float64{0.5, 0, 0}}, 0.5 * half},
		{"high1d", element.Spread{Mode: element.SpreadHigh1D, Values: [3]float64{1, 0, 0}}, half},
		{"high3d", element.Spread{Mode: element.SpreadHigh3D, Values: [3]float64{0.3, 0.6, 0.9}}, 0.6 * half},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := spreadAperture(c.spread)
			const tol = 1e-9
			if d := got - c.want; d > tol || d < -tol {
				t.Errorf("spreadAperture(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestPhysicalIndexResolvesConfiguredURI(t *testing.T) {
	cfg := testConfig()
	idx, ok := physicalIndex(cfg, "C")
	if !ok || idx != 2 {
		t.Errorf("physicalIndex(C) = (%d, %v), want (2, true)", idx, ok)
	}
	if _, ok := physicalIndex(cfg, "nonexistent"); ok {
		t.Errorf("physicalIndex(nonexistent) unexpectedly resolved")
	}
}

func TestChannelURIForIndexOutOfRange(t *testing.T) {
	b := &element.BedDefinition{
		Channels: []element.BedChannel{{ChannelID: element.ChannelL}},
	}
	if got := channelURIForIndex(b, 0); got != element.ChannelL.String() {
		t.Errorf("channelURIForIndex(0) = %q, want %q", got, element.ChannelL.String())
	}
	if got := channelURIForIndex(b, 5); got != "" {
		t.Errorf("channelURIForIndex(out of range) = %q, want empty", got)
	}
	if got := channelURIForIndex(b, -1); got != "" {
		t.Errorf("channelURIForIndex(negative) = %q, want empty", got)
	}
}
