/*
NAME
  subblocks_test.go

DESCRIPTION
  subblocks_test.go tests the frame-rate-to-sub-block-count table and the
  23.976fps irregular sample layout.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "testing"

func TestSubBlockCount(t *testing.T) {
	cases := []struct {
		rate FrameRate
		want int
	}{
		{FrameRate24, 8},
		{FrameRate23_976, 8},
		{FrameRate48, 8},
		{FrameRate96, 8},
		{FrameRate25, 10},
		{FrameRate50, 10},
		{FrameRate100, 10},
		{FrameRate30, 6},
		{FrameRate60, 6},
		{FrameRate120, 6},
	}
	for _, c := range cases {
		got, err := SubBlockCount(c.rate)
		if err != nil {
			t.Fatalf("SubBlockCount(%d): %v", c.rate, err)
		}
		if got != c.want {
			t.Errorf("SubBlockCount(%d) = %d, want %d", c.rate, got, c.want)
		}
	}
}

func TestSubBlockCountUnknownRate(t *testing.T) {
	if _, err := SubBlockCount(FrameRate(200)); err == nil {
		t.Fatalf("expected error for unknown frame rate")
	}
}

func TestSubBlockSampleLayout2398Irregular(t *testing.T) {
	layout, err := SubBlockSampleLayout(FrameRate23_976, SampleRate48k, 2002)
	if err != nil {
		t.Fatalf("SubBlockSampleLayout: %v", err)
	}
	want := []int{250, 250, 250, 250, 250, 250, 250, 252}
	if len(layout) != len(want) {
		t.Fatalf("layout length: got %d want %d", len(layout), len(want))
	}
	sum := 0
	for i, v := range layout {
		if v != want[i] {
			t.Errorf("layout[%d] = %d, want %d", i, v, want[i])
		}
		sum += v
	}
	if sum != 2002 {
		t.Errorf("layout sums to %d, want 2002", sum)
	}
}

func TestSubBlockSampleLayoutUniform(t *testing.T) {
	layout, err := SubBlockSampleLayout(FrameRate24, SampleRate48k, 2000)
	if err != nil {
		t.Fatalf("SubBlockSampleLayout: %v", err)
	}
	if len(layout) != 8 {
		t.Fatalf("layout length: got %d want 8", len(layout))
	}
	for i, v := range layout {
		if v != 250 {
			t.Errorf("layout[%d] = %d, want 250", i, v)
		}
	}
}

func TestSubBlockSampleLayoutUnevenDivisionErrors(t *testing.T) {
	if _, err := SubBlockSampleLayout(FrameRate24, SampleRate48k, 2001); err == nil {
		t.Fatalf("expected error for a frame that does not divide evenly")
	}
}

func TestSubBlockSampleLayout2398Requires48k(t *testing.T) {
	if _, err := SubBlockSampleLayout(FrameRate23_976, SampleRate96k, 2002); err == nil {
		t.Fatalf("expected error: 23.976fps layout is only defined at 48kHz")
	}
}
