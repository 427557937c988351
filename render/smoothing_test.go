/*
NAME
  smoothing_test.go

DESCRIPTION
  smoothing_test.go tests the gain cache's touched/evicted frame-boundary
  semantics and the per-sample gain ramp's slope cap and target hold.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import "testing"

func TestGainCachePreviousNilOnFirstFrame(t *testing.T) {
	c := NewGainCache()
	if got := c.Previous(1); got != nil {
		t.Errorf("Previous on empty cache: got %v, want nil", got)
	}
}

func TestGainCacheCommitAndPrevious(t *testing.T) {
	c := NewGainCache()
	c.Commit(1, []float64{0.5, 0.25})
	got := c.Previous(1)
	want := []float64{0.5, 0.25}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Previous(1) = %v, want %v", got, want)
	}
}

func TestGainCacheCommitCopiesSlice(t *testing.T) {
	c := NewGainCache()
	src := []float64{1, 2}
	c.Commit(1, src)
	src[0] = 99
	if got := c.Previous(1); got[0] != 1 {
		t.Errorf("Previous(1)[0] = %v, want 1 (cache must not alias caller's slice)", got[0])
	}
}

func TestGainCacheBeginFrameEvictsUntouched(t *testing.T) {
	c := NewGainCache()
	c.Commit(1, []float64{1})
	c.Commit(2, []float64{2})
	c.BeginFrame() // both were touched during the frame that just ended; both kept.
	c.BeginFrame() // neither was touched during the frame that just ended; both evicted.
	if got := c.Previous(1); got != nil {
		t.Errorf("entry 1 should have been evicted, got %v", got)
	}
	if got := c.Previous(2); got != nil {
		t.Errorf("entry 2 should have been evicted, got %v", got)
	}
}

func TestGainCacheBeginFrameKeepsTouched(t *testing.T) {
	c := NewGainCache()
	c.Commit(1, []float64{1})
	c.Commit(2, []float64{2})
	c.BeginFrame() // clears untouched entries and the touched set
	c.Commit(1, []float64{3})
	c.BeginFrame() // entry 1 was touched by the Commit above; entry 2 was not and is evicted
	if got := c.Previous(1); got == nil || got[0] != 3 {
		t.Errorf("entry 1 should survive as touched, got %v", got)
	}
}

func TestRampChannelReachesTargetWithinCap(t *testing.T) {
	out := RampChannel(0, 1, 480)
	if out[479] != 1 {
		t.Errorf("last ramp sample = %v, want 1 (target reached exactly at cap boundary)", out[479])
	}
	for i := 1; i < len(out); i++ {
		step := out[i] - out[i-1]
		if step > gainSlopeCap+1e-9 {
			t.Fatalf("sample %d: slope %v exceeds cap %v", i, step, gainSlopeCap)
		}
	}
}

func TestRampChannelHoldsAtTargetAfterShortBuffer(t *testing.T) {
	// A full unity swing needs 480 samples to respect the slope cap; a
	// 10-sample buffer must hold at an intermediate ramp value, not snap to
	// target early.
	out := RampChannel(0, 1, 10)
	if out[9] >= 1 {
		t.Errorf("sample 9 = %v, should still be ramping, not at target", out[9])
	}
}

func TestRampChannelZeroDeltaIsFlat(t *testing.T) {
	out := RampChannel(0.5, 0.5, 5)
	for i, v := range out {
		if v != 0.5 {
			t.Errorf("sample %d = %v, want 0.5 (no delta to ramp)", i, v)
		}
	}
}

func TestRampChannelCapsAtMaxRampLength(t *testing.T) {
	// A huge swing within a huge buffer must still obey gainRampMaxLen:
	// samples beyond the cap length hold at target.
	out := RampChannel(0, 1000, gainRampMaxLen+100)
	if out[gainRampMaxLen+50] != 1000 {
		t.Errorf("sample beyond max ramp length should hold at target, got %v", out[gainRampMaxLen+50])
	}
}

func TestRampGainsGrowsChannelCountFromZero(t *testing.T) {
	prev := []float64{1}
	target := []float64{1, 0.5}
	out := RampGains(prev, target, 480)
	if len(out[0]) != 2 {
		t.Fatalf("gain matrix row width: got %d want 2", len(out[0]))
	}
	if out[479][1] != 0.5 {
		t.Errorf("new channel should ramp up to target, got %v at last sample", out[479][1])
	}
}

func TestApplyUniformRepeatsTargetEverySample(t *testing.T) {
	target := []float64{0.25, 0.75}
	out := ApplyUniform(target, 3)
	if len(out) != 3 {
		t.Fatalf("row count: got %d want 3", len(out))
	}
	for i, row := range out {
		if row[0] != 0.25 || row[1] != 0.75 {
			t.Errorf("row %d = %v, want %v", i, row, target)
		}
	}
}

func TestApplyUniformDoesNotAliasInput(t *testing.T) {
	target := []float64{1}
	out := ApplyUniform(target, 2)
	target[0] = 99
	if out[0][0] != 1 {
		t.Errorf("ApplyUniform must copy target, got %v after mutating caller's slice", out[0][0])
	}
}
