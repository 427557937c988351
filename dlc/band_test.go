/*
NAME
  band_test.go

DESCRIPTION
  band_test.go tests the 96kHz band-split codec's exact cancellation
  property: decoding with a freshly-reset codec against the same base band
  the encoder produced reconstructs the original signal delayed by the
  80-sample realignment, and that Reset clears delay-line state.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

import "testing"

func TestBandSplitRoundTripExact(t *testing.T) {
	samples := make([]int32, 400)
	for i := range samples {
		samples[i] = int32(i) % 50
	}

	enc := NewBandCodec()
	base, ext, err := enc.EncodeBandSplit96k(samples)
	if err != nil {
		t.Fatalf("EncodeBandSplit96k: %v", err)
	}
	if len(base) != len(samples)/2 {
		t.Fatalf("base band length: got %d want %d", len(base), len(samples)/2)
	}
	if len(ext) != len(samples) {
		t.Fatalf("extension length: got %d want %d", len(ext), len(samples))
	}

	dec := NewBandCodec()
	got, err := dec.DecodeBandSplit96k(base, ext)
	if err != nil {
		t.Fatalf("DecodeBandSplit96k: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("decoded length: got %d want %d", len(got), len(samples))
	}
	for i := range got {
		var want int32
		if i >= totalGroupDelay {
			want = samples[i-totalGroupDelay]
		}
		if got[i] != want {
			t.Fatalf("sample %d: got %d want %d", i, got[i], want)
		}
	}
}

func TestEncodeBandSplit96kRejectsOddLength(t *testing.T) {
	enc := NewBandCodec()
	if _, _, err := enc.EncodeBandSplit96k(make([]int32, 5)); err == nil {
		t.Fatalf("expected error for odd-length 96kHz frame")
	}
}

func TestBandCodecResetClearsState(t *testing.T) {
	enc := NewBandCodec()
	samples := make([]int32, 200)
	for i := range samples {
		samples[i] = int32(i)
	}
	if _, _, err := enc.EncodeBandSplit96k(samples); err != nil {
		t.Fatalf("EncodeBandSplit96k: %v", err)
	}

	enc.Reset()
	fresh := NewBandCodec()

	for i := range enc.lpfHistory {
		if enc.lpfHistory[i] != fresh.lpfHistory[i] {
			t.Fatalf("lpfHistory[%d] not cleared: got %d", i, enc.lpfHistory[i])
		}
	}
	for i := range enc.realignDelay {
		if enc.realignDelay[i] != fresh.realignDelay[i] {
			t.Fatalf("realignDelay[%d] not cleared: got %d", i, enc.realignDelay[i])
		}
	}
	if enc.realignPos != fresh.realignPos {
		t.Fatalf("realignPos not reset: got %d", enc.realignPos)
	}
}
