/*
NAME
  frame_test.go

DESCRIPTION
  frame_test.go tests the Frame element's payload round trip, its default
  version-mismatch rejection, and that an unrecognised sub-element tag is
  preserved as Unknown and counted rather than raised as a parse error.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import (
	"testing"

	"github.com/immaudio/iab/bitstream"
)

func TestFramePackParseRoundTrip(t *testing.T) {
	f := &Frame{
		Version:     CurrentMajorVersion,
		SampleRate:  SampleRate48k,
		FrameRate:   FrameRate24,
		MaxRendered: 3,
		SubElements: []SubElement{&AuthoringToolInfo{Text: "test-encoder"}},
	}
	raw, err := f.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := ParseFrame(bitstream.NewReader(raw), DefaultParseFrameOptions())
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if got.Version != f.Version || got.SampleRate != f.SampleRate || got.FrameRate != f.FrameRate {
		t.Errorf("header mismatch: got %+v", got)
	}
	if got.MaxRendered != f.MaxRendered {
		t.Errorf("MaxRendered: got %d want %d", got.MaxRendered, f.MaxRendered)
	}
	if len(got.SubElements) != 1 {
		t.Fatalf("sub-element count: got %d want 1", len(got.SubElements))
	}
	info, ok := got.SubElements[0].(*AuthoringToolInfo)
	if !ok {
		t.Fatalf("sub-element type: got %T want *AuthoringToolInfo", got.SubElements[0])
	}
	if info.Text != "test-encoder" {
		t.Errorf("AuthoringToolInfo.Text: got %q want %q", info.Text, "test-encoder")
	}
	if got.SkippedSubElements != 0 {
		t.Errorf("unexpected skipped sub-elements: %d", got.SkippedSubElements)
	}
}

func TestParseFrameRejectsVersionMismatchByDefault(t *testing.T) {
	f := &Frame{
		Version:    CurrentMajorVersion + 1,
		SampleRate: SampleRate48k,
		FrameRate:  FrameRate24,
	}
	raw, err := f.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if _, err := ParseFrame(bitstream.NewReader(raw), DefaultParseFrameOptions()); err == nil {
		t.Fatalf("expected version-mismatch error")
	}
}

func TestParseFramePreservesUnknownSubElement(t *testing.T) {
	f := &Frame{
		Version:    CurrentMajorVersion,
		SampleRate: SampleRate48k,
		FrameRate:  FrameRate24,
		SubElements: []SubElement{
			&Unknown{Tag: 0x7F, Bytes: []byte{0xAA, 0xBB}},
		},
	}
	raw, err := f.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got, err := ParseFrame(bitstream.NewReader(raw), DefaultParseFrameOptions())
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if got.SkippedSubElements != 1 {
		t.Fatalf("SkippedSubElements: got %d want 1", got.SkippedSubElements)
	}
	u, ok := got.SubElements[0].(*Unknown)
	if !ok {
		t.Fatalf("sub-element type: got %T want *Unknown", got.SubElements[0])
	}
	if u.Tag != 0x7F {
		t.Errorf("Unknown.Tag: got 0x%02x want 0x7F", u.Tag)
	}
	want := []byte{0xAA, 0xBB}
	for i := range want {
		if u.Bytes[i] != want[i] {
			t.Errorf("Unknown.Bytes[%d]: got 0x%02x want 0x%02x", i, u.Bytes[i], want[i])
		}
	}
}

func TestParseFrameEnforcesEssenceLimit(t *testing.T) {
	f := &Frame{
		Version:    CurrentMajorVersion,
		SampleRate: SampleRate48k,
		FrameRate:  FrameRate24,
	}
	for i := 0; i <= MaxEssenceElements; i++ {
		f.SubElements = append(f.SubElements, &AudioDataPCM{AudioDataID: uint32(i + 1)})
	}
	raw, err := f.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if _, err := ParseFrame(bitstream.NewReader(raw), DefaultParseFrameOptions()); err != ErrAssetLimitExceeded {
		t.Fatalf("expected ErrAssetLimitExceeded, got %v", err)
	}
}
