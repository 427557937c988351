/*
NAME
  object_test.go

DESCRIPTION
  object_test.go tests ObjectDefinition payload round-trip across a
  multi-sub-block frame, its AudioDescription free-text path, and its
  conditional-activation resolution.

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

func TestObjectDefinitionPayloadRoundTrip(t *testing.T) {
	o := &ObjectDefinition{
		MetadataID:  5,
		AudioDataID: 9,
		AudioDescription: AudioDescription{
			Kind:       AudioDescriptionVisuallyImpaired,
			TextExists: true,
			Text:       "narrative track",
		},
		SubBlocks: []ObjectSubBlock{
			{PanInfoExists: true, Position: Position{X: 0.1, Y: 0.2, Z: 0.3}, Gain: 10},
			{PanInfoExists: false},
			{PanInfoExists: true, Position: Position{X: 0.9, Y: 0.8, Z: 0.7}, Gain: 20},
		},
	}
	w := bitstream.NewWriter()
	if err := o.WritePayload(w); err != nil {
		t.Fatalf("WritePayload: %v", err)
	}
	w.Flush()

	r := bitstream.NewReader(w.Bytes())
	got, err := parseObjectDefinitionPayload(r, len(o.SubBlocks))
	if err != nil {
		t.Fatalf("parseObjectDefinitionPayload: %v", err)
	}
	if got.MetadataID != o.MetadataID || got.AudioDataID != o.AudioDataID {
		t.Errorf("IDs: got %+v", got)
	}
	if got.AudioDescription.Text != o.AudioDescription.Text {
		t.Errorf("AudioDescription.Text: got %q want %q", got.AudioDescription.Text, o.AudioDescription.Text)
	}
	if len(got.SubBlocks) != len(o.SubBlocks) {
		t.Fatalf("sub-block count: got %d want %d", len(got.SubBlocks), len(o.SubBlocks))
	}
	if !got.SubBlocks[0].PanInfoExists {
		t.Errorf("sub-block 0 pan info should be implicitly present")
	}
	if got.SubBlocks[1].PanInfoExists {
		t.Errorf("sub-block 1 pan info should be absent")
	}
	if got.SubBlocks[2].Gain != 20 {
		t.Errorf("sub-block 2 gain: got %d want 20", got.SubBlocks[2].Gain)
	}
}

func TestObjectDefinitionActiveVariant(t *testing.T) {
	child := &ObjectDefinition{MetadataID: 2, ConditionalObject: true, UseCase: UseCase5_1}
	parent := &ObjectDefinition{MetadataID: 1, SubElements: []SubElement{child}}
	if got := parent.ActiveVariant(UseCase5_1); got != child {
		t.Errorf("expected child variant for matching use-case, got %v", got)
	}
	if got := parent.ActiveVariant(UseCase9_1OH); got != parent {
		t.Errorf("expected fallback to parent for non-matching use-case, got %v", got)
	}
}

func TestObjectDefinitionZone19(t *testing.T) {
	zone := &ObjectZone19{}
	o := &ObjectDefinition{SubElements: []SubElement{zone}}
	if got := o.Zone19(); got != zone {
		t.Errorf("Zone19() = %v, want %v", got, zone)
	}
	empty := &ObjectDefinition{}
	if got := empty.Zone19(); got != nil {
		t.Errorf("Zone19() on object with none = %v, want nil", got)
	}
}
