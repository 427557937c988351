/*
NAME
  objectsubblock_test.go

DESCRIPTION
  objectsubblock_test.go tests ObjectSubBlock round-trip for sub-block 0
  (implied pan-info-exists) and a later sub-block (explicit bit), plus the
  spread and decor sub-fields.

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

func TestObjectSubBlockRoundTripImplied(t *testing.T) {
	sb := &ObjectSubBlock{
		PanInfoExists: true,
		Position:      Position{X: 0.25, Y: 0.5, Z: 0.75},
		Gain:          300,
		Snap:          Snap{Present: true, Tolerance: 100},
		Zones:         ZoneGains9{Enabled: true, Gains: [9]uint8{0, 1, 2, 3, 0, 1, 2, 3, 0}},
		Spread:        Spread{Mode: SpreadHigh1D, Values: [3]float64{0.1}},
		Decor:         Decor{Prefix: DecorMax, ValueExists: true, Value: 42},
	}
	w := bitstream.NewWriter()
	if err := sb.WritePayload(w); err != nil {
		t.Fatalf("WritePayload: %v", err)
	}
	w.Flush()

	r := bitstream.NewReader(w.Bytes())
	got, err := readObjectSubBlock(r, true)
	if err != nil {
		t.Fatalf("readObjectSubBlock: %v", err)
	}
	if !got.PanInfoExists {
		t.Fatalf("PanInfoExists lost on implied sub-block")
	}
	if got.Gain != sb.Gain {
		t.Errorf("Gain: got %d want %d", got.Gain, sb.Gain)
	}
	if got.Snap != sb.Snap {
		t.Errorf("Snap: got %+v want %+v", got.Snap, sb.Snap)
	}
	if got.Zones != sb.Zones {
		t.Errorf("Zones: got %+v want %+v", got.Zones, sb.Zones)
	}
	if got.Decor != sb.Decor {
		t.Errorf("Decor: got %+v want %+v", got.Decor, sb.Decor)
	}
	if got.Spread.Mode != sb.Spread.Mode {
		t.Errorf("Spread.Mode: got %v want %v", got.Spread.Mode, sb.Spread.Mode)
	}
}

func TestObjectSubBlockExplicitPanInfoAbsent(t *testing.T) {
	sb := &ObjectSubBlock{PanInfoExists: false}
	w := bitstream.NewWriter()
	if err := writeObjectSubBlockHeader(w, sb, false); err != nil {
		t.Fatalf("writeObjectSubBlockHeader: %v", err)
	}
	if err := sb.WritePayload(w); err != nil {
		t.Fatalf("WritePayload: %v", err)
	}
	w.Flush()

	r := bitstream.NewReader(w.Bytes())
	got, err := readObjectSubBlock(r, false)
	if err != nil {
		t.Fatalf("readObjectSubBlock: %v", err)
	}
	if got.PanInfoExists {
		t.Fatalf("expected PanInfoExists false, got true")
	}
}

func TestSpreadHigh3DRoundTrip(t *testing.T) {
	s := Spread{Mode: SpreadHigh3D, Values: [3]float64{0.1, 0.2, 0.3}}
	w := bitstream.NewWriter()
	if err := writeSpread(w, s); err != nil {
		t.Fatalf("writeSpread: %v", err)
	}
	w.Flush()

	r := bitstream.NewReader(w.Bytes())
	got, err := readSpread(r)
	if err != nil {
		t.Fatalf("readSpread: %v", err)
	}
	const tol = 1e-4
	for i := 0; i < 3; i++ {
		if d := got.Values[i] - s.Values[i]; d > tol || d < -tol {
			t.Errorf("Values[%d]: got %v want %v", i, got.Values[i], s.Values[i])
		}
	}
}
