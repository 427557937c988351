/*
NAME
  position_test.go

DESCRIPTION
  position_test.go tests the unit-cube axis quantizer's round-trip and
  clamping behaviour.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "testing"

func TestQuantizePosAxisRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		want uint16
	}{
		{"zero", 0.0, 0},
		{"one", 1.0, 65535},
		{"half", 0.5, 32768},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := QuantizePosAxis(c.v)
			if got != c.want {
				t.Errorf("QuantizePosAxis(%v) = %d, want %d", c.v, got, c.want)
			}
			back := DequantizePosAxis(got)
			if diff := back - c.v; diff > 1e-4 || diff < -1e-4 {
				t.Errorf("round trip %v -> %d -> %v, too far off", c.v, got, back)
			}
		})
	}
}

func TestQuantizePosAxisClamps(t *testing.T) {
	if got := QuantizePosAxis(-0.5); got != 0 {
		t.Errorf("negative axis not clamped to 0: got %d", got)
	}
	if got := QuantizePosAxis(1.5); got != 65535 {
		t.Errorf("over-range axis not clamped to 65535: got %d", got)
	}
}

func TestQuantizePositionRoundTrip(t *testing.T) {
	p := Position{X: 0.1, Y: 0.9, Z: 0.25}
	x, y, z := QuantizePosition(p)
	got := DequantizePosition(x, y, z)
	const tol = 1e-4
	if d := got.X - p.X; d > tol || d < -tol {
		t.Errorf("X round trip: got %v want %v", got.X, p.X)
	}
	if d := got.Y - p.Y; d > tol || d < -tol {
		t.Errorf("Y round trip: got %v want %v", got.Y, p.Y)
	}
	if d := got.Z - p.Z; d > tol || d < -tol {
		t.Errorf("Z round trip: got %v want %v", got.Z, p.Z)
	}
}
