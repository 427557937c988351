/*
NAME
  position.go

DESCRIPTION
  position.go implements the unit-cube position quantization: each axis
  is the unsigned 16-bit integer round(value * 65535); the decoder inverts
  by code / 65535.0.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "math"

// Position is a point in the [0,1]^3 unit-cube authoring coordinate space.
type Position struct {
	X, Y, Z float64
}

// QuantizePosAxis encodes a single axis value in [0,1] as a 16-bit code.
func QuantizePosAxis(v float64) uint16 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint16(math.Round(v * 65535))
}

// DequantizePosAxis decodes a 16-bit code back to a [0,1] axis value.
func DequantizePosAxis(code uint16) float64 {
	return float64(code) / 65535.0
}

// QuantizePosition encodes a Position as its three 16-bit axis codes.
func QuantizePosition(p Position) (x, y, z uint16) {
	return QuantizePosAxis(p.X), QuantizePosAxis(p.Y), QuantizePosAxis(p.Z)
}

// DequantizePosition decodes three 16-bit axis codes back to a Position.
func DequantizePosition(x, y, z uint16) Position {
	return Position{X: DequantizePosAxis(x), Y: DequantizePosAxis(y), Z: DequantizePosAxis(z)}
}
