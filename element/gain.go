/*
NAME
  gain.go

DESCRIPTION
  gain.go implements the object/channel gain quantization: a 10-bit
  logarithmic code where code 0 is unity (1.0) and codes 1..1023 map onto a
  logarithmic scale spanning [-infinity dB, +6 dB]. Round-trip is bit-exact
  on code values; applications retrieve the linear scalar via GainFromCode.

  The code table follows the same quantizer step-size lookup idiom as an
  ADPCM step table, generalised from a small linear-index step table to a
  1024-entry logarithmic gain table.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "math"

const (
	gainCodeCount = 1024
	gainCodeUnity = 0
	gainMaxDB     = 6.0
	gainFloorDB   = -144.0 // -infinity dB is represented by this practical floor.
)

// GainFromCode converts a 10-bit gain code (0..1023) to a linear scalar.
// Code 0 is exactly unity; codes 1..1023 step linearly in dB from
// gainFloorDB (approximating -infinity) to +6 dB.
func GainFromCode(code uint16) float64 {
	if code == gainCodeUnity {
		return 1.0
	}
	if code > gainCodeCount-1 {
		code = gainCodeCount - 1
	}
	// Codes 1..1023 span the dB range linearly; code 1 is the floor, 1023
	// is +6dB.
	frac := float64(code-1) / float64(gainCodeCount-2)
	db := gainFloorDB + frac*(gainMaxDB-gainFloorDB)
	return math.Pow(10, db/20)
}

// CodeFromGain converts a linear scalar to the nearest 10-bit gain code.
// An input of exactly 1.0 always maps to code 0.
func CodeFromGain(g float64) uint16 {
	if g == 1.0 {
		return gainCodeUnity
	}
	if g <= 0 {
		return 1 // floor code
	}
	db := 20 * math.Log10(g)
	if db > gainMaxDB {
		db = gainMaxDB
	}
	if db < gainFloorDB {
		db = gainFloorDB
	}
	frac := (db - gainFloorDB) / (gainMaxDB - gainFloorDB)
	code := 1 + int(math.Round(frac*float64(gainCodeCount-2)))
	if code < 1 {
		code = 1
	}
	if code > gainCodeCount-1 {
		code = gainCodeCount - 1
	}
	return uint16(code)
}
