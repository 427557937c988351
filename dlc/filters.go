/*
NAME
  filters.go

DESCRIPTION
  filters.go carries the normative fixed-point filter coefficients
  verbatim: the 129-tap Q18 96kHz anti-aliasing LPF (group delay 64
  samples) and the 33-tap Q15 half-band interpolator (group delay 16
  samples), plus the integer convolution routines that apply them.
  Their frequency response is verified in filters_test.go via an FFT of
  the impulse response.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

// lpfCoeffQ18 is the 129-tap, linear-phase, Q18 fixed-point 96kHz anti-
// aliasing low-pass filter.
var lpfCoeffQ18 = [129]int64{
	51, 215, 187, -26, -148, 26, 169, -21, -207, 10, 253, 9, -306, -35, 365, 71,
	-431, -117, 501, 175, -578, -246, 659, 333, -745, -436, 835, 559, -928, -703, 1023, 872,
	-1121, -1069, 1219, 1299, -1317, -1565, 1415, 1876, -1510, -2239, 1603, 2668, -1691, -3178, 1775, 3796,
	-1853, -4560, 1924, 5533, -1987, -6824, 2042, 8640, -2088, -11424, 2124, 16331, -2150, -27599, 2166, 83371,
	128901,
	83371, 2166, -27599, -2150, 16331, 2124, -11424, -2088, 8640, 2042, -6824, -1987, 5533, 1924, -4560, -1853,
	3796, 1775, -3178, -1691, 2668, 1603, -2239, -1510, 1876, 1415, -1565, -1317, 1299, 1219, -1069, -1121,
	872, 1023, -703, -928, 559, 835, -436, -745, 333, 659, -246, -578, 175, 501, -117, -431,
	71, 365, -35, -306, 9, 253, 10, -207, -21, 169, 26, -148, -26, 187, 215, 51,
}

// interpCoeffQ15 is the 33-tap Q15 half-band interpolator; even-indexed off-centre taps are zero.
var interpCoeffQ15 = [33]int64{
	0, -138, 0, 305, 0, -618, 0, 1128, 0, -1952, 0, 3377, 0, -6450, 0, 20688,
	32767,
	20688, 0, -6450, 0, 3377, 0, -1952, 0, 1128, 0, -618, 0, 305, 0, -138, 0,
}

const (
	lpfCoeffBits    = 18
	interpCoeffBits = 15

	// lpfGroupDelay and interpGroupDelay are the filters' fixed per-stage
	// delays; their sum (80) is the cross-frame realignment delay applied
	// to the original 96kHz signal in the band-split path.
	lpfGroupDelay    = len(lpfCoeffQ18) / 2
	interpGroupDelay = len(interpCoeffQ15) / 2
	totalGroupDelay  = lpfGroupDelay + interpGroupDelay
)

// convolveLPF computes one output sample of the 129-tap LPF from the last
// len(lpfCoeffQ18) samples of history; the caller (see band.go) prepends
// the previous call's trailing len(lpfCoeffQ18)-1 input samples. Strictly
// integer Q18 arithmetic.
func convolveLPF(history []int32) int32 {
	var acc int64
	n := len(lpfCoeffQ18)
	for i := 0; i < n; i++ {
		acc += lpfCoeffQ18[i] * int64(history[len(history)-n+i])
	}
	return int32(acc >> lpfCoeffBits)
}

// convolveInterp runs the 33-tap half-band interpolator the same way.
func convolveInterp(history []int32) int32 {
	var acc int64
	n := len(interpCoeffQ15)
	for i := 0; i < n; i++ {
		acc += interpCoeffQ15[i] * int64(history[len(history)-n+i])
	}
	return int32(acc >> interpCoeffBits)
}
