/*
NAME
  simple.go

DESCRIPTION
  simple.go implements the 48 kHz predictorless simple encode path:
  split the frame into K uniform sub-blocks, then for each sub-block find
  the minimum two's-complement bit width covering every sample and emit
  that width (6 bits) followed by width-bit samples (width 0 denotes a
  silent sub-block).

  The step-width-per-chunk encode loop follows the same shape as an
  ADPCM encoder, generalised from a fixed 4-bit nibble code to a
  per-sub-block minimum bit width.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

import (
	"github.com/pkg/errors"

	"github.com/immaudio/iab/element"
)

// EncodeSimple48k encodes a 48kHz frame's samples into sub-blocks using the
// predictorless simple path. frameSamples must equal len(samples).
func EncodeSimple48k(samples []int32) ([]element.DLCSubBlock, error) {
	k, subSize, err := SimpleSubBlockLayout(len(samples))
	if err != nil {
		return nil, err
	}
	out := make([]element.DLCSubBlock, k)
	for i := 0; i < k; i++ {
		chunk := samples[i*subSize: (i+1)*subSize]
		width := minBitWidth(chunk)
		out[i] = element.DLCSubBlock{
			Kind: element.RegionPCM,
			PCM: element.PCMRegion{
				BitDepth: uint8(width),
				Samples:  append([]int32(nil), chunk...),
			},
		}
	}
	return out, nil
}

// DecodeSimple48k reconstructs a 48kHz frame's samples from its sub-blocks.
// Predictor regions are reconstructed via SynthesizePredictor.
func DecodeSimple48k(subBlocks []element.DLCSubBlock) ([]int32, error) {
	var out []int32
	for _, sb := range subBlocks {
		switch sb.Kind {
		case element.RegionPCM:
			out = append(out, sb.PCM.Samples...)
		case element.RegionPredictor:
			samples, err := SynthesizePredictor(sb.Predictor)
			if err != nil {
				return nil, err
			}
			out = append(out, samples...)
		default:
			return nil, errors.Wrapf(ErrDataInvalid, "unknown region kind %d", sb.Kind)
		}
	}
	return out, nil
}

// minBitWidth returns the minimum two's-complement bit width (0..32)
// needed to represent every value in samples; 0 iff every sample is zero.
func minBitWidth(samples []int32) int {
	width := 0
	for _, s := range samples {
		w := bitWidthOf(s)
		if w > width {
			width = w
		}
	}
	return width
}

// bitWidthOf returns the minimum number of bits needed to represent s as a
// two's-complement signed integer: 0 for s == 0, else 1 + the index of the
// highest bit that differs from the sign bit.
func bitWidthOf(s int32) int {
	if s == 0 {
		return 0
	}
	var u uint32
	if s < 0 {
		u = uint32(^s) // magnitude of (s+1), i.e. one less than |s|.
	} else {
		u = uint32(s)
	}
	bits := 1 // sign bit.
	for u != 0 {
		bits++
		u >>= 1
	}
	return bits
}
