/*
NAME
  lookup.go

DESCRIPTION
  lookup.go implements the audio-data-ID -> essence element lookup
  graph: audio-data-IDs form borrow-style references from Bed channels
  and Objects into essence elements within the same Frame, validated at
  render time. The renderer calls DecodedEssence to fetch and decode the
  samples behind any channel's or object's audio-data-ID.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import (
	"github.com/pkg/errors"

	"github.com/immaudio/iab/dlc"
	"github.com/immaudio/iab/element"
)

// ErrSilentReference is returned by DecodedEssence for audio-data-ID 0;
// callers should treat it as "no samples", not an error condition, but it
// is surfaced distinctly so renderer call sites can special-case it
// without a sentinel-zero check leaking through package boundaries.
var ErrSilentReference = errors.New("frame: audio-data-ID 0 is silence, not essence")

// DecodedEssence resolves audioDataID to its essence element within f and
// decodes it to normalised float samples in [-1, 1). bc is
// the BandCodec used for any 96kHz DLC essence's band-split decode; pass
// nil for PCM-only frames.
func (f *Frame) DecodedEssence(audioDataID uint32, bc *dlc.BandCodec) ([]float64, error) {
	if audioDataID == 0 {
		return nil, ErrSilentReference
	}
	e, ok := f.Essence(audioDataID)
	if !ok {
		return nil, errors.Wrapf(ErrDanglingReference, "audio-data-ID %d", audioDataID)
	}
	switch essence := e.(type) {
	case *element.AudioDataPCM:
		return normalizePCM(essence.Samples, element.PCMBitDepth), nil
	case *element.AudioDataDLC:
		return decodeDLCEssence(essence, bc)
	default:
		return nil, errors.Wrapf(ErrDanglingReference, "audio-data-ID %d resolves to non-essence element", audioDataID)
	}
}

func decodeDLCEssence(e *element.AudioDataDLC, bc *dlc.BandCodec) ([]float64, error) {
	samples, err := dlc.DecodeFrame(e, bc, false)
	if err != nil {
		return nil, err
	}
	return normalizePCM(samples, 24), nil
}

// normalizePCM converts bitDepth-wide two's-complement integer samples to
// float64 in [-1, 1) using the integer full scale.
func normalizePCM(samples []int32, bitDepth int) []float64 {
	scale := float64(int64(1) << (bitDepth - 1))
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / scale
	}
	return out
}
