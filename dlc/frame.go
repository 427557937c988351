/*
NAME
  frame.go

DESCRIPTION
  frame.go implements the frame sizes table: samples-per-frame by frame
  rate, at 48kHz and (doubled) at 96kHz, plus the sub-block budget used
  to pick a sub-block count for the simple encoder.

  The per-frame-rate table lookup follows the same block-size
  bookkeeping idiom as an ADPCM codec, generalised to a frame-rate-keyed
  table instead of a single fixed block size.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dlc implements the ST 2098-2 Differential Lossless Coding
// essence codec (C3): a 48kHz predictorless simple encoder plus a
// predictor-aware decoder, and the 96kHz band-split extension.
package dlc

import (
	"github.com/pkg/errors"

	"github.com/immaudio/iab/element"
)

// ErrBadParams mirrors bitstream.ErrBadParams for C3-local validation that
// doesn't touch a Reader/Writer directly.
var ErrBadParams = errors.New("dlc: bad params")

// ErrDataInvalid reports structurally-inconsistent essence.
var ErrDataInvalid = errors.New("dlc: data invalid")

// frameSamples48k is the frame sizes table at 48kHz, keyed by frame
// rate: 2000/1920/1600/1000/960/800/500/480/400 samples for
// 24/25/30/48/50/60/96/100/120 fps respectively. 23.976fps carries the
// 24fps nominal count here; its actual per-frame sample total is the sum
// of the irregular layout (element.SubBlockSampleLayout), two samples
// longer, and only PCM essence is defined at that rate.
var frameSamples48k = map[element.FrameRate]int{
	element.FrameRate23_976: 2000,
	element.FrameRate24:     2000,
	element.FrameRate25:     1920,
	element.FrameRate30:     1600,
	element.FrameRate48:     1000,
	element.FrameRate50:     960,
	element.FrameRate60:     800,
	element.FrameRate96:     500,
	element.FrameRate100:    480,
	element.FrameRate120:    400,
}

// FrameSamples returns the number of PCM samples per frame for the given
// frame rate and sample rate.
func FrameSamples(fr element.FrameRate, sr element.SampleRate) (int, error) {
	n, ok := frameSamples48k[fr]
	if !ok {
		return 0, errors.Wrapf(ErrBadParams, "unknown frame rate %d", fr)
	}
	switch sr {
	case element.SampleRate48k:
		return n, nil
	case element.SampleRate96k:
		return n * 2, nil
	default:
		return 0, errors.Wrapf(ErrBadParams, "unknown sample rate %d", sr)
	}
}

// maxSubBlockBudget bounds each sub-block to <= 256 samples.
const maxSubBlockBudget = 256

// SimpleSubBlockLayout picks K = 2^ceil(log2(frameSamples/budget)) uniform
// sub-blocks for the 48kHz simple encode path, returning the
// per-sub-block sample count. frameSamples must divide evenly by the
// resulting K.
func SimpleSubBlockLayout(frameSamples int) (k int, subBlockSize int, err error) {
	if frameSamples <= 0 {
		return 0, 0, errors.Wrap(ErrBadParams, "non-positive frame sample count")
	}
	k = 1
	for frameSamples/k > maxSubBlockBudget {
		k *= 2
	}
	for frameSamples%k != 0 {
		k *= 2
	}
	return k, frameSamples / k, nil
}
