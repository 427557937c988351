/*
NAME
  encode.go

DESCRIPTION
  encode.go implements the frame-level DLC essence entry points gluing
  the sub-block codec paths to the element wire shape: EncodeFrame48k
  (predictorless simple path), BandCodec.EncodeFrame96k (band-split
  base+extension path) and DecodeFrame (the inverse, with an optional
  base-band-only mode for callers wanting 48kHz output from a 96kHz
  element). Sample-count and rate validation happens here, so the
  lower-level paths can assume well-formed input.

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

// EncodeFrame48k encodes one 48kHz frame of 24-bit PCM into a complete
// AudioDataDLC element. len(samples) must match the frame rate's sample
// count exactly.
func EncodeFrame48k(audioDataID uint32, samples []int32, fr element.FrameRate) (*element.AudioDataDLC, error) {
	want, err := FrameSamples(fr, element.SampleRate48k)
	if err != nil {
		return nil, err
	}
	if len(samples) != want {
		return nil, errors.Wrapf(ErrBadParams, "frame of %d samples, want %d at this rate", len(samples), want)
	}
	subBlocks, err := EncodeSimple48k(samples)
	if err != nil {
		return nil, err
	}
	return &element.AudioDataDLC{
		AudioDataID: audioDataID,
		SampleRate:  element.SampleRate48k,
		SubBlocks:   subBlocks,
	}, nil
}

// EncodeFrame96k encodes one 96kHz frame through the band-split path into
// a complete AudioDataDLC element carrying base and extension streams.
// The codec's delay-line state persists across calls; a sequence of
// frames must go through the same BandCodec, and the caller must Reset
// before switching streams.
func (b *BandCodec) EncodeFrame96k(audioDataID uint32, samples []int32, fr element.FrameRate) (*element.AudioDataDLC, error) {
	want, err := FrameSamples(fr, element.SampleRate96k)
	if err != nil {
		return nil, err
	}
	if len(samples) != want {
		return nil, errors.Wrapf(ErrBadParams, "frame of %d samples, want %d at this rate", len(samples), want)
	}
	base, extension, err := b.EncodeBandSplit96k(samples)
	if err != nil {
		return nil, err
	}
	baseSubBlocks, err := EncodeSimple48k(base)
	if err != nil {
		return nil, err
	}
	extSubBlocks, err := EncodeSimple48k(extension)
	if err != nil {
		return nil, err
	}
	return &element.AudioDataDLC{
		AudioDataID: audioDataID,
		SampleRate:  element.SampleRate96k,
		SubBlocks:   baseSubBlocks,
		Extension:   extSubBlocks,
	}, nil
}

// DecodeFrame reconstructs an AudioDataDLC element's PCM samples. For a
// 96kHz element, bc supplies the band-recombination state; baseOnly
// requests the 48kHz base band alone, skipping upsampling and the
// extension entirely (bc may then be nil). A 48kHz element ignores both.
func DecodeFrame(e *element.AudioDataDLC, bc *BandCodec, baseOnly bool) ([]int32, error) {
	base, err := DecodeSimple48k(e.SubBlocks)
	if err != nil {
		return nil, err
	}
	if e.SampleRate != element.SampleRate96k || baseOnly {
		return base, nil
	}
	if len(e.Extension) == 0 {
		return nil, errors.Wrap(ErrDataInvalid, "96kHz element missing extension stream")
	}
	if bc == nil {
		return nil, errors.Wrap(ErrBadParams, "96kHz decode requires a BandCodec")
	}
	extension, err := DecodeSimple48k(e.Extension)
	if err != nil {
		return nil, err
	}
	return bc.DecodeBandSplit96k(base, extension)
}
