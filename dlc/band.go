/*
NAME
  band.go

DESCRIPTION
  band.go implements the 96 kHz band-split encode/decode: LPF + 2x
  decimation to a 48 kHz base band, 2x re-upsampling of the base band, a
  persistent 80-sample delay line that realigns the original 96 kHz input
  with the reconstructed base band, and the residual (extension)
  computation. All filter and delay-line state persists across frames in
  a BandCodec value; a sample-rate change mid-stream is the caller's
  responsibility via Reset().

  The persistent ring-buffer delay line follows the same streaming
  filter state pattern as an integer PCM filter, generalised from a
  single FIR state to the LPF-delay/interp-delay/realignment-delay
  triple this component needs.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

import "github.com/pkg/errors"

// BandCodec holds the persistent filter and delay-line state required by
// the 96 kHz band-split path. A single BandCodec must not be shared
// between concurrently-encoded audio-data-IDs; the renderer's worker pool
// allocates one per essence stream.
type BandCodec struct {
	lpfHistory    []int32 // trailing len(lpfCoeffQ18)-1 samples from the previous call.
	interpHistory []int32 // trailing len(interpCoeffQ15)-1 samples from the previous call.
	realignDelay  []int32 // ring buffer of totalGroupDelay (80) original-domain samples.
	realignPos    int
}

// NewBandCodec returns a BandCodec with zeroed delay-line state, as if at
// stream start.
func NewBandCodec() *BandCodec {
	b := &BandCodec{}
	b.Reset()
	return b
}

// Reset clears all persistent filter/delay-line state. The caller must
// call Reset explicitly before re-using a BandCodec at a different
// sample rate.
func (b *BandCodec) Reset() {
	b.lpfHistory = make([]int32, len(lpfCoeffQ18)-1)
	b.interpHistory = make([]int32, len(interpCoeffQ15)-1)
	b.realignDelay = make([]int32, totalGroupDelay)
	b.realignPos = 0
}

// EncodeBandSplit96k runs the band-split encode over one frame of 96kHz
// samples, returning the 48kHz base band (ready for EncodeSimple48k) and
// the 96kHz extension residual (also ready for EncodeSimple48k, at the
// full 96kHz sample count).
func (b *BandCodec) EncodeBandSplit96k(samples []int32) (base48k, extension96k []int32, err error) {
	if len(samples)%2 != 0 {
		return nil, nil, errors.Wrap(ErrBadParams, "96kHz frame sample count must be even")
	}

	filtered := b.runLPF(samples)
	base48k = decimateBy2(filtered)

	reconstructed := b.runInterp(base48k)
	delayedOriginal := b.runRealign(samples)

	extension96k = make([]int32, len(samples))
	for i := range extension96k {
		extension96k[i] = delayedOriginal[i] - reconstructed[i]
	}
	return base48k, extension96k, nil
}

// DecodeBandSplit96k runs the band-split decode path: upsample the
// decoded base band 2x and add the decoded extension residual, producing
// a full 96kHz-rate sample sequence.
func (b *BandCodec) DecodeBandSplit96k(base48k, extension96k []int32) ([]int32, error) {
	reconstructed := b.runInterp(base48k)
	if len(reconstructed) != len(extension96k) {
		return nil, errors.Wrapf(ErrDataInvalid, "base/extension length mismatch: %d vs %d", len(reconstructed), len(extension96k))
	}
	out := make([]int32, len(reconstructed))
	for i := range out {
		out[i] = reconstructed[i] + extension96k[i]
	}
	return out, nil
}

// runLPF filters samples through the 129-tap Q18 LPF, carrying delay-line
// history from the previous call.
func (b *BandCodec) runLPF(samples []int32) []int32 {
	buf := append(append([]int32(nil), b.lpfHistory...), samples...)
	out := make([]int32, len(samples))
	for i := range samples {
		out[i] = convolveLPF(buf[:len(b.lpfHistory)+i+1])
	}
	tail := len(buf) - (len(lpfCoeffQ18) - 1)
	if tail < 0 {
		tail = 0
	}
	b.lpfHistory = append([]int32(nil), buf[tail:]...)
	return out
}

// decimateBy2 keeps every second sample.
func decimateBy2(samples []int32) []int32 {
	out := make([]int32, len(samples)/2)
	for i := range out {
		out[i] = samples[2*i]
	}
	return out
}

// runInterp upsamples base-band samples 2x via zero-stuffing followed by
// the 33-tap Q15 half-band interpolator, carrying delay-line history
// across calls.
func (b *BandCodec) runInterp(base []int32) []int32 {
	stuffed := make([]int32, len(base)*2)
	for i, s := range base {
		stuffed[2*i] = s
	}
	buf := append(append([]int32(nil), b.interpHistory...), stuffed...)
	out := make([]int32, len(stuffed))
	for i := range stuffed {
		out[i] = convolveInterp(buf[:len(b.interpHistory)+i+1])
	}
	tail := len(buf) - (len(interpCoeffQ15) - 1)
	if tail < 0 {
		tail = 0
	}
	b.interpHistory = append([]int32(nil), buf[tail:]...)
	return out
}

// runRealign delays samples by totalGroupDelay (80) using a persistent
// ring buffer, so the original 96kHz signal lines up with the
// reconstructed base band.
func (b *BandCodec) runRealign(samples []int32) []int32 {
	out := make([]int32, len(samples))
	for i, s := range samples {
		out[i] = b.realignDelay[b.realignPos]
		b.realignDelay[b.realignPos] = s
		b.realignPos = (b.realignPos + 1) % len(b.realignDelay)
	}
	return out
}
