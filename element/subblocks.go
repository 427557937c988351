/*
NAME
  subblocks.go

DESCRIPTION
  subblocks.go implements the sub-block counts table (derived from
  frame-rate: 8 for 24/23.976/48/96, 10 for 25/50/100, 6 for 30/60/120) and
  the irregular 23.976fps sample layout.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/pkg/errors"

// FrameRate identifies one of the ST 2098-2 frame rates.
type FrameRate uint8

// Frame rates.
const (
	FrameRate23_976 FrameRate = iota
	FrameRate24
	FrameRate25
	FrameRate30
	FrameRate48
	FrameRate50
	FrameRate60
	FrameRate96
	FrameRate100
	FrameRate120
)

// SampleRate identifies one of the two supported PCM sample rates.
type SampleRate uint32

// Supported sample rates.
const (
	SampleRate48k SampleRate = 48000
	SampleRate96k SampleRate = 96000
)

// SubBlockCount returns the number of panning/remap sub-blocks per frame
// for the given frame rate.
func SubBlockCount(r FrameRate) (int, error) {
	switch r {
	case FrameRate24, FrameRate23_976, FrameRate48, FrameRate96:
		return 8, nil
	case FrameRate25, FrameRate50, FrameRate100:
		return 10, nil
	case FrameRate30, FrameRate60, FrameRate120:
		return 6, nil
	default:
		return 0, errors.Errorf("element: unknown frame rate code %d", r)
	}
}

// subBlockSamples2398At48k is the irregular per-sub-block sample layout
// used at 23.976fps / 48kHz.
var subBlockSamples2398At48k = [8]int{250, 250, 250, 250, 250, 250, 250, 252}

// SubBlockSampleLayout returns the number of PCM samples in each sub-block
// of a frame at the given frame rate and sample rate. Every rate other
// than 23.976fps is uniform (all sub-blocks equal size).
func SubBlockSampleLayout(r FrameRate, sr SampleRate, frameSamples int) ([]int, error) {
	n, err := SubBlockCount(r)
	if err != nil {
		return nil, err
	}
	if r == FrameRate23_976 {
		if sr != SampleRate48k {
			return nil, errors.Errorf("element: 23.976fps sub-block layout only defined at 48kHz")
		}
		out := make([]int, n)
		copy(out, subBlockSamples2398At48k[:])
		return out, nil
	}
	if frameSamples%n != 0 {
		return nil, errors.Errorf("element: frame of %d samples does not divide evenly into %d sub-blocks", frameSamples, n)
	}
	per := frameSamples / n
	out := make([]int, n)
	for i := range out {
		out[i] = per
	}
	return out, nil
}

// frameRateCode/sampleRateCode map the enum values to their 4-bit / 4-bit
// wire codes used by the Frame element header. Code 1 is reserved
// (unused by any FrameRate constant here) to keep 24fps at code 2.
var frameRateCode = map[FrameRate]uint64{
	FrameRate23_976: 0,
	FrameRate24:     2,
	FrameRate25:     3,
	FrameRate30:     4,
	FrameRate48:     5,
	FrameRate50:     6,
	FrameRate60:     7,
	FrameRate96:     8,
	FrameRate100:    9,
	FrameRate120:    10,
}

var codeToFrameRate = func() map[uint64]FrameRate {
	m := make(map[uint64]FrameRate, len(frameRateCode))
	for k, v := range frameRateCode {
		m[v] = k
	}
	return m
}()

var sampleRateCode = map[SampleRate]uint64{
	SampleRate48k: 0,
	SampleRate96k: 1,
}

var codeToSampleRate = map[uint64]SampleRate{
	0: SampleRate48k,
	1: SampleRate96k,
}
