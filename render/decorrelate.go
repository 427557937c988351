/*
NAME
  decorrelate.go

DESCRIPTION
  decorrelate.go implements the decorrelation pass: a fixed all-pass
  network (per-channel delay + phase dispersion) applied to the
  decor-routed accumulator, summed into the coherent output once any
  object carries decor_prefix == MaxDecor in sub-block 0, with a
  two-frame hysteresis tail before the network resets.

  Per-channel phase-dispersion coefficients are derived from a Hamming
  window over the channel count, via go-dsp/window, and per-channel
  delays are staggered 3 samples apart from a fixed base, so that no two
  channels decorrelate identically (avoiding a comb-filtered coherent
  sum).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"github.com/mjibson/go-dsp/window"
)

// decorHysteresisFrames is the number of additional frames run after
// the last decor-active frame before the decorrelator resets.
const decorHysteresisFrames = 2

const decorBaseDelay = 37 // samples; per-channel delays fan out from here.

// Decorrelator holds the all-pass network's per-channel delay lines and
// the hysteresis tail counter.
type Decorrelator struct {
	delay         []int
	gain          []float64
	ringX         [][]float64 // per-channel input ring buffer, length delay[ch].
	ringY         [][]float64 // per-channel output ring buffer, length delay[ch].
	pos           []int
	tailRemaining int
}

// NewDecorrelator builds a network sized for numChannels output channels.
func NewDecorrelator(numChannels int) *Decorrelator {
	d := &Decorrelator{
		delay: make([]int, numChannels),
		gain:  make([]float64, numChannels),
		ringX: make([][]float64, numChannels),
		ringY: make([][]float64, numChannels),
		pos:   make([]int, numChannels),
	}
	coeffs := window.Hamming(maxInt(numChannels, 1))
	for ch := 0; ch < numChannels; ch++ {
		// Stagger each channel's delay by a few samples so that the network
		// never reduces to a single shared comb filter.
		d.delay[ch] = decorBaseDelay + ch*3
		// Hamming coefficients run ~0.08..1.0; rescale into a stable
		// allpass coefficient range (0.3..0.7) well inside the unit circle.
		d.gain[ch] = 0.3 + 0.4*coeffs[ch%len(coeffs)]
		d.ringX[ch] = make([]float64, d.delay[ch])
		d.ringY[ch] = make([]float64, d.delay[ch])
	}
	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Reset clears all delay-line state, as required once the hysteresis
// tail expires.
func (d *Decorrelator) Reset() {
	for ch := range d.ringX {
		for i := range d.ringX[ch] {
			d.ringX[ch][i] = 0
			d.ringY[ch][i] = 0
		}
		d.pos[ch] = 0
	}
	d.tailRemaining = 0
}

// Tick advances the hysteresis state for one frame and reports whether
// the network should run this frame: always true while activeThisFrame,
// and for decorHysteresisFrames frames afterward, after which the
// network resets and stays idle.
func (d *Decorrelator) Tick(activeThisFrame bool) bool {
	if activeThisFrame {
		d.tailRemaining = decorHysteresisFrames
		return true
	}
	if d.tailRemaining > 0 {
		d.tailRemaining--
		return true
	}
	d.Reset()
	return false
}

// Process runs the all-pass network over buf (channel-major sample
// slices) in place: y[n] = -g*x[n] + x[n-D] + g*y[n-D].
func (d *Decorrelator) Process(buf [][]float64) {
	for ch, samples := range buf {
		if ch >= len(d.delay) {
			continue
		}
		g := d.gain[ch]
		ringX, ringY := d.ringX[ch], d.ringY[ch]
		n := len(ringX)
		pos := d.pos[ch]
		for i, x := range samples {
			xd := ringX[pos]
			yd := ringY[pos]
			y := -g*x + xd + g*yd
			ringX[pos] = x
			ringY[pos] = y
			pos = (pos + 1) % n
			samples[i] = y
		}
		d.pos[ch] = pos
	}
}
