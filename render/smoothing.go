/*
NAME
  smoothing.go

DESCRIPTION
  smoothing.go implements per-sub-block gain smoothing and the
  per-frame gain cache: a linear per-sample gain ramp slope-capped at
  1/480 with a 4800-sample ceiling and trailing hold, plus the
  cross-frame metadata-ID-keyed gain cache that seeds each sub-block's
  ramp start and is pruned of untouched entries at frame start.

  The mutex-guarded map idiom follows the same shape as a buffer pool's
  chunk bookkeeping, generalised from a byte-pool's free-list map to a
  gain-vector cache keyed by metadata-ID.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"math"
	"sync"
)

const (
	gainSlopeCap   = 1.0 / 480.0
	gainRampMaxLen = 4800
)

// GainCache maps an entity metadata-ID to its last end-of-frame gain
// vector. Safe for concurrent use: it is part of the renderer's
// mutex-protected shared state.
type GainCache struct {
	mu      sync.Mutex
	entries map[uint32][]float64
	touched map[uint32]bool
}

// NewGainCache returns an empty cache.
func NewGainCache() *GainCache {
	return &GainCache{
		entries: make(map[uint32][]float64),
		touched: make(map[uint32]bool),
	}
}

// BeginFrame evicts any entry not touched during the previous frame, then
// clears the touched set for the new frame.
func (c *GainCache) BeginFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.entries {
		if !c.touched[id] {
			delete(c.entries, id)
		}
	}
	c.touched = make(map[uint32]bool)
}

// Previous returns the entity's last end-of-frame gain vector, or nil if
// this is its first frame (caller treats a nil previous as "start from
// zero" for ramping purposes).
func (c *GainCache) Previous(metadataID uint32) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[metadataID]
}

// Commit records gains as the entity's end-of-frame gain vector and marks
// it touched for this frame's eviction pass.
func (c *GainCache) Commit(metadataID uint32, gains []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := append([]float64(nil), gains...)
	c.entries[metadataID] = cp
	c.touched[metadataID] = true
}

// RampChannel computes n per-sample gain values ramping from prev to
// target: linear slope capped at
// 1/480 per sample, ramp length extended when the direct slope would
// exceed the cap (bounded at gainRampMaxLen), with a hold at target for
// any remaining samples once the ramp completes.
func RampChannel(prev, target float64, n int) []float64 {
	out := make([]float64, n)
	delta := target - prev
	rampLen := n
	if delta != 0 {
		needed := int(math.Ceil(math.Abs(delta) / gainSlopeCap))
		if needed > rampLen {
			rampLen = needed
		}
	}
	if rampLen > gainRampMaxLen {
		rampLen = gainRampMaxLen
	}
	for i := 0; i < n; i++ {
		if rampLen == 0 || i >= rampLen {
			out[i] = target
			continue
		}
		frac := float64(i+1) / float64(rampLen)
		out[i] = prev + delta*frac
	}
	return out
}

// RampGains computes a per-sample ramp matrix (samples x channels) from
// prev to target, applying RampChannel independently per channel. prev
// may be nil or shorter than target (first frame / channel-count growth);
// missing entries ramp from 0.
func RampGains(prev, target []float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, len(target))
	}
	for ch := range target {
		p := 0.0
		if ch < len(prev) {
			p = prev[ch]
		}
		ramp := RampChannel(p, target[ch], n)
		for i := 0; i < n; i++ {
			out[i][ch] = ramp[i]
		}
	}
	return out
}

// ApplyUniform fills a per-sample gain matrix with target repeated n
// times, used when smoothing is configured off.
func ApplyUniform(target []float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = append([]float64(nil), target...)
	}
	return out
}
