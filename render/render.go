/*
NAME
  render.go

DESCRIPTION
  render.go implements the per-frame rendering algorithm: clear
  output buffers, decode essence, walk the frame's conditionally-active
  sub-elements (BedDefinition direct-route or BedRemap, ObjectDefinition
  VBAP panning), then run the decorrelation pass. RenderFrame is the
  single-threaded baseline; RenderFrameConcurrent runs the same
  per-element work through a Pool in two strict batches.

  The decode-then-dispatch shape (read a typed row, switch on its kind,
  accumulate into a shared output) follows the same table-driven idiom
  as an MPEG-TS table decode, generalised from fixed table rows to
  bed/object sub-elements accumulating into PCM output buffers.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/immaudio/iab/dlc"
	"github.com/immaudio/iab/element"
	"github.com/immaudio/iab/frame"
	"github.com/immaudio/iab/iablog"
)

// ErrUnsupportedRate reports a frame/sample rate combination outside the
// renderer's supported rate combinations matrix.
var ErrUnsupportedRate = errors.New("render: unsupported frame/sample rate combination")

// lfeChannelURIs names the channel labels treated as LFE for the
// "no LFE output" warning.
var lfeChannelURIs = map[string]bool{
	element.ChannelLFE.String():  true,
	element.ChannelLFE2.String(): true,
}

// Renderer holds the per-instance state persisted across frames.
type Renderer struct {
	cfg       *Config
	gainCache *GainCache
	decorr    *Decorrelator
	log       *iablog.Logger
	engines   sync.Pool
}

// NewRenderer builds a Renderer bound to cfg. log may be nil, in which
// case iablog.Discard is used.
func NewRenderer(cfg *Config, log *iablog.Logger) *Renderer {
	if log == nil {
		log = iablog.Discard
	}
	r := &Renderer{
		cfg:       cfg,
		gainCache: NewGainCache(),
		decorr:    NewDecorrelator(cfg.OutputChannels()),
		log:       log,
	}
	r.engines.New = func() interface{} { return NewEngine(cfg) }
	return r
}

// outputBuffers is the renderer's N-channel accumulation target, one
// mutex per output channel buffer; writers lock only while
// accumulating.
type outputBuffers struct {
	mu   []sync.Mutex
	data [][]float64
}

func newOutputBuffers(channels, samples int) *outputBuffers {
	o := &outputBuffers{mu: make([]sync.Mutex, channels), data: make([][]float64, channels)}
	for i := range o.data {
		o.data[i] = make([]float64, samples)
	}
	return o
}

func (o *outputBuffers) add(ch int, offset int, values []float64) {
	if ch < 0 || ch >= len(o.data) {
		return
	}
	o.mu[ch].Lock()
	defer o.mu[ch].Unlock()
	buf := o.data[ch]
	for i, v := range values {
		idx := offset + i
		if idx >= 0 && idx < len(buf) {
			buf[idx] += v
		}
	}
}

// supportedRenderRate is the renderer's frame/sample rate support
// matrix. 23.976fps is admitted here but PCM-essence-only; RenderFrame
// rejects a 23.976fps frame carrying DLC essence.
func supportedRenderRate(fr element.FrameRate, sr element.SampleRate) bool {
	switch sr {
	case element.SampleRate48k:
		switch fr {
		case element.FrameRate23_976, element.FrameRate24, element.FrameRate25,
			element.FrameRate30, element.FrameRate48, element.FrameRate60,
			element.FrameRate120:
			return true
		}
	case element.SampleRate96k:
		switch fr {
		case element.FrameRate24, element.FrameRate48:
			return true
		}
	}
	return false
}

// frameLayout validates the frame's rate combination and derives the
// sub-block sample layout plus the total output-buffer length. The total
// comes from the layout sum, not the nominal DLC frame size: the two
// differ at 23.976fps, whose irregular layout carries two extra samples.
func (r *Renderer) frameLayout(f *frame.Frame) ([]int, int, error) {
	if err := checkRenderRate(f); err != nil {
		return nil, 0, err
	}
	frameSamples, err := dlc.FrameSamples(f.FrameRate, f.SampleRate)
	if err != nil {
		return nil, 0, errors.Wrap(ErrUnsupportedRate, err.Error())
	}
	subBlockSamples, err := element.SubBlockSampleLayout(f.FrameRate, f.SampleRate, frameSamples)
	if err != nil {
		return nil, 0, err
	}
	return subBlockSamples, totalSamples(subBlockSamples), nil
}

// checkRenderRate applies the support matrix plus the 23.976fps
// PCM-essence-only restriction.
func checkRenderRate(f *frame.Frame) error {
	if !supportedRenderRate(f.FrameRate, f.SampleRate) {
		return errors.Wrapf(ErrUnsupportedRate, "%v fps at %d Hz", f.FrameRate, f.SampleRate)
	}
	if f.FrameRate == element.FrameRate23_976 {
		for _, sub := range f.SubElements {
			if _, ok := sub.(*element.AudioDataDLC); ok {
				return errors.Wrap(ErrUnsupportedRate, "23.976fps frames carry PCM essence only")
			}
		}
	}
	return nil
}

// renderContext carries the per-render, read-mostly state threaded
// through the bed/object render helpers, keeping their signatures small.
type renderContext struct {
	f         *frame.Frame
	cfg       *Config
	cache     *GainCache
	out       *outputBuffers
	decorOut  *outputBuffers
	decorFlag bool // set true if any object requested MaxDecor this frame.
	decorMu   sync.Mutex
	essence   map[uint32][]float64
	essenceMu sync.Mutex
	bandCodec *dlc.BandCodec
	log       *iablog.Logger
}

func (rc *renderContext) decodedEssence(audioDataID uint32) ([]float64, error) {
	if audioDataID == 0 {
		return nil, nil
	}
	rc.essenceMu.Lock()
	if s, ok := rc.essence[audioDataID]; ok {
		rc.essenceMu.Unlock()
		return s, nil
	}
	rc.essenceMu.Unlock()

	s, err := rc.f.DecodedEssence(audioDataID, rc.bandCodec)
	if err != nil {
		return nil, err
	}
	rc.essenceMu.Lock()
	rc.essence[audioDataID] = s
	rc.essenceMu.Unlock()
	return s, nil
}

func (rc *renderContext) markDecorActive() {
	rc.decorMu.Lock()
	rc.decorFlag = true
	rc.decorMu.Unlock()
}

// outIndex maps a physical-speaker slice index (the domain of every
// Engine gain vector and of a virtual speaker's downmix targets) to its
// configured output channel. Out-of-range indices map to -1, which
// outputBuffers.add drops.
func (rc *renderContext) outIndex(speaker int) int {
	if speaker < 0 || speaker >= len(rc.cfg.PhysicalSpeakers) {
		return -1
	}
	return rc.cfg.PhysicalSpeakers[speaker].OutputIndex
}

// RenderFrame runs the per-frame algorithm single-threaded, the
// baseline contract.
func (r *Renderer) RenderFrame(f *frame.Frame, target element.UseCase, bc *dlc.BandCodec) ([][]float64, error) {
	subBlockSamples, frameSamples, err := r.frameLayout(f)
	if err != nil {
		return nil, err
	}

	r.gainCache.BeginFrame()
	rc := &renderContext{
		f:         f,
		cfg:       r.cfg,
		cache:     r.gainCache,
		out:       newOutputBuffers(r.cfg.OutputChannels(), frameSamples),
		decorOut:  newOutputBuffers(r.cfg.OutputChannels(), frameSamples),
		essence:   make(map[uint32][]float64),
		bandCodec: bc,
		log:       r.log,
	}

	engine := NewEngine(r.cfg)
	for _, sub := range f.SubElements {
		if err := rc.renderTopLevel(engine, sub, target, subBlockSamples); err != nil {
			return nil, err
		}
	}

	if r.cfg.DecorrEnabled && rc.decorr2Active(r.decorr) {
		r.decorr.Process(rc.decorOut.data)
	}
	for ch := range rc.out.data {
		for i, v := range rc.decorOut.data[ch] {
			rc.out.data[ch][i] += v
		}
	}
	return rc.out.data, nil
}

// RenderFrameConcurrent runs the same per-frame algorithm through pool in
// two strict batches: (a) essence decode for every essence element, then
// (b) bed/object render jobs, with the producer waiting out each batch
// before the next and running decorrelation/smoothing-cache
// finalisation single-threaded afterward.
func (r *Renderer) RenderFrameConcurrent(f *frame.Frame, target element.UseCase, bc *dlc.BandCodec, pool *Pool) ([][]float64, error) {
	subBlockSamples, frameSamples, err := r.frameLayout(f)
	if err != nil {
		return nil, err
	}

	r.gainCache.BeginFrame()
	rc := &renderContext{
		f:         f,
		cfg:       r.cfg,
		cache:     r.gainCache,
		out:       newOutputBuffers(r.cfg.OutputChannels(), frameSamples),
		decorOut:  newOutputBuffers(r.cfg.OutputChannels(), frameSamples),
		essence:   make(map[uint32][]float64),
		bandCodec: bc,
		log:       r.log,
	}

	audioDataIDs := essenceIDsOf(f.SubElements)
	decodeJobs := make([]job, 0, len(audioDataIDs))
	for _, id := range audioDataIDs {
		id := id
		decodeJobs = append(decodeJobs, func() error {
			_, err := rc.decodedEssence(id)
			return err
		})
	}
	if err := pool.RunBatch(decodeJobs); err != nil {
		return nil, err
	}

	// Each render job borrows a worker-local Engine so that the
	// extended-source caches stay lock-free.
	renderJobs := make([]job, 0, len(f.SubElements))
	for _, sub := range f.SubElements {
		sub := sub
		renderJobs = append(renderJobs, func() error {
			engine := r.engines.Get().(*Engine)
			defer r.engines.Put(engine)
			return rc.renderTopLevel(engine, sub, target, subBlockSamples)
		})
	}
	if err := pool.RunBatch(renderJobs); err != nil {
		return nil, err
	}

	if r.cfg.DecorrEnabled && rc.decorr2Active(r.decorr) {
		r.decorr.Process(rc.decorOut.data)
	}
	for ch := range rc.out.data {
		for i, v := range rc.decorOut.data[ch] {
			rc.out.data[ch][i] += v
		}
	}
	return rc.out.data, nil
}

// essenceIDsOf collects the audio-data-ID of every essence element in
// the frame, feeding the essence-decode batch. Essence elements are
// always direct children of the Frame, so a flat walk covers them all.
func essenceIDsOf(subs []element.SubElement) []uint32 {
	var ids []uint32
	for _, sub := range subs {
		switch e := sub.(type) {
		case *element.AudioDataDLC:
			ids = append(ids, e.AudioDataID)
		case *element.AudioDataPCM:
			ids = append(ids, e.AudioDataID)
		}
	}
	return ids
}

// decorr2Active ticks the decorrelator's hysteresis state and reports
// whether the network should process this frame.
func (rc *renderContext) decorr2Active(d *Decorrelator) bool {
	return d.Tick(rc.decorFlag)
}

func (rc *renderContext) renderTopLevel(engine *Engine, sub element.SubElement, target element.UseCase, subBlockSamples []int) error {
	switch e := sub.(type) {
	case *element.BedDefinition:
		active := e.ActiveVariant(target)
		if active == nil {
			return nil
		}
		return rc.renderBed(engine, active, subBlockSamples)
	case *element.ObjectDefinition:
		active := e.ActiveVariant(target)
		if active == nil {
			return nil
		}
		return rc.renderObject(engine, active, subBlockSamples)
	default:
		return nil
	}
}

// renderBed implements the BedDefinition branch of the per-frame algorithm.
func (rc *renderContext) renderBed(engine *Engine, b *element.BedDefinition, subBlockSamples []int) error {
	if remap := b.Remap(); remap != nil {
		return rc.renderRemap(engine, b, remap, subBlockSamples)
	}
	frameSamples := totalSamples(subBlockSamples)
	for _, ch := range b.Channels {
		samples, err := rc.decodedEssence(ch.AudioDataID)
		if err != nil {
			return err
		}
		if samples == nil {
			continue
		}
		gain := element.GainFromCode(ch.Gain)
		uri := ch.ChannelID.String()
		if idx, ok := physicalIndex(rc.cfg, uri); ok {
			rc.out.add(idx, 0, scale(samples, gain, frameSamples))
			continue
		}
		if vs, ok := rc.cfg.virtualByURI(uri); ok {
			for _, dm := range vs.Downmix {
				rc.out.add(rc.outIndex(dm.TargetPhysicalIndex), 0, scale(samples, gain*dm.Coefficient, frameSamples))
			}
			continue
		}
		if !ch.ChannelID.IsLFE() {
			if err := rc.renderCanonicalChannel(engine, ch.ChannelID, samples, gain, frameSamples); err != nil {
				return err
			}
			continue
		}
		if !rc.cfg.hasLFEOutput(lfeChannelURIs) {
			rc.log.Warn(iablog.WarnNoLFE, zap.Uint32("metadata_id", b.MetadataID))
		}
	}
	return nil
}

// renderCanonicalChannel renders an unmapped, non-LFE bed channel as a
// unity-extent point-source object at its canonical VBAP position.
func (rc *renderContext) renderCanonicalChannel(engine *Engine, ch element.ChannelID, samples []float64, gain float64, frameSamples int) error {
	pos, ok := ch.CanonicalPosition()
	if !ok {
		return nil
	}
	gains, err := engine.PanGains(pos, 0)
	if err != nil {
		return err
	}
	scaled := scale(samples, gain, frameSamples)
	for i, g := range gains {
		if g == 0 {
			continue
		}
		rc.out.add(rc.outIndex(i), 0, scale(scaled, g, frameSamples))
	}
	return nil
}

// renderRemap implements the BedRemap branch: per sub-block, pre-fetch
// source channel gains, route each destination through the same
// physical/virtual/canonical resolution as a direct bed channel.
func (rc *renderContext) renderRemap(engine *Engine, b *element.BedDefinition, m *element.BedRemap, subBlockSamples []int) error {
	sourceSamples := make([][]float64, len(b.Channels))
	sourceGain := make([]float64, len(b.Channels))
	for i, ch := range b.Channels {
		s, err := rc.decodedEssence(ch.AudioDataID)
		if err != nil {
			return err
		}
		sourceSamples[i] = s
		sourceGain[i] = element.GainFromCode(ch.Gain)
	}

	offset := 0
	for sbIdx, n := range subBlockSamples {
		if sbIdx >= len(m.SubBlocks) {
			break
		}
		sb := m.SubBlocks[sbIdx]
		for dst := 0; dst < m.DestCount && dst < len(sb.Gains); dst++ {
			var mixed []float64
			for src := 0; src < m.SourceCount && src < len(sourceSamples); src++ {
				if sourceSamples[src] == nil {
					continue
				}
				g := sourceGain[src] * sb.Gains[dst][src]
				if g == 0 {
					continue
				}
				seg := windowOf(sourceSamples[src], offset, n)
				mixed = accumulateInto(mixed, seg, g)
			}
			if mixed == nil {
				continue
			}
			if dst >= len(b.Channels) {
				continue
			}
			destURI := channelURIForIndex(b, dst)
			if idx, ok := physicalIndex(rc.cfg, destURI); ok {
				rc.out.add(idx, offset, mixed)
				continue
			}
			if vs, ok := rc.cfg.virtualByURI(destURI); ok {
				for _, dm := range vs.Downmix {
					rc.out.add(rc.outIndex(dm.TargetPhysicalIndex), offset, scale(mixed, dm.Coefficient, len(mixed)))
				}
				continue
			}
			destChannel := b.Channels[dst].ChannelID
			if !destChannel.IsLFE() {
				if err := rc.renderCanonicalSegment(engine, destChannel, mixed, offset); err != nil {
					return err
				}
				continue
			}
			if !rc.cfg.hasLFEOutput(lfeChannelURIs) {
				rc.log.Warn(iablog.WarnNoLFE, zap.Uint32("metadata_id", b.MetadataID))
			}
		}
		offset += n
	}
	return nil
}

func (rc *renderContext) renderCanonicalSegment(engine *Engine, ch element.ChannelID, samples []float64, offset int) error {
	pos, ok := ch.CanonicalPosition()
	if !ok {
		return nil
	}
	gains, err := engine.PanGains(pos, 0)
	if err != nil {
		return err
	}
	for i, g := range gains {
		if g == 0 {
			continue
		}
		rc.out.add(rc.outIndex(i), offset, scale(samples, g, len(samples)))
	}
	return nil
}

// renderObject implements the ObjectDefinition branch: VBAP panning of
// one sub-block at a time. An object whose sub-block 0 carries
// decor_prefix == MaxDecor routes its entire frame's output into the
// decorrelation accumulator.
func (rc *renderContext) renderObject(engine *Engine, o *element.ObjectDefinition, subBlockSamples []int) error {
	samples, err := rc.decodedEssence(o.AudioDataID)
	if err != nil {
		return err
	}
	if samples == nil {
		return nil
	}
	if o.Zone19() != nil {
		rc.log.Warn(iablog.WarnZoneUnsupported, zap.Uint32("metadata_id", o.MetadataID))
	}

	dest := rc.out
	if len(o.SubBlocks) > 0 && o.SubBlocks[0].Decor.Prefix == element.DecorMax {
		rc.markDecorActive()
		if rc.cfg.DecorrEnabled {
			dest = rc.decorOut
		}
	}

	smoothing := rc.cfg.SmoothingEnabled
	prevGains := rc.cache.Previous(o.MetadataID)
	lastGains := prevGains

	offset := 0
	for i, n := range subBlockSamples {
		if i >= len(o.SubBlocks) {
			break
		}
		sb := o.SubBlocks[i]
		var target []float64
		if sb.PanInfoExists {
			target, err = rc.panSubBlock(engine, o.MetadataID, sb)
			if err != nil {
				return err
			}
			lastGains = target
		} else {
			target = lastGains
		}
		if target == nil {
			offset += n
			continue
		}

		seg := windowOf(samples, offset, n)
		var ramp [][]float64
		if smoothing {
			ramp = RampGains(prevGains, target, n)
		} else {
			ramp = ApplyUniform(target, n)
		}
		for ch := range target {
			values := make([]float64, n)
			for s := 0; s < n; s++ {
				values[s] = seg[s] * ramp[s][ch]
			}
			dest.add(rc.outIndex(ch), offset, values)
		}
		prevGains = target
		offset += n
	}
	rc.cache.Commit(o.MetadataID, lastGains)
	return nil
}

// panSubBlock computes VBAP gains for one object sub-block. The returned
// vector is physical-speaker-slice-indexed, like every Engine gain vector.
func (rc *renderContext) panSubBlock(engine *Engine, metadataID uint32, sb element.ObjectSubBlock) ([]float64, error) {
	aperture := spreadAperture(sb.Spread)
	if sb.Snap.Present && aperture == 0 {
		tolerance := float64(sb.Snap.Tolerance) / 4095.0
		if idx, ok := engine.FindSnapSpeaker(sb.Position, tolerance); ok {
			gains := make([]float64, len(rc.cfg.PhysicalSpeakers))
			gains[idx] = 1.0
			applyObjectGain(gains, sb.Gain)
			engine.ApplyZoneMask(gains, sb.Zones)
			rc.warnIfZoneEmptied(metadataID, sb.Zones, gains)
			return gains, nil
		}
	}
	gains, err := engine.PanGains(sb.Position, aperture)
	if err != nil {
		return nil, err
	}
	applyObjectGain(gains, sb.Gain)
	engine.ApplyZoneMask(gains, sb.Zones)
	rc.warnIfZoneEmptied(metadataID, sb.Zones, gains)
	return gains, nil
}

// warnIfZoneEmptied surfaces the EmptyZone warning when an enabled zone
// mask has zeroed out the whole gain vector.
func (rc *renderContext) warnIfZoneEmptied(metadataID uint32, zones element.ZoneGains9, gains []float64) {
	if !zones.Enabled {
		return
	}
	for _, g := range gains {
		if g != 0 {
			return
		}
	}
	rc.log.Warn(iablog.WarnEmptyZone, zap.Uint32("metadata_id", metadataID))
}

func applyObjectGain(gains []float64, code uint16) {
	g := element.GainFromCode(code)
	for i := range gains {
		gains[i] *= g
	}
}

// spreadAperture converts a 1D spread to an aperture angle (a 3D spread
// averages into a 1D value first), expressed in radians over the
// authoring [0,1] spread range scaled to a quarter-turn (pi/2).
func spreadAperture(s element.Spread) float64 {
	const maxAperture = 3.14159265358979 / 2
	switch s.Mode {
	case element.SpreadLow1D, element.SpreadHigh1D:
		return s.Values[0] * maxAperture
	case element.SpreadHigh3D:
		return (s.Values[0] + s.Values[1] + s.Values[2]) / 3 * maxAperture
	default:
		return 0
	}
}

func totalSamples(subBlockSamples []int) int {
	total := 0
	for _, n := range subBlockSamples {
		total += n
	}
	return total
}

func scale(samples []float64, g float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n && i < len(samples); i++ {
		out[i] = samples[i] * g
	}
	return out
}

func windowOf(samples []float64, offset, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := offset + i
		if idx < len(samples) {
			out[i] = samples[idx]
		}
	}
	return out
}

func accumulateInto(dst, seg []float64, g float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(seg))
	}
	for i, v := range seg {
		dst[i] += v * g
	}
	return dst
}

func physicalIndex(cfg *Config, uri string) (int, bool) {
	i, ok := cfg.uriIndex(uri)
	if !ok {
		return 0, false
	}
	return cfg.PhysicalSpeakers[i].OutputIndex, true
}

// channelURIForIndex resolves a BedRemap destination index back to a
// channel label: destinations are modelled positionally against the
// parent bed's channel list (same ordering as SourceCount over
// b.Channels), since the wire format carries no separate destination
// channel-ID list of its own.
func channelURIForIndex(b *element.BedDefinition, dst int) string {
	if dst < 0 || dst >= len(b.Channels) {
		return ""
	}
	return b.Channels[dst].ChannelID.String()
}
