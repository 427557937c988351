/*
NAME
  dlcessence.go

DESCRIPTION
  dlcessence.go implements the "AudioDataDLC" element: audio-data-ID,
  sample-rate code, and a per-sample-rate sub-block list, where each
  sub-block is either a predictor region (AR order, k-coefficients,
  region length) or a PCM-residual region (bit depth, raw residuals); at
  96kHz an extra extension sub-block stream is carried alongside the base
  band. The region codec itself (predictor synthesis, bit-packing)
  lives in package dlc; this file only describes the element's wire shape
  and hands decoded regions to dlc types.

  The payload follows the same elementary-stream framing idiom as an
  MPEG PES packet, generalised from a single opaque byte payload to a
  tagged region list.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// RegionKind distinguishes a DLC sub-block's two encodings.
type RegionKind uint8

const (
	RegionPredictor RegionKind = 0
	RegionPCM       RegionKind = 1
)

// PredictorRegion is an AR/lattice-coded DLC sub-block.
type PredictorRegion struct {
	Order         uint8   // 0..31, 5 bits on the wire.
	ReflectionK   []int16 // p signed Q9 10-bit reflection coefficients.
	LengthSamples uint32  // Plex(4).
	Residual      PCMRegion
}

// PCMRegion is a raw-residual DLC sub-block.
type PCMRegion struct {
	BitDepth uint8 // 0..24.
	Samples  []int32
}

// DLCSubBlock is one sub-block of a DLC essence stream: either a
// predictor region or a bare PCM-residual region.
type DLCSubBlock struct {
	Kind      RegionKind
	Predictor PredictorRegion // valid when Kind == RegionPredictor.
	PCM       PCMRegion       // valid when Kind == RegionPCM.
}

// AudioDataDLC is a DLC essence element.
type AudioDataDLC struct {
	AudioDataID uint32
	SampleRate  SampleRate
	SubBlocks   []DLCSubBlock
	// Extension carries the 96kHz-only extension sub-block stream; empty at 48kHz.
	Extension []DLCSubBlock
}

// Kind implements SubElement.
func (d *AudioDataDLC) Kind() Kind { return KindAudioDataDLC }

func writeRegion(w *bitstream.Writer, sb DLCSubBlock) error {
	if err := w.Write(uint64(sb.Kind), 1); err != nil {
		return err
	}
	if sb.Kind == RegionPredictor {
		if err := w.Write(uint64(sb.Predictor.Order), 5); err != nil {
			return err
		}
		for _, k := range sb.Predictor.ReflectionK {
			if err := w.Write(uint64(uint16(k))&0x3FF, 10); err != nil {
				return err
			}
		}
		if err := bitstream.WritePlex(w, 4, uint64(sb.Predictor.LengthSamples)); err != nil {
			return err
		}
		return writePCMRegion(w, sb.Predictor.Residual)
	}
	return writePCMRegion(w, sb.PCM)
}

func writePCMRegion(w *bitstream.Writer, p PCMRegion) error {
	if err := w.Write(uint64(p.BitDepth), 6); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(len(p.Samples))); err != nil {
		return err
	}
	if p.BitDepth == 0 {
		return nil
	}
	for _, s := range p.Samples {
		if err := w.Write(uint64(uint32(s))&((1<<p.BitDepth)-1), int(p.BitDepth)); err != nil {
			return err
		}
	}
	return nil
}

func readRegion(r *bitstream.Reader) (DLCSubBlock, error) {
	kind, err := r.Read(1)
	if err != nil {
		return DLCSubBlock{}, err
	}
	sb := DLCSubBlock{Kind: RegionKind(kind)}
	if sb.Kind == RegionPredictor {
		order, err := r.Read(5)
		if err != nil {
			return DLCSubBlock{}, err
		}
		sb.Predictor.Order = uint8(order)
		sb.Predictor.ReflectionK = make([]int16, order)
		for i := range sb.Predictor.ReflectionK {
			v, err := r.Read(10)
			if err != nil {
				return DLCSubBlock{}, err
			}
			sb.Predictor.ReflectionK[i] = signExtend(uint16(v), 10)
		}
		length, err := bitstream.ReadPlex(r, 4)
		if err != nil {
			return DLCSubBlock{}, err
		}
		sb.Predictor.LengthSamples = uint32(length)
		sb.Predictor.Residual, err = readPCMRegion(r)
		if err != nil {
			return DLCSubBlock{}, err
		}
		return sb, nil
	}
	var err2 error
	sb.PCM, err2 = readPCMRegion(r)
	return sb, err2
}

func readPCMRegion(r *bitstream.Reader) (PCMRegion, error) {
	bitDepth, err := r.Read(6)
	if err != nil {
		return PCMRegion{}, err
	}
	n, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return PCMRegion{}, err
	}
	p := PCMRegion{BitDepth: uint8(bitDepth), Samples: make([]int32, n)}
	if p.BitDepth == 0 {
		return p, nil
	}
	for i := range p.Samples {
		v, err := r.Read(int(p.BitDepth))
		if err != nil {
			return PCMRegion{}, err
		}
		shift := 32 - int(p.BitDepth)
		p.Samples[i] = int32(uint32(v)<<uint(shift)) >> uint(shift)
	}
	return p, nil
}

// signExtend sign-extends the low n bits of v (n <= 16) to a full int16.
func signExtend(v uint16, n int) int16 {
	shift := 16 - n
	return int16(v<<uint(shift)) >> uint(shift)
}

// WritePayload implements SubElement.
func (d *AudioDataDLC) WritePayload(w *bitstream.Writer) error {
	if err := bitstream.WritePlex(w, 8, uint64(d.AudioDataID)); err != nil {
		return err
	}
	srCode, ok := sampleRateCode[d.SampleRate]
	if !ok {
		return ErrDataInvalid
	}
	if err := w.Write(srCode, 4); err != nil {
		return err
	}
	if err := bitstream.WriteVector(w, d.SubBlocks, writeRegion); err != nil {
		return err
	}
	if d.SampleRate == SampleRate96k {
		return bitstream.WriteVector(w, d.Extension, writeRegion)
	}
	return nil
}

func parseAudioDataDLCPayload(r *bitstream.Reader) (*AudioDataDLC, error) {
	audioDataID, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	srCode, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	sr, ok := codeToSampleRate[srCode]
	if !ok {
		return nil, ErrDataInvalid
	}
	d := &AudioDataDLC{AudioDataID: uint32(audioDataID), SampleRate: sr}
	d.SubBlocks, err = bitstream.ReadVector(r, readRegion)
	if err != nil {
		return nil, err
	}
	if sr == SampleRate96k {
		d.Extension, err = bitstream.ReadVector(r, readRegion)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}
