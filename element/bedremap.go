/*
NAME
  bedremap.go

DESCRIPTION
  bedremap.go implements the "BedRemap" child element: a use-case tag,
  source/destination channel counts, and one sub-block per panning
  sub-block of the frame, each either carrying a dense source→destination
  gain matrix or (remap-info-exists clear) persisting the previous
  sub-block's matrix.

  Payload layout: the use-case tag (8 bits), then the source count, the
  destination count and the sub-block count, each as Plex(8). Each
  sub-block is a 1-bit remap-info-exists flag followed, when set, by
  destination x source gains, each a 32-bit Q16 value.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// RemapSubBlock is one panning sub-block's remap matrix, or an instruction
// to persist the previous sub-block's matrix.
type RemapSubBlock struct {
	Exists bool
	// Gains[dst][src] is the scalar gain from source channel src to
	// destination channel dst. Populated only when Exists is true.
	Gains [][]float64
}

// BedRemap is BedDefinition's optional routing-matrix child.
type BedRemap struct {
	UseCase     UseCase
	SourceCount int
	DestCount   int
	SubBlocks   []RemapSubBlock
}

// Kind implements SubElement.
func (m *BedRemap) Kind() Kind { return KindBedRemap }

const remapGainFracBits = 16 // Q16 fixed-point gain matrix entries.

func writeRemapGain(w *bitstream.Writer, g float64) error {
	code := int64(g * (1 << remapGainFracBits))
	if code < 0 {
		code = 0
	}
	if code > (1<<32)-1 {
		code = (1 << 32) - 1
	}
	return w.Write(uint64(code), 32)
}

func readRemapGain(r *bitstream.Reader) (float64, error) {
	code, err := r.Read(32)
	if err != nil {
		return 0, err
	}
	return float64(code) / (1 << remapGainFracBits), nil
}

// WritePayload implements SubElement.
func (m *BedRemap) WritePayload(w *bitstream.Writer) error {
	if err := w.Write(uint64(m.UseCase), 8); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(m.SourceCount)); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(m.DestCount)); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(len(m.SubBlocks))); err != nil {
		return err
	}
	for _, sb := range m.SubBlocks {
		if err := w.WriteBool(sb.Exists); err != nil {
			return err
		}
		if !sb.Exists {
			continue
		}
		for dst := 0; dst < m.DestCount; dst++ {
			for src := 0; src < m.SourceCount; src++ {
				if err := writeRemapGain(w, sb.Gains[dst][src]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func parseBedRemapPayload(r *bitstream.Reader) (*BedRemap, error) {
	uc, err := r.Read(8)
	if err != nil {
		return nil, err
	}
	srcCount, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	dstCount, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	sbCount, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	m := &BedRemap{
		UseCase:     UseCase(uc),
		SourceCount: int(srcCount),
		DestCount:   int(dstCount),
		SubBlocks:   make([]RemapSubBlock, sbCount),
	}
	var prev [][]float64
	for i := range m.SubBlocks {
		exists, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if !exists {
			m.SubBlocks[i] = RemapSubBlock{Exists: false, Gains: prev}
			continue
		}
		gains := make([][]float64, m.DestCount)
		for dst := 0; dst < m.DestCount; dst++ {
			gains[dst] = make([]float64, m.SourceCount)
			for src := 0; src < m.SourceCount; src++ {
				g, err := readRemapGain(r)
				if err != nil {
					return nil, err
				}
				gains[dst][src] = g
			}
		}
		m.SubBlocks[i] = RemapSubBlock{Exists: true, Gains: gains}
		prev = gains
	}
	return m, nil
}
