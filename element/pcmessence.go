/*
NAME
  pcmessence.go

DESCRIPTION
  pcmessence.go implements the "AudioDataPCM" element: raw 24-bit linear
  essence, bit-aligned packed samples, identical in role to AudioDataDLC
  but carrying no region/predictor structure.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// PCMBitDepth is the fixed sample width of AudioDataPCM essence.
const PCMBitDepth = 24

// AudioDataPCM is a raw linear-PCM essence element.
type AudioDataPCM struct {
	AudioDataID uint32
	Samples     []int32 // each in [-2^23, 2^23-1].
}

// Kind implements SubElement.
func (p *AudioDataPCM) Kind() Kind { return KindAudioDataPCM }

// WritePayload implements SubElement.
func (p *AudioDataPCM) WritePayload(w *bitstream.Writer) error {
	if err := bitstream.WritePlex(w, 8, uint64(p.AudioDataID)); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(len(p.Samples))); err != nil {
		return err
	}
	for _, s := range p.Samples {
		if err := w.Write(uint64(uint32(s))&0xFFFFFF, PCMBitDepth); err != nil {
			return err
		}
	}
	return nil
}

func parseAudioDataPCMPayload(r *bitstream.Reader) (*AudioDataPCM, error) {
	audioDataID, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	n, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	p := &AudioDataPCM{AudioDataID: uint32(audioDataID), Samples: make([]int32, n)}
	for i := range p.Samples {
		v, err := r.Read(PCMBitDepth)
		if err != nil {
			return nil, err
		}
		p.Samples[i] = int32(uint32(v)<<8) >> 8
	}
	return p, nil
}
