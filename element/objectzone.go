/*
NAME
  objectzone.go

DESCRIPTION
  objectzone.go implements the ObjectZoneDefinition19 sub-element: the
  19-zone variant of zone gain control, carried as an ObjectDefinition
  child rather than the 9-octant zone-gains-9 field inline in each
  sub-block. Activation of this sub-element is not rendered; the
  renderer skips and warns (iablog.WarnZoneUnsupported) whenever one is
  present and would otherwise be active.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// ObjectZone19 carries per-zone gain multipliers across 19 named zones, one
// set per panning sub-block.
type ObjectZone19 struct {
	SubBlockGains [][19]uint8 // one row per panning sub-block, 2-bit codes.
}

// Kind implements SubElement.
func (z *ObjectZone19) Kind() Kind { return KindObjectZone19 }

// WritePayload implements SubElement.
func (z *ObjectZone19) WritePayload(w *bitstream.Writer) error {
	if err := bitstream.WritePlex(w, 8, uint64(len(z.SubBlockGains))); err != nil {
		return err
	}
	for _, row := range z.SubBlockGains {
		for _, g := range row {
			if err := w.Write(uint64(g), 2); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseObjectZone19Payload(r *bitstream.Reader) (*ObjectZone19, error) {
	n, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	z := &ObjectZone19{SubBlockGains: make([][19]uint8, n)}
	for i := range z.SubBlockGains {
		for j := 0; j < 19; j++ {
			g, err := r.Read(2)
			if err != nil {
				return nil, err
			}
			z.SubBlockGains[i][j] = uint8(g)
		}
	}
	return z, nil
}
