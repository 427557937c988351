/*
NAME
  objectsubblock.go

DESCRIPTION
  objectsubblock.go implements the per-sub-block pan state: pan-info-
  exists (implied 1 for sub-block 0), position (three 16-bit unit-cube
  quantizations), object-gain (10-bit code), snap, zone-gains-9, spread,
  and decorrelation-coefficient fields.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// SpreadMode identifies how an object's spread values are interpreted.
type SpreadMode uint8

const (
	SpreadLow1D  SpreadMode = 0
	SpreadHigh1D SpreadMode = 1
	SpreadHigh3D SpreadMode = 2
)

// Spread is an object's extent specification.
type Spread struct {
	Mode   SpreadMode
	Values [3]float64 // 1 value for *1D modes, 3 for High3D.
}

// DecorPrefix identifies an object's decorrelation-coefficient class.
type DecorPrefix uint8

const (
	DecorNone     DecorPrefix = 0
	DecorMax      DecorPrefix = 1
	DecorReserved DecorPrefix = 2
)

// Decor is an object's decorrelation directive.
type Decor struct {
	Prefix      DecorPrefix
	ValueExists bool
	Value       uint8
}

// Snap is an object's speaker-snap directive.
type Snap struct {
	Present   bool
	Tolerance uint16 // 12-bit code, numerator over 4095.
}

// ZoneGains9 holds the nine per-octant gain multipliers.
type ZoneGains9 struct {
	Enabled bool
	Gains   [9]uint8 // 2-bit codes, 0..3.
}

// ObjectSubBlock is one panning sub-block's pan state for an object.
type ObjectSubBlock struct {
	PanInfoExists bool
	Position      Position
	Gain          uint16 // 10-bit code.
	Snap          Snap
	Zones         ZoneGains9
	Spread        Spread
	Decor         Decor
}

// Kind implements SubElement. ObjectSubBlock is never packed as a
// standalone tagged element (it is always inline within ObjectDefinition's
// payload); the tag exists only for internal bookkeeping consistency.
func (ObjectSubBlock) Kind() Kind { return KindObjectSubBlock }

// WritePayload writes the sub-block body. It is called directly by
// ObjectDefinition, not through packElement/packSubElement, since
// ObjectSubBlocks are not independently tagged on the wire.
func (sb *ObjectSubBlock) WritePayload(w *bitstream.Writer) error {
	if !sb.PanInfoExists {
		return nil
	}
	x, y, z := QuantizePosition(sb.Position)
	if err := w.Write(uint64(x), 16); err != nil {
		return err
	}
	if err := w.Write(uint64(y), 16); err != nil {
		return err
	}
	if err := w.Write(uint64(z), 16); err != nil {
		return err
	}
	if err := w.Write(uint64(sb.Gain), 10); err != nil {
		return err
	}
	if err := w.WriteBool(sb.Snap.Present); err != nil {
		return err
	}
	if sb.Snap.Present {
		if err := w.Write(uint64(sb.Snap.Tolerance), 12); err != nil {
			return err
		}
	}
	if err := w.WriteBool(sb.Zones.Enabled); err != nil {
		return err
	}
	if sb.Zones.Enabled {
		for _, g := range sb.Zones.Gains {
			if err := w.Write(uint64(g), 2); err != nil {
				return err
			}
		}
	}
	if err := writeSpread(w, sb.Spread); err != nil {
		return err
	}
	return writeDecor(w, sb.Decor)
}

func writeSpread(w *bitstream.Writer, s Spread) error {
	if err := w.Write(uint64(s.Mode), 2); err != nil {
		return err
	}
	n := 1
	if s.Mode == SpreadHigh3D {
		n = 3
	}
	for i := 0; i < n; i++ {
		code := QuantizePosAxis(s.Values[i])
		if err := w.Write(uint64(code), 16); err != nil {
			return err
		}
	}
	return nil
}

func readSpread(r *bitstream.Reader) (Spread, error) {
	modeCode, err := r.Read(2)
	if err != nil {
		return Spread{}, err
	}
	s := Spread{Mode: SpreadMode(modeCode)}
	n := 1
	if s.Mode == SpreadHigh3D {
		n = 3
	}
	for i := 0; i < n; i++ {
		code, err := r.Read(16)
		if err != nil {
			return Spread{}, err
		}
		s.Values[i] = DequantizePosAxis(uint16(code))
	}
	return s, nil
}

func writeDecor(w *bitstream.Writer, d Decor) error {
	if err := w.Write(uint64(d.Prefix), 2); err != nil {
		return err
	}
	if err := w.WriteBool(d.ValueExists); err != nil {
		return err
	}
	if d.ValueExists {
		return w.Write(uint64(d.Value), 8)
	}
	return nil
}

func readDecor(r *bitstream.Reader) (Decor, error) {
	prefix, err := r.Read(2)
	if err != nil {
		return Decor{}, err
	}
	exists, err := r.ReadBool()
	if err != nil {
		return Decor{}, err
	}
	d := Decor{Prefix: DecorPrefix(prefix), ValueExists: exists}
	if exists {
		v, err := r.Read(8)
		if err != nil {
			return Decor{}, err
		}
		d.Value = uint8(v)
	}
	return d, nil
}

// readObjectSubBlock reads one sub-block, given whether pan-info-exists is
// implicitly true (sub-block 0) or must be read from the stream.
func readObjectSubBlock(r *bitstream.Reader, impliedPresent bool) (ObjectSubBlock, error) {
	var sb ObjectSubBlock
	if impliedPresent {
		sb.PanInfoExists = true
	} else {
		exists, err := r.ReadBool()
		if err != nil {
			return ObjectSubBlock{}, err
		}
		sb.PanInfoExists = exists
	}
	if !sb.PanInfoExists {
		return sb, nil
	}
	x, err := r.Read(16)
	if err != nil {
		return ObjectSubBlock{}, err
	}
	y, err := r.Read(16)
	if err != nil {
		return ObjectSubBlock{}, err
	}
	z, err := r.Read(16)
	if err != nil {
		return ObjectSubBlock{}, err
	}
	sb.Position = DequantizePosition(uint16(x), uint16(y), uint16(z))
	gain, err := r.Read(10)
	if err != nil {
		return ObjectSubBlock{}, err
	}
	sb.Gain = uint16(gain)
	snapPresent, err := r.ReadBool()
	if err != nil {
		return ObjectSubBlock{}, err
	}
	sb.Snap.Present = snapPresent
	if snapPresent {
		tol, err := r.Read(12)
		if err != nil {
			return ObjectSubBlock{}, err
		}
		sb.Snap.Tolerance = uint16(tol)
	}
	zonesEnabled, err := r.ReadBool()
	if err != nil {
		return ObjectSubBlock{}, err
	}
	sb.Zones.Enabled = zonesEnabled
	if zonesEnabled {
		for i := range sb.Zones.Gains {
			g, err := r.Read(2)
			if err != nil {
				return ObjectSubBlock{}, err
			}
			sb.Zones.Gains[i] = uint8(g)
		}
	}
	sb.Spread, err = readSpread(r)
	if err != nil {
		return ObjectSubBlock{}, err
	}
	sb.Decor, err = readDecor(r)
	if err != nil {
		return ObjectSubBlock{}, err
	}
	return sb, nil
}

// writeObjectSubBlockHeader writes the pan-info-exists bit for sub-blocks
// after the first (sub-block 0's bit is implicit and never written).
func writeObjectSubBlockHeader(w *bitstream.Writer, sb *ObjectSubBlock, implied bool) error {
	if implied {
		return nil
	}
	return w.WriteBool(sb.PanInfoExists)
}
