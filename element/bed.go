/*
NAME
  bed.go

DESCRIPTION
  bed.go implements the "BedDefinition" payload: metadata-ID (Plex(8)),
  conditional-bed flag, optional bed-use-case, channel-count (Plex(4)),
  per-channel {channel-ID, audio-data-ID, channel-gain, decor-info-exists},
  then a nested sub-element list (alternate-use-case BedDefinition variants
  and/or a BedRemap).

  The decode loop follows the same nested-table-row shape as an MPEG PMT
  table, generalised from fixed stream-type/elementary-PID rows to
  BedDefinition's variable-width channel rows plus a nested sub-element
  list.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import (
	"github.com/immaudio/iab/bitstream"
)

// BedChannel is one row of a BedDefinition's channel list.
type BedChannel struct {
	ChannelID   ChannelID
	AudioDataID uint32 // 0 means silent channel.
	Gain        uint16 // 10-bit gain code, see GainFromCode/CodeFromGain.
	DecorExists bool
}

// BedDefinition is a bed element: a named set of channels routed either
// directly to speakers or through a BedRemap.
type BedDefinition struct {
	MetadataID     uint32
	ConditionalBed bool
	UseCase        UseCase // only meaningful when ConditionalBed is set.
	Channels       []BedChannel
	// AudioDescription is not carried on the wire: the BedDefinition
	// payload has no AudioDescription field, unlike ObjectDefinition.
	// Retained on the struct for authoring-time convenience only.
	AudioDescription AudioDescription
	SubElements      []SubElement // nested BedDefinition variants and/or BedRemap.
}

// Kind implements SubElement.
func (b *BedDefinition) Kind() Kind { return KindBedDefinition }

// WritePayload implements SubElement.
func (b *BedDefinition) WritePayload(w *bitstream.Writer) error {
	if err := bitstream.WritePlex(w, 8, uint64(b.MetadataID)); err != nil {
		return err
	}
	if err := w.WriteBool(b.ConditionalBed); err != nil {
		return err
	}
	if b.ConditionalBed {
		if err := w.Write(uint64(b.UseCase), 8); err != nil {
			return err
		}
	}
	if err := bitstream.WritePlex(w, 4, uint64(len(b.Channels))); err != nil {
		return err
	}
	for _, ch := range b.Channels {
		if err := w.Write(uint64(ch.ChannelID), 8); err != nil {
			return err
		}
		if err := bitstream.WritePlex(w, 8, uint64(ch.AudioDataID)); err != nil {
			return err
		}
		if err := w.Write(uint64(ch.Gain), 10); err != nil {
			return err
		}
		if err := w.WriteBool(ch.DecorExists); err != nil {
			return err
		}
	}
	if err := bitstream.WritePlex(w, 8, uint64(len(b.SubElements))); err != nil {
		return err
	}
	for _, sub := range b.SubElements {
		if err := packSubElement(w, sub); err != nil {
			return err
		}
	}
	return nil
}

func parseBedDefinitionPayload(r *bitstream.Reader) (*BedDefinition, error) {
	metadataID, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	conditional, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	b := &BedDefinition{MetadataID: uint32(metadataID), ConditionalBed: conditional}
	if conditional {
		uc, err := r.Read(8)
		if err != nil {
			return nil, err
		}
		b.UseCase = UseCase(uc)
	}
	channelCount, err := bitstream.ReadPlex(r, 4)
	if err != nil {
		return nil, err
	}
	b.Channels = make([]BedChannel, channelCount)
	for i := range b.Channels {
		chID, err := r.Read(8)
		if err != nil {
			return nil, err
		}
		audioDataID, err := bitstream.ReadPlex(r, 8)
		if err != nil {
			return nil, err
		}
		gain, err := r.Read(10)
		if err != nil {
			return nil, err
		}
		decor, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		b.Channels[i] = BedChannel{
			ChannelID:   ChannelID(chID),
			AudioDataID: uint32(audioDataID),
			Gain:        uint16(gain),
			DecorExists: decor,
		}
	}
	subCount, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < subCount; i++ {
		sub, _, err := parseBedChildSubElement(r)
		if err != nil {
			return b, err
		}
		b.SubElements = append(b.SubElements, sub)
	}
	return b, nil
}

// parseBedChildSubElement dispatches a BedDefinition's nested sub-elements:
// BedRemap or a nested BedDefinition (alternate use-case variant). Any
// other tag is kept as an Unknown element with its raw bytes and reported
// through the skipped result; the BedDefinition parser does not add these
// to any skipped-element count.
func parseBedChildSubElement(r *bitstream.Reader) (sub SubElement, skipped bool, err error) {
	hdr, _, payloadEnd, err := readElementEnvelope(r)
	if err != nil {
		return nil, false, err
	}
	kind, known := kindOfTag[hdr.Tag]
	if !known {
		raw, err := r.ReadAligned(int(hdr.Length))
		if err != nil {
			return nil, false, err
		}
		return &Unknown{Tag: hdr.Tag, Bytes: raw}, true, nil
	}
	switch kind {
	case KindBedRemap:
		sub, err = parseBedRemapPayload(r)
	case KindBedDefinition:
		sub, err = parseBedDefinitionPayload(r)
	default:
		raw, rErr := r.ReadAligned(int(hdr.Length))
		if rErr != nil {
			return nil, false, rErr
		}
		return &Unknown{Tag: hdr.Tag, Bytes: raw}, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sub, false, r.SkipTo(payloadEnd)
}

// ActiveVariant resolves the conditional-activation rules for a
// BedDefinition's nested variants, returning the first matching child (or
// b itself if unconditional / no override applies) for the given target
// use-case.
func (b *BedDefinition) ActiveVariant(target UseCase) *BedDefinition {
	if !b.ConditionalBed {
		return resolveBedVariant(b, target)
	}
	if b.UseCase != UseCaseAlways && b.UseCase != target {
		return nil
	}
	return resolveBedVariant(b, target)
}

// resolveBedVariant looks for a nested BedDefinition child that overrides
// b for the given target; at most one may be active.
func resolveBedVariant(b *BedDefinition, target UseCase) *BedDefinition {
	for _, sub := range b.SubElements {
		child, ok := sub.(*BedDefinition)
		if !ok {
			continue
		}
		if active := child.ActiveVariant(target); active != nil {
			return active
		}
	}
	return b
}

// Remap returns b's BedRemap child, if any.
func (b *BedDefinition) Remap() *BedRemap {
	for _, sub := range b.SubElements {
		if rm, ok := sub.(*BedRemap); ok {
			return rm
		}
	}
	return nil
}
