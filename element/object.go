/*
NAME
  object.go

DESCRIPTION
  object.go implements the "ObjectDefinition" payload: metadata-ID,
  audio-data-ID, conditional-object flag, optional use-case, an
  AudioDescription, then one pan sub-block per panning sub-block of the
  frame (pan-info-exists implied 1 for sub-block 0). Nested sub-elements
  may be alternate-use-case ObjectDefinition variants and/or a single
  ObjectZoneDefinition19.

  The payload follows the same per-row variable-field decode loop used
  for BedDefinition.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// ObjectDefinition is an object element: a single moving/static audio
// source with one pan state per panning sub-block.
type ObjectDefinition struct {
	MetadataID        uint32
	AudioDataID       uint32
	ConditionalObject bool
	UseCase           UseCase
	AudioDescription  AudioDescription
	SubBlocks         []ObjectSubBlock
	SubElements       []SubElement // nested ObjectDefinition variants and/or ObjectZone19.
}

// Kind implements SubElement.
func (o *ObjectDefinition) Kind() Kind { return KindObjectDefinition }

// WritePayload implements SubElement.
func (o *ObjectDefinition) WritePayload(w *bitstream.Writer) error {
	if err := bitstream.WritePlex(w, 8, uint64(o.MetadataID)); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(o.AudioDataID)); err != nil {
		return err
	}
	if err := w.WriteBool(o.ConditionalObject); err != nil {
		return err
	}
	if o.ConditionalObject {
		if err := w.Write(uint64(o.UseCase), 8); err != nil {
			return err
		}
	}
	if err := writeAudioDescription(w, o.AudioDescription); err != nil {
		return err
	}
	for i := range o.SubBlocks {
		implied := i == 0
		if err := writeObjectSubBlockHeader(w, &o.SubBlocks[i], implied); err != nil {
			return err
		}
		if err := o.SubBlocks[i].WritePayload(w); err != nil {
			return err
		}
	}
	if err := bitstream.WritePlex(w, 8, uint64(len(o.SubElements))); err != nil {
		return err
	}
	for _, sub := range o.SubElements {
		if err := packSubElement(w, sub); err != nil {
			return err
		}
	}
	return nil
}

func writeAudioDescription(w *bitstream.Writer, d AudioDescription) error {
	if err := w.Write(uint64(d.Kind), 8); err != nil {
		return err
	}
	if err := w.WriteBool(d.TextExists); err != nil {
		return err
	}
	if d.TextExists {
		return bitstream.WritePackedString(w, d.Text)
	}
	return nil
}

func readAudioDescription(r *bitstream.Reader) (AudioDescription, error) {
	kind, err := r.Read(8)
	if err != nil {
		return AudioDescription{}, err
	}
	exists, err := r.ReadBool()
	if err != nil {
		return AudioDescription{}, err
	}
	d := AudioDescription{Kind: AudioDescriptionKind(kind), TextExists: exists}
	if exists {
		s, err := bitstream.ReadPackedString(r)
		if err != nil {
			return AudioDescription{}, err
		}
		d.Text = s
	}
	return d, nil
}

// parseObjectDefinitionPayload parses an ObjectDefinition payload, reading
// exactly subBlockCount pan sub-blocks.
func parseObjectDefinitionPayload(r *bitstream.Reader, subBlockCount int) (*ObjectDefinition, error) {
	metadataID, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	audioDataID, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	conditional, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	o := &ObjectDefinition{
		MetadataID:        uint32(metadataID),
		AudioDataID:       uint32(audioDataID),
		ConditionalObject: conditional,
	}
	if conditional {
		uc, err := r.Read(8)
		if err != nil {
			return nil, err
		}
		o.UseCase = UseCase(uc)
	}
	o.AudioDescription, err = readAudioDescription(r)
	if err != nil {
		return nil, err
	}
	o.SubBlocks = make([]ObjectSubBlock, subBlockCount)
	for i := range o.SubBlocks {
		sb, err := readObjectSubBlock(r, i == 0)
		if err != nil {
			return nil, err
		}
		o.SubBlocks[i] = sb
	}
	subCount, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < subCount; i++ {
		sub, _, err := parseObjectChildSubElement(r, subBlockCount)
		if err != nil {
			return o, err
		}
		o.SubElements = append(o.SubElements, sub)
	}
	return o, nil
}

func parseObjectChildSubElement(r *bitstream.Reader, subBlockCount int) (sub SubElement, skipped bool, err error) {
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
	case KindObjectZone19:
		sub, err = parseObjectZone19Payload(r)
	case KindObjectDefinition:
		sub, err = parseObjectDefinitionPayload(r, subBlockCount)
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

// ActiveVariant resolves the conditional-activation rules for an
// ObjectDefinition's nested variants (mirrors BedDefinition.ActiveVariant).
func (o *ObjectDefinition) ActiveVariant(target UseCase) *ObjectDefinition {
	if !o.ConditionalObject {
		return resolveObjectVariant(o, target)
	}
	if o.UseCase != UseCaseAlways && o.UseCase != target {
		return nil
	}
	return resolveObjectVariant(o, target)
}

func resolveObjectVariant(o *ObjectDefinition, target UseCase) *ObjectDefinition {
	for _, sub := range o.SubElements {
		child, ok := sub.(*ObjectDefinition)
		if !ok {
			continue
		}
		if active := child.ActiveVariant(target); active != nil {
			return active
		}
	}
	return o
}

// Zone19 returns o's ObjectZone19 child, if any.
func (o *ObjectDefinition) Zone19() *ObjectZone19 {
	for _, sub := range o.SubElements {
		if z, ok := sub.(*ObjectZone19); ok {
			return z
		}
	}
	return nil
}
