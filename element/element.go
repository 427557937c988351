/*
NAME
  element.go

DESCRIPTION
  element.go implements the header contract shared by every ST 2098-2
  element kind: element-ID as Plex(8), element-length as PackedLength, then
  a byte-aligned payload of exactly that many bytes. Unknown element-IDs
  are counted and skipped using the length prefix, never raised as errors.

  The envelope follows the same tag+length table-header shape as an MPEG
  PSI table, generalised from a fixed-table-ID scheme to a Plex(8)-tagged,
  arbitrarily nested element tree.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package element implements the ST 2098-2 element codec: packing and
// parsing of every element kind onto a bitstream.Reader/Writer.
package element

import (
	"github.com/pkg/errors"

	"github.com/immaudio/iab/bitstream"
)

// Kind identifies an element's payload type.
type Kind uint8

// Element kinds.
const (
	KindFrame Kind = iota + 1
	KindBedDefinition
	KindBedRemap
	KindObjectDefinition
	KindObjectSubBlock
	KindObjectZone19
	KindAudioDataDLC
	KindAudioDataPCM
	KindAuthoringToolInfo
	KindUserData
	KindUnknown
)

// tagOf is the on-the-wire element-ID for each known Kind. ObjectSubBlock
// is packed inline by its parent ObjectDefinition and never appears as a
// standalone tagged element, but is assigned a tag here for internal
// bookkeeping. ObjectZone19 travels as a tagged ObjectDefinition child.
var tagOf = map[Kind]uint64{
	KindFrame:             0x01,
	KindBedDefinition:     0x02,
	KindBedRemap:          0x03,
	KindObjectDefinition:  0x04,
	KindObjectSubBlock:    0x05,
	KindObjectZone19:      0x06,
	KindAudioDataDLC:      0x07,
	KindAudioDataPCM:      0x08,
	KindAuthoringToolInfo: 0x09,
	KindUserData:          0x0A,
}

var kindOfTag = func() map[uint64]Kind {
	m := make(map[uint64]Kind, len(tagOf))
	for k, t := range tagOf {
		m[t] = k
	}
	return m
}()

// ErrDataInvalid is returned when element contents violate an invariant.
var ErrDataInvalid = errors.New("element: data invalid")

// MaxEssenceElements bounds the number of essence elements one frame may
// carry.
const MaxEssenceElements = 128

// ErrAssetLimitExceeded is returned when a frame carries more than
// MaxEssenceElements essence elements.
var ErrAssetLimitExceeded = errors.New("element: asset limit exceeded (128)")

// Header is the decoded {tag, length} pair common to every element.
type Header struct {
	Tag    uint64
	Length uint32
}

// ReadHeader reads an element header (element-ID as Plex(8), length as
// PackedLength).
func ReadHeader(r *bitstream.Reader) (Header, error) {
	tag, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return Header{}, errors.Wrap(err, "element header tag")
	}
	length, err := bitstream.ReadPackedLength(r)
	if err != nil {
		return Header{}, errors.Wrap(err, "element header length")
	}
	return Header{Tag: tag, Length: length}, nil
}

// Unknown is the fallthrough element kind for forward-compatible payloads:
// an unrecognised tag is counted and its raw bytes kept, never raised as a
// parse error.
type Unknown struct {
	Tag   uint64
	Bytes []byte
}

// Kind reports KindUnknown regardless of the original wire tag; the tag
// itself is preserved in the Tag field for re-serialisation.
func (u *Unknown) Kind() Kind { return KindUnknown }

// WritePayload re-emits the raw bytes captured at parse time unchanged.
func (u *Unknown) WritePayload(w *bitstream.Writer) error {
	return w.WriteAligned(u.Bytes)
}

// packElement serialises a payload-producing closure into a scratch
// bitstream.Writer, then writes {tag, PackedLength(len), payload} into w.
// This is functionally equivalent to writing a placeholder length and
// back-patching it once the payload size is known, but avoids
// mutating already-written bytes by measuring the payload up front.
func packElement(w *bitstream.Writer, kind Kind, writePayload func(*bitstream.Writer) error) error {
	scratch := bitstream.NewWriter()
	if err := writePayload(scratch); err != nil {
		return err
	}
	if _, err := scratch.Align(); err != nil {
		return err
	}
	payload := scratch.Bytes()

	tag, ok := tagOf[kind]
	if !ok {
		return errors.Errorf("element: unknown kind %d", kind)
	}
	if err := bitstream.WritePlex(w, 8, tag); err != nil {
		return err
	}
	if err := bitstream.WritePackedLength(w, uint32(len(payload))); err != nil {
		return err
	}
	return w.WriteAligned(payload)
}

// skipPayload advances r past length bytes of an unrecognised or already
// fully-parsed element payload.
func skipPayload(r *bitstream.Reader, payloadStart int64, length uint32) error {
	return r.SkipTo(payloadStart + int64(length)*8)
}

// readElementEnvelope reads a header and returns the absolute bit offset at
// which its payload begins and ends, for use by skipPayload / overrun
// checks.
func readElementEnvelope(r *bitstream.Reader) (hdr Header, payloadStart, payloadEnd int64, err error) {
	hdr, err = ReadHeader(r)
	if err != nil {
		return Header{}, 0, 0, err
	}
	payloadStart = r.Pos()
	payloadEnd = payloadStart + int64(hdr.Length)*8
	return hdr, payloadStart, payloadEnd, nil
}
