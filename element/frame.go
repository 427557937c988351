/*
NAME
  frame.go

DESCRIPTION
  frame.go implements the Frame element's payload: version (8 bits),
  sample-rate code (4 bits), frame-rate code (4 bits), max-rendered
  (Plex(8)), sub-element count (Plex(8)), then the sub-elements
  themselves. Sub-element dispatch by tag is table-driven; unrecognised
  tags are counted and skipped rather than raised as an error.

  The dispatch loop follows the same payload/table shape as a PSI table
  row, generalised from a fixed two-field row to an arbitrary,
  tag-dispatched element list.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import (
	"github.com/pkg/errors"

	"github.com/immaudio/iab/bitstream"
)

// CurrentMajorVersion is the version byte written by Frame encoders.
const CurrentMajorVersion uint8 = 1

// SubElement is any element kind that can appear directly beneath a Frame.
type SubElement interface {
	Kind() Kind
	WritePayload(w *bitstream.Writer) error
}

// Frame is the top-level decoded entity.
type Frame struct {
	Version     uint8
	SampleRate  SampleRate
	FrameRate   FrameRate
	MaxRendered uint32
	SubElements []SubElement

	// SkippedSubElements counts sub-elements whose tag was not recognised
	// during parse; they are preserved as Unknown in SubElements so a
	// caller can inspect or re-serialise them unchanged.
	SkippedSubElements int
}

// WritePayload writes the Frame element's payload (not its tag/length
// envelope — callers go through Pack, which wraps this with packElement).
func (f *Frame) WritePayload(w *bitstream.Writer) error {
	if err := w.Write(uint64(f.Version), 8); err != nil {
		return err
	}
	srCode, ok := sampleRateCode[f.SampleRate]
	if !ok {
		return errors.Wrapf(ErrDataInvalid, "unknown sample rate %d", f.SampleRate)
	}
	if err := w.Write(srCode, 4); err != nil {
		return err
	}
	frCode, ok := frameRateCode[f.FrameRate]
	if !ok {
		return errors.Wrapf(ErrDataInvalid, "unknown frame rate %d", f.FrameRate)
	}
	if err := w.Write(frCode, 4); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(f.MaxRendered)); err != nil {
		return err
	}
	if err := bitstream.WritePlex(w, 8, uint64(len(f.SubElements))); err != nil {
		return err
	}
	for _, sub := range f.SubElements {
		if err := packSubElement(w, sub); err != nil {
			return err
		}
	}
	return nil
}

// packSubElement writes one sub-element's envelope+payload. Unknown
// sub-elements re-emit their originally captured tag rather than going
// through tagOf, since KindUnknown has no fixed wire tag of its own.
func packSubElement(w *bitstream.Writer, sub SubElement) error {
	if u, ok := sub.(*Unknown); ok {
		scratch := bitstream.NewWriter()
		if err := u.WritePayload(scratch); err != nil {
			return err
		}
		if _, err := scratch.Align(); err != nil {
			return err
		}
		payload := scratch.Bytes()
		if err := bitstream.WritePlex(w, 8, u.Tag); err != nil {
			return err
		}
		if err := bitstream.WritePackedLength(w, uint32(len(payload))); err != nil {
			return err
		}
		return w.WriteAligned(payload)
	}
	return packElement(w, sub.Kind(), sub.WritePayload)
}

// Pack serialises f to a standalone byte vector: tag, PackedLength, payload.
func (f *Frame) Pack() ([]byte, error) {
	w := bitstream.NewWriter()
	if err := packElement(w, KindFrame, f.WritePayload); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ParseFrameOptions configures ParseFrame.
type ParseFrameOptions struct {
	// FailOnVersionMismatch rejects any version other than
	// CurrentMajorVersion with ErrUnsupportedVersion. Default true.
	FailOnVersionMismatch bool
}

// DefaultParseFrameOptions rejects unknown frame versions, the safe
// default for conformant streams.
func DefaultParseFrameOptions() ParseFrameOptions {
	return ParseFrameOptions{FailOnVersionMismatch: true}
}

// ErrUnsupportedVersion is returned by ParseFrame when the frame's version
// byte is not CurrentMajorVersion and FailOnVersionMismatch is set.
var ErrUnsupportedVersion = errors.New("element: unsupported frame version")

// ParseFrame reads a Frame element (tag+length envelope included) from r.
func ParseFrame(r *bitstream.Reader, opt ParseFrameOptions) (*Frame, error) {
	hdr, _, payloadEnd, err := readElementEnvelope(r)
	if err != nil {
		return nil, err
	}
	if Kind(kindOfTag[hdr.Tag]) != KindFrame {
		return nil, errors.Wrapf(ErrDataInvalid, "expected frame tag, got 0x%02x", hdr.Tag)
	}

	version, err := r.Read(8)
	if err != nil {
		return nil, err
	}
	if opt.FailOnVersionMismatch && uint8(version) != CurrentMajorVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "frame version %d", version)
	}
	srCode, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	sr, ok := codeToSampleRate[srCode]
	if !ok {
		return nil, errors.Wrapf(ErrDataInvalid, "unknown sample-rate code %d", srCode)
	}
	frCode, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	fr, ok := codeToFrameRate[frCode]
	if !ok {
		return nil, errors.Wrapf(ErrDataInvalid, "unknown frame-rate code %d", frCode)
	}
	maxRendered, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}
	subCount, err := bitstream.ReadPlex(r, 8)
	if err != nil {
		return nil, err
	}

	subBlockCount, err := SubBlockCount(fr)
	if err != nil {
		return nil, errors.Wrap(err, "frame payload")
	}

	f := &Frame{
		Version:     uint8(version),
		SampleRate:  sr,
		FrameRate:   fr,
		MaxRendered: uint32(maxRendered),
	}
	essenceCount := 0
	for i := uint64(0); i < subCount; i++ {
		sub, skipped, err := parseSubElement(r, subBlockCount)
		if err != nil {
			return f, err
		}
		if skipped {
			f.SkippedSubElements++
		}
		switch sub.(type) {
		case *AudioDataDLC, *AudioDataPCM:
			essenceCount++
			if essenceCount > MaxEssenceElements {
				return f, ErrAssetLimitExceeded
			}
		}
		f.SubElements = append(f.SubElements, sub)
	}
	return f, r.SkipTo(payloadEnd)
}

// parseSubElement reads one tagged sub-element beneath a Frame, dispatching
// by tag. Unrecognised tags are preserved as Unknown and counted as
// skipped, never raised as an error.
func parseSubElement(r *bitstream.Reader, subBlockCount int) (sub SubElement, skipped bool, err error) {
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
	case KindBedDefinition:
		sub, err = parseBedDefinitionPayload(r)
	case KindObjectDefinition:
		sub, err = parseObjectDefinitionPayload(r, subBlockCount)
	case KindAudioDataDLC:
		sub, err = parseAudioDataDLCPayload(r)
	case KindAudioDataPCM:
		sub, err = parseAudioDataPCMPayload(r)
	case KindAuthoringToolInfo:
		sub, err = parseAuthoringToolInfoPayload(r)
	case KindUserData:
		sub, err = parseUserDataPayload(r)
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

