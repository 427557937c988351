/*
NAME
  graph.go

DESCRIPTION
  graph.go implements the frame-graph construction API: NewFrame,
  AddBed (with 5.1/7.1DS/9.1OH presets), AddObject, AddDLCEssence,
  AddPCMEssence, AddAuthoringToolInfo, AddUserData, and the
  uniqueness/linkage invariants over metadata-IDs and audio-data-IDs.

  The construction API follows the same in-memory aggregation idiom as
  MPEG PAT/PMT table building: a small typed collection assembled
  incrementally by a caller-facing API, then handed to a lower layer for
  serialisation, generalised from PAT/PMT's fixed program/stream rows to
  a richer, nested element tree.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame implements the in-memory frame graph: typed
// construction of a Frame's element tree, and the uniqueness/linkage
// invariants required before packing.
package frame

import (
	"github.com/pkg/errors"

	"github.com/immaudio/iab/element"
)

// ErrDuplicateID reports a metadata-ID or audio-data-ID collision within a
// frame.
var ErrDuplicateID = errors.New("frame: duplicate ID")

// ErrDanglingReference reports a non-zero audio-data-ID that does not
// resolve to an essence element within the same frame.
var ErrDanglingReference = errors.New("frame: dangling audio-data-ID reference")

// Layout identifies a pre-built bed channel layout for AddBed.
type Layout int

const (
	Layout5_1 Layout = iota
	Layout7_1DS
	Layout9_1OH
)

// layoutChannels lists the channel order for each preset layout.
var layoutChannels = map[Layout][]element.ChannelID{
	Layout5_1: {
		element.ChannelL, element.ChannelR, element.ChannelC, element.ChannelLFE,
		element.ChannelLss, element.ChannelRss,
	},
	Layout7_1DS: {
		element.ChannelL, element.ChannelR, element.ChannelC, element.ChannelLFE,
		element.ChannelLss, element.ChannelRss, element.ChannelLrs, element.ChannelRrs,
	},
	Layout9_1OH: {
		element.ChannelL, element.ChannelR, element.ChannelC, element.ChannelLFE,
		element.ChannelLss, element.ChannelRss, element.ChannelLrs, element.ChannelRrs,
		element.ChannelLts, element.ChannelRts,
	},
}

// Frame wraps element.Frame with the bookkeeping (ID registries) needed to
// enforce construction-time invariants. Audio-data-IDs referenced by bed
// channels and objects are borrow-style and may be shared; only essence
// elements' own IDs are unique.
type Frame struct {
	*element.Frame

	metadataIDs   map[uint32]bool
	essenceByID   map[uint32]element.SubElement
	authoringInfo *element.AuthoringToolInfo
}

// NewFrame constructs an empty frame at the given frame/sample rate.
func NewFrame(frameRate element.FrameRate, sampleRate element.SampleRate) *Frame {
	return &Frame{
		Frame: &element.Frame{
			Version:    element.CurrentMajorVersion,
			FrameRate:  frameRate,
			SampleRate: sampleRate,
		},
		metadataIDs: make(map[uint32]bool),
		essenceByID: make(map[uint32]element.SubElement),
	}
}

func (f *Frame) claimMetadataID(id uint32) error {
	if f.metadataIDs[id] {
		return errors.Wrapf(ErrDuplicateID, "metadata-ID %d", id)
	}
	f.metadataIDs[id] = true
	return nil
}

// AddBed adds a BedDefinition built from a preset layout, mapping each
// channel to an audio-data-ID via channelAudioIDs (channels absent from
// the map default to 0, silence). Unity gain, no decorrelation.
func (f *Frame) AddBed(metadataID uint32, layout Layout, channelAudioIDs map[element.ChannelID]uint32) (*element.BedDefinition, error) {
	if err := f.claimMetadataID(metadataID); err != nil {
		return nil, err
	}
	order, ok := layoutChannels[layout]
	if !ok {
		return nil, errors.Errorf("frame: unknown layout %d", layout)
	}
	bed := &element.BedDefinition{MetadataID: metadataID}
	for _, ch := range order {
		audioID := channelAudioIDs[ch]
		bed.Channels = append(bed.Channels, element.BedChannel{
			ChannelID:   ch,
			AudioDataID: audioID,
			Gain:        0, // code 0 == unity (element.GainFromCode).
		})
	}
	f.SubElements = append(f.SubElements, bed)
	return bed, nil
}

// AddObject adds an ObjectDefinition with K pan sub-blocks (K derived from
// the frame's frame rate via element.SubBlockCount), each initialised to
// centre position, unity gain, no snap/spread/zone/decor. Sub-block 0 has
// pan-info-exists implicitly set; the rest start cleared.
func (f *Frame) AddObject(metadataID, audioDataID uint32) (*element.ObjectDefinition, error) {
	if err := f.claimMetadataID(metadataID); err != nil {
		return nil, err
	}
	k, err := element.SubBlockCount(f.FrameRate)
	if err != nil {
		return nil, err
	}
	obj := &element.ObjectDefinition{
		MetadataID:  metadataID,
		AudioDataID: audioDataID,
		SubBlocks:   make([]element.ObjectSubBlock, k),
	}
	for i := range obj.SubBlocks {
		obj.SubBlocks[i] = element.ObjectSubBlock{
			PanInfoExists: i == 0,
			Position:      element.Position{X: 0.5, Y: 0.5, Z: 0.5},
			Gain:          0,
		}
	}
	f.SubElements = append(f.SubElements, obj)
	return obj, nil
}

// AddDLCEssence adds an AudioDataDLC essence element with the given
// audio-data-ID and no sub-blocks yet.
func (f *Frame) AddDLCEssence(audioDataID uint32) (*element.AudioDataDLC, error) {
	if err := f.claimEssenceID(audioDataID); err != nil {
		return nil, err
	}
	e := &element.AudioDataDLC{AudioDataID: audioDataID, SampleRate: f.SampleRate}
	f.SubElements = append(f.SubElements, e)
	f.essenceByID[audioDataID] = e
	return e, nil
}

// AddPCMEssence adds an AudioDataPCM essence element with the given
// audio-data-ID.
func (f *Frame) AddPCMEssence(audioDataID uint32) (*element.AudioDataPCM, error) {
	if err := f.claimEssenceID(audioDataID); err != nil {
		return nil, err
	}
	e := &element.AudioDataPCM{AudioDataID: audioDataID}
	f.SubElements = append(f.SubElements, e)
	f.essenceByID[audioDataID] = e
	return e, nil
}

// claimEssenceID validates an essence element's own audio-data-ID: it
// must be non-zero (0 is reserved for "silent channel", never a real
// essence ID) and unique among essence elements.
func (f *Frame) claimEssenceID(audioDataID uint32) error {
	if audioDataID == 0 {
		return errors.Wrap(ErrDuplicateID, "essence audio-data-ID 0 is reserved for silence")
	}
	if _, exists := f.essenceByID[audioDataID]; exists {
		return errors.Wrapf(ErrDuplicateID, "audio-data-ID %d", audioDataID)
	}
	return nil
}

// AddAuthoringToolInfo sets the frame's authoring-tool-info text. A second
// call replaces the first rather than adding a duplicate element.
func (f *Frame) AddAuthoringToolInfo(text string) *element.AuthoringToolInfo {
	if f.authoringInfo != nil {
		f.authoringInfo.Text = text
		return f.authoringInfo
	}
	info := &element.AuthoringToolInfo{Text: text}
	f.authoringInfo = info
	f.SubElements = append(f.SubElements, info)
	return info
}

// AddUserData adds a UserData element tagged with the given UUID.
func (f *Frame) AddUserData(uuid [16]byte, data []byte) *element.UserData {
	ud := &element.UserData{UUID: uuid, Bytes: data}
	f.SubElements = append(f.SubElements, ud)
	return ud
}

// ValidateLinkage checks that every non-zero audio-data-ID referenced by
// a channel or object resolves to an essence element. It does not
// mutate the frame; callers invoke it before packing, or a renderer
// invokes it before rendering a parsed frame.
func (f *Frame) ValidateLinkage() error {
	for _, sub := range f.SubElements {
		if err := f.checkLinkage(sub); err != nil {
			return err
		}
	}
	return nil
}

func (f *Frame) checkLinkage(sub element.SubElement) error {
	switch e := sub.(type) {
	case *element.BedDefinition:
		for _, ch := range e.Channels {
			if ch.AudioDataID != 0 {
				if _, ok := f.essenceByID[ch.AudioDataID]; !ok {
					return errors.Wrapf(ErrDanglingReference, "bed channel %s -> audio-data-ID %d", ch.ChannelID, ch.AudioDataID)
				}
			}
		}
		for _, child := range e.SubElements {
			if err := f.checkLinkage(child); err != nil {
				return err
			}
		}
	case *element.ObjectDefinition:
		if e.AudioDataID != 0 {
			if _, ok := f.essenceByID[e.AudioDataID]; !ok {
				return errors.Wrapf(ErrDanglingReference, "object %d -> audio-data-ID %d", e.MetadataID, e.AudioDataID)
			}
		}
		for _, child := range e.SubElements {
			if err := f.checkLinkage(child); err != nil {
				return err
			}
		}
	}
	return nil
}
