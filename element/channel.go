/*
NAME
  channel.go

DESCRIPTION
  channel.go implements the ST 2098-2 bed channel-ID enum and the canonical VBAP unit-cube position
  assigned to each channel, used by the renderer when a bed channel has
  no matching physical or virtual speaker.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

// ChannelID identifies one of the ST 2098-2 bed channel labels.
type ChannelID uint8

// Channel labels.
const (
	ChannelL ChannelID = iota
	ChannelR
	ChannelC
	ChannelLFE
	ChannelLss
	ChannelRss
	ChannelLrs
	ChannelRrs
	ChannelLts
	ChannelRts
	ChannelLw
	ChannelRw
	ChannelCs
	ChannelTs
	ChannelLFE2
	ChannelLc
	ChannelRc
)

var channelName = map[ChannelID]string{
	ChannelL:    "L",
	ChannelR:    "R",
	ChannelC:    "C",
	ChannelLFE:  "LFE",
	ChannelLss:  "Lss",
	ChannelRss:  "Rss",
	ChannelLrs:  "Lrs",
	ChannelRrs:  "Rrs",
	ChannelLts:  "Lts",
	ChannelRts:  "Rts",
	ChannelLw:   "Lw",
	ChannelRw:   "Rw",
	ChannelCs:   "Cs",
	ChannelTs:   "Ts",
	ChannelLFE2: "LFE2",
	ChannelLc:   "Lc",
	ChannelRc:   "Rc",
}

// String returns the channel's short label, or "Unknown" for an
// unrecognised code (forward-compatibility: new labels are never fatal).
func (c ChannelID) String() string {
	if s, ok := channelName[c]; ok {
		return s
	}
	return "Unknown"
}

// IsLFE reports whether c is one of the low-frequency-effects channels,
// used by the renderer's "if LFE and no LFE output, warn" rule.
func (c ChannelID) IsLFE() bool {
	return c == ChannelLFE || c == ChannelLFE2
}

// CanonicalPosition returns the channel's fixed unit-cube authoring
// position, used to render an unmapped bed channel as a point-source
// object.
func (c ChannelID) CanonicalPosition() (Position, bool) {
	p, ok := canonicalChannelPosition[c]
	return p, ok
}

var canonicalChannelPosition = map[ChannelID]Position{
	ChannelL:    {X: 0.15, Y: 1.0, Z: 0.5},
	ChannelR:    {X: 0.85, Y: 1.0, Z: 0.5},
	ChannelC:    {X: 0.5, Y: 1.0, Z: 0.5},
	ChannelLFE:  {X: 0.5, Y: 1.0, Z: 0.0},
	ChannelLss:  {X: 0.0, Y: 0.5, Z: 0.5},
	ChannelRss:  {X: 1.0, Y: 0.5, Z: 0.5},
	ChannelLrs:  {X: 0.2, Y: 0.0, Z: 0.5},
	ChannelRrs:  {X: 0.8, Y: 0.0, Z: 0.5},
	ChannelLts:  {X: 0.25, Y: 0.6, Z: 1.0},
	ChannelRts:  {X: 0.75, Y: 0.6, Z: 1.0},
	ChannelLw:   {X: 0.05, Y: 0.9, Z: 0.5},
	ChannelRw:   {X: 0.95, Y: 0.9, Z: 0.5},
	ChannelCs:   {X: 0.5, Y: 0.0, Z: 0.5},
	ChannelTs:   {X: 0.5, Y: 0.5, Z: 1.0},
	ChannelLFE2: {X: 0.5, Y: 0.0, Z: 0.0},
	ChannelLc:   {X: 0.3, Y: 1.0, Z: 0.5},
	ChannelRc:   {X: 0.7, Y: 1.0, Z: 0.5},
}

// UseCase identifies a conditional-activation target.
type UseCase uint8

// Well-known use-cases. Always matches every rendering target;
// others are opaque 8-bit tags compared against the renderer's configured
// target use-case.
const (
	UseCaseAlways UseCase = 0
	UseCase5_1    UseCase = 1
	UseCase7_1DS  UseCase = 2
	UseCase9_1OH  UseCase = 3
)

// AudioDescriptionKind is the enum part of the optional accessibility
// description carried by ObjectDefinition.
type AudioDescriptionKind uint8

const (
	AudioDescriptionNone AudioDescriptionKind = iota
	AudioDescriptionVisuallyImpaired
	AudioDescriptionHearingImpaired
	AudioDescriptionVisuallyImpairedNarrative
	AudioDescriptionVisuallyImpairedDialogue
)

// AudioDescription pairs the enum with its optional free text.
type AudioDescription struct {
	Kind       AudioDescriptionKind
	TextExists bool
	Text       string
}
