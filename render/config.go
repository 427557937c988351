/*
NAME
  config.go

DESCRIPTION
  config.go implements the renderer's configuration struct and its
  encoding/json loader: an ordered physical-speaker list with VBAP
  coordinates, a virtual-speaker downmix table, the loudspeaker
  triangulation used by the VBAP solver, and the smoothing/decorrelation/
  target-soundfield toggles. The physical loudspeaker geometry database
  itself is an external collaborator; this package only consumes its
  already-parsed form.

  The config-struct-plus-loader idiom follows the same shape as a small
  flag/config handler, generalised from flag-parsed scalars to a nested
  encoding/json document.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package render implements the ST 2098-2 renderer: VBAP panning,
// bed direct-route and remap, gain smoothing, and decorrelation.
package render

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/immaudio/iab/element"
)

// SoundfieldTarget identifies the renderer's conditional-activation target
// use-case.
type SoundfieldTarget = element.UseCase

// PhysicalSpeaker is one entry of the configuration's ordered physical-
// speaker list.
type PhysicalSpeaker struct {
	URI         string     `json:"uri"`
	VBAPXYZ     [3]float64 `json:"vbap_xyz"` // position on the listening sphere.
	OutputIndex int        `json:"output_index"`
}

// DownmixTarget is one physical-channel contribution of a virtual
// speaker's downmix map.
type DownmixTarget struct {
	TargetPhysicalIndex int     `json:"target_physical_index"`
	Coefficient         float64 `json:"coefficient"`
}

// VirtualSpeaker is a named downmix target that bed channels or remap
// destinations may route to instead of a physical output.
type VirtualSpeaker struct {
	URI     string          `json:"uri"`
	Downmix []DownmixTarget `json:"downmix"`
}

// Triangle names three physical-speaker indices forming one VBAP
// triangulation facet.
type Triangle [3]int

// Config is the renderer's external, collaborator-parsed configuration.
type Config struct {
	PhysicalSpeakers []PhysicalSpeaker `json:"physical_speakers"`
	VirtualSpeakers  []VirtualSpeaker  `json:"virtual_speakers"`
	Triangulation    []Triangle        `json:"vbap_triangulation"`
	SmoothingEnabled bool              `json:"smoothing_enabled"`
	DecorrEnabled    bool              `json:"decorr_enabled"`
	TargetSoundfield SoundfieldTarget  `json:"target_soundfield"`
}

// LoadConfig decodes a renderer configuration document from r.
func LoadConfig(r io.Reader) (*Config, error) {
	var c Config
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "render: decoding configuration")
	}
	if len(c.PhysicalSpeakers) == 0 {
		return nil, errors.Wrap(ErrConfigInvalid, "no physical speakers")
	}
	if len(c.Triangulation) == 0 {
		return nil, errors.Wrap(ErrConfigInvalid, "no vbap triangulation")
	}
	return &c, nil
}

// OutputChannels returns the number of output channels implied by the
// configuration's physical-speaker list (the highest output_index + 1).
func (c *Config) OutputChannels() int {
	max := -1
	for _, s := range c.PhysicalSpeakers {
		if s.OutputIndex > max {
			max = s.OutputIndex
		}
	}
	return max + 1
}

// uriIndex finds a physical speaker by URI, used for the bed-channel
// direct-route lookup.
func (c *Config) uriIndex(uri string) (int, bool) {
	for i, s := range c.PhysicalSpeakers {
		if s.URI == uri {
			return i, true
		}
	}
	return 0, false
}

// virtualByURI finds a virtual speaker by URI.
func (c *Config) virtualByURI(uri string) (*VirtualSpeaker, bool) {
	for i := range c.VirtualSpeakers {
		if c.VirtualSpeakers[i].URI == uri {
			return &c.VirtualSpeakers[i], true
		}
	}
	return nil, false
}

// hasLFEOutput reports whether any physical speaker's URI is in lfeURIs.
// The configuration carries no explicit per-speaker role tag, so an LFE
// speaker is recognised by its URI alone.
func (c *Config) hasLFEOutput(lfeURIs map[string]bool) bool {
	for _, s := range c.PhysicalSpeakers {
		if lfeURIs[s.URI] {
			return true
		}
	}
	return false
}
