/*
NAME
  config_test.go

DESCRIPTION
  config_test.go tests the renderer configuration loader's validation and
  the derived OutputChannels/URI lookup helpers.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package render

import (
	"strings"
	"testing"
)

const validConfigJSON = `{
	"physical_speakers": [
		{"uri": "L", "vbap_xyz": [-1, 1, 0], "output_index": 0},
		{"uri": "R", "vbap_xyz": [1, 1, 0], "output_index": 1},
		{"uri": "C", "vbap_xyz": [0, 1, 0], "output_index": 2}
	],
	"virtual_speakers": [
		{"uri": "LFE", "downmix": [{"target_physical_index": 0, "coefficient": 0.5}]}
	],
	"vbap_triangulation": [[0, 1, 2]],
	"smoothing_enabled": true,
	"decorr_enabled": false
}`

func TestLoadConfigValid(t *testing.T) {
	c, err := LoadConfig(strings.NewReader(validConfigJSON))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(c.PhysicalSpeakers) != 3 {
		t.Errorf("physical speakers: got %d want 3", len(c.PhysicalSpeakers))
	}
	if !c.SmoothingEnabled || c.DecorrEnabled {
		t.Errorf("toggle fields not decoded: %+v", c)
	}
}

func TestLoadConfigRejectsNoPhysicalSpeakers(t *testing.T) {
	_, err := LoadConfig(strings.NewReader(`{"vbap_triangulation": [[0,1,2]]}`))
	if err == nil {
		t.Fatalf("expected error: no physical speakers")
	}
}

func TestLoadConfigRejectsNoTriangulation(t *testing.T) {
	_, err := LoadConfig(strings.NewReader(`{"physical_speakers": [{"uri": "L", "output_index": 0}]}`))
	if err == nil {
		t.Fatalf("expected error: no vbap triangulation")
	}
}

func TestLoadConfigRejectsMalformedJSON(t *testing.T) {
	_, err := LoadConfig(strings.NewReader(`{not json`))
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestConfigOutputChannels(t *testing.T) {
	c, err := LoadConfig(strings.NewReader(validConfigJSON))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := c.OutputChannels(); got != 3 {
		t.Errorf("OutputChannels() = %d, want 3", got)
	}
}

func TestConfigURIIndex(t *testing.T) {
	c, err := LoadConfig(strings.NewReader(validConfigJSON))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if i, ok := c.uriIndex("R"); !ok || i != 1 {
		t.Errorf("uriIndex(R) = (%d, %v), want (1, true)", i, ok)
	}
	if _, ok := c.uriIndex("nonexistent"); ok {
		t.Errorf("uriIndex(nonexistent) unexpectedly found")
	}
}

func TestConfigVirtualByURI(t *testing.T) {
	c, err := LoadConfig(strings.NewReader(validConfigJSON))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	v, ok := c.virtualByURI("LFE")
	if !ok {
		t.Fatalf("virtualByURI(LFE) not found")
	}
	if len(v.Downmix) != 1 {
		t.Errorf("downmix entries: got %d want 1", len(v.Downmix))
	}
	if _, ok := c.virtualByURI("nonexistent"); ok {
		t.Errorf("virtualByURI(nonexistent) unexpectedly found")
	}
}
