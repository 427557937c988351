/*
NAME
  authoringtoolinfo.go

DESCRIPTION
  authoringtoolinfo.go implements the AuthoringToolInfo element: a
  single free-text identifier of the authoring tool that produced the
  frame. At most one may exist per frame; a second
  AddAuthoringToolInfo call replaces the first.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// AuthoringToolInfo carries a free-text authoring-tool identifier.
type AuthoringToolInfo struct {
	Text string
}

// Kind implements SubElement.
func (a *AuthoringToolInfo) Kind() Kind { return KindAuthoringToolInfo }

// WritePayload implements SubElement.
func (a *AuthoringToolInfo) WritePayload(w *bitstream.Writer) error {
	return bitstream.WritePackedString(w, a.Text)
}

func parseAuthoringToolInfoPayload(r *bitstream.Reader) (*AuthoringToolInfo, error) {
	s, err := bitstream.ReadPackedString(r)
	if err != nil {
		return nil, err
	}
	return &AuthoringToolInfo{Text: s}, nil
}
