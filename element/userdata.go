/*
NAME
  userdata.go

DESCRIPTION
  userdata.go implements the UserData element: a 16-byte UUID tagging an
  opaque byte payload, constructed via AddUserData(frame, uuid, bytes).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// UserData carries an opaque, UUID-tagged byte payload.
type UserData struct {
	UUID  [16]byte
	Bytes []byte
}

// Kind implements SubElement.
func (u *UserData) Kind() Kind { return KindUserData }

// WritePayload implements SubElement.
func (u *UserData) WritePayload(w *bitstream.Writer) error {
	if err := w.WriteAligned(u.UUID[:]); err != nil {
		return err
	}
	if err := bitstream.WritePackedLength(w, uint32(len(u.Bytes))); err != nil {
		return err
	}
	return w.WriteAligned(u.Bytes)
}

func parseUserDataPayload(r *bitstream.Reader) (*UserData, error) {
	uuidBytes, err := r.ReadAligned(16)
	if err != nil {
		return nil, err
	}
	n, err := bitstream.ReadPackedLength(r)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadAligned(int(n))
	if err != nil {
		return nil, err
	}
	u := &UserData{Bytes: data}
	copy(u.UUID[:], uuidBytes)
	return u, nil
}
