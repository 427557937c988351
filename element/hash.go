/*
NAME
  hash.go

DESCRIPTION
  hash.go implements per-element payload hashing: the MD5 digest is
  computed over exactly the bytes an element's payload serialises to,
  via an MD5 accumulator teed onto a scratch writer. The frame-level
  CRC16 covers the whole packed frame; essence elements are additionally
  hashed individually through this entry point.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package element

import "github.com/immaudio/iab/bitstream"

// PayloadMD5 returns the MD5 digest of sub's serialised payload bytes
// (payload only, excluding the tag/length envelope).
func PayloadMD5(sub SubElement) ([16]byte, error) {
	w := bitstream.NewWriter()
	accum := bitstream.NewMD5Accum()
	w.AttachMD5(accum)
	if err := sub.WritePayload(w); err != nil {
		return [16]byte{}, err
	}
	if err := w.Flush(); err != nil {
		return [16]byte{}, err
	}
	return accum.Sum(), nil
}
