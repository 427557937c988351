/*
NAME
  observer.go

DESCRIPTION
  observer.go implements the CRC16-CCITT and MD5 accumulators that can be
  attached to a Reader or Writer, observing every bit that passes through
  without taking part in the bit cursor itself. Observers support pause/
  resume so that peek() and state-restore can look ahead without double-
  counting bytes that are later re-read after a restore.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitstream

import (
	"crypto/md5"
	"hash"
)

// observer is fed every byte that crosses a Reader or Writer while active.
type observer interface {
	write(p []byte)
	pause()
	resume()
	paused() bool
}

// crc16Table is the CRC16-CCITT table (polynomial 0x1021), built once.
var crc16Table = func() [256]uint16 {
	const poly = 0x1021
	var t [256]uint16
	for i := range t {
		crc := uint16(i) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}()

// CRC16 is a CRC16-CCITT accumulator: initial value 0xFFFF, polynomial
// 0x1021, no final XOR.
type CRC16 struct {
	reg      uint16
	isPaused bool
}

// NewCRC16 returns a CRC16 accumulator ready to observe a stream.
func NewCRC16() *CRC16 { return &CRC16{reg: 0xFFFF} }

func (c *CRC16) write(p []byte) {
	for _, b := range p {
		c.reg = (c.reg << 8) ^ crc16Table[byte(c.reg>>8)^b]
	}
}
func (c *CRC16) pause()       { c.isPaused = true }
func (c *CRC16) resume()      { c.isPaused = false }
func (c *CRC16) paused() bool { return c.isPaused }

// Sum returns the current 16-bit CRC register value.
func (c *CRC16) Sum() uint16 { return c.reg }

// Reset restores the accumulator to its initial register value.
func (c *CRC16) Reset() { c.reg = 0xFFFF }

// MD5Accum is an MD5 accumulator used to hash essence-element payloads.
type MD5Accum struct {
	digest   hash.Hash
	isPaused bool
}

// NewMD5Accum returns an MD5 accumulator ready to observe a stream.
func NewMD5Accum() *MD5Accum {
	return &MD5Accum{digest: md5.New()}
}

func (m *MD5Accum) write(p []byte) { m.digest.Write(p) }
func (m *MD5Accum) pause()         { m.isPaused = true }
func (m *MD5Accum) resume()        { m.isPaused = false }
func (m *MD5Accum) paused() bool   { return m.isPaused }

// Sum returns the MD5 digest of all bytes observed so far. Observation
// may continue afterward; the digest state is not finalised.
func (m *MD5Accum) Sum() [16]byte {
	var out [16]byte
	copy(out[:], m.digest.Sum(nil))
	return out
}

// Reset restores the accumulator to its initial state.
func (m *MD5Accum) Reset() { m.digest.Reset() }
