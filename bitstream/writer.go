/*
NAME
  writer.go

DESCRIPTION
  writer.go implements the typed bit-level writer: Write, Align, Flush
  and ShrinkBuffer, checked so that no write exceeds the maximum value
  representable in n bits.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitstream

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// observingWriter tees every byte written to an attached observer.
type observingWriter struct {
	dst *bytes.Buffer
	obs observer
}

func (o *observingWriter) Write(p []byte) (int, error) {
	n, err := o.dst.Write(p)
	if n > 0 && o.obs != nil && !o.obs.paused() {
		o.obs.write(p[:n])
	}
	return n, err
}

func (o *observingWriter) WriteByte(b byte) error {
	if err := o.dst.WriteByte(b); err != nil {
		return err
	}
	if o.obs != nil && !o.obs.paused() {
		o.obs.write([]byte{b})
	}
	return nil
}

// Writer is a typed, bit-granular writer building an in-memory byte buffer.
type Writer struct {
	dst       *bytes.Buffer
	adapter   *observingWriter
	bit       *bitio.Writer
	posBits   int64
	obs       observer
	failedErr error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	dst := &bytes.Buffer{}
	adapter := &observingWriter{dst: dst}
	return &Writer{
		dst:     dst,
		adapter: adapter,
		bit:     bitio.NewWriter(adapter),
	}
}

// AttachCRC16 attaches a CRC16 accumulator to this writer.
func (w *Writer) AttachCRC16(c *CRC16) {
	w.obs = c
	w.adapter.obs = c
}

// AttachMD5 attaches an MD5 accumulator to this writer.
func (w *Writer) AttachMD5(m *MD5Accum) {
	w.obs = m
	w.adapter.obs = m
}

// Detach removes any attached observer.
func (w *Writer) Detach() {
	w.obs = nil
	w.adapter.obs = nil
}

// Failed reports the sticky error, if any.
func (w *Writer) Failed() error { return w.failedErr }

// Clear resets the sticky-failed state.
func (w *Writer) Clear() { w.failedErr = nil }

// Pos returns the number of bits written so far.
func (w *Writer) Pos() int64 { return w.posBits }

func (w *Writer) fail(err error) error {
	wrapped := errors.Wrap(err, "bitstream writer")
	if errors.Is(err, ErrIoFail) {
		w.failedErr = wrapped
	}
	return wrapped
}

// Write writes the lowest n bits (1..64) of v, MSB-first.
func (w *Writer) Write(v uint64, n int) error {
	if w.failedErr != nil {
		return w.failedErr
	}
	if n < 1 || n > 64 {
		return w.fail(ErrBadParams)
	}
	if n < 64 && v > (uint64(1)<<uint(n))-1 {
		return w.fail(ErrBadParams)
	}
	if err := w.bit.WriteBits(v, uint8(n)); err != nil {
		return w.fail(ErrIoFail)
	}
	w.posBits += int64(n)
	return nil
}

// WriteBool writes a single bit: 1 if v, 0 otherwise.
func (w *Writer) WriteBool(v bool) error {
	var u uint64
	if v {
		u = 1
	}
	return w.Write(u, 1)
}

// Align pads the current partial byte with zeros so the next write starts
// a new byte, returning the number of padding bits written.
func (w *Writer) Align() (int, error) {
	pad := int((8 - w.posBits%8) % 8)
	if pad == 0 {
		return 0, nil
	}
	if err := w.Write(0, pad); err != nil {
		return 0, err
	}
	return pad, nil
}

// WriteAligned performs Align() then a raw byte copy of b.
func (w *Writer) WriteAligned(b []byte) error {
	if _, err := w.Align(); err != nil {
		return err
	}
	for _, bb := range b {
		if err := w.bit.WriteByte(bb); err != nil {
			return w.fail(ErrIoFail)
		}
	}
	w.posBits += int64(len(b)) * 8
	return nil
}

// Flush pads the current partial byte with zeros and writes it; a no-op
// if the cursor is already byte-aligned.
func (w *Writer) Flush() error {
	_, err := w.bit.Align()
	if err != nil {
		return w.fail(ErrIoFail)
	}
	return nil
}

// ShrinkBuffer truncates the writer's backing buffer to newSize bytes. It
// may not enlarge the buffer, nor truncate bits already written beyond
// the requested size (both are caller errors).
func (w *Writer) ShrinkBuffer(newSize int) error {
	if newSize < 0 || newSize > w.dst.Len() {
		return w.fail(ErrBadParams)
	}
	writtenBytes := (w.posBits + 7) / 8
	if int64(newSize) < writtenBytes {
		return w.fail(ErrBadParams)
	}
	b := w.dst.Bytes()
	w.dst.Truncate(0)
	w.dst.Write(b[:newSize])
	return nil
}

// Bytes returns the bytes written so far. The final partial byte, if any,
// is not included until Flush is called.
func (w *Writer) Bytes() []byte {
	return w.dst.Bytes()
}
