/*
NAME
  varint.go

DESCRIPTION
  varint.go implements the composite variable-length wire types:
  PackedLength, PackedUInt32, PackedUInt64, Plex(N), PackedString,
  NullTerminatedString, OptionalParameter and Vector.

  The escape-coded length idiom follows the same shape as an MPEG
  PES-packet length field, and Plex(N)'s "read N bits, escape into 2N on
  all-ones" escalation mirrors a UTF-8-style variable-length integer
  decoder, capped at a 32-bit field per the original Plex contract.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitstream

// ReadPackedLength reads a PackedLength: one byte if < 128, else an escape
// byte 0x83 followed by a 32-bit value.
func ReadPackedLength(r *Reader) (uint32, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, err
	}
	if b < 0x80 {
		return uint32(b), nil
	}
	if b != 0x83 {
		return 0, r.fail(ErrBadParams)
	}
	v, err := r.Read(32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// WritePackedLength writes x as a PackedLength.
func WritePackedLength(w *Writer, x uint32) error {
	if x < 0x80 {
		return w.Write(uint64(x), 8)
	}
	if err := w.Write(0x83, 8); err != nil {
		return err
	}
	return w.Write(uint64(x), 32)
}

// ReadPackedUInt32 reads a PackedUInt32: a 2-bit escape prefix 0b11
// followed by a 32-bit value.
func ReadPackedUInt32(r *Reader) (uint32, error) {
	prefix, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	if prefix != 0b11 {
		return 0, r.fail(ErrBadParams)
	}
	v, err := r.Read(32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// WritePackedUInt32 writes x as a PackedUInt32.
func WritePackedUInt32(w *Writer, x uint32) error {
	if err := w.Write(0b11, 2); err != nil {
		return err
	}
	return w.Write(uint64(x), 32)
}

// ReadPackedUInt64 reads a PackedUInt64: a 3-bit escape prefix 0b111
// followed by a 64-bit value.
func ReadPackedUInt64(r *Reader) (uint64, error) {
	prefix, err := r.Read(3)
	if err != nil {
		return 0, err
	}
	if prefix != 0b111 {
		return 0, r.fail(ErrBadParams)
	}
	return r.Read(64)
}

// WritePackedUInt64 writes x as a PackedUInt64.
func WritePackedUInt64(w *Writer, x uint64) error {
	if err := w.Write(0b111, 3); err != nil {
		return err
	}
	return w.Write(x, 64)
}

// plexWidths are the field widths tried, in order, for a given base N:
// N doubling until it would exceed 32 bits. Escalation never reads past
// a 32-bit field, regardless of N, so Plex(4) tries {4,8,16,32} and
// Plex(8) tries {8,16,32}.
func plexWidths(n int) []int {
	var widths []int
	for w := n; w <= 32; w *= 2 {
		widths = append(widths, w)
	}
	return widths
}

// ReadPlex reads a Plex(N) value (N must be 4 or 8): read N bits; if all
// ones, escape to 2N bits, doubling again each time the field read is
// still all-ones, capped at a 32-bit field. If the 32-bit field is still
// all-ones, the value doesn't fit and ErrBadParams is returned.
func ReadPlex(r *Reader, n int) (uint64, error) {
	if n != 4 && n != 8 {
		return 0, r.fail(ErrBadParams)
	}
	widths := plexWidths(n)
	for i, w := range widths {
		v, err := r.Read(w)
		if err != nil {
			return 0, err
		}
		allOnes := uint64(1)<<uint(w) - 1
		if v != allOnes {
			return v, nil
		}
		if i == len(widths)-1 {
			return 0, r.fail(ErrBadParams)
		}
	}
	panic("unreachable")
}

// WritePlex writes x as a Plex(N) value, choosing the smallest width that
// strictly holds x (i.e. is not the all-ones escape value for that
// width), writing one escape marker per doubling and capping the field
// at 32 bits. Values that don't fit in a 32-bit field (x >= 2^32-1) are
// rejected, matching ReadPlex's escalation cap.
func WritePlex(w *Writer, n int, x uint64) error {
	if n != 4 && n != 8 {
		return w.fail(ErrBadParams)
	}
	widths := plexWidths(n)
	maxWidth := widths[len(widths)-1]
	maxAllOnes := uint64(1)<<uint(maxWidth) - 1
	if x >= maxAllOnes {
		return w.fail(ErrBadParams)
	}
	for i, width := range widths {
		allOnes := uint64(1)<<uint(width) - 1
		isLast := i == len(widths)-1
		if x < allOnes || isLast {
			return w.Write(x, width)
		}
		if err := w.Write(allOnes, width); err != nil {
			return err
		}
	}
	panic("unreachable")
}

// ReadPackedString reads a PackedLength-prefixed UTF-8 byte string with no
// terminator.
func ReadPackedString(r *Reader) (string, error) {
	n, err := ReadPackedLength(r)
	if err != nil {
		return "", err
	}
	b, err := r.ReadAligned(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WritePackedString writes s as a PackedString.
func WritePackedString(w *Writer, s string) error {
	if err := WritePackedLength(w, uint32(len(s))); err != nil {
		return err
	}
	return w.WriteAligned([]byte(s))
}

// ReadNullTerminatedString reads bytes up to and including a zero byte,
// returning the string without the terminator.
func ReadNullTerminatedString(r *Reader) (string, error) {
	var out []byte
	for {
		b, err := r.Read(8)
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(out), nil
		}
		out = append(out, byte(b))
	}
}

// WriteNullTerminatedString writes s followed by a zero byte.
func WriteNullTerminatedString(w *Writer, s string) error {
	if err := w.WriteAligned([]byte(s)); err != nil {
		return err
	}
	return w.Write(0, 8)
}

// ReadOptional reads a one-bit presence flag followed by T if present.
func ReadOptional[T any](r *Reader, readVal func(*Reader) (T, error)) (bool, T, error) {
	var zero T
	present, err := r.ReadBool()
	if err != nil {
		return false, zero, err
	}
	if !present {
		return false, zero, nil
	}
	v, err := readVal(r)
	if err != nil {
		return false, zero, err
	}
	return true, v, nil
}

// WriteOptional writes a one-bit presence flag and, if present, val.
func WriteOptional[T any](w *Writer, present bool, val T, writeVal func(*Writer, T) error) error {
	if err := w.WriteBool(present); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return writeVal(w, val)
}

// ReadVector reads a PackedLength count followed by count items of T.
func ReadVector[T any](r *Reader, readItem func(*Reader) (T, error)) ([]T, error) {
	n, err := ReadPackedLength(r)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := readItem(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteVector writes a PackedLength count of items followed by each item.
func WriteVector[T any](w *Writer, items []T, writeItem func(*Writer, T) error) error {
	if err := WritePackedLength(w, uint32(len(items))); err != nil {
		return err
	}
	for _, it := range items {
		if err := writeItem(w, it); err != nil {
			return err
		}
	}
	return nil
}
