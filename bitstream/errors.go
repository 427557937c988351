/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the flat stream-level error taxonomy used by every
  bitstream.Reader and bitstream.Writer operation, and the sticky-failure
  behaviour required once an IoFail has been observed.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitstream

import "github.com/pkg/errors"

// Sentinel stream errors. Every bitstream operation returns one of these
// (possibly wrapped with call-site context via github.com/pkg/errors), or
// nil on success.
var (
	// ErrBadParams is returned for a caller mistake: a zero-length request,
	// an out-of-range bit count, or a value that doesn't fit the field width.
	ErrBadParams = errors.New("bitstream: bad parameters")

	// ErrEndOfStream is returned when a read would advance the cursor past
	// the stream's bit-length limit.
	ErrEndOfStream = errors.New("bitstream: end of stream")

	// ErrIoFail is returned when the underlying byte stream itself fails.
	// Once returned, the stream is sticky-failed (see Reader.Failed /
	// Writer.Failed) until Clear is called.
	ErrIoFail = errors.New("bitstream: io failure")
)

// IsEndOfStream reports whether err is (or wraps) ErrEndOfStream.
func IsEndOfStream(err error) bool { return errors.Is(err, ErrEndOfStream) }

// IsBadParams reports whether err is (or wraps) ErrBadParams.
func IsBadParams(err error) bool { return errors.Is(err, ErrBadParams) }

// IsIoFail reports whether err is (or wraps) ErrIoFail.
func IsIoFail(err error) bool { return errors.Is(err, ErrIoFail) }
