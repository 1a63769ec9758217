package flash

import "errors"

// ErrOutOfRange is returned by a Device implementation when an
// address or length falls outside the device's bounds.
var ErrOutOfRange = errors.New("flash: address out of range")

// ErrVerifyFailed is returned when read-back verification after a
// program (or before, for VerifyPre) doesn't match.
var ErrVerifyFailed = errors.New("flash: verify failed")

// ErrNotAligned is returned when an erase address isn't a multiple of
// the device's sector size.
var ErrNotAligned = errors.New("flash: address not sector-aligned")
