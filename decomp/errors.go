package decomp

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the decompiler's error taxonomy. Callers should
// use errors.Is against these rather than matching on message text.
var (
	ErrTooShort       = errors.New("buffer too short")
	ErrMagicMismatch  = errors.New("magic bytes mismatch")
	ErrLengthMismatch = errors.New("declared length mismatch")
	ErrMalformedString = errors.New("malformed string pool entry")
	ErrMalformedCode  = errors.New("malformed code")
)

// wrap annotates a sentinel with offset/detail context while keeping it
// matchable via errors.Is.
func wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

func errTooShort(need, got int) error {
	return wrap(ErrTooShort, "need %d bytes, have %d", need, got)
}

func errMagicMismatch(offset int, want, got []byte) error {
	return wrap(ErrMagicMismatch, "at offset 0x%02X: want % X, got % X", offset, want, got)
}

func errLengthMismatch(field string, want, got int) error {
	return wrap(ErrLengthMismatch, "%s: want %d, got %d", field, want, got)
}

func errMalformedString(offset int) error {
	return wrap(ErrMalformedString, "unterminated entry at offset 0x%X", offset)
}

func errMalformedCode(offset int, detail string) error {
	return wrap(ErrMalformedCode, "at offset 0x%X: %s", offset, detail)
}
