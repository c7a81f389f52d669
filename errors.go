package pe

import "github.com/pkg/errors"

var (
	ErrInvalidMagic     = errors.New("invalid DOS header magic, not a PE file")
	ErrInvalidSignature = errors.New("not a valid PE signature. Magic not found")
)

var (
	ErrUnexpectedEOF    = errors.New("unexpected end of data while reading header")
	ErrOffsetOutOfRange = errors.New("offset points outside of the file")
	ErrTooManySections  = errors.New("number of sections exceeds the configured maximum")
)
