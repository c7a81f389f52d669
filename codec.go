package pe

import "encoding/binary"

// Uint8 decodes a one byte value.
func Uint8(b []byte) uint8 {
	return b[0]
}

// Uint16 decodes a little-endian uint16 from exactly two bytes.
func Uint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// Uint32 decodes a little-endian uint32 from exactly four bytes.
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// SizeOf returns the packed byte width of v, which must be a fixed-size
// value or pointer to one. It returns -1 otherwise.
func SizeOf(v any) int {
	return binary.Size(v)
}

// fieldReader walks a fixed-size header window field by field. Callers size
// the window before decoding, so it never runs past the end.
type fieldReader struct {
	buf []byte
	off int
}

func (r *fieldReader) u8() uint8 {
	v := Uint8(r.buf[r.off:])
	r.off++
	return v
}

func (r *fieldReader) u16() uint16 {
	v := Uint16(r.buf[r.off : r.off+2])
	r.off += 2
	return v
}

func (r *fieldReader) u32() uint32 {
	v := Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return v
}

func (r *fieldReader) bytes(dst []byte) {
	r.off += copy(dst, r.buf[r.off:])
}
