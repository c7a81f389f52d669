package pe

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math/bits"
)

// RichHeader is the linker-written record between the DOS stub program and
// the NT headers. Offsets are absolute file offsets.
type RichHeader struct {
	XorKey     uint32
	DansOffset int
	RichOffset int
	CompIDs    []CompID
	// Raw is the encrypted record from "DanS" through the XOR key.
	Raw []byte
}

// CompID counts the objects one tool build contributed to the image.
type CompID struct {
	ProdID uint16
	Build  uint16
	Count  uint32
}

// Value is the comp ID as stored in the header, before encryption.
func (c CompID) Value() uint32 {
	return uint32(c.ProdID)<<16 | uint32(c.Build)
}

// readRichHeader scans the captured stub window for a Rich header. It returns
// nil when there is none or it is cut off by the window.
func readRichHeader(stub []byte) *RichHeader {
	if len(stub) <= DOSHeaderSize {
		return nil
	}
	rich := bytes.Index(stub[DOSHeaderSize:], []byte(RichSignature))
	if rich < 0 {
		return nil
	}
	rich += DOSHeaderSize
	if rich+8 > len(stub) {
		return nil
	}
	key := Uint32(stub[rich+4 : rich+8])

	dans := -1
	for off := rich - 4; off >= DOSHeaderSize; off -= 4 {
		if Uint32(stub[off:off+4])^key == DansSignature {
			dans = off
			break
		}
	}
	if dans == -1 {
		return nil
	}

	rh := &RichHeader{
		XorKey:     key,
		DansOffset: dans,
		RichOffset: rich,
		Raw:        stub[dans : rich+8],
	}
	// DanS is followed by three zero padding dwords, then id/count pairs.
	for off := dans + 16; off+8 <= rich; off += 8 {
		id := Uint32(stub[off:off+4]) ^ key
		rh.CompIDs = append(rh.CompIDs, CompID{
			ProdID: uint16(id >> 16),
			Build:  uint16(id),
			Count:  Uint32(stub[off+4:off+8]) ^ key,
		})
	}
	return rh
}

// RichHeaderChecksum recomputes the checksum the linker stores as the XOR
// key. A value equal to RichHeader.XorKey means the header is untampered.
func (f *File) RichHeaderChecksum() uint32 {
	if f.RichHeader == nil {
		return 0
	}

	checksum := uint32(f.RichHeader.DansOffset)
	for i, b := range f.DOSStub[:f.RichHeader.DansOffset] {
		// e_lfanew is excluded
		if i >= 0x3C && i < 0x40 {
			continue
		}
		checksum += bits.RotateLeft32(uint32(b), i)
	}
	for _, c := range f.RichHeader.CompIDs {
		checksum += bits.RotateLeft32(c.Value(), int(c.Count%32))
	}
	return checksum
}

// RichHeaderHash is the MD5 of the decrypted record from "DanS" up to but
// not including the "Rich" marker.
func (f *File) RichHeaderHash() string {
	rh := f.RichHeader
	if rh == nil {
		return ""
	}
	enc := rh.Raw[:rh.RichOffset-rh.DansOffset]
	plain := make([]byte, len(enc))
	for off := 0; off+4 <= len(enc); off += 4 {
		binary.LittleEndian.PutUint32(plain[off:], Uint32(enc[off:off+4])^rh.XorKey)
	}
	return fmt.Sprintf("%x", md5.Sum(plain))
}
