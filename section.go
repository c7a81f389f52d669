package pe

import (
	"bytes"
	"strings"
)

// SectionHeader is the 40 byte IMAGE_SECTION_HEADER. Name is kept raw: it is
// NUL padded and not terminated when all 8 bytes are used.
type SectionHeader struct {
	Name                 [8]uint8
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLineNumbers uint32
	NumberOfRelocations  uint16
	NumberOfLineNumbers  uint16
	Characteristics      uint32
}

// cString converts ASCII byte sequence b to string.
// It stops once it finds 0 or reaches end of b.
func cString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		i = len(b)
	}
	return string(b[:i])
}

// NameString returns the section name without its NUL padding.
func (sh *SectionHeader) NameString() string {
	return cString(sh.Name[:])
}

// SectionFlags returns the names of the recognized memory permission bits
// set in characteristics, in execute, read, write order. Other bits are
// ignored.
func SectionFlags(characteristics uint32) []string {
	var flags []string
	for _, f := range sectionFlags {
		if characteristics&f.bitmask != 0 {
			flags = append(flags, f.name)
		}
	}
	return flags
}

// Flags returns the recognized characteristic flags joined by
// SectionFlagSeparator, or an empty string if none are set.
func (sh *SectionHeader) Flags() string {
	return strings.Join(SectionFlags(sh.Characteristics), SectionFlagSeparator)
}

// Permissions returns the compact "rxw" form of the memory flags.
func (sh *SectionHeader) Permissions() (flags string) {
	if (ImageScnMemRead & sh.Characteristics) == ImageScnMemRead {
		flags += "r"
	}
	if (ImageScnMemExecute & sh.Characteristics) == ImageScnMemExecute {
		flags += "x"
	}
	if (ImageScnMemWrite & sh.Characteristics) == ImageScnMemWrite {
		flags += "w"
	}
	return flags
}

func decodeSectionHeader(b []byte) (sh SectionHeader) {
	r := fieldReader{buf: b[:SectionHeaderSize]}
	r.bytes(sh.Name[:])
	sh.VirtualSize = r.u32()
	sh.VirtualAddress = r.u32()
	sh.SizeOfRawData = r.u32()
	sh.PointerToRawData = r.u32()
	sh.PointerToRelocations = r.u32()
	sh.PointerToLineNumbers = r.u32()
	sh.NumberOfRelocations = r.u16()
	sh.NumberOfLineNumbers = r.u16()
	sh.Characteristics = r.u32()
	return sh
}
