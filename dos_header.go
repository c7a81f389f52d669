package pe

type DOSHeader struct {
	Magic                    uint16
	BytesOnLastPageOfFile    uint16
	PagesInFile              uint16
	Relocations              uint16
	SizeOfHeader             uint16
	MinExtraParagraphsNeeded uint16
	MaxExtraParagraphsNeeded uint16
	InitialSS                uint16
	InitialSP                uint16
	Checksum                 uint16
	InitialIP                uint16
	InitialCS                uint16
	AddressOfRelocationTable uint16
	OverlayNumber            uint16
	ReservedWords1           [4]uint16
	OEMIdentifier            uint16
	OEMInformation           uint16
	ReservedWords2           [10]uint16
	AddressOfNewEXEHeader    uint32
}

// decodeDOSHeader decodes the 64 byte IMAGE_DOS_HEADER in b.
func decodeDOSHeader(b []byte) (h DOSHeader) {
	r := fieldReader{buf: b[:DOSHeaderSize]}
	h.Magic = r.u16()
	h.BytesOnLastPageOfFile = r.u16()
	h.PagesInFile = r.u16()
	h.Relocations = r.u16()
	h.SizeOfHeader = r.u16()
	h.MinExtraParagraphsNeeded = r.u16()
	h.MaxExtraParagraphsNeeded = r.u16()
	h.InitialSS = r.u16()
	h.InitialSP = r.u16()
	h.Checksum = r.u16()
	h.InitialIP = r.u16()
	h.InitialCS = r.u16()
	h.AddressOfRelocationTable = r.u16()
	h.OverlayNumber = r.u16()
	for i := range h.ReservedWords1 {
		h.ReservedWords1[i] = r.u16()
	}
	h.OEMIdentifier = r.u16()
	h.OEMInformation = r.u16()
	for i := range h.ReservedWords2 {
		h.ReservedWords2[i] = r.u16()
	}
	h.AddressOfNewEXEHeader = r.u32()
	return h
}
