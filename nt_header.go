package pe

import "time"

type NtHeader struct {
	Signature      uint32
	FileHeader     FileHeader
	OptionalHeader OptionalHeader32
}

type FileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// Timestamp returns TimeDateStamp as a UTC time.
func (fh *FileHeader) Timestamp() time.Time {
	return time.Unix(int64(fh.TimeDateStamp), 0).UTC()
}

type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// OptionalHeader32 is the PE32 optional header. The data directory array is
// always 16 entries long, whatever NumberOfRvaAndSizes says.
type OptionalHeader32 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	BaseOfData                  uint32
	ImageBase                   uint32
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint32
	SizeOfStackCommit           uint32
	SizeOfHeapReserve           uint32
	SizeOfHeapCommit            uint32
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [NumberOfDirectoryEntries]DataDirectory
}

// NamedDataDirectory pairs a data directory with its positional name.
type NamedDataDirectory struct {
	Index int
	Name  string
	DataDirectory
}

// Directories returns all 16 data directories in slot order, named.
func (oh *OptionalHeader32) Directories() []NamedDataDirectory {
	dirs := make([]NamedDataDirectory, 0, len(oh.DataDirectory))
	for i, dd := range oh.DataDirectory {
		dirs = append(dirs, NamedDataDirectory{
			Index:         i,
			Name:          DirectoryName(i),
			DataDirectory: dd,
		})
	}
	return dirs
}

// decodeNtHeader decodes the 248 byte IMAGE_NT_HEADERS32 block in b.
func decodeNtHeader(b []byte) (nt NtHeader) {
	r := fieldReader{buf: b[:NtHeaderSize]}
	nt.Signature = r.u32()

	fh := &nt.FileHeader
	fh.Machine = r.u16()
	fh.NumberOfSections = r.u16()
	fh.TimeDateStamp = r.u32()
	fh.PointerToSymbolTable = r.u32()
	fh.NumberOfSymbols = r.u32()
	fh.SizeOfOptionalHeader = r.u16()
	fh.Characteristics = r.u16()

	oh := &nt.OptionalHeader
	oh.Magic = r.u16()
	oh.MajorLinkerVersion = r.u8()
	oh.MinorLinkerVersion = r.u8()
	oh.SizeOfCode = r.u32()
	oh.SizeOfInitializedData = r.u32()
	oh.SizeOfUninitializedData = r.u32()
	oh.AddressOfEntryPoint = r.u32()
	oh.BaseOfCode = r.u32()
	oh.BaseOfData = r.u32()
	oh.ImageBase = r.u32()
	oh.SectionAlignment = r.u32()
	oh.FileAlignment = r.u32()
	oh.MajorOperatingSystemVersion = r.u16()
	oh.MinorOperatingSystemVersion = r.u16()
	oh.MajorImageVersion = r.u16()
	oh.MinorImageVersion = r.u16()
	oh.MajorSubsystemVersion = r.u16()
	oh.MinorSubsystemVersion = r.u16()
	oh.Win32VersionValue = r.u32()
	oh.SizeOfImage = r.u32()
	oh.SizeOfHeaders = r.u32()
	oh.CheckSum = r.u32()
	oh.Subsystem = r.u16()
	oh.DllCharacteristics = r.u16()
	oh.SizeOfStackReserve = r.u32()
	oh.SizeOfStackCommit = r.u32()
	oh.SizeOfHeapReserve = r.u32()
	oh.SizeOfHeapCommit = r.u32()
	oh.LoaderFlags = r.u32()
	oh.NumberOfRvaAndSizes = r.u32()
	for i := range oh.DataDirectory {
		oh.DataDirectory[i].VirtualAddress = r.u32()
		oh.DataDirectory[i].Size = r.u32()
	}
	return nt
}
