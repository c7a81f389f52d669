package pe

const (
	ImageDOSSignature      = 0x5A4D     // MZ
	ImageNTHeaderSignature = 0x00004550 // PE\0\0
)

// Fixed on-disk sizes of the header structures.
const (
	DOSHeaderSize        = 64
	FileHeaderSize       = 20
	OptionalHeader32Size = 224
	NtHeaderSize         = 4 + FileHeaderSize + OptionalHeader32Size
	DataDirectorySize    = 8
	SectionHeaderSize    = 40
)

// NumberOfDirectoryEntries is the number of data directories always decoded
// from the optional header.
const NumberOfDirectoryEntries = 16

// MaxDOSStubSize bounds how much of the gap between the DOS header and
// e_lfanew is captured. Linkers place the Rich header right after the stub
// program, well inside this window.
const MaxDOSStubSize = 0x1000

// DefaultMaxSections accepts every value the 16-bit NumberOfSections field can hold.
const DefaultMaxSections = 0xFFFF

// IMAGE_DIRECTORY_ENTRY constants
const (
	ImageDirectoryEntryExport        = 0
	ImageDirectoryEntryImport        = 1
	ImageDirectoryEntryResource      = 2
	ImageDirectoryEntryException     = 3
	ImageDirectoryEntrySecurity      = 4
	ImageDirectoryEntryBaseReLoc     = 5
	ImageDirectoryEntryDebug         = 6
	ImageDirectoryEntryArchitecture  = 7
	ImageDirectoryEntryGlobalPtr     = 8
	ImageDirectoryEntryTls           = 9
	ImageDirectoryEntryLoadConfig    = 10
	ImageDirectoryEntryBoundImport   = 11
	ImageDirectoryEntryIat           = 12
	ImageDirectoryEntryDelayImport   = 13
	ImageDirectoryEntryComDescriptor = 14
	ImageDirectoryEntryReserved      = 15
)

var directoryNames = [NumberOfDirectoryEntries]string{
	"Export",
	"Import",
	"Resource",
	"Exception",
	"Security",
	"BaseReloc",
	"Debug",
	"ArchitectureReserved",
	"GlobalPtr",
	"TLS",
	"LoadConfig",
	"BoundImport",
	"IAT",
	"DelayImport",
	"COMDescriptor",
	"Reserved",
}

// DirectoryName returns the conventional name of the data directory slot i.
// It returns an empty string for indexes outside [0, 16).
func DirectoryName(i int) string {
	if i < 0 || i >= len(directoryNames) {
		return ""
	}
	return directoryNames[i]
}

const (
	ImageScnMemExecute = 0x20000000
	ImageScnMemRead    = 0x40000000
	ImageScnMemWrite   = 0x80000000
)

type sectionFlag struct {
	name    string
	bitmask uint32
}

var sectionFlags = [...]sectionFlag{
	{"IMAGE_SCN_MEM_EXECUTE", ImageScnMemExecute},
	{"IMAGE_SCN_MEM_READ", ImageScnMemRead},
	{"IMAGE_SCN_MEM_WRITE", ImageScnMemWrite},
}

// SectionFlagSeparator joins decoded section flag names.
const SectionFlagSeparator = " | "

const (
	ImageFileMachineUnknown = 0x0
	ImageFileMachineI386    = 0x014c
	ImageFileMachineARM     = 0x01c0
	ImageFileMachineARMNT   = 0x01c4
	ImageFileMachineIA64    = 0x0200
	ImageFileMachineAMD64   = 0x8664
	ImageFileMachineARM64   = 0xaa64
)

var machineNames = map[uint16]string{
	ImageFileMachineUnknown: "unknown",
	ImageFileMachineI386:    "i386",
	ImageFileMachineARM:     "arm",
	ImageFileMachineARMNT:   "armnt",
	ImageFileMachineIA64:    "ia64",
	ImageFileMachineAMD64:   "amd64",
	ImageFileMachineARM64:   "arm64",
}

// MachineName returns a short name for a FileHeader.Machine value, or an
// empty string when the code is not known.
func MachineName(machine uint16) string {
	return machineNames[machine]
}

const (
	DansSignature = 0x536E6144
	RichSignature = "Rich"
)
