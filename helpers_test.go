package pe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// image assembles a PE32 header region for tests.
type image struct {
	dos      DOSHeader
	stub     []byte
	nt       NtHeader
	sections []SectionHeader
}

func newImage() *image {
	img := &image{}
	img.dos.Magic = ImageDOSSignature
	img.dos.AddressOfNewEXEHeader = 0x80
	img.stub = make([]byte, 0x80-DOSHeaderSize)
	img.nt.Signature = ImageNTHeaderSignature
	img.nt.FileHeader.Machine = ImageFileMachineI386
	img.nt.FileHeader.SizeOfOptionalHeader = OptionalHeader32Size
	img.nt.OptionalHeader.Magic = 0x10b
	img.nt.OptionalHeader.ImageBase = 0x400000
	img.nt.OptionalHeader.NumberOfRvaAndSizes = NumberOfDirectoryEntries
	return img
}

func (img *image) addSection(name string, characteristics uint32) *image {
	var sh SectionHeader
	copy(sh.Name[:], name)
	sh.Characteristics = characteristics
	img.sections = append(img.sections, sh)
	img.nt.FileHeader.NumberOfSections = uint16(len(img.sections))
	return img
}

func (img *image) bytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []any{img.dos, img.stub, img.nt, img.sections} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	return buf.Bytes()
}
