package pe

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinimalImage(t *testing.T) {
	data := newImage().addSection(".text", ImageScnMemExecute).bytes(t)
	require.Equal(t, []byte{0x4D, 0x5A}, data[:2])
	require.Equal(t, []byte{0x50, 0x45, 0x00, 0x00}, data[0x80:0x84])

	f, err := ParseBytes(data)
	require.NoError(t, err)

	assert.Equal(t, uint16(ImageDOSSignature), f.DOSHeader.Magic)
	assert.Equal(t, uint32(0x80), f.DOSHeader.AddressOfNewEXEHeader)
	assert.Equal(t, uint32(ImageNTHeaderSignature), f.Signature)
	assert.Equal(t, uint16(0x014C), f.FileHeader.Machine)
	assert.Equal(t, uint32(0x400000), f.OptionalHeader.ImageBase)
	assert.Equal(t, int64(len(data)), f.Size())

	require.Len(t, f.Sections, 1)
	assert.Equal(t, ".text", f.Sections[0].NameString())
	assert.Equal(t, "IMAGE_SCN_MEM_EXECUTE", f.Sections[0].Flags())
	assert.Same(t, &f.Sections[0], f.Section(".text"))
	assert.Nil(t, f.Section(".data"))
	assert.Nil(t, f.RichHeader)
}

func TestParseMagicFieldsRoundTrip(t *testing.T) {
	f, err := ParseBytes(newImage().bytes(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, f.DOSHeader))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, f.Signature))
	out := buf.Bytes()
	assert.Equal(t, uint16(0x5A4D), binary.LittleEndian.Uint16(out[:2]))
	assert.Equal(t, uint32(0x00004550), binary.LittleEndian.Uint32(out[DOSHeaderSize:]))
}

func TestParseInvalidMagic(t *testing.T) {
	for _, magic := range []uint16{0, 0x4D5A, 0x5A4E, 0xFFFF} {
		img := newImage()
		img.dos.Magic = magic
		r := bytes.NewReader(img.bytes(t))

		_, err := Parse(r)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidMagic), "magic %#x: %v", magic, err)
		assert.Equal(t, ErrInvalidMagic, errors.Cause(err))

		pos, err := r.Seek(0, io.SeekCurrent)
		require.NoError(t, err)
		assert.Equal(t, int64(DOSHeaderSize), pos, "read past the DOS header")
	}
}

func TestParseInvalidSignature(t *testing.T) {
	img := newImage()
	img.nt.Signature = 0x00004551
	_, err := ParseBytes(img.bytes(t))
	assert.True(t, errors.Is(err, ErrInvalidSignature), "%v", err)
}

func TestParseOffsetOutOfRange(t *testing.T) {
	data := newImage().bytes(t)
	for _, lfanew := range []uint32{uint32(len(data)) + 1, 0x10000, 0xFFFFFFFF} {
		binary.LittleEndian.PutUint32(data[0x3C:], lfanew)
		_, err := ParseBytes(data)
		assert.True(t, errors.Is(err, ErrOffsetOutOfRange), "e_lfanew %#x: %v", lfanew, err)
	}
}

func TestParseUnexpectedEOF(t *testing.T) {
	data := newImage().addSection(".text", 0).addSection(".data", 0).bytes(t)
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"inside DOS header", DOSHeaderSize - 1},
		{"inside NT headers", 0x80 + NtHeaderSize - 1},
		{"at end of NT headers", 0x80 + NtHeaderSize},
		{"inside second section header", len(data) - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes(data[:tt.size])
			assert.True(t, errors.Is(err, ErrUnexpectedEOF), "%v", err)
		})
	}
}

func TestParseSectionCountBeyondFile(t *testing.T) {
	img := newImage().addSection(".text", 0)
	img.nt.FileHeader.NumberOfSections = 0xFFFF
	_, err := ParseBytes(img.bytes(t))
	assert.True(t, errors.Is(err, ErrUnexpectedEOF), "%v", err)
}

func TestParseNoSections(t *testing.T) {
	f, err := ParseBytes(newImage().bytes(t))
	require.NoError(t, err)
	assert.NotNil(t, f.Sections)
	assert.Empty(t, f.Sections)
}

func TestParseSectionsFollowNtHeaders(t *testing.T) {
	img := newImage().
		addSection(".text", ImageScnMemExecute|ImageScnMemRead).
		addSection(".rdata", ImageScnMemRead).
		addSection(".data", ImageScnMemRead|ImageScnMemWrite)
	// the section table is read right after the 248 byte block, whatever
	// SizeOfOptionalHeader and NumberOfRvaAndSizes say
	img.nt.FileHeader.SizeOfOptionalHeader = 0xF0
	img.nt.OptionalHeader.NumberOfRvaAndSizes = 2
	img.nt.OptionalHeader.DataDirectory[ImageDirectoryEntryReserved] = DataDirectory{0x1234, 0x10}
	img.sections[1].VirtualAddress = 0x2000
	img.sections[1].PointerToRawData = 0x600

	f, err := ParseBytes(img.bytes(t))
	require.NoError(t, err)
	require.Len(t, f.Sections, 3)
	assert.Equal(t, img.sections, f.Sections)
	assert.Equal(t, DataDirectory{0x1234, 0x10}, f.OptionalHeader.DataDirectory[ImageDirectoryEntryReserved])
}

func TestParseMaxSections(t *testing.T) {
	data := newImage().addSection(".a", 0).addSection(".b", 0).addSection(".c", 0).bytes(t)

	_, err := ParseBytes(data, WithMaxSections(2))
	assert.True(t, errors.Is(err, ErrTooManySections), "%v", err)

	f, err := ParseBytes(data, WithMaxSections(3))
	require.NoError(t, err)
	assert.Len(t, f.Sections, 3)
}

func TestParseShortLfanew(t *testing.T) {
	// e_lfanew inside the DOS header overlaps the NT headers with it
	img := newImage()
	img.dos.AddressOfNewEXEHeader = DOSHeaderSize
	img.stub = nil
	f, err := ParseBytes(img.bytes(t))
	require.NoError(t, err)
	assert.Len(t, f.DOSStub, DOSHeaderSize)
}

func TestParseIdempotent(t *testing.T) {
	data := newImage().addSection(".text", ImageScnMemExecute).addSection("12345678", ImageScnMemWrite).bytes(t)
	a, err := ParseBytes(data)
	require.NoError(t, err)
	b, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.exe")
	require.NoError(t, os.WriteFile(path, newImage().addSection(".text", 0).bytes(t), 0o644))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Sections, 1)

	_, err = NewFile(filepath.Join(t.TempDir(), "missing.exe"))
	assert.True(t, os.IsNotExist(err))
}

// sparseSource is a large, mostly zero ReadSeeker with a few populated
// regions. It records how much was read and the largest single request.
type sparseSource struct {
	size    int64
	regions map[int64][]byte
	pos     int64

	bytesRead   int64
	largestRead int
}

func (s *sparseSource) Read(p []byte) (int, error) {
	if len(p) > s.largestRead {
		s.largestRead = len(p)
	}
	if s.pos >= s.size {
		return 0, io.EOF
	}
	n := len(p)
	if rest := s.size - s.pos; int64(n) > rest {
		n = int(rest)
	}
	for i := range p[:n] {
		p[i] = 0
	}
	for off, data := range s.regions {
		for i, b := range data {
			if at := off + int64(i) - s.pos; at >= 0 && at < int64(n) {
				p[at] = b
			}
		}
	}
	s.pos += int64(n)
	s.bytesRead += int64(n)
	return n, nil
}

func (s *sparseSource) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = s.size + offset
	}
	return s.pos, nil
}

func TestParseFarLfanewReadsBoundedStub(t *testing.T) {
	const lfanew = 0x40000000
	img := newImage().addSection(".text", ImageScnMemExecute)
	img.dos.AddressOfNewEXEHeader = lfanew
	img.stub = nil
	data := img.bytes(t)

	src := &sparseSource{
		size: lfanew + 0x1000,
		regions: map[int64][]byte{
			0:      data[:DOSHeaderSize],
			lfanew: data[DOSHeaderSize:],
		},
	}
	f, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, f.Sections, 1)
	assert.Equal(t, ".text", f.Sections[0].NameString())

	assert.Len(t, f.DOSStub, MaxDOSStubSize)
	assert.LessOrEqual(t, src.largestRead, MaxDOSStubSize)
	assert.LessOrEqual(t, src.bytesRead, int64(MaxDOSStubSize+NtHeaderSize+SectionHeaderSize))
}
