package pe

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// File is the decoded header region of a PE32 image. It is built once by
// Parse and not modified afterwards.
type File struct {
	DOSHeader
	NtHeader
	Sections []SectionHeader

	// DOSStub holds the raw bytes [0, min(e_lfanew, MaxDOSStubSize)): the DOS
	// header followed by the stub program and, when present, the Rich header.
	DOSStub    []byte
	RichHeader *RichHeader

	size int64
}

type options struct {
	maxSections int
}

// Option configures Parse.
type Option func(*options)

// WithMaxSections rejects images declaring more than n section headers with
// ErrTooManySections. Values below zero are treated as zero.
func WithMaxSections(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxSections = n
	}
}

// NewFile opens filename and decodes its headers. The file is closed before
// NewFile returns.
func NewFile(filename string, opts ...Option) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, opts...)
}

// ParseBytes decodes the headers of the image held in data.
func ParseBytes(data []byte, opts ...Option) (*File, error) {
	return Parse(bytes.NewReader(data), opts...)
}

// Parse decodes the DOS header, NT headers and section table from r. The
// whole decode either succeeds or returns one of ErrInvalidMagic,
// ErrInvalidSignature, ErrUnexpectedEOF, ErrOffsetOutOfRange or
// ErrTooManySections, possibly wrapped, or an error from r itself.
func Parse(r io.ReadSeeker, opts ...Option) (*File, error) {
	o := options{maxSections: DefaultMaxSections}
	for _, opt := range opts {
		opt(&o)
	}

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.WithMessage(err, "fail to determine input size")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithMessage(err, "fail to rewind input")
	}

	file := &File{size: size}
	p := &parser{r: r, f: file, opts: o}
	if err := p.readDOSHeader(); err != nil {
		return nil, err
	}
	if err := p.readNTHeader(); err != nil {
		return nil, err
	}
	if err := p.readSections(); err != nil {
		return nil, err
	}
	file.RichHeader = readRichHeader(file.DOSStub)
	return file, nil
}

// Size returns the length of the source the headers were decoded from.
func (f *File) Size() int64 {
	return f.size
}

// Section returns the first section named name, or nil.
func (f *File) Section(name string) *SectionHeader {
	for i := range f.Sections {
		if f.Sections[i].NameString() == name {
			return &f.Sections[i]
		}
	}
	return nil
}

type parser struct {
	r    io.ReadSeeker
	f    *File
	opts options
	pos  int64
}

// read consumes exactly n bytes from the current position.
func (p *parser) read(n int, what string) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrUnexpectedEOF, "fail to read %s (%d bytes at offset %#x)", what, n, p.pos)
		}
		return nil, errors.Wrapf(err, "fail to read %s", what)
	}
	p.pos += int64(n)
	return buf, nil
}

func (p *parser) seek(offset int64) error {
	if offset < 0 || offset > p.f.size {
		return errors.Wrapf(ErrOffsetOutOfRange, "offset %#x, file size %#x", offset, p.f.size)
	}
	if _, err := p.r.Seek(offset, io.SeekStart); err != nil {
		return errors.WithMessagef(err, "fail to seek to %#x", offset)
	}
	p.pos = offset
	return nil
}

func (p *parser) readDOSHeader() error {
	data, err := p.read(DOSHeaderSize, "DOS header")
	if err != nil {
		return err
	}
	p.f.DOSHeader = decodeDOSHeader(data)
	if p.f.DOSHeader.Magic != ImageDOSSignature {
		return errors.Wrapf(ErrInvalidMagic, "got %#04x", p.f.DOSHeader.Magic)
	}

	lfanew := int64(p.f.DOSHeader.AddressOfNewEXEHeader)
	if lfanew > p.f.size {
		return errors.Wrapf(ErrOffsetOutOfRange, "e_lfanew %#x, file size %#x", lfanew, p.f.size)
	}
	if lfanew <= DOSHeaderSize {
		p.f.DOSStub = data[:lfanew]
		return nil
	}
	end := lfanew
	if end > MaxDOSStubSize {
		end = MaxDOSStubSize
	}
	stub, err := p.read(int(end-DOSHeaderSize), "DOS stub")
	if err != nil {
		return err
	}
	p.f.DOSStub = append(data, stub...)
	return nil
}

func (p *parser) readNTHeader() error {
	if err := p.seek(int64(p.f.DOSHeader.AddressOfNewEXEHeader)); err != nil {
		return err
	}
	data, err := p.read(NtHeaderSize, "NT headers")
	if err != nil {
		return err
	}
	p.f.NtHeader = decodeNtHeader(data)
	if p.f.Signature != ImageNTHeaderSignature {
		return errors.Wrapf(ErrInvalidSignature, "got %#08x at offset %#x",
			p.f.Signature, p.f.DOSHeader.AddressOfNewEXEHeader)
	}
	return nil
}

// readSections reads the section table directly after the NT headers. The
// declared count is checked against the remaining input before anything is
// allocated for it.
func (p *parser) readSections() error {
	n := int(p.f.FileHeader.NumberOfSections)
	if n > p.opts.maxSections {
		return errors.Wrapf(ErrTooManySections, "%d sections, limit %d", n, p.opts.maxSections)
	}
	if need := int64(n) * SectionHeaderSize; need > p.f.size-p.pos {
		return errors.Wrapf(ErrUnexpectedEOF, "section table needs %d bytes at offset %#x, %d left",
			need, p.pos, p.f.size-p.pos)
	}

	p.f.Sections = make([]SectionHeader, 0, n)
	for i := 0; i < n; i++ {
		data, err := p.read(SectionHeaderSize, "section header")
		if err != nil {
			return err
		}
		p.f.Sections = append(p.f.Sections, decodeSectionHeader(data))
	}
	return nil
}
