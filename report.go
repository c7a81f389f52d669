package pe

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// TimestampLayout is how FileHeader.TimeDateStamp is rendered in reports.
const TimestampLayout = "2006-01-02 15:04:05"

// WriteReport writes a human readable dump of the decoded headers to w.
func (f *File) WriteReport(w io.Writer) error {
	rw := &reportWriter{w: w}

	rw.line(0, "DOS_HEADER")
	rw.line(1, "PE magic: %s", magicString(uint32(f.DOSHeader.Magic), 2))
	rw.line(1, "offset to header: %#08x", f.DOSHeader.AddressOfNewEXEHeader)

	rw.line(0, "NT_HEADERS")
	rw.line(1, "signature: %s", magicString(f.Signature, 4))

	fh := &f.FileHeader
	rw.line(1, "FILE_HEADER")
	if name := MachineName(fh.Machine); name != "" {
		rw.line(2, "machine: %#04x (%s)", fh.Machine, name)
	} else {
		rw.line(2, "machine: %#04x", fh.Machine)
	}
	rw.line(2, "number of sections: %d", fh.NumberOfSections)
	rw.line(2, "timestamp: %s", fh.Timestamp().Format(TimestampLayout))
	rw.line(2, "characteristics: %#04x", fh.Characteristics)

	oh := &f.OptionalHeader
	rw.line(1, "OPTIONAL_HEADER")
	rw.line(2, "entry point: %#08x", oh.AddressOfEntryPoint)
	rw.line(2, "image base: %#08x", oh.ImageBase)
	rw.line(2, "section alignment: %#08x", oh.SectionAlignment)
	rw.line(2, "file alignment: %#08x", oh.FileAlignment)
	rw.line(2, "size of image: %#08x", oh.SizeOfImage)
	rw.line(2, "size of headers: %#08x", oh.SizeOfHeaders)
	rw.line(2, "DATA_DIRECTORIES")
	for _, dd := range oh.Directories() {
		rw.line(3, "%-20s virtual address: %#08x size: %#08x", dd.Name, dd.VirtualAddress, dd.Size)
	}

	for i := range f.Sections {
		sh := &f.Sections[i]
		rw.line(0, "SECTION_HEADER")
		rw.line(1, "name: %s", sh.NameString())
		rw.line(1, "virtual size: %#08x", sh.VirtualSize)
		rw.line(1, "virtual address: %#08x", sh.VirtualAddress)
		rw.line(1, "size of raw data: %#08x", sh.SizeOfRawData)
		rw.line(1, "pointer to raw data: %#08x", sh.PointerToRawData)
		rw.line(1, "characteristics: %s", sh.Flags())
	}
	return rw.err
}

// String renders the same report as WriteReport.
func (f *File) String() string {
	var buf bytes.Buffer
	_ = f.WriteReport(&buf)
	return buf.String()
}

type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) line(depth int, format string, args ...any) {
	if rw.err != nil {
		return
	}
	for i := 0; i < depth; i++ {
		if _, rw.err = io.WriteString(rw.w, "\t"); rw.err != nil {
			rw.err = errors.WithMessage(rw.err, "fail to write report")
			return
		}
	}
	if _, rw.err = fmt.Fprintf(rw.w, format+"\n", args...); rw.err != nil {
		rw.err = errors.WithMessage(rw.err, "fail to write report")
	}
}

// magicString renders the first n little-endian bytes of v as text, quoting
// unprintable bytes, e.g. "MZ" or "PE\x00\x00".
func magicString(v uint32, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	q := strconv.Quote(string(b))
	return q[1 : len(q)-1]
}
