package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/h2non/filetype"
	pe "github.com/wanglei-coder/peheader"
	"github.com/xyproto/env/v2"
)

var (
	filename    string
	format      string
	maxSections int
)

func init() {
	flag.StringVar(&filename, "filename", "", "Please enter the file path")
	flag.StringVar(&format, "format", env.Str("PEHEADER_FORMAT", "text"), "Output format: text or json")
	flag.IntVar(&maxSections, "max-sections", env.Int("PEHEADER_MAX_SECTIONS", pe.DefaultMaxSections),
		"Reject images declaring more section headers than this")
}

type Info struct {
	FileType        string
	MachineType     uint16
	Machine         string
	EntryPoint      uint32
	ImageBase       uint32
	CompilationTime string
	RichHeaderHash  string `json:",omitempty"`
	DataDirectories []*DataDirectory
	Sections        []*Section
}

type DataDirectory struct {
	Name           string
	VirtualAddress uint32
	Size           uint32
}

type Section struct {
	Name             string
	Flags            string
	Permissions      string
	RawSize          uint32
	PointerToRawData uint32
	VirtualAddress   uint32
	VirtualSize      uint32
}

func getSections(f *pe.File) []*Section {
	sections := make([]*Section, 0, len(f.Sections))
	for i := range f.Sections {
		s := &f.Sections[i]
		sections = append(sections, &Section{
			Name:             s.NameString(),
			Flags:            s.Flags(),
			Permissions:      s.Permissions(),
			RawSize:          s.SizeOfRawData,
			PointerToRawData: s.PointerToRawData,
			VirtualAddress:   s.VirtualAddress,
			VirtualSize:      s.VirtualSize,
		})
	}
	return sections
}

func getDataDirectories(f *pe.File) []*DataDirectory {
	dirs := make([]*DataDirectory, 0, pe.NumberOfDirectoryEntries)
	for _, dd := range f.OptionalHeader.Directories() {
		dirs = append(dirs, &DataDirectory{
			Name:           dd.Name,
			VirtualAddress: dd.VirtualAddress,
			Size:           dd.Size,
		})
	}
	return dirs
}

// sniff reports the MIME type of the first bytes of filename.
func sniff(filename string) (string, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(fd, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return GetFileType(head[:n]), nil
}

func main() {
	flag.Parse()
	if filename == "" {
		flag.Usage()
		os.Exit(2)
	}

	fileType, err := sniff(filename)
	if err != nil {
		log.Fatal(err)
	}
	if fileType != ExeMIME {
		log.Printf("warning: %s detected as %s", filename, fileType)
	}

	f, err := pe.NewFile(filename, pe.WithMaxSections(maxSections))
	if err != nil {
		log.Fatal(err)
	}

	switch format {
	case "json":
		info := Info{
			FileType:        fileType,
			MachineType:     f.FileHeader.Machine,
			Machine:         pe.MachineName(f.FileHeader.Machine),
			EntryPoint:      f.OptionalHeader.AddressOfEntryPoint,
			ImageBase:       f.OptionalHeader.ImageBase,
			CompilationTime: f.FileHeader.Timestamp().Format(pe.TimestampLayout),
			RichHeaderHash:  f.RichHeaderHash(),
			DataDirectories: getDataDirectories(f),
			Sections:        getSections(f),
		}
		data, _ := json.MarshalIndent(&info, "", "    ")
		fmt.Printf("%s\n", data)
	case "text":
		fmt.Println(filename)
		if err := f.WriteReport(os.Stdout); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown format %q", format)
	}
}

const ExeMIME = "application/vnd.microsoft.portable-executable"

func GetFileType(data []byte) string {
	kind, _ := filetype.Match(data)
	if kind == filetype.Unknown {
		return "Data"
	}
	return kind.MIME.Value
}
