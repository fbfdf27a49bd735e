package archive

import (
	"archive/zip"
	"io/fs"
	"time"
)

// Entry is one file's metadata as listed in the central directory.
type Entry struct {
	Name           string
	Size           uint64
	CompressedSize uint64
	Modified       time.Time
	CRC32          uint32
	Method         uint16
	Encrypted      bool
	IsDir          bool
	Comment        string
	Mode           fs.FileMode
	ExternalAttrs  uint32
	DataOffset     int64
}

func entryFromFile(f *zip.File) Entry {
	info := f.FileInfo()
	entry := Entry{
		Name:           f.Name,
		Size:           f.UncompressedSize64,
		CompressedSize: f.CompressedSize64,
		Modified:       f.Modified,
		CRC32:          f.CRC32,
		Method:         f.Method,
		Encrypted:      f.Flags&0x1 != 0,
		IsDir:          info.IsDir(),
		Comment:        f.Comment,
		Mode:           info.Mode(),
		ExternalAttrs:  f.ExternalAttrs,
	}
	if offset, err := f.DataOffset(); err == nil {
		entry.DataOffset = offset
	}
	return entry
}

// Ratio is the space saved by compression as a percentage.
func (e Entry) Ratio() float64 {
	if e.Size == 0 {
		return 0
	}
	return (1 - float64(e.CompressedSize)/float64(e.Size)) * 100
}

// Stats summarises an archive listing
type Stats struct {
	Files          int
	TotalSize      uint64
	CompressedSize uint64
}

func StatsOf(entries []Entry) Stats {
	stats := Stats{Files: len(entries)}
	for _, e := range entries {
		stats.TotalSize += e.Size
		stats.CompressedSize += e.CompressedSize
	}
	return stats
}

func (s Stats) Ratio() float64 {
	if s.TotalSize == 0 {
		return 0
	}
	return (1 - float64(s.CompressedSize)/float64(s.TotalSize)) * 100
}

// Info describes the archive file itself
type Info struct {
	Path     string
	FileSize int64
	Modified time.Time
	Comment  string
	Stats    Stats
}
