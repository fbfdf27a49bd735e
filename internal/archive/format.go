package archive

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	DateFormat     = "2006-01-02 15:04"
	DateTimeFormat = "2006-01-02 15:04:05"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with one decimal, e.g. "1.5 KB".
func FormatSize(size uint64) string {
	value := float64(size)
	for _, unit := range sizeUnits {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f TB", value)
}

// FormatRatio renders the saved-space percentage of an entry, "-" for empty entries.
func FormatRatio(e Entry) string {
	if e.Size == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", e.Ratio())
}

func FormatCRC(crc uint32) string {
	return fmt.Sprintf("%08X", crc)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateFormat)
}

var methodNames = map[uint16]string{
	MethodStore:   "Stored",
	MethodDeflate: "Deflated",
	MethodBZIP2:   "BZIP2",
	MethodLZMA:    "LZMA",
	MethodZstd:    "Zstandard",
	MethodAES:     "AES",
	MethodBrotli:  "Brotli",
}

func MethodName(method uint16) string {
	if name, ok := methodNames[method]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", method)
}

var systemFiles = []string{
	"Thumbs.db", "Desktop.ini", ".DS_Store",
	"__MACOSX", ".AppleDouble", ".LSOverride",
}

// IsHidden reports whether any element of an entry name is a dot-file or OS metadata.
func IsHidden(name string) bool {
	for _, part := range strings.Split(strings.TrimSuffix(name, "/"), "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") && len(part) > 1 {
			return true
		}
		for _, sys := range systemFiles {
			if strings.EqualFold(part, sys) {
				return true
			}
		}
	}
	return false
}

// FilterHidden drops entries IsHidden matches.
func FilterHidden(entries []Entry) []Entry {
	visible := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !IsHidden(e.Name) {
			visible = append(visible, e)
		}
	}
	return visible
}

// DecodeText renders entry contents for the inline viewer.
func DecodeText(data []byte) string {
	if utf8.Valid(data) && bytes.IndexByte(data, 0) < 0 {
		return string(data)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return fmt.Sprintf("[Binary file - %d bytes]", len(data))
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return fmt.Sprintf("[Binary file - %d bytes]", len(data))
	}
	return string(decoded)
}
