package app

import (
	"fmt"
	"strings"

	"retro-zip/internal/archive"
)

const rule = "══════════════════════════════════════"

func banner(title string) string {
	return fmt.Sprintf("╔%s╗\n║ %-36s ║\n╚%s╝\n\n", rule, title, rule)
}

// PropertiesText renders the properties of one entry.
func PropertiesText(e archive.Entry) string {
	var b strings.Builder
	b.WriteString(banner("FILE PROPERTIES"))
	fmt.Fprintf(&b, "File Name: %s\n", e.Name)
	fmt.Fprintf(&b, "Original Size: %s\n", archive.FormatSize(e.Size))
	fmt.Fprintf(&b, "Compressed Size: %s\n", archive.FormatSize(e.CompressedSize))
	fmt.Fprintf(&b, "Compression Ratio: %s\n", archive.FormatRatio(e))
	fmt.Fprintf(&b, "Compression Type: %s\n", archive.MethodName(e.Method))
	fmt.Fprintf(&b, "CRC-32: %s\n", archive.FormatCRC(e.CRC32))
	fmt.Fprintf(&b, "Modified: %s\n", e.Modified.Format(archive.DateTimeFormat))
	fmt.Fprintf(&b, "Encrypted: %s\n", yesNo(e.Encrypted))
	fmt.Fprintf(&b, "Mode: %s\n", e.Mode)
	fmt.Fprintf(&b, "External Attr: %d\n", e.ExternalAttrs)
	fmt.Fprintf(&b, "Data Offset: %d\n", e.DataOffset)
	if e.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", e.Comment)
	}
	return b.String()
}

// ArchiveInfoText renders the archive summary.
func ArchiveInfoText(info archive.Info) string {
	comment := info.Comment
	if comment == "" {
		comment = "(none)"
	}

	var b strings.Builder
	b.WriteString(banner("ARCHIVE INFORMATION"))
	fmt.Fprintf(&b, "Path: %s\n", info.Path)
	fmt.Fprintf(&b, "Archive Size: %s\n", archive.FormatSize(uint64(info.FileSize)))
	fmt.Fprintf(&b, "Number of Files: %d\n", info.Stats.Files)
	fmt.Fprintf(&b, "Total Uncompressed: %s\n", archive.FormatSize(info.Stats.TotalSize))
	fmt.Fprintf(&b, "Total Compressed: %s\n", archive.FormatSize(info.Stats.CompressedSize))
	fmt.Fprintf(&b, "Compression Ratio: %.1f%%\n", info.Stats.Ratio())
	fmt.Fprintf(&b, "Modified: %s\n", info.Modified.Format(archive.DateTimeFormat))
	fmt.Fprintf(&b, "\nComment: %s\n", comment)
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// HelpText is shown by the Help button.
const HelpText = `╔══════════════════════════════════════════════════════╗
║     RETRO ZIP UTILITY v1.0 - HELP & ABOUT            ║
╚══════════════════════════════════════════════════════╝

Welcome to RETRO ZIP UTILITY, the archive manager with
that classic 90s web aesthetic!

FEATURES:
─────────
• Create and open ZIP archives
• Add files via button or drag-and-drop
• Extract individual files or entire archives
• AES-256 password protection
• Store, Deflate, Zopfli, Zstandard and Brotli methods
• Adjustable compression levels (1-9)
• View file contents directly
• Detailed file properties
• Recently opened archives

DRAG & DROP:
────────────
• Drop a ZIP file to open it
• Drop files on an open archive to add them

TIPS:
─────
• Tap a row to select it, tap again to deselect
• Higher compression = smaller file but slower
• Zstandard and Brotli entries need a reader that
  supports those methods

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
Best viewed with Netscape Navigator 4.0
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
`
