package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/foobaz/go-zopfli/zopfli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

const (
	MethodStore   = zip.Store
	MethodDeflate = zip.Deflate
	MethodBZIP2   = uint16(12)
	MethodLZMA    = uint16(14)
	MethodZstd    = uint16(93)
	MethodAES     = uint16(99)
	// private id, no APPNOTE assignment exists for brotli
	MethodBrotli = uint16(121)
)

// Compression selects how new entries are written.
type Compression string

const (
	CompressionStore   Compression = "store"
	CompressionDeflate Compression = "deflate"
	CompressionZopfli  Compression = "zopfli"
	CompressionZstd    Compression = "zstd"
	CompressionBrotli  Compression = "brotli"
)

const (
	MinLevel     = 1
	MaxLevel     = 9
	DefaultLevel = 6
)

var Compressions = []Compression{
	CompressionStore, CompressionDeflate, CompressionZopfli, CompressionZstd, CompressionBrotli,
}

func ParseCompression(name string) (Compression, error) {
	c := Compression(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Compressions {
		if c == known {
			return c, nil
		}
	}
	return CompressionDeflate, fmt.Errorf("unknown compression %q", name)
}

// Method is the ZIP method id entries written with c carry.
func (c Compression) Method() uint16 {
	switch c {
	case CompressionStore:
		return MethodStore
	case CompressionZstd:
		return MethodZstd
	case CompressionBrotli:
		return MethodBrotli
	default:
		return MethodDeflate
	}
}

func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// registerCompressor installs the writer for c on w at the given level.
func registerCompressor(w *zip.Writer, c Compression, level int) {
	level = ClampLevel(level)
	switch c {
	case CompressionDeflate:
		w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	case CompressionZopfli:
		w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return &zopfliWriter{opts: zopfliOptions(level), output: out}, nil
		})
	case CompressionZstd:
		w.RegisterCompressor(MethodZstd, zstd.ZipCompressor(
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		))
	case CompressionBrotli:
		w.RegisterCompressor(MethodBrotli, func(out io.Writer) (io.WriteCloser, error) {
			return brotli.NewWriterLevel(out, level), nil
		})
	}
}

// zopfliOptions maps level to the iteration count; DefaultLevel gives
// zopfli's own default of 15.
func zopfliOptions(level int) zopfli.Options {
	opts := zopfli.DefaultOptions()
	opts.NumIterations = ClampLevel(level) * 5 / 2
	return opts
}

// registerDecompressors lets r open every method this package can write.
func registerDecompressors(r *zip.Reader) {
	r.RegisterDecompressor(zip.Deflate, flate.NewReader)
	r.RegisterDecompressor(MethodZstd, zstd.ZipDecompressor())
	r.RegisterDecompressor(MethodBrotli, func(input io.Reader) io.ReadCloser {
		return io.NopCloser(brotli.NewReader(input))
	})
}

// zopfliWriter buffers the whole entry since zopfli emits a single final block.
type zopfliWriter struct {
	opts   zopfli.Options
	output io.Writer
	buf    bytes.Buffer
}

func (z *zopfliWriter) Write(p []byte) (int, error) {
	return z.buf.Write(p)
}

func (z *zopfliWriter) Close() error {
	return zopfli.DeflateCompress(&z.opts, z.buf.Bytes(), z.output)
}
