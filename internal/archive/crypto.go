package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	yzip "github.com/yeka/zip"
)

// EncryptedCompression is the compression AES entries are written with.
// The AES writer keeps one process-wide compressor per method, so only
// store and its default deflate are available.
func EncryptedCompression(c Compression) Compression {
	if c == CompressionStore {
		return CompressionStore
	}
	return CompressionDeflate
}

// EffectiveCompression is the compression Add will actually use for opts.
func EffectiveCompression(opts AddOptions) Compression {
	c := opts.Compression
	if c == "" {
		c = CompressionDeflate
	}
	if opts.Password != "" {
		return EncryptedCompression(c)
	}
	return c
}

// stageEncrypted writes sources as AES-256 entries into a scratch archive
// at path. The finished entries are raw-copied into the real archive.
func stageEncrypted(ctx context.Context, path string, sources []source, password string, method uint16, progress ProgressFunc) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create staging archive: %w", err)
	}
	zw := yzip.NewWriter(out)

	for i, s := range sources {
		if err := ctx.Err(); err != nil {
			zw.Close()
			out.Close()
			return err
		}
		if err := writeEncrypted(zw, s, password, method); err != nil {
			zw.Close()
			out.Close()
			return err
		}
		if progress != nil {
			progress(i+1, len(sources), s.name)
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finish staging archive: %w", err)
	}
	return out.Close()
}

func writeEncrypted(zw *yzip.Writer, s source, password string, method uint16) error {
	fh := &yzip.FileHeader{Name: s.name, Method: method}
	fh.SetPassword(password)
	fh.SetEncryptionMethod(yzip.AES256Encryption)
	w, err := zw.CreateHeader(fh)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", s.name, err)
	}
	in, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer in.Close()

	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("write %s: %w", s.name, err)
	}
	return nil
}

// encryptedSource reads password-protected entries of an archive.
type encryptedSource struct {
	rc    *yzip.ReadCloser
	files map[string]*yzip.File
}

func openEncrypted(path string) (*encryptedSource, error) {
	rc, err := yzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open encrypted entries: %w", err)
	}
	files := make(map[string]*yzip.File, len(rc.File))
	for _, f := range rc.File {
		files[f.Name] = f
	}
	return &encryptedSource{rc: rc, files: files}, nil
}

func (e *encryptedSource) Close() error {
	return e.rc.Close()
}

// open decrypts one entry. legacy marks ZipCrypto entries, which the
// standard reader sees without the AES method id.
func (e *encryptedSource) open(name, password string, legacy bool) (io.ReadCloser, error) {
	f, ok := e.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: %s", ErrPasswordRequired, name)
	}
	f.SetPassword(password)
	rc, err := f.Open()
	if errors.Is(err, yzip.ErrPassword) {
		return nil, fmt.Errorf("%w: %s", ErrWrongPassword, name)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &authReader{ReadCloser: rc, name: name, legacy: legacy}, nil
}

// authReader maps late verification failures to ErrWrongPassword. The AES
// password verifier is only two bytes and ZipCrypto has none, so a failed
// authentication code or a legacy checksum mismatch means a wrong password.
type authReader struct {
	io.ReadCloser
	name   string
	legacy bool
}

func (r *authReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if errors.Is(err, yzip.ErrAuthentication) || (r.legacy && errors.Is(err, yzip.ErrChecksum)) {
		return n, fmt.Errorf("%w: %s", ErrWrongPassword, r.name)
	}
	return n, err
}
