package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultViewLimit caps how much of an entry Read loads for viewing.
const DefaultViewLimit = 1 << 20

// Extract writes the named entries (every entry when names is empty) under
// dest, recreating their directory structure. It returns how many entries
// were extracted before any error.
func (a *Archive) Extract(ctx context.Context, names []string, dest, password string, progress ProgressFunc) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.open {
		return 0, ErrClosed
	}

	rc, err := a.openReader()
	if err != nil {
		return 0, err
	}
	defer a.closeReader(rc)

	files, err := selectFiles(rc.File, names)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	var enc *encryptedSource
	defer func() {
		if enc != nil {
			enc.Close()
		}
	}()

	extracted := 0
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}
		if err := a.extractFile(f, dest, password, &enc); err != nil {
			return extracted, err
		}
		extracted++
		if progress != nil {
			progress(i+1, len(files), f.Name)
		}
	}
	return extracted, nil
}

// Conflicts returns the destination paths that extracting names into dest
// would overwrite.
func (a *Archive) Conflicts(names []string, dest string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.open {
		return nil, ErrClosed
	}

	rc, err := a.openReader()
	if err != nil {
		return nil, err
	}
	defer a.closeReader(rc)

	files, err := selectFiles(rc.File, names)
	if err != nil {
		return nil, err
	}

	var existing []string
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			continue
		}
		if _, err := os.Lstat(target); err == nil {
			existing = append(existing, target)
		}
	}
	return existing, nil
}

// Read returns the decompressed content of one entry. Entries larger than
// limit are refused with ErrTooLarge; a limit of zero disables the check.
func (a *Archive) Read(name, password string, limit int64) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.open {
		return nil, ErrClosed
	}

	rc, err := a.openReader()
	if err != nil {
		return nil, err
	}
	defer a.closeReader(rc)

	files, err := selectFiles(rc.File, []string{name})
	if err != nil {
		return nil, err
	}
	f := files[0]
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%w: %s is %s", ErrTooLarge, name, FormatSize(f.UncompressedSize64))
	}

	var enc *encryptedSource
	defer func() {
		if enc != nil {
			enc.Close()
		}
	}()

	r, err := a.openContent(f, password, &enc)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func selectFiles(all []*zip.File, names []string) ([]*zip.File, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*zip.File, len(all))
	for _, f := range all {
		if _, dup := byName[f.Name]; !dup {
			byName[f.Name] = f
		}
	}
	files := make([]*zip.File, 0, len(names))
	for _, n := range names {
		f, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, n)
		}
		files = append(files, f)
	}
	return files, nil
}

func (a *Archive) extractFile(f *zip.File, dest, password string, enc **encryptedSource) error {
	target, err := safeJoin(dest, f.Name)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Name, err)
	}

	r, err := a.openContent(f, password, enc)
	if err != nil {
		return err
	}
	defer r.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	_, err = io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}

	if !f.Modified.IsZero() {
		os.Chtimes(target, f.Modified, f.Modified)
	}
	return nil
}

// openContent opens an entry's payload, routing AES and ZipCrypto entries
// through the encrypted reader.
func (a *Archive) openContent(f *zip.File, password string, enc **encryptedSource) (io.ReadCloser, error) {
	if f.Flags&0x1 == 0 {
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		return r, nil
	}
	if password == "" {
		return nil, fmt.Errorf("%w: %s", ErrPasswordRequired, f.Name)
	}
	if *enc == nil {
		src, err := openEncrypted(a.path)
		if err != nil {
			return nil, err
		}
		*enc = src
	}
	return (*enc).open(f.Name, password, f.Method != MethodAES)
}

// safeJoin maps an entry name below dest, refusing absolute names and
// names that climb out with "..".
func safeJoin(dest, name string) (string, error) {
	local := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if local == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(dest, local), nil
}
