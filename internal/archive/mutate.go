package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// AddOptions controls how new entries are written.
type AddOptions struct {
	Compression Compression
	Level       int
	// Password switches new entries to AES-256 when non-empty.
	Password string
}

type source struct {
	path string
	name string
	info fs.FileInfo
}

// AddResult counts what an Add call did.
type AddResult struct {
	Added   int
	Skipped int
	// Duplicates counts sources dropped because a later source in the
	// same call maps to the same archive name.
	Duplicates int
}

// collectSources expands paths into files to store. Regular files keep
// their base name; directories are stored relative to their parent.
// Paths that do not exist are skipped and counted.
func collectSources(paths []string) ([]source, int, error) {
	var sources []source
	skipped := 0
	for _, p := range paths {
		p = filepath.Clean(p)
		st, err := os.Stat(p)
		if err != nil {
			skipped++
			continue
		}
		if st.Mode().IsRegular() {
			sources = append(sources, source{path: p, name: filepath.Base(p), info: st})
			continue
		}
		if !st.IsDir() {
			skipped++
			continue
		}
		base := filepath.Dir(p)
		err = filepath.WalkDir(p, func(walked string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(base, walked)
			if err != nil {
				return err
			}
			sources = append(sources, source{path: walked, name: filepath.ToSlash(rel), info: info})
			return nil
		})
		if err != nil {
			return nil, skipped, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	return sources, skipped, nil
}

// dedupeSources keeps the last source for each archive name, in the
// order those last occurrences appear.
func dedupeSources(sources []source) []source {
	last := make(map[string]int, len(sources))
	for i, s := range sources {
		last[s.name] = i
	}
	kept := sources[:0:0]
	for i, s := range sources {
		if last[s.name] == i {
			kept = append(kept, s)
		}
	}
	return kept
}

// Add writes the files under paths into the archive. An added name
// replaces an existing entry of the same name.
func (a *Archive) Add(ctx context.Context, paths []string, opts AddOptions, progress ProgressFunc) (AddResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.open {
		return AddResult{}, ErrClosed
	}

	collected, skipped, err := collectSources(paths)
	if err != nil {
		return AddResult{Skipped: skipped}, err
	}
	sources := dedupeSources(collected)
	result := AddResult{Skipped: skipped, Duplicates: len(collected) - len(sources)}
	if len(sources) == 0 {
		return result, nil
	}

	replaced := make(map[string]bool, len(sources))
	modTimes := make(map[string]fs.FileInfo, len(sources))
	for _, s := range sources {
		replaced[s.name] = true
		modTimes[s.name] = s.info
	}

	var staged *zip.ReadCloser
	if opts.Password != "" {
		stagePath := a.path + ".aes.tmp"
		defer os.Remove(stagePath)
		method := EncryptedCompression(opts.Compression).Method()
		if err := stageEncrypted(ctx, stagePath, sources, opts.Password, method, progress); err != nil {
			return result, err
		}
		staged, err = zip.OpenReader(stagePath)
		if err != nil {
			return result, fmt.Errorf("open staged entries: %w", err)
		}
		defer staged.Close()
	}

	compression := opts.Compression
	if compression == "" {
		compression = CompressionDeflate
	}

	err = a.rewrite(func(dst *zip.Writer, src *zip.Reader) error {
		for _, f := range src.File {
			if replaced[f.Name] {
				continue
			}
			if err := dst.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
		}

		if staged != nil {
			for _, f := range staged.File {
				if err := copyStaged(dst, f, modTimes[f.Name]); err != nil {
					return err
				}
			}
			return nil
		}

		registerCompressor(dst, compression, opts.Level)
		for i, s := range sources {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeSource(dst, s, compression.Method()); err != nil {
				return err
			}
			if progress != nil {
				progress(i+1, len(sources), s.name)
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	result.Added = len(sources)
	return result, nil
}

func writeSource(dst *zip.Writer, s source, method uint16) error {
	hdr, err := zip.FileInfoHeader(s.info)
	if err != nil {
		return fmt.Errorf("header for %s: %w", s.path, err)
	}
	hdr.Name = s.name
	hdr.Method = method

	w, err := dst.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", s.name, err)
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

// copyStaged moves an already-encrypted entry across without touching its payload.
func copyStaged(dst *zip.Writer, f *zip.File, info fs.FileInfo) error {
	fh := f.FileHeader
	if info != nil {
		fh.SetModTime(info.ModTime())
	}
	raw, err := f.OpenRaw()
	if err != nil {
		return fmt.Errorf("read staged %s: %w", f.Name, err)
	}
	w, err := dst.CreateRaw(&fh)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", f.Name, err)
	}
	if _, err := io.Copy(w, raw); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}

// Delete rewrites the archive without the named entries and returns how
// many were removed. Unknown names leave the archive untouched.
func (a *Archive) Delete(names []string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.open {
		return 0, ErrClosed
	}
	if len(names) == 0 {
		return 0, nil
	}

	doomed := make(map[string]bool, len(names))
	for _, n := range names {
		doomed[n] = true
	}

	removed := 0
	err := a.rewrite(func(dst *zip.Writer, src *zip.Reader) error {
		present := make(map[string]bool, len(src.File))
		for _, f := range src.File {
			present[f.Name] = true
		}
		for _, n := range names {
			if !present[n] {
				return fmt.Errorf("%w: %s", ErrNotFound, n)
			}
		}

		for _, f := range src.File {
			if doomed[f.Name] {
				removed++
				continue
			}
			if err := dst.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// rewrite streams a new archive into <path>.tmp and renames it over the
// original. On failure the temp file is removed and the original is untouched.
func (a *Archive) rewrite(fill func(dst *zip.Writer, src *zip.Reader) error) error {
	st, err := os.Stat(a.path)
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	src, err := a.openReader()
	if err != nil {
		return err
	}

	tmpPath := a.path + ".tmp"
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, st.Mode().Perm())
	if err != nil {
		a.closeReader(src)
		return fmt.Errorf("create temp archive: %w", err)
	}

	zw := zip.NewWriter(out)
	if src.Comment != "" {
		err = zw.SetComment(src.Comment)
	}
	if err == nil {
		err = fill(zw, &src.Reader)
	}
	if err == nil {
		err = zw.Close()
	}
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp archive: %w", cerr)
	}
	a.closeReader(src)

	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, a.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}
