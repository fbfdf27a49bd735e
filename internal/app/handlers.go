package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"retro-zip/internal/archive"
	"retro-zip/internal/debug/eventbus"
	"retro-zip/internal/settings"
	"retro-zip/internal/worker"
)

func (c *Controller) NewArchive() {
	c.view.ChooseSaveArchive(c.lastDirectory(), c.CreateArchive)
}

// CreateArchive writes an empty archive at path and opens it.
func (c *Controller) CreateArchive(path string) {
	if filepath.Ext(path) == "" {
		path += ".zip"
	}
	a, err := archive.Create(path)
	if err != nil {
		c.view.ShowError("Error", fmt.Errorf("Failed to create archive: %w", err))
		return
	}

	c.activate(a)
	c.publish(eventbus.ArchiveCreated, a, nil)
	c.view.SetStatus("Created new archive: " + filepath.Base(path))
}

func (c *Controller) OpenArchive() {
	c.view.ChooseOpenArchive(c.lastDirectory(), c.OpenPath)
}

func (c *Controller) OpenPath(path string) {
	ctx := c.debug.StartOperation(context.Background(), "open")
	a, err := archive.Open(path)
	c.debug.EndOperation(ctx)

	if errors.Is(err, archive.ErrInvalidArchive) {
		c.view.ShowError("Error", errors.New("Invalid or corrupted ZIP file!"))
		return
	}
	if err != nil {
		c.view.ShowError("Error", fmt.Errorf("Failed to open archive: %w", err))
		return
	}

	c.activate(a)
	c.publish(eventbus.ArchiveOpened, a, nil)

	count := 0
	if entries, err := a.Entries(); err == nil {
		count = len(entries)
	}
	c.view.SetStatus(fmt.Sprintf("Opened: %s (%d files)", filepath.Base(path), count))
}

// OpenRecent opens a history entry, dropping it when the file is gone.
func (c *Controller) OpenRecent(path string) {
	if _, err := os.Stat(path); err != nil {
		if c.history != nil {
			c.history.Remove(path)
			c.refreshRecent()
		}
		c.view.ShowWarning("Missing Archive", fmt.Sprintf("%s no longer exists.", path))
		return
	}
	c.OpenPath(path)
}

func (c *Controller) CloseArchive() {
	a := c.Current()
	if a == nil {
		return
	}
	c.setCurrent(nil)
	if c.watcher != nil {
		c.watcher.Unwatch()
	}
	c.publish(eventbus.ArchiveClosed, a, nil)

	c.view.SetArchive("")
	c.refresh()
	c.view.SetStatus("Ready")
}

func (c *Controller) AddFiles() {
	if c.Current() == nil {
		c.view.ShowWarning("No Archive", "Please create or open an archive first!")
		return
	}
	c.view.ChooseFiles(c.lastDirectory(), c.AddPaths)
}

// AddPaths adds files and directories to the open archive on the worker.
func (c *Controller) AddPaths(paths []string) {
	a := c.Current()
	if a == nil || len(paths) == 0 {
		return
	}

	opts := c.view.AddOptions()
	c.settings.Update(func(s *settings.Settings) {
		s.CompressionLevel = opts.Level
		s.CompressionMethod = string(opts.Compression)
	})

	var result archive.AddResult
	c.suppressWatch()
	c.start("add", func(ctx context.Context, report func(float64, string)) error {
		ctx = c.debug.StartOperation(ctx, "add")
		defer c.debug.EndOperation(ctx)

		var err error
		result, err = a.Add(ctx, paths, opts, func(done, total int, name string) {
			report(float64(done)/float64(total), "Adding: "+name)
		})
		return err
	}, func(res worker.Result) {
		c.suppressWatch()
		if res.Err != nil {
			c.view.ShowError("Error", fmt.Errorf("Failed to add files: %w", res.Err))
			c.refresh()
			return
		}

		c.publish(eventbus.ArchiveModified, a, map[string]interface{}{
			"added":      result.Added,
			"skipped":    result.Skipped,
			"duplicates": result.Duplicates,
		})
		c.refresh()
		status := fmt.Sprintf("Added %d file(s)", result.Added)
		if result.Skipped > 0 {
			status += fmt.Sprintf(", skipped %d missing", result.Skipped)
		}
		if result.Duplicates > 0 {
			status += fmt.Sprintf(", %d duplicate name(s) replaced", result.Duplicates)
		}
		if used := archive.EffectiveCompression(opts); opts.Password != "" && opts.Compression != "" && used != opts.Compression {
			status += fmt.Sprintf(", encrypted with %s", used)
		}
		c.view.SetStatus(status)
		c.forgetPassword()
	})
}

func (c *Controller) ExtractSelected() {
	if c.Current() == nil {
		c.view.ShowWarning("No Archive", "No archive is currently open!")
		return
	}
	names := c.view.SelectedEntries()
	if len(names) == 0 {
		c.view.ShowWarning("No Selection", "Please select files to extract!")
		return
	}
	c.view.ChooseFolder(c.lastDirectory(), func(dest string) {
		c.ExtractTo(names, dest)
	})
}

func (c *Controller) ExtractAll() {
	if c.Current() == nil {
		c.view.ShowWarning("No Archive", "No archive is currently open!")
		return
	}
	c.view.ChooseFolder(c.lastDirectory(), func(dest string) {
		c.ExtractTo(nil, dest)
	})
}

// ExtractTo extracts names (every entry when empty) into dest, asking
// first when files would be overwritten and confirm_overwrite is on.
func (c *Controller) ExtractTo(names []string, dest string) {
	a := c.Current()
	if a == nil {
		return
	}

	if c.settings.Get().ConfirmOverwrite {
		existing, err := a.Conflicts(names, dest)
		if err != nil {
			c.view.ShowError("Error", fmt.Errorf("Extraction failed: %w", err))
			return
		}
		if len(existing) > 0 {
			msg := fmt.Sprintf("%d file(s) already exist in %s.\nOverwrite them?", len(existing), dest)
			c.view.Confirm("Confirm Overwrite", msg, func(ok bool) {
				if ok {
					c.startExtract(a, names, dest)
				}
			})
			return
		}
	}
	c.startExtract(a, names, dest)
}

func (c *Controller) startExtract(a *archive.Archive, names []string, dest string) {
	password := c.view.Password()

	var extracted int
	c.start("extract", func(ctx context.Context, report func(float64, string)) error {
		ctx = c.debug.StartOperation(ctx, "extract")
		defer c.debug.EndOperation(ctx)

		var err error
		extracted, err = a.Extract(ctx, names, dest, password, func(done, total int, name string) {
			report(float64(done)/float64(total), "Extracting: "+name)
		})
		return err
	}, func(res worker.Result) {
		switch {
		case errors.Is(res.Err, archive.ErrPasswordRequired):
			c.view.ShowError("Password Required", errors.New("This archive requires a password!"))
			return
		case errors.Is(res.Err, archive.ErrWrongPassword):
			c.view.ShowError("Password Required", errors.New("Wrong password!"))
			return
		case res.Err != nil:
			c.view.ShowError("Error", fmt.Errorf("Extraction failed: %w", res.Err))
			return
		}

		c.settings.Update(func(s *settings.Settings) { s.LastDirectory = dest })
		c.publish(eventbus.ArchiveExtracted, a, map[string]interface{}{
			"destination": dest,
			"count":       extracted,
		})
		c.view.SetStatus(fmt.Sprintf("Extracted %d file(s) to %s", extracted, dest))
		c.view.ShowInfo("Complete", fmt.Sprintf("Successfully extracted %d file(s)!", extracted))
		c.forgetPassword()
	})
}

func (c *Controller) DeleteSelected() {
	a := c.Current()
	if a == nil {
		return
	}
	names := c.view.SelectedEntries()
	if len(names) == 0 {
		c.view.ShowWarning("No Selection", "Please select files to delete!")
		return
	}

	msg := fmt.Sprintf("Delete %d file(s) from archive?", len(names))
	c.view.Confirm("Confirm Delete", msg, func(ok bool) {
		if !ok {
			return
		}
		if c.runner.Busy() {
			c.view.SetStatus("Please wait...")
			return
		}

		c.suppressWatch()
		ctx := c.debug.StartOperation(context.Background(), "delete")
		removed, err := a.Delete(names)
		c.debug.EndOperation(ctx)
		c.suppressWatch()

		if err != nil {
			c.view.ShowError("Error", fmt.Errorf("Failed to delete files: %w", err))
			return
		}
		c.publish(eventbus.ArchiveModified, a, map[string]interface{}{"deleted": removed})
		c.refresh()
		c.view.SetStatus(fmt.Sprintf("Deleted %d file(s)", removed))
	})
}

// ViewSelected shows the first selected entry as text.
func (c *Controller) ViewSelected() {
	a := c.Current()
	names := c.view.SelectedEntries()
	if a == nil || len(names) == 0 {
		return
	}
	name := names[0]

	data, err := a.Read(name, c.view.Password(), archive.DefaultViewLimit)
	switch {
	case errors.Is(err, archive.ErrTooLarge):
		c.view.ShowWarning("File Too Large", "File is too large to view inline!")
		return
	case errors.Is(err, archive.ErrPasswordRequired), errors.Is(err, archive.ErrWrongPassword):
		c.view.ShowError("Error", errors.New("Password required to view this file!"))
		return
	case err != nil:
		c.view.ShowError("Error", fmt.Errorf("Failed to view file: %w", err))
		return
	}

	c.view.ShowText("Viewing: "+name, archive.DecodeText(data))
}

func (c *Controller) ShowProperties() {
	a := c.Current()
	names := c.view.SelectedEntries()
	if a == nil || len(names) == 0 {
		return
	}

	entry, err := a.Entry(names[0])
	if err != nil {
		c.view.ShowError("Error", fmt.Errorf("Failed to get properties: %w", err))
		return
	}
	c.view.ShowText("File Properties", PropertiesText(entry))
}

func (c *Controller) ShowArchiveInfo() {
	a := c.Current()
	if a == nil {
		c.view.ShowWarning("No Archive", "No archive is currently open!")
		return
	}

	info, err := a.Info()
	if err != nil {
		c.view.ShowError("Error", fmt.Errorf("Failed to get archive info: %w", err))
		return
	}
	c.view.ShowText("Archive Information", ArchiveInfoText(info))
}

// HandleDrop opens a single dropped .zip when nothing is open, otherwise
// adds the dropped paths to the open archive.
func (c *Controller) HandleDrop(paths []string) {
	if len(paths) == 0 {
		return
	}
	if c.Current() == nil {
		if len(paths) == 1 && strings.EqualFold(filepath.Ext(paths[0]), ".zip") {
			c.OpenPath(paths[0])
			return
		}
		c.view.ShowWarning("No Archive", "Please create or open an archive first!")
		return
	}
	c.AddPaths(paths)
}

func (c *Controller) SelectionChanged(count int) {
	if count > 0 {
		c.view.SetStatus(fmt.Sprintf("Selected %d file(s)", count))
	}
}

func (c *Controller) SelectAll() {
	c.view.SelectAll()
}

func (c *Controller) ShowOptions() {
	c.view.ShowOptions(c.settings.Get(), func(next settings.Settings) {
		c.settings.Update(func(s *settings.Settings) {
			s.ShowHidden = next.ShowHidden
			s.ConfirmOverwrite = next.ConfirmOverwrite
			s.RememberPassword = next.RememberPassword
			s.CompressionLevel = next.CompressionLevel
			s.CompressionMethod = next.CompressionMethod
		})
		if err := c.settings.Save(); err != nil {
			c.view.ShowError("Error", fmt.Errorf("Failed to save settings: %w", err))
			return
		}
		c.refresh()
		c.view.ShowInfo("Saved", "Settings saved successfully!")
	})
}

func (c *Controller) ShowHelp() {
	c.view.ShowText("Help & About", HelpText)
}

func (c *Controller) Refresh() {
	c.refresh()
	c.refreshRecent()
}

func (c *Controller) forgetPassword() {
	if !c.settings.Get().RememberPassword {
		c.view.ClearPassword()
	}
}

// start runs a long operation on the worker with progress wired to the view.
func (c *Controller) start(name string, job worker.Job, onDone func(worker.Result)) {
	_, err := c.runner.Start(name, job, func(p worker.Progress) {
		c.view.SetProgress(p.Fraction)
		c.view.SetStatus(p.Message)
	}, func(res worker.Result) {
		c.view.SetProgress(0)
		onDone(res)
	})
	if errors.Is(err, worker.ErrBusy) {
		c.view.SetStatus("Please wait...")
		return
	}
	if err != nil {
		c.view.ShowError("Error", err)
	}
}
