package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"retro-zip/internal/archive"
)

type ListCommand struct {
	cli  *CLI
	Long bool `short:"l" long:"long" description:"show sizes, ratio, date and CRC"`
	All  bool `short:"a" long:"all" description:"include hidden entries"`
}

func (cmd *ListCommand) Execute(args []string) error {
	a, err := cmd.cli.open()
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.Entries()
	if err != nil {
		return err
	}
	if !cmd.All {
		entries = archive.FilterHidden(entries)
	}

	if !cmd.Long {
		for _, e := range entries {
			fmt.Fprintln(cmd.cli.stdout, e.Name)
		}
		return nil
	}

	tw := tabwriter.NewWriter(cmd.cli.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Size\tPacked\tRatio\tMethod\tModified\tCRC-32\t\tName")
	for _, e := range entries {
		lock := ""
		if e.Encrypted {
			lock = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			archive.FormatSize(e.Size),
			archive.FormatSize(e.CompressedSize),
			archive.FormatRatio(e),
			archive.MethodName(e.Method),
			archive.FormatDate(e.Modified),
			archive.FormatCRC(e.CRC32),
			lock,
			e.Name,
		)
	}
	return tw.Flush()
}

type InfoCommand struct {
	cli *CLI
}

func (cmd *InfoCommand) Execute(args []string) error {
	a, err := cmd.cli.open()
	if err != nil {
		return err
	}
	defer a.Close()

	info, err := a.Info()
	if err != nil {
		return err
	}

	w := cmd.cli.stdout
	fmt.Fprintf(w, "Path: %s\n", info.Path)
	fmt.Fprintf(w, "Archive Size: %s\n", archive.FormatSize(uint64(info.FileSize)))
	fmt.Fprintf(w, "Files: %d\n", info.Stats.Files)
	fmt.Fprintf(w, "Total Uncompressed: %s\n", archive.FormatSize(info.Stats.TotalSize))
	fmt.Fprintf(w, "Total Compressed: %s\n", archive.FormatSize(info.Stats.CompressedSize))
	fmt.Fprintf(w, "Compression Ratio: %.1f%%\n", info.Stats.Ratio())
	fmt.Fprintf(w, "Modified: %s\n", info.Modified.Format(archive.DateTimeFormat))
	if info.Comment != "" {
		fmt.Fprintf(w, "Comment: %s\n", info.Comment)
	}
	return nil
}

type AddCommand struct {
	cli      *CLI
	Method   string `short:"m" long:"method" description:"compression method" choice:"store" choice:"deflate" choice:"zopfli" choice:"zstd" choice:"brotli" default:"deflate"`
	Level    int    `short:"l" long:"level" description:"compression level 1-9" default:"6"`
	Encrypt  bool   `short:"e" long:"encrypt" description:"encrypt new entries with --password (AES-256)"`
	Create   bool   `short:"c" long:"create" description:"create the archive when it does not exist"`
	Progress bool   `long:"progress" description:"draw a progress bar"`
}

func (cmd *AddCommand) Execute(args []string) error {
	if len(args) == 0 {
		return errors.New("add: no files given")
	}
	path, err := cmd.cli.archivePath()
	if err != nil {
		return err
	}

	compression, err := archive.ParseCompression(cmd.Method)
	if err != nil {
		return err
	}
	opts := archive.AddOptions{Compression: compression, Level: archive.ClampLevel(cmd.Level)}
	if cmd.Encrypt {
		if cmd.cli.Options.Password == "" {
			return fmt.Errorf("add: %w", archive.ErrPasswordRequired)
		}
		opts.Password = cmd.cli.Options.Password
		if used := archive.EffectiveCompression(opts); used != compression {
			fmt.Fprintf(cmd.cli.stderr, "encrypted entries use %s, not %s\n", used, compression)
		}
	}

	var a *archive.Archive
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) && cmd.Create {
		a, err = archive.Create(path)
	} else {
		a, err = archive.Open(path)
	}
	if err != nil {
		return err
	}
	defer a.Close()

	progress, finish := cmd.cli.progress(cmd.Progress, "adding")
	result, err := a.Add(context.Background(), args, opts, progress)
	finish()
	if err != nil {
		return err
	}

	cmd.cli.logger.Info("CLI", "files added", map[string]interface{}{
		"archive":    path,
		"added":      result.Added,
		"skipped":    result.Skipped,
		"duplicates": result.Duplicates,
	})
	fmt.Fprintf(cmd.cli.stdout, "Added %d file(s)\n", result.Added)
	if result.Skipped > 0 {
		fmt.Fprintf(cmd.cli.stderr, "skipped %d missing path(s)\n", result.Skipped)
	}
	if result.Duplicates > 0 {
		fmt.Fprintf(cmd.cli.stderr, "%d file(s) shadowed by a later file with the same name\n", result.Duplicates)
	}
	return nil
}

type DeleteCommand struct {
	cli *CLI
}

func (cmd *DeleteCommand) Execute(args []string) error {
	if len(args) == 0 {
		return errors.New("delete: no entry names given")
	}
	a, err := cmd.cli.open()
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.Delete(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.cli.stdout, "Deleted %d file(s)\n", removed)
	return nil
}

type ExtractCommand struct {
	cli       *CLI
	Dest      string `short:"d" long:"dest" description:"destination directory" default:"."`
	Overwrite bool   `short:"o" long:"overwrite" description:"replace existing files"`
	Progress  bool   `long:"progress" description:"draw a progress bar"`
}

func (cmd *ExtractCommand) Execute(args []string) error {
	a, err := cmd.cli.open()
	if err != nil {
		return err
	}
	defer a.Close()

	if !cmd.Overwrite {
		existing, err := a.Conflicts(args, cmd.Dest)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("extract: %d file(s) already exist, first is %s (use --overwrite)",
				len(existing), filepath.Clean(existing[0]))
		}
	}

	progress, finish := cmd.cli.progress(cmd.Progress, "extracting")
	n, err := a.Extract(context.Background(), args, cmd.Dest, cmd.cli.Options.Password, progress)
	finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.cli.stdout, "Extracted %d file(s) to %s\n", n, cmd.Dest)
	return nil
}

type CatCommand struct {
	cli *CLI
}

func (cmd *CatCommand) Execute(args []string) error {
	if len(args) == 0 {
		return errors.New("cat: no entry names given")
	}
	a, err := cmd.cli.open()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, name := range args {
		data, err := a.Read(name, cmd.cli.Options.Password, 0)
		if err != nil {
			return err
		}
		if _, err := cmd.cli.stdout.Write(data); err != nil {
			return err
		}
	}
	return nil
}
