// Package cli is the headless rzip front end over the archive package.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jessevdk/go-flags"
	"github.com/schollz/progressbar/v3"

	"retro-zip/internal/archive"
	"retro-zip/internal/logger"
)

type GlobalOptions struct {
	Verbose  bool           `short:"v" long:"verbose" description:"show debug logs"`
	Quiet    bool           `short:"q" long:"quiet" description:"only log errors"`
	JSONLog  bool           `long:"json-log" description:"use json format for logging"`
	Archive  flags.Filename `short:"f" long:"archive" description:"archive file" env:"RZIP_ARCHIVE"`
	Password string         `long:"password" description:"password for encrypted entries" env:"RZIP_PASSWORD"`
}

// CLI carries the parsed global options and output streams to every command.
type CLI struct {
	Options GlobalOptions

	stdout io.Writer
	stderr io.Writer
	logger logger.Logger
}

var errNoArchive = errors.New("no archive given, use -f or RZIP_ARCHIVE")

// Run parses args, executes one subcommand and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	c := &CLI{stdout: stdout, stderr: stderr, logger: logger.NoOpLogger{}}

	parser := flags.NewParser(&c.Options, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "rzip"
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		c.initLog()
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"list", "list entries", "list the entries of an archive", &ListCommand{cli: c}},
		{"info", "archive summary", "show size, entry count and compression ratio", &InfoCommand{cli: c}},
		{"add", "add files", "add files and directories to an archive", &AddCommand{cli: c}},
		{"delete", "delete entries", "remove entries by name, rewriting the archive", &DeleteCommand{cli: c}},
		{"extract", "extract entries", "extract named entries, or all of them", &ExtractCommand{cli: c}},
		{"cat", "print an entry", "write the content of entries to stdout", &CatCommand{cli: c}},
	}
	for _, cmd := range commands {
		if _, err := parser.AddCommand(cmd.name, cmd.short, cmd.long, cmd.data); err != nil {
			fmt.Fprintf(stderr, "rzip: %v\n", err)
			return 1
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, fe.Message)
			return 0
		}
		c.logger.Error("CLI", err, nil)
		fmt.Fprintf(stderr, "rzip: %v\n", err)
		return 1
	}
	return 0
}

func (c *CLI) initLog() {
	level := logger.WarnLevel
	if c.Options.Verbose {
		level = logger.DebugLevel
	} else if c.Options.Quiet {
		level = logger.ErrorLevel
	}
	if c.Options.JSONLog {
		c.logger = logger.NewJSONLogger(c.stderr, level)
		return
	}
	c.logger = logger.NewConsoleLoggerTo(c.stderr, level)
}

func (c *CLI) archivePath() (string, error) {
	if c.Options.Archive == "" {
		return "", errNoArchive
	}
	return string(c.Options.Archive), nil
}

func (c *CLI) open() (*archive.Archive, error) {
	path, err := c.archivePath()
	if err != nil {
		return nil, err
	}
	a, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("CLI", "archive opened", map[string]interface{}{"path": path})
	return a, nil
}

// progress returns a ProgressFunc drawing a bar on stderr, or nil when off.
func (c *CLI) progress(enabled bool, description string) (archive.ProgressFunc, func()) {
	if !enabled {
		return nil, func() {}
	}

	var bar *progressbar.ProgressBar
	update := func(done, total int, name string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(c.stderr),
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(false),
			)
		}
		if err := bar.Set(done); err != nil {
			c.logger.Warning("CLI", "progressbar error", map[string]interface{}{"error": err.Error()})
		}
	}
	finish := func() {
		if bar != nil {
			bar.Finish()
			fmt.Fprintln(c.stderr)
		}
	}
	return update, finish
}
