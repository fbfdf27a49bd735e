package main

import (
	"errors"
	"log"
	"os"
	"runtime"

	"github.com/jessevdk/go-flags"

	"retro-zip/internal/app"
)

var options struct {
	Args struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"ZIP archive to open on start"`
	} `positional-args:"yes"`
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if _, err := flags.Parse(&options); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	application, err := app.NewApplication()
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	if err := application.Run(string(options.Args.Archive)); err != nil {
		log.Fatalf("Application execution failed: %v", err)
	}
}
