// Command respack runs the default resource pipeline over a source tree.
//
// Usage:
//
//	respack [flags] [source destination]
//
// Values not given on the command line are read from the run file,
// respack.hcl in the current directory by default.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/config"
	"github.com/gogpu/respack/tasks"
)

func main() {
	var (
		configPath  = flag.String("config", config.RunFileName, "run file")
		workingRoot = flag.String("work", "", "keep intermediate files in this directory")
		logLevel    = flag.String("log", "", "log level: debug, info, warn or error")
		tileSize    = flag.Int("tile", 0, "pixel size of one tile for w<W>h<H> flags")
		symlinks    = flag.Bool("symlinks", false, "link unchanged files into the output instead of copying")
	)
	flag.Parse()

	run, err := loadRun(*configPath, *configPath != config.RunFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "respack:", err)
		os.Exit(2)
	}
	switch flag.NArg() {
	case 0:
	case 2:
		run.Source, run.Destination = flag.Arg(0), flag.Arg(1)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if *workingRoot != "" {
		run.WorkingRoot = *workingRoot
	}
	if *logLevel != "" {
		run.LogLevel = *logLevel
	}
	if run.Source == "" || run.Destination == "" {
		fmt.Fprintln(os.Stderr, "respack: source and destination are required")
		os.Exit(2)
	}
	level, err := run.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, "respack:", err)
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	respack.SetLogger(log)

	opts := []respack.Option{
		respack.WithLogger(log),
		respack.WithSettings(run.Bindings()...),
	}
	if *tileSize > 0 {
		opts = append(opts, respack.WithSettings(respack.TileSize.To(*tileSize)))
	}
	if *symlinks {
		opts = append(opts, respack.WithSettings(respack.PreferSymlinks.To(true)))
	}
	if run.WorkingRoot != "" {
		opts = append(opts, respack.WithWorkingRoot(respack.LocalWorkingRoot{Dir: run.WorkingRoot}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := respack.Run(ctx, run.Source, run.Destination, tasks.Default(), opts...); err != nil {
		log.Error("packing failed", "err", err)
		stop()
		os.Exit(1)
	}
}

// loadRun reads the run file. A missing file is an error only when it
// was asked for explicitly.
func loadRun(path string, required bool) (*config.Run, error) {
	run, err := config.LoadRun(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return &config.Run{}, nil
	}
	return run, err
}
