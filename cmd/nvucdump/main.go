// nvucdump splits an NVuc shader microcode archive, such as an object
// unpacked by nvcachedec, into one file per section.
//
// Usage:
//
//	nvucdump [flags] object.nvuc outdir
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/meigma/glcache/internal/logctx"
	"github.com/meigma/glcache/nvuc"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "nvucdump: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(argv []string, stdout, stderr io.Writer) error {
	var debug, jsonLogs bool
	flagSet := pflag.NewFlagSet("nvucdump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&debug, "debug", false, "log every extracted section")
	flagSet.BoolVar(&jsonLogs, "json", false, "log JSON records instead of console text")
	flagSet.Usage = func() { printUsage(flagSet, stderr) }

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	args := flagSet.Args()
	if len(args) != 2 {
		printUsage(flagSet, stderr)
		return errUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logctx.WithLogger(ctx, logctx.NewConfiguredLogger(stderr, debug, !jsonLogs))

	res, err := nvuc.DumpFile(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d sections: %d written, %d skipped\n",
		len(res.Sections), len(res.Written), len(res.Skipped))
	return nil
}

func printUsage(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `Split an NVuc microcode archive into its sections.

Usage:
  nvucdump [flags] object.nvuc outdir

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
