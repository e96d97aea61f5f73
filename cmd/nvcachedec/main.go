// nvcachedec unpacks an NVIDIA GL shader disk cache into one file per
// section header, packed payload and unpacked object.
//
// Usage:
//
//	nvcachedec [flags] cachefile.toc outdir
//	nvcachedec --scan [dir]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/meigma/glcache"
	"github.com/meigma/glcache/internal/logctx"
)

type config struct {
	workers   int
	manifest  bool
	noClobber bool
	debug     bool
	json      bool
	scan      bool
	args      []string
}

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "nvcachedec: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(argv []string, stdout, stderr io.Writer) error {
	cfg, flagSet, err := parseFlags(argv, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger := logctx.NewConfiguredLogger(stderr, cfg.debug, !cfg.json)
	ctx = glcache.WithLogger(ctx, logger)

	if cfg.scan {
		if len(cfg.args) > 1 {
			printUsage(flagSet, stderr)
			return errUsage
		}
		return scan(ctx, cfg, stdout)
	}

	if len(cfg.args) != 2 {
		printUsage(flagSet, stderr)
		return errUsage
	}

	x := glcache.NewExtractor(
		glcache.WithWorkers(cfg.workers),
		glcache.WithManifest(cfg.manifest),
		glcache.WithOverwrite(!cfg.noClobber),
	)
	report, err := x.ExtractFiles(ctx, cfg.args[0], cfg.args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d entries: %d unpacked, %d skipped, %d unknown packing",
		len(report.Entries), report.Unpacked, report.Skipped, report.UnknownPacking)
	if report.Kept > 0 {
		fmt.Fprintf(stdout, ", %d existing files kept", report.Kept)
	}
	fmt.Fprintln(stdout)
	return nil
}

func parseFlags(argv []string, stderr io.Writer) (*config, *pflag.FlagSet, error) {
	cfg := &config{}
	flagSet := pflag.NewFlagSet("nvcachedec", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.IntVarP(&cfg.workers, "workers", "w", 0, "entries unpacked in parallel (0 = one per CPU, negative = serial)")
	flagSet.BoolVar(&cfg.manifest, "manifest", false, "write "+glcache.ManifestName+" describing every entry")
	flagSet.BoolVar(&cfg.noClobber, "no-clobber", false, "keep existing files in outdir instead of overwriting them")
	flagSet.BoolVar(&cfg.debug, "debug", false, "log per-entry detail")
	flagSet.BoolVar(&cfg.json, "json", false, "log JSON records instead of console text")
	flagSet.BoolVar(&cfg.scan, "scan", false, "list caches under dir (default: the driver cache directory)")
	flagSet.Usage = func() { printUsage(flagSet, stderr) }

	if err := flagSet.Parse(argv); err != nil {
		return nil, nil, err
	}
	cfg.args = flagSet.Args()
	return cfg, flagSet, nil
}

func printUsage(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `Unpack an NVIDIA GL shader disk cache.

Usage:
  nvcachedec [flags] cachefile.toc outdir
  nvcachedec --scan [dir]

The blob file is expected next to the index with a .bin extension.

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

func scan(ctx context.Context, cfg *config, stdout io.Writer) error {
	var dir string
	if len(cfg.args) == 1 {
		dir = cfg.args[0]
	} else {
		var err error
		if dir, err = glcache.DefaultCacheDir(); err != nil {
			return err
		}
	}

	caches, err := glcache.FindCaches(ctx, dir)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRIES\tINDEX")
	for _, c := range caches {
		if c.Err != nil {
			fmt.Fprintf(tw, "-\t%s (%v)\n", c.IndexPath, c.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\n", c.Entries, c.IndexPath)
	}
	return tw.Flush()
}
