// Command rsym rewrites a PE32 image's STABS/COFF debug information into a
// single discardable .rossym section, suitable for a post-link build step.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xyproto/env/v2"
	"github.com/xyproto/rsym/internal/rossym"
)

var (
	verboseMode bool
	progress    = log.New(os.Stderr, "", 0)
)

func main() {
	sourcesDefault := env.Str("RSYM_SOURCES", "")

	fs := flag.NewFlagSet("rsym", flag.ContinueOnError)
	sourcesFlag := fs.String("s", sourcesDefault, "directory of original source files, consulted by the path-chop heuristic")
	verboseFlag := fs.Bool("v", false, "verbose mode (print per-stage row counts to stderr)")
	selfCheckFlag := fs.Bool("self-check", false, "re-parse the written image and verify the merged rows round-trip")
	fs.Usage = usage

	var err error
	if parseErr := fs.Parse(os.Args[1:]); parseErr != nil {
		err = rossym.Wrap("usage", rossym.InvalidArgs, parseErr)
	} else {
		verboseMode = *verboseFlag
		if args := fs.Args(); len(args) != 2 {
			usage()
			err = rossym.Newf("usage", rossym.InvalidArgs, "expected exactly 2 positional arguments (input, output), got %d", len(args))
		} else {
			err = run(args[0], args[1], *sourcesFlag, *selfCheckFlag)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rsym: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: rsym [-s <sources>] [-v] [-self-check] <input> <output>\n")
	flag.PrintDefaults()
}

func logf(format string, args ...any) {
	if verboseMode {
		progress.Printf(format, args...)
	}
}

func run(inputPath, outputPath, sourcePath string, selfCheck bool) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return rossym.Wrap("read input", rossym.IoError, err)
	}
	logf("read %d bytes from %s", len(data), inputPath)

	opts := rossym.Options{
		SourcePath: sourcePath,
		Log:        logf,
	}

	out, merged, err := rossym.Convert(data, opts)
	isElf := rossym.IsIgnoreElf(err)
	if isElf {
		logf("%s is an ELF object, passing through unmodified", inputPath)
		out, merged, err = data, nil, nil
	}
	if err != nil {
		return err
	}

	if selfCheck && !isElf {
		if err := rossym.SelfCheck(out, merged); err != nil {
			return err
		}
		logf("self check: round trip verified")
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return rossym.Wrap("write output", rossym.IoError, err)
	}
	logf("wrote %d bytes to %s", len(out), outputPath)
	return nil
}

// exitCodeFor is the single place the process exit code is decided, per
// spec.md's exit contract: 0 on success, 1 on any failure, regardless of
// which stage or error kind produced it.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
