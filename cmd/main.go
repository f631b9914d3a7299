//      _ ____
//     | |___ \ ___
//  _  | | __) / __|
// | |_| |/ __/ (__
//  \___/|_____\___|

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"j2cgen/compiler"
	"j2cgen/resolved"

	"github.com/dustin/go-humanize"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("j2cgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var source string
	var output string
	var linkRuntime bool
	var manifestDB string
	var makefile bool
	var noColor bool
	fs.StringVar(&source, "source", "", "Resolved input: a JSON document or a .txtar bundle of them")
	fs.StringVar(&output, "output", "out", "Output directory for the generated C++ sources")
	fs.BoolVar(&linkRuntime, "link-runtime", false, "Write the C++ runtime next to the output and build it from the Makefile")
	fs.StringVar(&manifestDB, "manifest-db", "", "sqlite database recording the artifacts of this run")
	fs.BoolVar(&makefile, "makefile", true, "Write a Makefile for the generated sources")
	fs.BoolVar(&compiler.DebugMode, "debug", false, "Enable debug output")
	fs.BoolVar(&noColor, "no-color", false, "Disable coloured diagnostics")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	log.SetOutput(stderr)
	if source == "" {
		fmt.Fprintln(stderr, "Please provide a source document")
		return 2
	}

	universe := resolved.NewUniverse()
	units, err := loadProgram(source, universe)
	if err != nil {
		log.Printf("Failed to load %s: %v", source, err)
		return 1
	}
	if len(units) == 0 {
		fmt.Fprintln(stderr, "No types found")
		return 1
	}
	if err := os.MkdirAll(output, 0755); err != nil {
		log.Printf("Failed to create output directory: %v", err)
		return 1
	}

	var written int64
	opts := compiler.Options{Root: output, Makefile: makefile}
	if linkRuntime {
		opts.LinkRuntime = filepath.Join(output, "runtime")
		n, err := writeRuntime(opts.LinkRuntime)
		if err != nil {
			log.Printf("%v", err)
			return 1
		}
		written += n
		// The Makefile lives in the output root.
		opts.LinkRuntime = "runtime"
	}

	diag := compiler.NewDiagnostics(stderr)
	if noColor {
		diag.SetColor(false)
	}
	driver := compiler.NewDriver(opts, universe, diag)
	passManager := &compiler.PassManager{
		Units:  units,
		Driver: driver,
	}
	failed := passManager.RunPasses()
	written += driver.Written()

	if manifestDB != "" {
		id, err := recordManifest(manifestDB, driver.Registry())
		if err != nil {
			log.Printf("Failed to record manifest: %v", err)
			return 1
		}
		compiler.DebugLogPrintf("Manifest run recorded: %s", id)
	}

	reg := driver.Registry()
	fmt.Fprintf(stdout, "Generated %d type(s), %d native stub(s), %s\n",
		len(reg.Implemented), len(reg.Stubs), humanize.Bytes(uint64(written)))
	if n := len(diag.Constructs()); n > 0 {
		fmt.Fprintf(stdout, "  %d unsupported construct(s) skipped\n", n)
	}
	if failed != nil {
		fmt.Fprintf(stdout, "  %d type(s) failed\n", len(diag.Failures()))
		return 1
	}
	return 0
}

func recordManifest(path string, reg *compiler.Registry) (string, error) {
	store, err := compiler.OpenManifestStore(path)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.Record(context.Background(), reg)
}
