// Command kerf runs kerf scripts and prints one JSON report per script.
//
// Usage:
//
//	kerf [-config kerf.toml] [-pretty] [-buffers] script.kerf...
//
// With no script arguments the script is read from standard input. The
// exit status is 1 when any script fails.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/kerf/pkg/config"
)

// options are the parsed command line flags.
type options struct {
	configPath string
	pretty     bool
	buffers    bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("kerf: ")

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "TOML file overriding the default tolerances")
	flag.BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	flag.BoolVar(&opts.buffers, "buffers", false, "include flattened render buffers for meshes")
	flag.Parse()

	failed, err := run(opts, flag.Args(), os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	if failed {
		os.Exit(1)
	}
}

// run evaluates every script and writes its report to out. failed is true
// when any script reported errors; err is set only for problems outside
// the scripts themselves.
func run(opts options, scripts []string, in io.Reader, out io.Writer) (failed bool, err error) {
	cfg := config.Default()
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return false, err
		}
		log.Printf("loaded %s", opts.configPath)
	}

	app := NewApp(cfg, opts.buffers)
	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}

	if len(scripts) == 0 {
		src, err := io.ReadAll(in)
		if err != nil {
			return false, fmt.Errorf("read stdin: %w", err)
		}
		report := app.Evaluate("-", string(src))
		return report.Failed(), enc.Encode(report)
	}

	for _, path := range scripts {
		src, err := os.ReadFile(path)
		if err != nil {
			return failed, err
		}
		report := app.Evaluate(path, string(src))
		if report.Failed() {
			failed = true
			log.Printf("%s: %d errors", path, len(report.Errors))
		}
		if err := enc.Encode(report); err != nil {
			return failed, fmt.Errorf("write report for %s: %w", path, err)
		}
	}
	return failed, nil
}
