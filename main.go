package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/ardanlabs/cbindgen/config"
	"github.com/ardanlabs/cbindgen/generator"
	"github.com/ardanlabs/cbindgen/logger"
	"github.com/ardanlabs/cbindgen/parser"
)

type options struct {
	Records         bool   `short:"r" long:"records" description:"Generate record types with field accessors"`
	OpaqueThreshold *int64 `long:"opaque-threshold" value-name:"BYTES" description:"Structs smaller than this are treated as opaque, 0 keeps all (default 2)"`
	Dedupe          bool   `short:"d" long:"dedupe" description:"Bind repeated declarations only once"`
	Config          string `short:"c" long:"config" value-name:"PATH" description:"Properties file to read (default cbindgen.properties, if present)"`
	Verbose         bool   `short:"v" long:"verbose" description:"Log debug output"`
	LogFormat       string `long:"log-format" choice:"text" choice:"json" description:"Log output format"`

	Args struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	p := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	p.Usage = "[OPTIONS] FILE..."
	if _, err := p.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if opts.Records {
		cfg.Records = true
	}
	if opts.OpaqueThreshold != nil {
		cfg.OpaqueThreshold = *opts.OpaqueThreshold
	}
	if opts.Dedupe {
		cfg.Dedupe = true
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr}); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	gen := generator.New(cfg.GeneratorOptions())

	status := 0
	for _, path := range opts.Args.Files {
		if err := translate(gen, path, stdout, stderr); err != nil {
			logger.Error("translation failed", "file", path, "error", err)
			status = 1
		}
	}

	return status
}

// translate parses one file and writes its bindings to stdout and one line
// per skipped declaration to stderr. Nothing is written if parsing fails.
func translate(gen *generator.Generator, path string, stdout, stderr io.Writer) error {
	tu, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	logger.LogParsing(path, len(tu.Decls))

	res := gen.Generate(tu)
	for _, d := range res.Diagnostics {
		fmt.Fprintln(stderr, d)
	}

	if _, err := io.WriteString(stdout, res.Output); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logger.LogGenerated(path, res.Functions, res.Enums, res.Records, len(res.Diagnostics))

	return nil
}
