package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/funvibe/minispec/internal/config"
	"github.com/funvibe/minispec/internal/pipeline"
	"github.com/funvibe/minispec/internal/prettyprinter"
	"github.com/funvibe/minispec/internal/store"
	"github.com/funvibe/minispec/internal/visitor"
)

func main() {
	log.SetFlags(0)          // Disable timestamp in logs
	log.SetOutput(os.Stderr) // Trees go to stdout, diagnostics to stderr

	color := prettyprinter.ColorSupported(os.Stdout)
	if on, set := config.ColorFromEnv(); set {
		color = on
	}
	os.Exit(run(os.Args[1:], os.Stdout, log.Default(), color))
}

// run executes the driver and returns the process exit code.
func run(args []string, stdout io.Writer, logger *log.Logger, color bool) int {
	fs := flag.NewFlagSet("minispec", flag.ContinueOnError)
	fs.SetOutput(logger.Writer())
	configPath := fs.String("config", "", "kernel configuration file (default: search for minispec.yaml)")
	specs := fs.String("spec", "", "comma separated specializations to run (overrides the configuration)")
	dbPath := fs.String("db", "", "record the results in this SQLite database")
	trace := fs.Bool("trace", config.TraceFromEnv(), "log dispatch resolutions")
	fs.BoolVar(&color, "color", color, "colour the printed trees")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := *configPath
	if path == "" {
		found, err := config.FindConfig(".")
		if err != nil {
			logger.Printf("Error: %s", err)
			return 1
		}
		if found == "" {
			logger.Printf("Error: no %s found", config.ConfigFileNames[0])
			return 1
		}
		path = found
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Printf("Error: %s", err)
		return 1
	}
	cfg.ApplyEnv()
	if *specs != "" {
		cfg.Specializations = config.SplitList(*specs)
	}
	if err := config.CheckSpecializations(cfg.Specializations); err != nil {
		logger.Printf("Error: %s", err)
		return 1
	}
	config.IsTraceMode = *trace

	var st *store.Store
	if *dbPath != "" {
		st, err = store.Open(*dbPath)
		if err != nil {
			logger.Printf("Error: %s", err)
			return 1
		}
		defer st.Close()
	}

	ctx := pipeline.NewPipelineContext(cfg, path)
	ctx.Logger = logger
	ctx = pipeline.Default(st).Run(ctx)

	printer := prettyprinter.NewTreePrinter(visitor.NewBasicContext(ctx.Builder, ctx.Types))
	printer.Color = color
	for _, r := range ctx.Results {
		fmt.Fprintf(stdout, "== %s\n", r.Key())
		if err := printer.Fprint(stdout, r.Tree); err != nil {
			ctx.Errors = append(ctx.Errors, err)
		}
	}

	if len(ctx.Errors) > 0 {
		logger.Printf("%d error(s):", len(ctx.Errors))
		for _, err := range ctx.Errors {
			logger.Printf("- %s", err)
		}
		return 1
	}
	return 0
}
