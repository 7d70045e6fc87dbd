package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/witgen/config"
	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/gen"
	"github.com/wippyai/witgen/graph"
	"github.com/wippyai/witgen/manifest"
	"github.com/wippyai/witgen/resource"
)

type flags struct {
	config      string
	source      string
	world       string
	out         string
	pkg         string
	skip        string
	logLevel    string
	stubs       bool
	format      bool
	verify      bool
	dryRun      bool
	interactive bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "Path to witgen.yaml options file")
	flag.StringVar(&f.source, "wit", "", "Path to the world manifest")
	flag.StringVar(&f.world, "world", "", "World to generate (name or ns:pkg/name)")
	flag.StringVar(&f.out, "out", "", "Output directory")
	flag.StringVar(&f.pkg, "pkg", "", "Go import path of the output directory")
	flag.StringVar(&f.skip, "skip", "", "Functions to skip (comma-separated)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&f.stubs, "stubs", false, "Generate panicking stubs for unimplemented exports")
	flag.BoolVar(&f.format, "fmt", false, "Run gofmt over generated files")
	flag.BoolVar(&f.verify, "verify", false, "Validate the metadata object with wazero")
	flag.BoolVar(&f.dryRun, "n", false, "List generated files without writing them")
	flag.BoolVar(&f.interactive, "i", false, "Browse generated files in a TUI")
	flag.Parse()

	if f.config == "" && f.source == "" {
		fmt.Fprintln(os.Stderr, "Usage: witgen -wit <manifest.yaml> -pkg <import/path> [-world name] [-out dir]")
		fmt.Fprintln(os.Stderr, "       witgen -config witgen.yaml [-n] [-i]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(context.Background(), f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f); err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	gen.SetLogger(log.Named("gen"))
	manifest.SetLogger(log.Named("manifest"))
	resource.SetLogger(log.Named("resource"))

	r, err := loadManifest(cfg)
	if err != nil {
		return err
	}
	wid, err := selectWorld(r, cfg.World)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts.Observer = resourceLogger(log.Named("resource"), r)
	log.Debug("options",
		zap.Stringer("ownership", opts.Ownership),
		zap.Stringer("validation", opts.Validation),
		zap.Strings("exports", cfg.ExportKeys()),
		zap.Bool("stubs", opts.Stubs))

	files, err := gen.GenerateContext(ctx, r, wid, opts)
	if err != nil {
		return err
	}

	if f.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.InvalidInput(errors.PhaseConfig, "interactive mode needs a terminal")
		}
		if err := runInteractive(r.World(wid).Name, files); err != nil {
			return err
		}
	}

	if f.dryRun {
		for _, name := range files.Names() {
			fmt.Println(name)
		}
		return nil
	}
	if err := files.WriteTo(cfg.Output); err != nil {
		return err
	}
	log.Info("wrote bindings", zap.String("dir", cfg.Output), zap.Int("files", files.Len()))
	log.Info("embed the component type with wasm-tools component embed",
		zap.String("file", filepath.Join(cfg.Output, gen.ComponentTypeFile(r.World(wid).Name))))
	return nil
}

// resourceLogger reports resource classification at debug level.
func resourceLogger(log *zap.Logger, r *graph.Resolve) resource.Observer {
	return resource.ObserverFunc(func(e resource.Event) {
		log.Debug("resource "+e.Type.String(),
			zap.String("resource", r.Type(e.Resource).Name),
			zap.Stringer("direction", e.Info.Direction),
			zap.Bool("own", e.Info.HasOwn))
	})
}

// applyFlags layers command-line flags over the loaded config. Source and
// world flags count as directives and conflict with config values.
func applyFlags(cfg *config.Config, f flags) error {
	if f.source != "" {
		if err := cfg.AddSource(f.source); err != nil {
			return err
		}
	}
	if f.world != "" {
		if err := cfg.AddWorld(f.world); err != nil {
			return err
		}
	}
	if f.skip != "" {
		cfg.AddSkip(strings.Split(f.skip, ",")...)
	}
	if f.out != "" {
		cfg.Output = f.out
	}
	if f.pkg != "" {
		cfg.PackagePath = f.pkg
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	cfg.Stubs = cfg.Stubs || f.stubs
	cfg.Format.Enabled = cfg.Format.Enabled || f.format
	cfg.Metadata.Verify = cfg.Metadata.Verify || f.verify
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.UnknownMode("log level", level, "debug", "info", "warn", "error")
	}
	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func loadManifest(cfg *config.Config) (*graph.Resolve, error) {
	var (
		m   *manifest.Manifest
		err error
	)
	switch {
	case cfg.Inline != "":
		m, err = manifest.Parse([]byte(cfg.Inline))
	case cfg.Source != "":
		m, err = manifest.Load(cfg.Source)
	default:
		return nil, errors.InvalidInput(errors.PhaseConfig, "no source: set -wit or source in the config file")
	}
	if err != nil {
		return nil, err
	}
	return m.Resolve()
}

// selectWorld finds name, or the only world when name is empty.
func selectWorld(r *graph.Resolve, name string) (graph.WorldID, error) {
	if name == "" {
		if len(r.Worlds) == 1 {
			return 0, nil
		}
		return 0, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("manifest declares %d worlds; select one with -world", len(r.Worlds)))
	}
	wid, ok := r.FindWorld(name)
	if !ok {
		return 0, errors.NotFound(errors.PhaseConfig, "world", name)
	}
	return wid, nil
}
