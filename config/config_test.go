package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/gen"
	"github.com/wippyai/witgen/manifest"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func wantError(t *testing.T, err error, phase errors.Phase, kind errors.Kind) {
	t.Helper()
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("err = %v (%T), want *errors.Error", err, err)
	}
	if e.Phase != phase || e.Kind != kind {
		t.Fatalf("err = %v, want %s/%s", err, phase, kind)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ownership != "owning" || cfg.Validation != "checked" {
		t.Errorf("modes = %q/%q, want owning/checked", cfg.Ownership, cfg.Validation)
	}
	if cfg.Output != "." || cfg.LogLevel != "info" {
		t.Errorf("output/log_level = %q/%q", cfg.Output, cfg.LogLevel)
	}
	if cfg.Format.Tool != "gofmt" || cfg.Format.Enabled {
		t.Errorf("format = %+v", cfg.Format)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "witgen.yaml", `
source: app.yaml
world: app
package_path: example.com/app/bindings
ownership: borrowing
validation: unchecked
raw_strings: true
std_feature: true
skip: [legacy-call]
export_prefix: "x:"
stubs: true
interface_exports:
  "demo:app/handler": example.com/app/impl.Handler
resource_exports:
  "demo:app/handler/conn": Conn
format:
  enabled: true
  tool: gofumpt
metadata:
  verify: true
  version: 1.2.3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source != "app.yaml" || cfg.World != "app" {
		t.Errorf("source/world = %q/%q", cfg.Source, cfg.World)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Ownership != gen.Borrowing || opts.Validation != gen.Unchecked {
		t.Errorf("modes = %v/%v", opts.Ownership, opts.Validation)
	}
	if !opts.RawStrings || !opts.StdFeature || !opts.Stubs || !opts.Format || !opts.VerifyMetadata {
		t.Errorf("flags not carried: %+v", opts)
	}
	if !opts.Skip["legacy-call"] {
		t.Errorf("Skip = %v", opts.Skip)
	}
	if opts.ExportPrefix != "x:" || opts.Formatter != "gofumpt" || opts.Version != "1.2.3" {
		t.Errorf("strings not carried: %+v", opts)
	}
	if got := opts.InterfaceExports["demo:app/handler"]; got != "example.com/app/impl.Handler" {
		t.Errorf("InterfaceExports = %v", opts.InterfaceExports)
	}
	if got := opts.ResourceExports["demo:app/handler/conn"]; got != "Conn" {
		t.Errorf("ResourceExports = %v", opts.ResourceExports)
	}
	if keys := cfg.ExportKeys(); len(keys) != 2 || keys[0] != "demo:app/handler" {
		t.Errorf("ExportKeys = %v", keys)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WITGEN_OWNERSHIP", "borrowing-duplicate-if-necessary")
	t.Setenv("WITGEN_FORMAT_ENABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Ownership != gen.BorrowingDuplicateIfNecessary {
		t.Errorf("Ownership = %v", opts.Ownership)
	}
	if !opts.Format {
		t.Error("Format not enabled from environment")
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		wantError(t, err, errors.PhaseConfig, errors.KindInvalidInput)
	})
	t.Run("source and inline", func(t *testing.T) {
		path := writeConfig(t, "witgen.yaml", "source: a.yaml\ninline: \"package: a:b\"\n")
		_, err := Load(path)
		wantError(t, err, errors.PhaseConfig, errors.KindDuplicate)
	})
}

func TestDirectives(t *testing.T) {
	tests := []struct {
		name  string
		apply func(c *Config) error
	}{
		{"second source", func(c *Config) error {
			if err := c.AddSource("a.yaml"); err != nil {
				return err
			}
			return c.AddSource("b.yaml")
		}},
		{"inline after source", func(c *Config) error {
			if err := c.AddSource("a.yaml"); err != nil {
				return err
			}
			return c.AddInline("package: a:b")
		}},
		{"second world", func(c *Config) error {
			if err := c.AddWorld("a"); err != nil {
				return err
			}
			return c.AddWorld("b")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.apply(&Config{})
			wantError(t, err, errors.PhaseConfig, errors.KindDuplicate)
		})
	}
}

func TestAddSkip(t *testing.T) {
	var c Config
	c.AddSkip("a", " ", " b ")
	if len(c.Skip) != 2 || c.Skip[0] != "a" || c.Skip[1] != "b" {
		t.Errorf("Skip = %q", c.Skip)
	}
}

func TestOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		kind errors.Kind
	}{
		{"ownership", Config{Ownership: "shared", Validation: "checked"}, errors.KindUnknownMode},
		{"validation", Config{Ownership: "owning", Validation: "lenient"}, errors.KindUnknownMode},
		{"impl name", Config{
			Ownership:    "owning",
			Validation:   "checked",
			WorldExports: map[string]string{"app": "example.com/impl."},
		}, errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Options()
			wantError(t, err, errors.PhaseConfig, tt.kind)
		})
	}
}

// Viper splits keys on dots, so a config file names versioned exports
// without their version and the generator must still find them.
func TestOptions_UnversionedExportKeys(t *testing.T) {
	path := writeConfig(t, "witgen.yaml", `
package_path: example.com/app/bindings
world_exports:
  app: example.com/app/impl.App
interface_exports:
  "demo:app/store": example.com/app/impl.Store
resource_exports:
  "demo:app/store/blob": example.com/app/impl.BlobFactory
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}

	m, err := manifest.Load("../manifest/testdata/app.yaml")
	if err != nil {
		t.Fatal(err)
	}
	r, err := m.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	files, err := gen.Generate(r, 0, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data, ok := files.Get("exports/demo/app/store/store.wit.go")
	if !ok {
		t.Fatalf("no store package in %v", files.Names())
	}
	src := string(data)
	for _, want := range []string{
		"var impl Interface = new(impl2.Store)",
		"var blobStatics BlobStatics = new(impl2.BlobFactory)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("store package lacks %q", want)
		}
	}
}
