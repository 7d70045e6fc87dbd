// Package config loads generation settings from a witgen.yaml file and
// WITGEN_ environment variables and converts them to gen.Options.
package config

import (
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/gen"
)

// EnvPrefix is the prefix of environment overrides, e.g. WITGEN_OWNERSHIP.
const EnvPrefix = "WITGEN"

// Config is one generation run as written in a config file.
type Config struct {
	// Source is the path of the world manifest. Inline holds manifest text
	// instead; only one of the two may be given.
	Source string `mapstructure:"source"`
	Inline string `mapstructure:"inline"`
	World  string `mapstructure:"world"`

	Output      string `mapstructure:"output"`
	PackagePath string `mapstructure:"package_path"`
	LogLevel    string `mapstructure:"log_level"`

	Ownership    string   `mapstructure:"ownership"`
	Validation   string   `mapstructure:"validation"`
	RawStrings   bool     `mapstructure:"raw_strings"`
	StdFeature   bool     `mapstructure:"std_feature"`
	Skip         []string `mapstructure:"skip"`
	ExportPrefix string   `mapstructure:"export_prefix"`
	Stubs        bool     `mapstructure:"stubs"`

	WorldExports     map[string]string `mapstructure:"world_exports"`
	InterfaceExports map[string]string `mapstructure:"interface_exports"`
	ResourceExports  map[string]string `mapstructure:"resource_exports"`

	Format   FormatConfig   `mapstructure:"format"`
	Metadata MetadataConfig `mapstructure:"metadata"`
}

// FormatConfig controls the formatter subprocess.
type FormatConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Tool is the formatter command; gofmt when empty.
	Tool string `mapstructure:"tool"`
}

// MetadataConfig controls the component-type object.
type MetadataConfig struct {
	Verify  bool   `mapstructure:"verify"`
	Version string `mapstructure:"version"`
}

// Load reads path, which may be empty, over the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(path).
				Cause(err).
				Detail("read config").
				Build()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode config")
	}
	if cfg.Source != "" && cfg.Inline != "" {
		return nil, errors.Duplicate(errors.PhaseConfig, "source", "inline")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "")
	v.SetDefault("inline", "")
	v.SetDefault("world", "")
	v.SetDefault("output", ".")
	v.SetDefault("package_path", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("ownership", gen.Owning.String())
	v.SetDefault("validation", gen.Checked.String())
	v.SetDefault("raw_strings", false)
	v.SetDefault("std_feature", false)
	v.SetDefault("skip", []string{})
	v.SetDefault("export_prefix", "")
	v.SetDefault("stubs", false)

	v.SetDefault("format.enabled", false)
	v.SetDefault("format.tool", "gofmt")
	v.SetDefault("metadata.verify", false)
	v.SetDefault("metadata.version", "")
}

// AddSource sets the manifest path. A config may name one source.
func (c *Config) AddSource(path string) error {
	if c.Source != "" || c.Inline != "" {
		return errors.Duplicate(errors.PhaseConfig, "source", path)
	}
	c.Source = path
	return nil
}

// AddInline sets inline manifest text. It counts as the source.
func (c *Config) AddInline(text string) error {
	if c.Source != "" || c.Inline != "" {
		return errors.Duplicate(errors.PhaseConfig, "source", "inline")
	}
	c.Inline = text
	return nil
}

// AddWorld selects the world. A config may name one world.
func (c *Config) AddWorld(name string) error {
	if c.World != "" {
		return errors.Duplicate(errors.PhaseConfig, "world", name)
	}
	c.World = name
	return nil
}

// AddSkip appends function names to the skip list.
func (c *Config) AddSkip(names ...string) {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			c.Skip = append(c.Skip, n)
		}
	}
}

// Options converts c to validated generator options.
func (c *Config) Options() (gen.Options, error) {
	var opts gen.Options

	own, err := gen.ParseOwnership(c.Ownership)
	if err != nil {
		return opts, err
	}
	val, err := gen.ParseValidation(c.Validation)
	if err != nil {
		return opts, err
	}

	opts = gen.Options{
		Ownership:        own,
		Validation:       val,
		RawStrings:       c.RawStrings,
		StdFeature:       c.StdFeature,
		ExportPrefix:     c.ExportPrefix,
		WorldExports:     copyMap(c.WorldExports),
		InterfaceExports: copyMap(c.InterfaceExports),
		ResourceExports:  copyMap(c.ResourceExports),
		Stubs:            c.Stubs,
		PackagePath:      c.PackagePath,
		Format:           c.Format.Enabled,
		Formatter:        c.Format.Tool,
		VerifyMetadata:   c.Metadata.Verify,
		Version:          c.Metadata.Version,
	}
	if len(c.Skip) > 0 {
		opts.Skip = make(map[string]bool, len(c.Skip))
		for _, name := range c.Skip {
			opts.Skip[name] = true
		}
	}
	if err := opts.Validate(); err != nil {
		return gen.Options{}, err
	}
	return opts, nil
}

// ExportKeys returns every implementation key named by c, sorted.
func (c *Config) ExportKeys() []string {
	var keys []string
	for _, m := range []map[string]string{c.WorldExports, c.InterfaceExports, c.ResourceExports} {
		for k := range m {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
