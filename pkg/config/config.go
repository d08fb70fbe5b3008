// Package config loads and validates the build configuration. Defaults are
// embedded and merged under the user's respackr.toml (or .yaml); the result
// is a plain struct validated once at startup, so a bad key fails the run
// before any processing starts.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	packerrors "github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Config is the fully validated build configuration.
type Config struct {
	Name        string `koanf:"name"`
	Description string `koanf:"description"`

	SourceDir   string `koanf:"source_dir"`
	OutputDir   string `koanf:"output_dir"`
	LicenseFile string `koanf:"license_file"`

	// AllowedPaths is the publish-time allow-list: only entries under
	// these prefixes end up in archives.
	AllowedPaths []string `koanf:"allowed_paths"`

	// Formats maps each compatibility tier key to its human-readable
	// version label. Decoded via rawConfig since TOML table keys are
	// strings.
	Formats map[int]string `koanf:"-"`

	// FutureFormats widens max_format on the newest tier, silencing the
	// incompatibility warning on yet-unreleased game versions.
	FutureFormats int `koanf:"future_formats"`

	// ProcessImages toggles theming and SVG-to-PNG conversion.
	ProcessImages bool `koanf:"process_images"`

	// Scales maps a scale identifier to its target DPI.
	Scales map[int]int `koanf:"-"`

	ThemeDir      string            `koanf:"theme_dir"`
	DefaultColors map[string]string `koanf:"default_colors"`
}

// rawConfig mirrors Config but with string-keyed tables, since TOML and
// YAML table keys are always strings.
type rawConfig struct {
	Config  `koanf:",squash"`
	Formats map[string]string `koanf:"formats"`
	Scales  map[string]int    `koanf:"scales"`
}

// Load reads, merges, and validates the configuration at path. The file
// format follows the extension: .yaml/.yml parse as YAML, everything else
// as TOML.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, ktoml.Parser()); err != nil {
		return nil, packerrors.Wrap(err, packerrors.ErrConfigParse, "failed to load defaults").AsFatal()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, packerrors.Wrapf(err, packerrors.ErrConfigNotFound,
			"config file not found at %s", path).AsFatal()
	}

	parser := koanf.Parser(ktoml.Parser())
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, packerrors.Wrapf(err, packerrors.ErrConfigParse,
			"invalid config file %s", path).AsFatal()
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, packerrors.Wrapf(err, packerrors.ErrConfigParse,
			"failed to decode config file %s", path).AsFatal()
	}

	cfg := raw.Config
	var err error
	if cfg.Formats, err = intKeys(raw.Formats); err != nil {
		return nil, packerrors.Wrap(err, packerrors.ErrConfigInvalid, "formats table").AsFatal()
	}
	if cfg.Scales, err = intKeys(raw.Scales); err != nil {
		return nil, packerrors.Wrap(err, packerrors.ErrConfigInvalid, "scales table").AsFatal()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Msg("Configuration loaded")
	return &cfg, nil
}

// intKeys converts a string-keyed table to integer keys.
func intKeys[V any](in map[string]V) (map[int]V, error) {
	out := make(map[int]V, len(in))
	for key, value := range in {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("key %q is not an integer", key)
		}
		out[n] = value
	}
	return out, nil
}

func (c *Config) validate() error {
	missing := func(field string) error {
		return packerrors.Newf(packerrors.ErrConfigInvalid,
			"required config key %q is missing", field).AsFatal()
	}
	switch {
	case c.Name == "":
		return missing("name")
	case c.SourceDir == "":
		return missing("source_dir")
	case c.OutputDir == "":
		return missing("output_dir")
	case len(c.Formats) == 0:
		return missing("formats")
	}
	for key, label := range c.Formats {
		if key < 0 || label == "" {
			return packerrors.Newf(packerrors.ErrConfigInvalid,
				"format %d must have a non-negative key and a label", key).AsFatal()
		}
	}
	if c.ProcessImages {
		if len(c.Scales) == 0 {
			return missing("scales")
		}
		for scale, dpi := range c.Scales {
			if dpi <= 0 {
				return packerrors.Newf(packerrors.ErrConfigInvalid,
					"scale %d has non-positive DPI %d", scale, dpi).AsFatal()
			}
		}
	}
	if c.FutureFormats < 0 {
		return packerrors.New(packerrors.ErrConfigInvalid,
			"future_formats must not be negative").AsFatal()
	}
	return nil
}

// SortedFormats returns the declared tier keys from highest to lowest, the
// processing order of the pipeline fold.
func (c *Config) SortedFormats() []int {
	keys := make([]int, 0, len(c.Formats))
	for k := range c.Formats {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	return keys
}

// SortedScales returns the scale identifiers from highest to lowest.
func (c *Config) SortedScales() []int {
	keys := make([]int, 0, len(c.Scales))
	for k := range c.Scales {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	return keys
}
