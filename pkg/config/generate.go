package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	packerrors "github.com/zentheon/respackr/pkg/errors"
)

// starterConfig is the template written by the genconfig command. Keys are
// string-valued here so the generated TOML tables read like the documented
// format.
type starterConfig struct {
	Name          string            `toml:"name"`
	Description   string            `toml:"description"`
	SourceDir     string            `toml:"source_dir"`
	OutputDir     string            `toml:"output_dir"`
	LicenseFile   string            `toml:"license_file,omitempty"`
	AllowedPaths  []string          `toml:"allowed_paths"`
	FutureFormats int               `toml:"future_formats"`
	ProcessImages bool              `toml:"process_images"`
	ThemeDir      string            `toml:"theme_dir"`
	Formats       map[string]string `toml:"formats"`
	Scales        map[string]int    `toml:"scales"`
	DefaultColors map[string]string `toml:"default_colors"`
}

// WriteStarter writes a commented-out-by-example starter configuration to
// path. Refuses to overwrite an existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return packerrors.Newf(packerrors.ErrConfigInvalid,
			"refusing to overwrite existing config at %s", path)
	}

	starter := starterConfig{
		Name:          "mypack",
		Description:   "An example resourcepack",
		SourceDir:     "src",
		OutputDir:     "generated",
		AllowedPaths:  []string{"assets", "pack.mcmeta", "pack.png"},
		FutureFormats: 4,
		ProcessImages: true,
		ThemeDir:      "themes",
		Formats: map[string]string{
			"18": "1.20",
			"15": "1.19",
		},
		Scales: map[string]int{
			"1": 96,
			"2": 192,
		},
		DefaultColors: map[string]string{
			"primary": "#1a2b3c",
		},
	}

	data, err := toml.Marshal(starter)
	if err != nil {
		return packerrors.Wrap(err, packerrors.ErrConfigInvalid, "encoding starter config")
	}
	return os.WriteFile(path, data, 0644)
}
