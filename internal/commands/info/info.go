package info

import (
	"fmt"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zentheon/respackr/pkg/config"
	"github.com/zentheon/respackr/pkg/errors"
)

// NewCommand creates the info command
func NewCommand() *cobra.Command {
	var (
		configFile string
		output     string
	)

	cmd := &cobra.Command{
		Use:     "info",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			doc := asDocument(cfg)
			var data []byte
			switch output {
			case "toml":
				data, err = toml.Marshal(doc)
			case "yaml":
				data, err = yaml.Marshal(doc)
			default:
				return errors.Newf(errors.ErrInvalidInput,
					"unknown output format %q (want toml or yaml)", output)
			}
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config-file", "c", "respackr.toml", "Path to the build configuration")
	cmd.Flags().StringVarP(&output, "output", "o", "toml", "Output format: toml or yaml")

	return cmd
}

// asDocument flattens the config into string-keyed tables so both encoders
// render it the way it is written in a config file.
func asDocument(cfg *config.Config) map[string]interface{} {
	formats := make(map[string]string, len(cfg.Formats))
	for key, label := range cfg.Formats {
		formats[strconv.Itoa(key)] = label
	}
	scales := make(map[string]int, len(cfg.Scales))
	for scale, dpi := range cfg.Scales {
		scales[strconv.Itoa(scale)] = dpi
	}

	return map[string]interface{}{
		"name":           cfg.Name,
		"description":    cfg.Description,
		"source_dir":     cfg.SourceDir,
		"output_dir":     cfg.OutputDir,
		"license_file":   cfg.LicenseFile,
		"allowed_paths":  cfg.AllowedPaths,
		"future_formats": cfg.FutureFormats,
		"process_images": cfg.ProcessImages,
		"theme_dir":      cfg.ThemeDir,
		"formats":        formats,
		"scales":         scales,
		"default_colors": cfg.DefaultColors,
	}
}
