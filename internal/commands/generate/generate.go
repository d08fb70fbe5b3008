package generate

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zentheon/respackr/pkg/config"
	"github.com/zentheon/respackr/pkg/pipeline"
	"github.com/zentheon/respackr/pkg/stats"
)

// NewCommand creates the generate command
func NewCommand() *cobra.Command {
	var (
		configFile  string
		packVersion string
		themeName   string
		scales      []int
		format      int
		licenseFile string
		dryRun      bool
		exitOnError bool
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if licenseFile != "" {
				cfg.LicenseFile = licenseFile
			}

			tally, err := pipeline.Run(afero.NewOsFs(), cfg, pipeline.Options{
				Theme:       themeName,
				Scales:      scales,
				Format:      format,
				PackVersion: packVersion,
				DryRun:      dryRun,
				ExitOnError: exitOnError,
			})
			// The summary is worth printing even after a failed run; it
			// shows how far the build got.
			stats.PrintSummary(tally)
			return err
		},
	}

	cmd.Flags().StringVarP(&configFile, "config-file", "c", "respackr.toml", "Path to the build configuration")
	cmd.Flags().StringVarP(&packVersion, "packver", "p", "", "Pack version string embedded in archive names")
	cmd.Flags().StringVarP(&themeName, "theme", "t", "", "Theme to apply to vector assets")
	cmd.Flags().IntSliceVarP(&scales, "scale", "s", nil, "Restrict the build to these scale identifiers (repeatable)")
	cmd.Flags().IntVarP(&format, "format", "f", pipeline.NoFormat, "Build only this format")
	cmd.Flags().StringVar(&licenseFile, "license", "", "License file to bundle, overriding the config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the full pipeline but write no archives")
	cmd.Flags().BoolVar(&exitOnError, "exit-error", false, "Abort on the first recorded error")

	return cmd
}
