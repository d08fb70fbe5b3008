package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zentheon/respackr/internal/commands/genconfig"
	"github.com/zentheon/respackr/internal/commands/generate"
	"github.com/zentheon/respackr/internal/commands/info"
	"github.com/zentheon/respackr/internal/version"
	"github.com/zentheon/respackr/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "respackr",
		Short: "A tiered resourcepack builder",
		Long: `respackr builds distributable resourcepack archives from a single source
tree: one archive per declared compatibility format, optionally multiplied
by rendering scales, with per-format exclusions and overlay folders layered
on top of shared themed and rasterized assets.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	// Add all commands
	rootCmd.AddCommand(generate.NewCommand())
	rootCmd.AddCommand(info.NewCommand())
	rootCmd.AddCommand(genconfig.NewCommand())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "respackr %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
