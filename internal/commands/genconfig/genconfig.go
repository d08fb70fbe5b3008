package genconfig

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zentheon/respackr/pkg/config"
)

// NewCommand creates the genconfig command
func NewCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteStarter(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote starter config to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "respackr.toml", "Where to write the starter config")

	return cmd
}
