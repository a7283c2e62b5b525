package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/apikit/version"
)

// NewVersionCommand prints build information.
func NewVersionCommand() *cobra.Command {
	var structured bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if structured {
				return writeOutput(cmd.OutOrStdout(), viper.GetString("output"), info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&structured, "structured", false, "print in the --output format")
	return cmd
}
