package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/apikit/cmd/apikit/commands"
)

var rootCmd = &cobra.Command{
	Use:   "apikit",
	Short: "Invoke remote HTTP APIs from operation catalogs",
	Long: `apikit loads a YAML operation catalog and calls its operations against
a provider endpoint. Properties come from flags, the apikit.yml file,
.env files and APIKIT_* / <PROVIDER>_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "tool config file (default ./apikit-cli.yml)")
	flags.String("catalog", "", "operation catalog file")
	flags.StringP("provider", "p", "", "provider id (default is the catalog api id)")
	flags.StringP("endpoint", "e", "", "provider endpoint URL")
	flags.String("identity", "", "identity used by authentication filters")
	flags.String("credential", "", "credential used by authentication filters")
	flags.StringP("output", "o", commands.OutputFormatJSON, "output format (json, yaml)")

	for _, name := range []string{"config", "catalog", "provider", "endpoint", "identity", "credential", "output"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(commands.NewVersionCommand())
	rootCmd.AddCommand(commands.NewOperationsCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewInvokeCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
