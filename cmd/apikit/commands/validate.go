package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/engine"
)

// NewValidateCommand checks a catalog against the default strategies.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog",
		Long: `Validate parses the catalog and checks every operation: required fields,
path templates, parameter placement and the binder, parser, page parser,
fallback and filter names against the strategies shipped by default.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadToolConfig()
			if err != nil {
				return err
			}
			c, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			if err := catalog.Validate(c, engine.NewStrategies()); err != nil {
				return err
			}
			_, err = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "catalog %s: %d operations ok\n", c.API, len(c.Operations))
			return err
		},
	}
}
