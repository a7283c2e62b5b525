package commands

import (
	"cmp"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/apikit/catalog"
)

type operationRow struct {
	Key    string `json:"key" yaml:"key"`
	Method string `json:"method" yaml:"method"`
	Path   string `json:"path" yaml:"path"`
	Paged  bool   `json:"paged" yaml:"paged"`
}

// NewOperationsCommand lists the operations of a catalog.
func NewOperationsCommand() *cobra.Command {
	var table bool
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List the operations of a catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadToolConfig()
			if err != nil {
				return err
			}
			c, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			rows := operationRows(c)
			if !table {
				return writeOutput(cmd.OutOrStdout(), viper.GetString("output"), rows)
			}

			t := tablewriter.NewWriter(cmd.OutOrStdout())
			t.Header("Key", "Method", "Path", "Paged")
			for _, r := range rows {
				paged := ""
				if r.Paged {
					paged = "yes"
				}
				_ = t.Append([]string{r.Key, r.Method, r.Path, paged})
			}
			return t.Render()
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "print a table instead of structured output")
	return cmd
}

func operationRows(c catalog.Catalog) []operationRow {
	rows := make([]operationRow, 0, len(c.Operations))
	for _, op := range c.Operations {
		rows = append(rows, operationRow{Key: op.Key, Method: op.Method, Path: op.Path, Paged: op.Paging != nil})
	}
	slices.SortFunc(rows, func(a, b operationRow) int { return cmp.Compare(a.Key, b.Key) })
	return rows
}
