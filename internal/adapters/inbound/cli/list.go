package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fixes"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/tui"
	"github.com/abdidvp/automigrate/internal/domain"
)

func newListCmd() *cobra.Command {
	var (
		catalogName string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the fixes of a catalog in execution order",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := fixes.ByName(catalogName)
			if err != nil {
				return usageError(err)
			}

			if jsonOutput {
				infos := make([]domain.FixInfo, 0, len(catalog.Fixes))
				for _, f := range catalog.Fixes {
					infos = append(infos, f.Info())
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderCatalog(catalog))
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogName, "catalog", domain.CatalogFull, "Catalog to list (full or init)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
