package cli

import (
	"github.com/spf13/cobra"

	"github.com/abdidvp/automigrate/internal/domain"
)

func newInitCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Run the fixes that follow a fresh Storybook setup",
		Long:  "Run the initialization catalog, the small set of fixes worth applying right after Storybook was added to a project.",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, args, domain.CatalogInit, f)
		},
	}
	f.bind(cmd)
	return cmd
}
