package cmd

import (
	"context"

	"github.com/bnema/ibuy-cli/internal/adapters/render/catalog"
	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/spf13/cobra"
)

type referenceLoader func(context.Context) (*domain.ReferenceTable[int, string], error)

func newCategoriesCmd(app *app) *cobra.Command {
	return newReferenceCmd(app, "categories", "List product categories", "Categories", app.reference.LoadCategories)
}

func newStatusesCmd(app *app) *cobra.Command {
	return newReferenceCmd(app, "statuses", "List product statuses", "Product statuses", app.reference.LoadStatuses)
}

func newReferenceCmd(app *app, use, short, title string, load referenceLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := load(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			if asJSON {
				return writeJSON(cmd, table.Map())
			}
			return writeView(cmd, app, catalog.Reference(title, table))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
