package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/ibuy-cli/internal/adapters/render/catalog"
	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeView(cmd *cobra.Command, app *app, view catalog.View) error {
	rendered, err := app.render(view)
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
