package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/volmix/internal/adapters/render/overlay"
	"github.com/bnema/volmix/internal/application"
	"github.com/spf13/cobra"
)

func newControlsCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "controls",
		Short: "Resolve and print the current controls",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, app *app) error {
			controls, err := app.mixer.Controls(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolve controls: %w", err)
			}

			if asJSON {
				statuses := app.labeler.Statuses(cmd.Context(), controls, application.DisplayOptions{
					Debug:            app.cfg.Debug,
					ShowProcessCount: app.cfg.ShowProcessCount,
				})
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}

			rendered := overlay.Render(cmd.Context(), controls, app.labeler, app.renderOptions())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output controls as JSON")

	return cmd
}
