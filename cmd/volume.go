package cmd

import (
	"fmt"

	"github.com/bnema/volmix/internal/application"
	"github.com/spf13/cobra"
)

func newVolumeCmd(flags *rootFlags) *cobra.Command {
	volumeCmd := &cobra.Command{
		Use:   "volume",
		Short: "Change control volumes without the overlay",
	}

	volumeCmd.AddCommand(newVolumeAdjustCmd(flags))

	return volumeCmd
}

func newVolumeAdjustCmd(flags *rootFlags) *cobra.Command {
	var (
		index int
		delta float64
	)

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Adjust the control at a 1-based index by a delta",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, app *app) error {
			control, err := app.mixer.AdjustByIndex(cmd.Context(), application.AdjustVolumeCommand{
				Index: index,
				Delta: delta,
			})
			if err != nil {
				return fmt.Errorf("adjust control %d: %w", index, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d%%\n", control.Rule.Name, control.Percent())
			return err
		}),
	}

	cmd.Flags().IntVar(&index, "control", 0, "1-based control index")
	cmd.Flags().Float64Var(&delta, "delta", application.VolumeStep, "volume change in [-1, 1]")
	_ = cmd.MarkFlagRequired("control")

	return cmd
}
